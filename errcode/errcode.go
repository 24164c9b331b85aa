package errcode

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK      Code = "ok"
	Timeout Code = "timeout"

	// Shared bus
	BusUnavailable     Code = "bus_unavailable"     // bus resource not constructed or token released
	TransactionAborted Code = "transaction_aborted" // NACK or bus timeout on one operation
	InvalidAddress     Code = "invalid_address"     // not a 7-bit target address

	// Display channels
	ChannelFaulted Code = "channel_faulted" // retry budget exhausted; terminal
	NotReady       Code = "not_ready"       // channel not initialised yet

	// Configuration
	InvalidPlan Code = "invalid_plan"

	Error Code = "error" // generic fallback
)

// E keeps a Code together with the failing operation and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match a wrapped E by code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E for op with cause err. A nil err yields nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps a low-level bus driver error to a Code. TinyGo's machine
// I2C reports NACKs, aborts and clock-stretch timeouts as distinct values; all
// of them abort the current transaction only.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	return TransactionAborted
}
