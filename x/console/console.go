// Package console writes tagged diagnostic lines ("[bus] acquire addr=0x3D")
// without fmt, so it can be used on the MCU from the first instruction of main.
//
// Output goes to a process-wide sink. The default sink uses the builtin print,
// which TinyGo routes to USB CDC; platform bootstrap may replace it (e.g. to
// mirror onto a UART).
package console

import (
	"io"
	"sync"

	"dualdisplay-go/x/conv"
)

type printSink struct{}

func (printSink) Write(p []byte) (int, error) {
	print(string(p))
	return len(p), nil
}

var (
	mu     sync.Mutex
	output io.Writer = printSink{}
)

// Stdout is the builtin print sink.
func Stdout() io.Writer { return printSink{} }

// SetOutput replaces the sink and returns the previous one.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	if w == nil {
		w = io.Discard
	}
	output = w
	return prev
}

// Tee duplicates every line onto all writers; write errors are ignored.
func Tee(ws ...io.Writer) io.Writer { return tee(ws) }

type tee []io.Writer

func (t tee) Write(p []byte) (int, error) {
	for _, w := range t {
		_, _ = w.Write(p)
	}
	return len(p), nil
}

type kind uint8

const (
	kStr kind = iota
	kInt
	kHex8
	kHex32
)

// Field is one key=value pair on a line.
type Field struct {
	key  string
	kind kind
	s    string
	i    int64
}

func Str(k, v string) Field        { return Field{key: k, kind: kStr, s: v} }
func Int(k string, v int) Field    { return Field{key: k, kind: kInt, i: int64(v)} }
func Addr(k string, a uint8) Field { return Field{key: k, kind: kHex8, i: int64(a)} }
func Word(k string, w uint32) Field {
	return Field{key: k, kind: kHex32, i: int64(w)}
}

// Err renders err under the key "err"; a nil error renders as "nil".
func Err(err error) Field {
	if err == nil {
		return Str("err", "nil")
	}
	return Str("err", err.Error())
}

// Logger prefixes every line with its tag.
type Logger struct {
	tag string
}

func New(tag string) *Logger { return &Logger{tag: tag} }

func (l *Logger) Info(msg string, fs ...Field)  { l.emit("", msg, fs) }
func (l *Logger) Warn(msg string, fs ...Field)  { l.emit("warn: ", msg, fs) }
func (l *Logger) Error(msg string, fs ...Field) { l.emit("error: ", msg, fs) }

func (l *Logger) emit(level, msg string, fs []Field) {
	var stack [96]byte
	b := stack[:0]
	b = append(b, '[')
	b = append(b, l.tag...)
	b = append(b, "] "...)
	b = append(b, level...)
	b = append(b, msg...)
	for _, f := range fs {
		b = append(b, ' ')
		b = append(b, f.key...)
		b = append(b, '=')
		switch f.kind {
		case kInt:
			b = conv.AppendInt(b, f.i)
		case kHex8:
			b = conv.AppendHex(b, uint64(f.i), 2)
		case kHex32:
			b = conv.AppendHex(b, uint64(uint32(f.i)), 8)
		default:
			b = append(b, f.s...)
		}
	}
	b = append(b, '\n')

	mu.Lock()
	_, _ = output.Write(b)
	mu.Unlock()
}
