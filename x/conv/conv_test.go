package conv

import "testing"

func TestAppendInt(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{500, "500"},
		{-42, "-42"},
		{9223372036854775807, "9223372036854775807"},
	}
	for _, c := range cases {
		if got := string(AppendInt(nil, c.in)); got != c.want {
			t.Fatalf("AppendInt(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAppendUintKeepsPrefix(t *testing.T) {
	got := string(AppendUint([]byte("n="), 1024))
	if got != "n=1024" {
		t.Fatalf("got %q", got)
	}
}

func TestHex(t *testing.T) {
	if got := Hex8(0x3D); got != "0x3D" {
		t.Fatalf("Hex8 = %q", got)
	}
	if got := Hex8(0x0C); got != "0x0C" {
		t.Fatalf("Hex8 = %q", got)
	}
	if got := string(AppendHex(nil, 0x0B0075E1, 8)); got != "0x0B0075E1" {
		t.Fatalf("AppendHex word = %q", got)
	}
	if got := string(AppendHex(nil, 0xABC, 0)); got != "0xC" {
		t.Fatalf("AppendHex clamps digits: %q", got)
	}
}
