package event

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		us   uint64
		want string
	}{
		{500, "500µs"},
		{1_500, "1.5ms"},
		{2_500_000, "2.5s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.us); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.us, got, c.want)
		}
	}
}
