package servo

import (
	"math"
	"strconv"
	"testing"

	"github.com/pkg/errors"
)

func TestParseWidthAbsolute(t *testing.T) {
	b, _ := newTestBoard(false)
	tests := []struct {
		token string
		want  float64
	}{
		{"150", 0.125},
		{"50%", 0.5},
		{"1500us", 0.5},
		{"2500us", 1},
		{"500", 1},
		{"12.5%", 0.125},
		{"1.5e3us", 0.5},
		{"100", 0},
		{"0%", 0},
		{"500us", 0},
	}
	for _, tc := range tests {
		got, err := b.ParseWidth(0, tc.token)
		if err != nil {
			t.Errorf("ParseWidth(%q) error: %v", tc.token, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ParseWidth(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestParseWidthRelative(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"+10%", 0.6},
		{"-10%", 0.4},
		{"-20", 0.45},
		{"+20", 0.55},
		{"+100us", 0.55},
		{"-250us", 0.375},
		{"-50%", 0},
		{"+50%", 1},
	}
	for _, tc := range tests {
		b, _ := newTestBoard(false)
		if err := b.channels.Set(3, 0.5); err != nil {
			t.Fatal(err)
		}
		got, err := b.ParseWidth(3, tc.token)
		if err != nil {
			t.Errorf("ParseWidth(%q) error: %v", tc.token, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ParseWidth(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestParseWidthErrors(t *testing.T) {
	tests := []struct {
		token string
		want  error
	}{
		{"abc", ErrBadSyntax},
		{"", ErrBadSyntax},
		{"+", ErrBadSyntax},
		{"+abc", ErrBadSyntax},
		{".5", ErrBadSyntax},
		{"-.5%", ErrBadSyntax},
		{"12xy", ErrBadSyntax},
		{"5ms", ErrBadSyntax},
		{"1.2.3us", ErrBadSyntax},
		{"400us", ErrOutOfRange},
		{"2500.001us", ErrOutOfRange},
		{"100.0001%", ErrOutOfRange},
		{"501", ErrOutOfRange},
		{"-1%", ErrOutOfRange},
		{"+101%", ErrOutOfRange},
	}
	for _, tc := range tests {
		b, _ := newTestBoard(false)
		_, err := b.ParseWidth(0, tc.token)
		if !errors.Is(err, tc.want) {
			t.Errorf("ParseWidth(%q) error = %v, want %v", tc.token, err, tc.want)
		}
		var we *WidthError
		if !errors.As(err, &we) || we.Token != tc.token {
			t.Errorf("ParseWidth(%q) error %v is not a WidthError for the token", tc.token, err)
		}
	}
}

func TestParseWidthChannel(t *testing.T) {
	b, _ := newTestBoard(false)
	for _, ch := range []int{-1, Channels} {
		if _, err := b.ParseWidth(ch, "50%"); !errors.Is(err, ErrChannel) {
			t.Errorf("ParseWidth(%d) error = %v, want ErrChannel", ch, err)
		}
	}
}

func TestParseWidthEpsilonAboveOne(t *testing.T) {
	b, _ := newTestBoard(false)
	token := strconv.FormatFloat(100*(1+1e-9), 'f', -1, 64) + "%"
	if _, err := b.ParseWidth(0, token); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ParseWidth(%q) error = %v, want ErrOutOfRange", token, err)
	}
}

func TestParseWidthMicrosRoundTrip(t *testing.T) {
	b, _ := newTestBoard(false)
	cfg := b.Config()
	for i := 0; i <= 20; i++ {
		f := float64(i) / 20
		token := strconv.FormatFloat(cfg.PulseUSec(f), 'f', -1, 64) + "us"
		got, err := b.ParseWidth(0, token)
		if err != nil {
			t.Fatalf("ParseWidth(%q) error: %v", token, err)
		}
		if math.Abs(got-f) > 1e-9 {
			t.Errorf("ParseWidth(%q) = %v, want %v", token, got, f)
		}
	}
}

func TestParseWidthRelativeMatchesAbsolute(t *testing.T) {
	for _, f0 := range []float64{0, 0.25, 0.5, 0.9} {
		for _, d := range []float64{5, 10, 25, 50} {
			b, _ := newTestBoard(false)
			if err := b.channels.Set(0, f0); err != nil {
				t.Fatal(err)
			}
			token := "+" + strconv.FormatFloat(d, 'f', -1, 64) + "%"
			got, err := b.ParseWidth(0, token)
			want := f0 + d/100
			if want > 1 {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("from %v, %q error = %v, want ErrOutOfRange", f0, token, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("from %v, %q error: %v", f0, token, err)
				continue
			}
			if got != want {
				t.Errorf("from %v, %q = %v, want %v", f0, token, got, want)
			}
		}
	}
}
