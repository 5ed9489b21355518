package controller

import (
	"testing"

	"github.com/Seann-Moser/pca9685servod/pkg/servo"
	"github.com/pkg/errors"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
		err  error
	}{
		{"0=150", Command{0, "150"}, nil},
		{"15=+10%", Command{15, "+10%"}, nil},
		{" 7 =1500us", Command{7, "1500us"}, nil},
		{"2= -20 extra", Command{2, "-20"}, nil},
		{"3=a=b", Command{3, "a=b"}, nil},
		{"abc", Command{}, ErrBadInput},
		{"=50%", Command{}, ErrBadInput},
		{"1.5=50%", Command{}, ErrBadInput},
		{"4=", Command{}, ErrBadInput},
		{"16=1", Command{}, servo.ErrChannel},
	}
	for _, tc := range tests {
		got, err := ParseCommand(tc.line)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("ParseCommand(%q) error = %v, want %v", tc.line, err, tc.err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseCommand(%q) = %+v, %v; want %+v", tc.line, got, err, tc.want)
		}
	}
}
