package controller

import (
	"strconv"
	"strings"

	"github.com/Seann-Moser/pca9685servod/pkg/servo"
	"github.com/pkg/errors"
)

// ErrBadInput is returned for lines that are not "<servo>=<width>".
var ErrBadInput = errors.New("bad input")

// Command is one parsed input line.
type Command struct {
	Channel int
	Width   string
}

// ParseCommand splits "<servo>=<width>". Whitespace around the servo number
// is ignored and the width ends at the first blank.
func ParseCommand(line string) (Command, error) {
	ch, rest, ok := strings.Cut(line, "=")
	if !ok {
		return Command{}, errors.Wrapf(ErrBadInput, "%q", line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(ch))
	if err != nil {
		return Command{}, errors.Wrapf(ErrBadInput, "%q", line)
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Command{}, errors.Wrapf(ErrBadInput, "%q", line)
	}
	if n < 0 || n >= servo.Channels {
		return Command{}, errors.Wrapf(servo.ErrChannel, "servo %d", n)
	}
	return Command{Channel: n, Width: fields[0]}, nil
}
