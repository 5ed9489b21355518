package controller

import (
	"bufio"
	stdio "io"
	"iter"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// MaxLineLength bounds a command line. Longer lines are dropped whole.
const MaxLineLength = 1022

// LineReader splits a stream into newline terminated lines.
type LineReader struct {
	r         *bufio.Reader
	err       error
	discarded int
}

func NewLineReader(r stdio.Reader, limit int) *LineReader {
	// room for limit bytes plus the newline
	return &LineReader{r: bufio.NewReaderSize(r, limit+1)}
}

// Lines yields complete lines without their terminator. The sequence stops
// at the first read error and can be ranged over again to continue after a
// break. Bytes after the last newline are never yielded.
func (l *LineReader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for l.err == nil {
			line, ok := l.next()
			if !ok || !yield(line) {
				return
			}
		}
	}
}

func (l *LineReader) next() (string, bool) {
	long := false
	for {
		b, err := l.r.ReadSlice('\n')
		switch {
		case err == nil:
			if long {
				long = false
				l.discarded++
				continue
			}
			return strings.TrimSuffix(strings.TrimSuffix(string(b), "\n"), "\r"), true
		case errors.Is(err, bufio.ErrBufferFull):
			long = true
		default:
			l.err = err
			return "", false
		}
	}
}

// Discarded counts the lines dropped for being too long.
func (l *LineReader) Discarded() int { return l.discarded }

// Err returns the error that ended the sequence. End of input and a closed
// file are normal ends and report nil.
func (l *LineReader) Err() error {
	if errors.Is(l.err, stdio.EOF) || errors.Is(l.err, os.ErrClosed) {
		return nil
	}
	return l.err
}
