package controller

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Pipe is the named pipe commands arrive on.
type Pipe struct {
	Path string
}

// CreatePipe replaces whatever is at path with a world writable FIFO.
func CreatePipe(path string) (*Pipe, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "remove %s", path)
	}
	if err := unix.Mkfifo(path, 0o666); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	// mkfifo is subject to the umask
	if err := os.Chmod(path, 0o666); err != nil {
		return nil, errors.Wrapf(err, "failed to set permissions on %s", path)
	}
	return &Pipe{Path: path}, nil
}

// Open opens the FIFO for reading. It is opened read-write so the reader
// holds a writer itself and never sees end of file between clients.
func (p *Pipe) Open() (*os.File, error) {
	f, err := os.OpenFile(p.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", p.Path)
	}
	return f, nil
}

func (p *Pipe) Remove() error {
	if err := os.Remove(p.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
