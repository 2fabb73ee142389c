//go:build unix

// Package serial is a byte-oriented operator console over a tty, serial
// device or pipe.
//
// A Port never blocks on input unless asked to: HasInput polls the
// descriptor, ReadByte reads a single byte. Terminals are switched to raw
// mode so that single key presses are delivered without waiting for Enter.
package serial

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Port is a character I/O port.
type Port struct {
	in      *os.File
	out     *os.File
	inFd    int
	owned   []*os.File // Closed by Close
	oldTerm *term.State
	eof     bool // Set once ReadByte has seen end of input
	closed  bool
}

// Open opens the device at path for reading and writing. An empty path or
// "-" selects stdin and stdout.
func Open(path string) (*Port, error) {
	if path == "" || path == "-" {
		return New(os.Stdin, os.Stdout)
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	p, err := New(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.owned = append(p.owned, f)
	return p, nil
}

// New wraps already open files. If in is a terminal it is put in raw mode
// until Close.
func New(in, out *os.File) (*Port, error) {
	if in == nil || out == nil {
		return nil, errors.New("serial: in and out are required")
	}
	p := &Port{
		in:   in,
		out:  out,
		inFd: int(in.Fd()),
	}
	if term.IsTerminal(p.inFd) {
		old, err := term.MakeRaw(p.inFd)
		if err != nil {
			return nil, fmt.Errorf("serial: failed to set raw mode: %w", err)
		}
		p.oldTerm = old
	}
	return p, nil
}

// HasInput reports whether a byte is waiting. It never blocks. Once ReadByte
// has returned io.EOF, HasInput reports false.
func (p *Port) HasInput() bool {
	if p.closed || p.eof {
		return false
	}
	fds := []unix.PollFd{
		{Fd: int32(p.inFd), Events: unix.POLLIN},
	}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 {
		// EINTR included: the next poll will see the byte.
		return false
	}
	return fds[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0
}

// ReadByte reads one byte, blocking if none is waiting. It returns io.EOF
// once the other end has closed.
func (p *Port) ReadByte() (byte, error) {
	if p.closed {
		return 0, os.ErrClosed
	}
	if p.eof {
		return 0, io.EOF
	}
	var buf [1]byte
	for {
		n, err := unix.Read(p.inFd, buf[:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("serial: read: %w", err)
		}
		if n == 0 {
			p.eof = true
			return 0, io.EOF
		}
		return buf[0], nil
	}
}

// WriteByte sends one byte.
func (p *Port) WriteByte(c byte) error {
	_, err := p.Write([]byte{c})
	return err
}

// Write sends b.
func (p *Port) Write(b []byte) (int, error) {
	if p.closed {
		return 0, os.ErrClosed
	}
	return p.out.Write(b)
}

// WriteString sends s.
func (p *Port) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// Close restores the terminal mode and closes files opened by Open.
func (p *Port) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	if p.oldTerm != nil {
		errs = append(errs, term.Restore(p.inFd, p.oldTerm))
	}
	for _, f := range p.owned {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// String returns a string representation of the port.
func (p *Port) String() string {
	return fmt.Sprintf("serial.Port{%s}", p.in.Name())
}
