// Package scroll renders a message of any length on a fixed-width character
// display as a left-scrolling banner.
//
// Messages that fit the display are shown once. Longer messages scroll one
// character per frame until the operator sends the quit key on the input
// stream. Frames follow a fixed cadence: render, wait, advance, poll.
package scroll

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultWidth is the digit count of a TM1638 board.
const DefaultWidth = 8

// DefaultQuit is the key that stops scrolling, matched in either case.
const DefaultQuit = 'q'

var (
	// ErrEmptyMessage is returned by Run for a zero-length message.
	ErrEmptyMessage = errors.New("scroll: empty message")
	// ErrNegativeInterval is returned by Run for an interval below zero.
	ErrNegativeInterval = errors.New("scroll: negative interval")
)

// Display renders a window of text.
type Display interface {
	// ShowText updates every position of the display, left to right.
	ShowText(text string) error
	// Clear blanks the display.
	Clear() error
}

// Delayer blocks for a duration.
type Delayer interface {
	Delay(d time.Duration)
}

// Input is a non-blocking byte source the engine polls between frames.
type Input interface {
	// HasInput reports whether ReadByte would return without blocking.
	HasInput() bool
	ReadByte() (byte, error)
}

// Opts is the configuration for the Engine.
type Opts struct {
	Width  int          // Display width in characters (default: 8)
	Quit   byte         // Quit key, either case accepted (default: 'q')
	Logger *slog.Logger // Optional; nil discards
}

// Engine drives a Display from a message.
type Engine struct {
	display Display
	delay   Delayer
	input   Input

	width int
	quit  byte
	log   *slog.Logger
}

// New returns an Engine. opts can be nil to use defaults.
func New(display Display, delay Delayer, input Input, opts *Opts) (*Engine, error) {
	if opts == nil {
		opts = &Opts{Width: DefaultWidth, Quit: DefaultQuit}
	}
	if display == nil || delay == nil || input == nil {
		return nil, errors.New("scroll: display, delay and input are required")
	}
	if opts.Width <= 0 {
		return nil, errors.New("scroll: width must be at least 1")
	}
	if !isLetter(opts.Quit) {
		return nil, fmt.Errorf("scroll: quit key %q is not a letter", opts.Quit)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		display: display,
		delay:   delay,
		input:   input,
		width:   opts.Width,
		quit:    toLower(opts.Quit),
		log:     logger,
	}, nil
}

// Width returns the display width in characters.
func (e *Engine) Width() int {
	return e.width
}

// Run shows message. If it fits the display it is rendered once, padded with
// blanks, and Run returns. Otherwise Run scrolls it every interval until the
// quit key is read, then clears the display and returns nil.
func (e *Engine) Run(message string, interval time.Duration) error {
	s, err := e.Start(message, interval)
	if err != nil || s == nil {
		return err
	}
	for !s.Stopped() {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Start validates the arguments and either renders message once, returning a
// nil Session, or returns a Session ready to scroll it.
func (e *Engine) Start(message string, interval time.Duration) (*Session, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if interval < 0 {
		return nil, ErrNegativeInterval
	}

	msg := []rune(message)
	if len(msg) <= e.width {
		e.log.Debug("scroll: message fits display", slog.Int("len", len(msg)), slog.Int("width", e.width))
		if err := e.display.ShowText(pad(msg, e.width)); err != nil {
			return nil, fmt.Errorf("scroll: show: %w", err)
		}
		return nil, nil
	}

	e.log.Debug("scroll: start",
		slog.Int("len", len(msg)),
		slog.Int("width", e.width),
		slog.Duration("interval", interval))
	return &Session{
		e:        e,
		msg:      msg,
		interval: interval,
		buf:      make([]rune, e.width),
	}, nil
}

func (e *Engine) isQuit(c byte) bool {
	return toLower(c) == e.quit
}

// Window fills buf with width runes of msg starting at pos, wrapping around
// the end of msg, and returns it. buf is reallocated if too short.
func Window(msg []rune, pos, width int, buf []rune) []rune {
	if cap(buf) < width {
		buf = make([]rune, width)
	}
	buf = buf[:width]
	for i := range buf {
		buf[i] = msg[(pos+i)%len(msg)]
	}
	return buf
}

// pad right-pads msg with blanks to width.
func pad(msg []rune, width int) string {
	out := make([]rune, width)
	n := copy(out, msg)
	for i := n; i < width; i++ {
		out[i] = ' '
	}
	return string(out)
}

func isLetter(c byte) bool {
	c = toLower(c)
	return c >= 'a' && c <= 'z'
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
