package scroll

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// State is the phase a Session is in.
type State int

// Session states, in frame order.
const (
	Rendering State = iota
	Waiting
	Polling
	Stopped
)

func (s State) String() string {
	switch s {
	case Rendering:
		return "Rendering"
	case Waiting:
		return "Waiting"
	case Polling:
		return "Polling"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is one scrolling animation of a message longer than the display.
// It is not safe for concurrent use.
type Session struct {
	e        *Engine
	msg      []rune
	interval time.Duration

	pos    int
	frames uint64
	state  State
	buf    []rune
}

// Position returns the index of the message rune at the left edge of the
// next frame.
func (s *Session) Position() int {
	return s.pos
}

// Frames returns the number of frames rendered.
func (s *Session) Frames() uint64 {
	return s.frames
}

// Interval returns the time each frame is shown.
func (s *Session) Interval() time.Duration {
	return s.interval
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Stopped reports whether the session has ended.
func (s *Session) Stopped() bool {
	return s.state == Stopped
}

// Step runs one full frame: render the window, wait the interval, advance
// the position and poll the input once. Step on a stopped session is a no-op.
//
// Any error stops the session.
func (s *Session) Step() error {
	for s.state != Stopped {
		done, err := s.advance()
		if err != nil {
			s.state = Stopped
			return err
		}
		if done {
			break
		}
	}
	return nil
}

// advance executes the current phase and moves to the next one. It reports
// true when a frame has been completed.
func (s *Session) advance() (bool, error) {
	e := s.e
	switch s.state {
	case Rendering:
		s.buf = Window(s.msg, s.pos, e.width, s.buf)
		if err := e.display.ShowText(string(s.buf)); err != nil {
			return false, fmt.Errorf("scroll: show frame %d: %w", s.frames, err)
		}
		s.frames++
		s.state = Waiting
	case Waiting:
		e.delay.Delay(s.interval)
		s.pos = (s.pos + 1) % len(s.msg)
		s.state = Polling
	case Polling:
		s.state = Rendering
		if !e.input.HasInput() {
			return true, nil
		}
		c, err := e.input.ReadByte()
		if errors.Is(err, io.EOF) {
			// A closed input never carries the quit key; keep scrolling.
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("scroll: read input: %w", err)
		}
		if !e.isQuit(c) {
			e.log.Debug("scroll: ignored input", slog.Int("byte", int(c)))
			return true, nil
		}
		if err := e.display.Clear(); err != nil {
			return false, fmt.Errorf("scroll: clear: %w", err)
		}
		s.state = Stopped
		e.log.Info("scroll: stopped by operator", slog.Uint64("frames", s.frames))
		return true, nil
	}
	return false, nil
}
