// Package tm1638 controls an 8-digit seven-segment display driven by a
// TM1638 controller over three GPIO lines.
//
// The TM1638 also scans up to 8 keys and drives 8 discrete LEDs, as found on
// the common "LED&KEY" boards.
//
// See the examples for how to use this package.
package tm1638

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/tm1638/segment"
)

// MaxDigits is the number of grid outputs of the controller.
const MaxDigits = 8

// Command bytes.
const (
	cmdWriteAuto  = 0x40 // Data command: write, auto-increment address
	cmdWriteFixed = 0x44 // Data command: write, fixed address
	cmdReadKeys   = 0x42 // Data command: read key scan data
	cmdAddress    = 0xC0 // Address command, OR with 0x00-0x0F
	cmdDisplay    = 0x80 // Display control, OR with on bit and brightness
	displayOn     = 0x08

	ramSize = 16 // Even addresses: digit segments, odd addresses: LED
)

var errHalted = errors.New("tm1638: halted")

// Opts is the configuration for the TM1638 display.
type Opts struct {
	Digits     int  // Digits wired to the controller (default: 8, 1..8)
	Brightness byte // Initial brightness (default: 4, 0..7)

	// Optional delay between clock edges. Zero is fine for GPIO drivers
	// slower than 1MHz.
	BitDelay time.Duration
}

// Dev is the device handle for the TM1638 display.
type Dev struct {
	// Communication
	stb gpio.PinOut // Strobe, active low
	clk gpio.PinOut // Clock, data latched on rising edge
	dio gpio.PinIO  // Bidirectional data

	digits     int
	brightness byte
	bitDelay   time.Duration

	// Shadow of display RAM; LED bytes survive text updates.
	ram [ramSize]byte

	halted bool
}

// NewGPIO creates a new TM1638 device bit-banged over three GPIO pins.
//
// dio must support input for Keys to work. opts can be nil to use defaults
// (8 digits, brightness 4).
func NewGPIO(stb, clk gpio.PinOut, dio gpio.PinIO, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Digits: MaxDigits, Brightness: 4}
	}
	if opts.Digits <= 0 || opts.Digits > MaxDigits {
		return nil, errors.New("tm1638: digits must be between 1 and 8")
	}
	if opts.Brightness > 7 {
		return nil, errors.New("tm1638: brightness must be between 0 and 7")
	}
	if stb == nil || clk == nil || dio == nil {
		return nil, errors.New("tm1638: stb, clk and dio pins are required")
	}

	d := &Dev{
		stb:        stb,
		clk:        clk,
		dio:        dio,
		digits:     opts.Digits,
		brightness: opts.Brightness,
		bitDelay:   opts.BitDelay,
	}

	// Idle bus: strobe and clock high.
	if err := d.stb.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("tm1638: failed to set STB high: %w", err)
	}
	if err := d.clk.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("tm1638: failed to set CLK high: %w", err)
	}
	if err := d.dio.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("tm1638: failed to set DIO high: %w", err)
	}

	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init clears the display RAM, digits and LEDs, and turns the display on at
// the current brightness.
func (d *Dev) Init() error {
	if d.halted {
		return errHalted
	}
	d.ram = [ramSize]byte{}
	if err := d.flush(); err != nil {
		return err
	}
	return d.sendCommand(d.control())
}

// Digits returns the number of digits of the display.
func (d *Dev) Digits() int {
	return d.digits
}

// Brightness returns the current brightness level.
func (d *Dev) Brightness() byte {
	return d.brightness
}

// SetBrightness sets the display brightness (0-7).
func (d *Dev) SetBrightness(level byte) error {
	if d.halted {
		return errHalted
	}
	if level > 7 {
		return errors.New("tm1638: brightness must be between 0 and 7")
	}
	d.brightness = level
	return d.sendCommand(d.control())
}

// ShowText writes text left-aligned on the digits. Digits past the end of
// text are blanked. Runes without a glyph render as blank cells.
func (d *Dev) ShowText(text string) error {
	if d.halted {
		return errHalted
	}
	var buf [MaxDigits]segment.Segments
	cells := segment.EncodeString(buf[:0], text)
	if len(cells) > d.digits {
		return fmt.Errorf("tm1638: text %q longer than %d digits", text, d.digits)
	}
	for i := 0; i < d.digits; i++ {
		var c segment.Segments
		if i < len(cells) {
			c = cells[i]
		}
		d.ram[2*i] = byte(c)
	}
	return d.flush()
}

// Clear blanks all digits. LEDs are left unchanged.
func (d *Dev) Clear() error {
	if d.halted {
		return errHalted
	}
	for i := 0; i < MaxDigits; i++ {
		d.ram[2*i] = 0
	}
	return d.flush()
}

// SetLEDs sets the 8 discrete LEDs; bit i lights LED i.
func (d *Dev) SetLEDs(mask byte) error {
	if d.halted {
		return errHalted
	}
	for i := 0; i < MaxDigits; i++ {
		d.ram[2*i+1] = (mask >> i) & 1
	}
	return d.flush()
}

// SetLED sets a single LED without rewriting the rest of the RAM.
func (d *Dev) SetLED(i int, on bool) error {
	if d.halted {
		return errHalted
	}
	if i < 0 || i >= MaxDigits {
		return fmt.Errorf("tm1638: LED %d out of range", i)
	}
	var v byte
	if on {
		v = 1
	}
	addr := byte(2*i + 1)
	d.ram[addr] = v
	if err := d.sendCommand(cmdWriteFixed); err != nil {
		return err
	}
	return d.transfer(cmdAddress|addr, v)
}

// Keys scans the keys. Bit i of the result is set while key S(i+1) is held.
func (d *Dev) Keys() (byte, error) {
	if d.halted {
		return 0, errHalted
	}
	keys, err := d.scanKeys()
	// Release the bus even after a failed scan.
	if err2 := d.stb.Out(gpio.High); err == nil {
		err = err2
	}
	if err2 := d.dio.Out(gpio.High); err == nil && err2 != nil {
		err = fmt.Errorf("tm1638: failed to switch DIO to output: %w", err2)
	}
	if err != nil {
		return 0, err
	}
	return keys, nil
}

func (d *Dev) scanKeys() (byte, error) {
	if err := d.stb.Out(gpio.Low); err != nil {
		return 0, err
	}
	if err := d.writeByte(cmdReadKeys); err != nil {
		return 0, err
	}
	if err := d.dio.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return 0, fmt.Errorf("tm1638: failed to switch DIO to input: %w", err)
	}

	var keys byte
	for i := 0; i < 4; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		// Byte i carries key i in bit 0 and key i+4 in bit 4.
		keys |= (b & 0x11) << i
	}
	return keys, nil
}

// Halt turns the display off.
// After calling Halt, the device will not respond to further commands.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	return d.sendCommand(cmdDisplay)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("tm1638.Dev{%d digits}", d.digits)
}

// control returns the display control command for the current brightness.
func (d *Dev) control() byte {
	return cmdDisplay | displayOn | d.brightness
}

// flush writes the whole RAM shadow in one auto-increment burst.
func (d *Dev) flush() error {
	if err := d.sendCommand(cmdWriteAuto); err != nil {
		return err
	}
	return d.transfer(cmdAddress, d.ram[:]...)
}

// sendCommand sends a single command byte in its own strobe frame.
func (d *Dev) sendCommand(cmd byte) error {
	return d.transfer(cmd)
}

// transfer sends cmd followed by data within one strobe frame.
func (d *Dev) transfer(cmd byte, data ...byte) error {
	if err := d.stb.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.writeByte(cmd); err != nil {
		return err
	}
	for _, b := range data {
		if err := d.writeByte(b); err != nil {
			return err
		}
	}
	return d.stb.Out(gpio.High)
}

// writeByte shifts b out LSB first.
func (d *Dev) writeByte(b byte) error {
	for i := 0; i < 8; i++ {
		if err := d.clk.Out(gpio.Low); err != nil {
			return err
		}
		if err := d.dio.Out(gpio.Level(b&1 != 0)); err != nil {
			return err
		}
		d.wait()
		if err := d.clk.Out(gpio.High); err != nil {
			return err
		}
		d.wait()
		b >>= 1
	}
	return nil
}

// readByte shifts a byte in LSB first. DIO must already be an input.
func (d *Dev) readByte() (byte, error) {
	var b byte
	for i := 0; i < 8; i++ {
		if err := d.clk.Out(gpio.Low); err != nil {
			return 0, err
		}
		d.wait()
		if d.dio.Read() == gpio.High {
			b |= 1 << i
		}
		if err := d.clk.Out(gpio.High); err != nil {
			return 0, err
		}
		d.wait()
	}
	return b, nil
}

func (d *Dev) wait() {
	if d.bitDelay > 0 {
		time.Sleep(d.bitDelay)
	}
}
