package tm1638

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// fakeBus decodes the bit-banged frames the driver puts on the wire.
type fakeBus struct {
	stb, clk, dio *busPin

	stbLevel, clkLevel, dioLevel gpio.Level
	input                        bool

	inFrame bool
	cur     []byte
	acc     byte
	nbits   int
	frames  [][]byte

	keyBits []gpio.Level // Served to Read while DIO is an input
	failOut error        // Returned by every Out when set
}

type busPin struct {
	*gpiotest.Pin
	bus  *fakeBus
	role string
}

func newFakeBus() *fakeBus {
	b := &fakeBus{}
	b.stb = &busPin{Pin: &gpiotest.Pin{N: "STB", Num: 1}, bus: b, role: "stb"}
	b.clk = &busPin{Pin: &gpiotest.Pin{N: "CLK", Num: 2}, bus: b, role: "clk"}
	b.dio = &busPin{Pin: &gpiotest.Pin{N: "DIO", Num: 3}, bus: b, role: "dio"}
	return b
}

func (p *busPin) Out(l gpio.Level) error {
	if p.bus.failOut != nil {
		return p.bus.failOut
	}
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.bus.out(p.role, l)
	return nil
}

func (p *busPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if p.role == "dio" {
		p.bus.input = true
	}
	return p.Pin.In(pull, edge)
}

func (p *busPin) Read() gpio.Level {
	if p.role == "dio" && p.bus.input && len(p.bus.keyBits) > 0 {
		l := p.bus.keyBits[0]
		p.bus.keyBits = p.bus.keyBits[1:]
		return l
	}
	return p.Pin.Read()
}

func (b *fakeBus) out(role string, l gpio.Level) {
	switch role {
	case "stb":
		if b.stbLevel == gpio.High && l == gpio.Low {
			b.inFrame = true
			b.cur = nil
			b.acc, b.nbits = 0, 0
		}
		if b.stbLevel == gpio.Low && l == gpio.High && b.inFrame {
			b.frames = append(b.frames, b.cur)
			b.inFrame = false
		}
		b.stbLevel = l
	case "clk":
		if b.clkLevel == gpio.Low && l == gpio.High && b.inFrame && !b.input {
			if b.dioLevel == gpio.High {
				b.acc |= 1 << b.nbits
			}
			b.nbits++
			if b.nbits == 8 {
				b.cur = append(b.cur, b.acc)
				b.acc, b.nbits = 0, 0
			}
		}
		b.clkLevel = l
	case "dio":
		b.input = false
		b.dioLevel = l
	}
}

// queueKeyBytes queues bytes for the driver to read, LSB first.
func (b *fakeBus) queueKeyBytes(data ...byte) {
	for _, v := range data {
		for i := 0; i < 8; i++ {
			b.keyBits = append(b.keyBits, gpio.Level(v&(1<<i) != 0))
		}
	}
}

func (b *fakeBus) reset() {
	b.frames = nil
}

func newTestDev(t *testing.T, opts *Opts) (*Dev, *fakeBus) {
	t.Helper()
	bus := newFakeBus()
	dev, err := NewGPIO(bus.stb, bus.clk, bus.dio, opts)
	if err != nil {
		t.Fatalf("NewGPIO() error = %v", err)
	}
	return dev, bus
}

func ramFrame(cells ...byte) []byte {
	f := make([]byte, 1+ramSize)
	f[0] = cmdAddress
	copy(f[1:], cells)
	return f
}

func checkFrames(t *testing.T, got, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d frames %X, want %d frames %X", len(got), got, len(want), want)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("frame %d = % X, want % X", i, got[i], want[i])
		}
	}
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil options (uses defaults)", nil, false},
		{"valid 8 digits", &Opts{Digits: 8, Brightness: 4}, false},
		{"valid 4 digits", &Opts{Digits: 4, Brightness: 7}, false},
		{"valid 1 digit dimmest", &Opts{Digits: 1, Brightness: 0}, false},
		{"digits zero", &Opts{Digits: 0, Brightness: 4}, true},
		{"digits > 8", &Opts{Digits: 9, Brightness: 4}, true},
		{"brightness > 7", &Opts{Digits: 8, Brightness: 8}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newFakeBus()
			_, err := NewGPIO(bus.stb, bus.clk, bus.dio, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGPIO() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewGPIOMissingPin(t *testing.T) {
	bus := newFakeBus()
	if _, err := NewGPIO(bus.stb, nil, bus.dio, nil); err == nil {
		t.Error("NewGPIO should fail without a clock pin")
	}
}

func TestNewGPIOPinError(t *testing.T) {
	bus := newFakeBus()
	bus.failOut = errors.New("pin busy")
	_, err := NewGPIO(bus.stb, bus.clk, bus.dio, nil)
	if !errors.Is(err, bus.failOut) {
		t.Errorf("NewGPIO() error = %v, want wrapped %v", err, bus.failOut)
	}
}

func TestInitSequence(t *testing.T) {
	_, bus := newTestDev(t, nil)
	checkFrames(t, bus.frames, [][]byte{
		{cmdWriteAuto},
		ramFrame(),
		{0x8C}, // Display on, brightness 4
	})
}

func TestShowText(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	bus.reset()

	if err := dev.ShowText("HI"); err != nil {
		t.Fatalf("ShowText() error = %v", err)
	}
	checkFrames(t, bus.frames, [][]byte{
		{cmdWriteAuto},
		ramFrame(0x76, 0, 0x30),
	})
}

func TestShowTextFullWidth(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	bus.reset()

	if err := dev.ShowText("01234567"); err != nil {
		t.Fatalf("ShowText() error = %v", err)
	}
	want := ramFrame(0x3F, 0, 0x06, 0, 0x5B, 0, 0x4F, 0, 0x66, 0, 0x6D, 0, 0x7D, 0, 0x07)
	checkFrames(t, bus.frames, [][]byte{{cmdWriteAuto}, want})
}

func TestShowTextTooLong(t *testing.T) {
	dev, _ := newTestDev(t, &Opts{Digits: 4, Brightness: 4})
	if err := dev.ShowText("HELLO"); err == nil {
		t.Error("ShowText should fail when text is longer than the display")
	}
	if err := dev.ShowText("HELL"); err != nil {
		t.Errorf("ShowText(4 runes) error = %v", err)
	}
}

func TestClearKeepsLEDs(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	if err := dev.SetLEDs(0x81); err != nil {
		t.Fatalf("SetLEDs() error = %v", err)
	}
	if err := dev.ShowText("88"); err != nil {
		t.Fatalf("ShowText() error = %v", err)
	}
	bus.reset()

	if err := dev.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	want := ramFrame(0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1)
	checkFrames(t, bus.frames, [][]byte{{cmdWriteAuto}, want})
}

func TestSetLED(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	bus.reset()

	if err := dev.SetLED(2, true); err != nil {
		t.Fatalf("SetLED() error = %v", err)
	}
	checkFrames(t, bus.frames, [][]byte{
		{cmdWriteFixed},
		{cmdAddress | 5, 1},
	})
	if err := dev.SetLED(8, true); err == nil {
		t.Error("SetLED(8) should fail")
	}
}

func TestSetBrightness(t *testing.T) {
	tests := []struct {
		level   byte
		want    byte
		wantErr bool
	}{
		{0, 0x88, false},
		{7, 0x8F, false},
		{8, 0, true},
	}

	for _, tt := range tests {
		dev, bus := newTestDev(t, nil)
		bus.reset()
		err := dev.SetBrightness(tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetBrightness(%d) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if len(bus.frames) != 0 {
				t.Errorf("SetBrightness(%d) sent %d frames", tt.level, len(bus.frames))
			}
			continue
		}
		checkFrames(t, bus.frames, [][]byte{{tt.want}})
		if dev.Brightness() != tt.level {
			t.Errorf("Brightness() = %d, want %d", dev.Brightness(), tt.level)
		}
	}
}

func TestKeys(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	bus.reset()
	bus.queueKeyBytes(0x01, 0x10, 0x00, 0x00)

	keys, err := dev.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if keys != 0x21 {
		t.Errorf("Keys() = 0x%02X, want 0x21", keys)
	}
	checkFrames(t, bus.frames, [][]byte{{cmdReadKeys}})
	if bus.input {
		t.Error("DIO left as input after Keys()")
	}
}

func TestDevHalt(t *testing.T) {
	dev, bus := newTestDev(t, nil)
	bus.reset()

	if err := dev.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	checkFrames(t, bus.frames, [][]byte{{cmdDisplay}})

	if err := dev.ShowText("A"); err == nil {
		t.Error("ShowText should fail when halted")
	}
	if err := dev.Clear(); err == nil {
		t.Error("Clear should fail when halted")
	}
	if err := dev.SetBrightness(1); err == nil {
		t.Error("SetBrightness should fail when halted")
	}
	if err := dev.SetLEDs(0xFF); err == nil {
		t.Error("SetLEDs should fail when halted")
	}
	if _, err := dev.Keys(); err == nil {
		t.Error("Keys should fail when halted")
	}
	if err := dev.Init(); err == nil {
		t.Error("Init should fail when halted")
	}
	if err := dev.Halt(); err != nil {
		t.Errorf("second Halt() error = %v", err)
	}
}

func TestDevString(t *testing.T) {
	dev := &Dev{digits: 8}
	want := "tm1638.Dev{8 digits}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
