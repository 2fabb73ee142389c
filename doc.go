// Package tm1638 controls a TM1638 LED driver via three GPIO lines.
//
// The TM1638 drives up to 8 seven-segment digits and 8 discrete LEDs, and
// scans up to 8 keys. It is found on the common "LED&KEY" boards. The serial
// interface is not SPI: it is a strobe, a clock and a single bidirectional
// data line, so this driver bit-bangs it over periph.io GPIO pins.
//
// # Display Characteristics
//
// - 8 digits of seven segments plus decimal point
// - 8 brightness levels (0-7)
// - 8 discrete LEDs, one per digit
// - 8 keys, read with Keys
//
// # Hardware Connection
//
//	Board Pin → System Pin
//	GND       → GND
//	VCC       → 3.3V (or 5V with level shifting on DIO)
//	STB       → GPIO (any available pin)
//	CLK       → GPIO (any available pin)
//	DIO       → GPIO (any available pin, must support input for Keys)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/devices/v3/tm1638"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		dev, _ := tm1638.NewGPIO(
//			gpioreg.ByName("GPIO17"), // STB
//			gpioreg.ByName("GPIO27"), // CLK
//			gpioreg.ByName("GPIO22"), // DIO
//			nil,                      // 8 digits, brightness 4
//		)
//		defer dev.Halt()
//
//		dev.ShowText("HELLO")
//	}
//
// # Wire Protocol
//
// Every command is framed by STB low. Bytes are sent LSB first: DIO is set
// while CLK is low and latched by the controller on the CLK rising edge.
//
//	0x40            Write display RAM, auto-increment address
//	0x44            Write display RAM, fixed address
//	0x42            Read 4 bytes of key scan data
//	0xC0 | addr     Set RAM address (0x00-0x0F), followed by data bytes
//	0x80 | 0x08 | b Display on at brightness b (0x80 alone turns it off)
//
// Display RAM has 16 bytes. Even addresses hold the segments of digit
// addr/2, odd addresses hold the LED of digit addr/2 in bit 0.
//
// Text updates rewrite the whole RAM in a single auto-increment burst from a
// shadow copy, so LEDs keep their state across ShowText and Clear.
//
// # Scrolling Text
//
// Messages longer than the display are scrolled by the scroll package, which
// accepts a *Dev as its Display:
//
//	engine, _ := scroll.New(dev, scroll.Sleeper{}, console, nil)
//	engine.Run("Hola mundo desde TM1638    ", 100*time.Millisecond)
//
// # Datasheet
//
// https://www.titanmec.com/doc/product/TM1638.pdf
package tm1638
