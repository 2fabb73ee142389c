// Package segment provides the seven-segment font used by the TM1638 driver.
//
// Each digit of a TM1638 board is a common-cathode seven-segment cell with a
// decimal point. One byte of display RAM drives one cell:
//
//	    a
//	   ---
//	f |   | b
//	   -g-
//	e |   | c
//	   ---  . dp
//	    d
//
//	Bit:   7  6  5  4  3  2  1  0
//	Seg:  dp  g  f  e  d  c  b  a
//
// Letters are approximations; some pairs share a glyph (for example 'U' and
// 'V', 'H' and 'X'). Runes without a glyph render as a blank cell.
//
// Example usage:
//
//	var buf [8]segment.Segments
//	cells := segment.EncodeString(buf[:0], "HELLO")
//	// cells[0] == segment.Encode('H') == 0x76
package segment
