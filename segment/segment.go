// Package segment provides the seven-segment font used by the TM1638 driver.
package segment

// Segments is the bit pattern of one seven-segment cell.
type Segments uint8

// Individual segments.
const (
	A Segments = 1 << iota
	B
	C
	D
	E
	F
	G
	DP
)

// Blank is an unlit cell.
const Blank Segments = 0

// font is indexed by ASCII code. Entries left out are blank.
var font = [128]Segments{
	' ':  Blank,
	'"':  F | B,
	'\'': B,
	'(':  A | D | E | F,
	')':  A | B | C | D,
	'-':  G,
	'.':  DP,
	'=':  D | G,
	'?':  A | B | E | G,
	'[':  A | D | E | F,
	']':  A | B | C | D,
	'_':  D,

	'0': A | B | C | D | E | F,
	'1': B | C,
	'2': A | B | D | E | G,
	'3': A | B | C | D | G,
	'4': B | C | F | G,
	'5': A | C | D | F | G,
	'6': A | C | D | E | F | G,
	'7': A | B | C,
	'8': A | B | C | D | E | F | G,
	'9': A | B | C | D | F | G,

	'A': A | B | C | E | F | G,
	'B': C | D | E | F | G,
	'C': A | D | E | F,
	'D': B | C | D | E | G,
	'E': A | D | E | F | G,
	'F': A | E | F | G,
	'G': A | C | D | E | F,
	'H': B | C | E | F | G,
	'I': E | F,
	'J': B | C | D | E,
	'K': A | C | E | F | G,
	'L': D | E | F,
	'M': A | C | E,
	'N': A | B | C | E | F,
	'O': A | B | C | D | E | F,
	'P': A | B | E | F | G,
	'Q': A | B | C | F | G,
	'R': A | B | E | F,
	'S': A | C | D | F | G,
	'T': D | E | F | G,
	'U': B | C | D | E | F,
	'V': B | C | D | E | F,
	'W': B | D | F,
	'X': B | C | E | F | G,
	'Y': B | C | D | F | G,
	'Z': A | B | D | E | G,

	'a': A | B | C | D | E | G,
	'b': C | D | E | F | G,
	'c': D | E | G,
	'd': B | C | D | E | G,
	'e': A | B | D | E | F | G,
	'f': A | E | F | G,
	'g': A | B | C | D | F | G,
	'h': C | E | F | G,
	'i': E,
	'j': C | D,
	'k': A | C | E | F | G,
	'l': E | F,
	'm': C | E,
	'n': C | E | G,
	'o': C | D | E | G,
	'p': A | B | E | F | G,
	'q': A | B | C | F | G,
	'r': E | G,
	's': A | C | D | F | G,
	't': D | E | F | G,
	'u': C | D | E,
	'v': C | D | E,
	'w': C | E,
	'x': B | C | E | F | G,
	'y': B | C | D | F | G,
	'z': A | B | D | E | G,
}

// Encode returns the cell pattern for r. Runes outside the font are blank.
func Encode(r rune) Segments {
	if r < 0 || int(r) >= len(font) {
		return Blank
	}
	return font[r]
}

// EncodeString appends one cell per rune of s to dst and returns the extended
// slice.
func EncodeString(dst []Segments, s string) []Segments {
	for _, r := range s {
		dst = append(dst, Encode(r))
	}
	return dst
}

// String returns the segment letters that are lit, e.g. "bc" for '1'.
func (s Segments) String() string {
	if s == Blank {
		return "blank"
	}
	const names = "abcdefg."
	out := make([]byte, 0, len(names))
	for i := 0; i < len(names); i++ {
		if s&(1<<i) != 0 {
			out = append(out, names[i])
		}
	}
	return string(out)
}
