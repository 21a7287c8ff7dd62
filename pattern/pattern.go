// Package pattern compiles hex-with-wildcard signature strings and scans
// byte buffers for them.
package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Wildcard marks a slot that matches any byte.
const Wildcard = -1

// Pattern is an ordered sequence of slots, each either a byte value 0..255
// or Wildcard.
type Pattern struct {
	data []int
}

// Parse compiles a signature string of whitespace-separated tokens.
// Each token is either "?" / "??" for a wildcard or two hex digits.
// Malformed tokens and empty signatures are rejected.
func Parse(src string) (Pattern, error) {
	p := Pattern{}

	for _, tok := range strings.Fields(src) {
		if tok == "?" || tok == "??" {
			p.data = append(p.data, Wildcard)
			continue
		}

		if len(tok) != 2 {
			return Pattern{}, fmt.Errorf("invalid pattern token %q", tok)
		}

		x, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid pattern token %q", tok)
		}

		p.data = append(p.data, int(x))
	}

	if len(p.data) == 0 {
		return Pattern{}, fmt.Errorf("empty pattern")
	}

	return p, nil
}

// MustParse is Parse for compile-time constant signatures.
func MustParse(src string) Pattern {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) Length() int {
	return len(p.data)
}

// String renders the canonical form, "48 8B ?? ...". Parse(p.String())
// compiles back to p.
func (p Pattern) String() string {
	s := ""
	for _, c := range p.data {
		if c == Wildcard {
			s += "?? "
		} else {
			s += fmt.Sprintf("%02X ", c)
		}
	}
	return strings.TrimSpace(s)
}

// Find returns the index of the first match of p in buffer, or -1.
// The scan bound uses the compiled length, so matches at the last
// eligible offset are found.
func (p Pattern) Find(buffer []byte) int {
	if len(p.data) == 0 || len(p.data) > len(buffer) {
		return -1
	}

	for i := 0; i <= len(buffer)-len(p.data); i++ {
		if p.data[0] != Wildcard && int(buffer[i]) != p.data[0] {
			continue
		}

		found := true
		for j := 1; j < len(p.data); j++ {
			if p.data[j] != Wildcard && int(buffer[i+j]) != p.data[j] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}

	return -1
}

// Bytes returns the slot sequence with Wildcard entries for wildcards.
func (p Pattern) Bytes() []int {
	out := make([]int, len(p.data))
	copy(out, p.data)
	return out
}
