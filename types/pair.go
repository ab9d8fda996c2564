package types

import (
	"errors"
	"fmt"
	"strings"
)

// Pair is a trading pair. Base is the traded token, Quote the token prices
// are expressed in.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// ParsePair parses the "BASE/QUOTE" form produced by String.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Pair{}, fmt.Errorf("invalid pair %q: expected BASE/QUOTE", s)
	}
	p := Pair{Base: strings.TrimSpace(parts[0]), Quote: strings.TrimSpace(parts[1])}
	return p, p.ValidateBasic()
}

func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// ValidateBasic performs stateless validation of the pair.
func (p Pair) ValidateBasic() error {
	if p.Base == "" || p.Quote == "" {
		return errors.New("pair tokens must not be empty")
	}
	if p.Base == p.Quote {
		return fmt.Errorf("pair %s trades a token against itself", p)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Pair) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pair) UnmarshalText(text []byte) error {
	pp, err := ParsePair(string(text))
	if err != nil {
		return err
	}
	*p = pp
	return nil
}
