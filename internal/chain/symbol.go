package chain

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/gexcalc/internal/gex"
)

var ErrInvalidSymbol = errors.New("invalid option symbol")

// strikeScale converts the OCC strike field (thousandths) to price units.
var strikeScale = decimal.NewFromInt(1000)

// Symbol is a decoded OCC-style option symbol such as SPXW240119C04700000.
type Symbol struct {
	Root       string
	Expiration time.Time
	Type       gex.OptionType
	Strike     decimal.Decimal
}

// StrikeFloat returns the strike as a float64 for the pricer.
func (s Symbol) StrikeFloat() float64 {
	return s.Strike.InexactFloat64()
}

// ParseSymbol splits root, yymmdd expiration, C/P flag and strike.
func ParseSymbol(raw string) (Symbol, error) {
	i := 0
	for i < len(raw) && !unicode.IsDigit(rune(raw[i])) {
		i++
	}
	root, rest := raw[:i], raw[i:]
	if root == "" {
		return Symbol{}, fmt.Errorf("%w: %q has no root", ErrInvalidSymbol, raw)
	}
	// yymmdd + flag + at least one strike digit
	if len(rest) < 8 {
		return Symbol{}, fmt.Errorf("%w: %q is too short", ErrInvalidSymbol, raw)
	}

	exp, err := time.Parse("060102", rest[:6])
	if err != nil {
		return Symbol{}, fmt.Errorf("%w: %q has bad expiration: %v", ErrInvalidSymbol, raw, err)
	}

	var typ gex.OptionType
	switch rest[6] {
	case 'C':
		typ = gex.Call
	case 'P':
		typ = gex.Put
	default:
		return Symbol{}, fmt.Errorf("%w: %q has bad type flag %q", ErrInvalidSymbol, raw, rest[6])
	}

	digits := rest[7:]
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return Symbol{}, fmt.Errorf("%w: %q has bad strike", ErrInvalidSymbol, raw)
		}
	}
	strike, err := decimal.NewFromString(digits)
	if err != nil {
		return Symbol{}, fmt.Errorf("%w: %q: %v", ErrInvalidSymbol, raw, err)
	}

	return Symbol{
		Root:       root,
		Expiration: exp,
		Type:       typ,
		Strike:     strike.Div(strikeScale),
	}, nil
}
