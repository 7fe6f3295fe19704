// Package money formats monetary amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Defaults match the storefront's Argentine peso display.
const (
	DefaultSymbol = "$"
	DefaultLocale = "es-AR"

	maxFractionDigits = 3
)

// Formatter renders amounts as symbol + locale-grouped number with no
// minimum fraction digits.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter creates a Formatter. An unparsable locale falls back to
// DefaultLocale.
func NewFormatter(symbol, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// Default returns a Formatter for DefaultSymbol and DefaultLocale.
func Default() *Formatter {
	return NewFormatter(DefaultSymbol, DefaultLocale)
}

// Format renders amount, e.g. 12345.5 -> "$12.345,5" for es-AR.
func (f *Formatter) Format(amount decimal.Decimal) string {
	v := amount.Round(maxFractionDigits).InexactFloat64()
	return f.symbol + f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}
