package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var esPrinter = message.NewPrinter(language.EuropeanSpanish)

// FormatEuro renders a monetary amount in the Spanish convention,
// e.g. 1.234,50 €.
func FormatEuro(amount float64) string {
	return esPrinter.Sprintf("%v €", number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}

// FormatPercent renders a percentage for document output, e.g. 21 %.
func FormatPercent(value float64) string {
	return esPrinter.Sprintf("%v %%", number.Decimal(value,
		number.MaxFractionDigits(2)))
}
