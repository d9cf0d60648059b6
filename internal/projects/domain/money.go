package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a dollar amount with locale grouping, e.g. $1,234,567.89.
func FormatCurrency(n float64) string {
	return usPrinter.Sprintf("$%.2f", n)
}
