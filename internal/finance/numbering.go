package finance

import "fmt"

// Document numbers follow "{series}-{year}-{correlative}" with the
// correlative zero-padded to four digits, e.g. RHB-2024-0007. The string is
// printed on issued legal documents and must stay stable.

const correlativeDigits = 4

// FormatNumber renders a document number for a series, year and correlative.
func FormatNumber(series string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%0*d", series, year, correlativeDigits, seq)
}
