package export

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var arPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatARS renders an amount using the Argentine peso convention
// ("$ 1.234,56"). Formatting happens at export time only; aggregates carry
// raw numbers.
func FormatARS(v float64) string {
	return arPrinter.Sprintf("$ %v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
