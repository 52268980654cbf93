package catalog

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	msgcat "golang.org/x/text/message/catalog"
)

const exhibitsKey = "%d exhibits"

var exhibitsPrinter = newExhibitsPrinter()

func newExhibitsPrinter() *message.Printer {
	b := msgcat.NewBuilder(msgcat.Fallback(language.Russian))
	if err := b.Set(language.Russian, exhibitsKey, plural.Selectf(1, "%d",
		plural.One, "%d экспонат",
		plural.Few, "%d экспоната",
		plural.Many, "%d экспонатов",
		plural.Other, "%d экспоната",
	)); err != nil {
		panic(err)
	}
	return message.NewPrinter(language.Russian, message.Catalog(b))
}

// ExhibitsLabel renders an exhibit count with the Russian plural form:
// "1 экспонат", "3 экспоната", "5 экспонатов".
func ExhibitsLabel(n int) string {
	return exhibitsPrinter.Sprintf(exhibitsKey, n)
}
