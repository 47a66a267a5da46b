package reports

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"coviddash/internal/dates"
	"coviddash/internal/models"
)

// UnknownCount is shown for counts missing from their timeline.
const UnknownCount = "-"

var printer = message.NewPrinter(language.English)

// FormatCount renders a count with thousands separators: 1234567 -> "1,234,567".
func FormatCount(c models.Count) string {
	if !c.Known {
		return UnknownCount
	}
	return printer.Sprintf("%d", c.Value)
}

// FormatLatest renders the latest date as day/month/year, or UnknownCount
// when there is none yet.
func FormatLatest(raw string, ok bool) string {
	if !ok {
		return UnknownCount
	}
	return dates.Display(raw)
}
