package dialog

import (
	"strconv"
	"strings"
	"time"
)

// parseAmount reads a revenue or temperature figure. Operators type the
// fractional separator as ".", "," or "-" depending on keyboard layout, so
// all three are accepted.
func parseAmount(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "-", ".")
	text = strings.ReplaceAll(text, ",", ".")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// validReportDate checks the short day.month form operators enter by hand.
func validReportDate(date string) bool {
	_, err := time.Parse("02.01", date)
	return err == nil
}
