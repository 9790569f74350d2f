package report

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// cellText renders a cell the way it reads in a spreadsheet.
func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}

// columnWidths sizes each column to its longest cell plus two, capped
// at maxWidth.
func columnWidths(s Sheet, maxWidth int) []float64 {
	widths := make([]float64, len(s.Header))
	fit := func(i int, text string) {
		if i >= len(widths) {
			return
		}
		w := float64(utf8.RuneCountInString(text) + 2)
		if maxWidth > 0 && w > float64(maxWidth) {
			w = float64(maxWidth)
		}
		if w > widths[i] {
			widths[i] = w
		}
	}
	for i, h := range s.Header {
		fit(i, h)
	}
	for _, row := range s.Rows {
		for i, v := range row {
			fit(i, cellText(v))
		}
	}
	return widths
}
