package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRelations renders predecessor links as "{id}{type}{lag}" tokens
// joined by "; ". A missing predecessor renders as "Unknown", a missing
// type as FS, and a zero lag is omitted.
func FormatRelations(relations []Relation) string {
	if len(relations) == 0 {
		return ""
	}

	tokens := make([]string, 0, len(relations))
	for _, r := range relations {
		var b strings.Builder

		if r.PredecessorID != nil {
			b.WriteString(strconv.Itoa(*r.PredecessorID))
		} else {
			b.WriteString("Unknown")
		}

		typ := r.Type
		if typ == "" {
			typ = FinishToStart
		}
		b.WriteString(string(typ))

		if r.Lag != 0 {
			unit := r.LagUnit
			if unit == "" {
				unit = "d"
			}
			// Lag values are truncated toward zero.
			lag := int64(r.Lag)
			if r.Lag > 0 {
				fmt.Fprintf(&b, "+%d%s", lag, unit)
			} else {
				fmt.Fprintf(&b, "%d%s", lag, unit)
			}
		}
		tokens = append(tokens, b.String())
	}
	return strings.Join(tokens, "; ")
}
