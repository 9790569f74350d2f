package correction

import (
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`^\s*([-+]?[0-9]*\.?[0-9]+)\s*([a-zA-Z%]+)\s*$`)

// unitSymbols maps MPXJ time unit symbols to their class.
var unitSymbols = map[string]Unit{
	"eh":  UnitElapsedHours,
	"d":   UnitDays,
	"ed":  UnitDays,
	"w":   UnitWeeks,
	"ew":  UnitWeeks,
	"mo":  UnitMonths,
	"emo": UnitMonths,
	"m":   UnitOther,
	"em":  UnitOther,
	"h":   UnitOther,
	"y":   UnitOther,
	"ey":  UnitOther,
	"%":   UnitOther,
	"e%":  UnitOther,
}

// ClassifyUnit maps a unit symbol to its Unit. Unrecognised symbols are
// UnitOther; an empty symbol is UnitUnknown.
func ClassifyUnit(symbol string) Unit {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return UnitUnknown
	}
	if u, ok := unitSymbols[symbol]; ok {
		return u
	}
	return UnitOther
}

// ParseRaw builds a RawDurationRecord from the reader's native duration.
// value and units may be absent, in which case they are recovered from
// display ("40.0eh"). hoursPerUnit converts a unit symbol to hours; units
// missing from it yield zero hours.
func ParseRaw(taskID int, display string, value *float64, units string, hoursPerUnit map[string]float64) RawDurationRecord {
	rec := RawDurationRecord{TaskID: taskID, Display: strings.TrimSpace(display)}

	symbol := strings.ToLower(strings.TrimSpace(units))
	var amount float64
	hasAmount := value != nil
	if hasAmount {
		amount = *value
	}

	if !hasAmount || symbol == "" {
		if m := durationPattern.FindStringSubmatch(rec.Display); m != nil {
			if !hasAmount {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					amount, hasAmount = v, true
				}
			}
			if symbol == "" {
				symbol = strings.ToLower(m[2])
			}
		}
	}

	rec.Unit = ClassifyUnit(symbol)
	if !hasAmount {
		rec.Unit = UnitUnknown
		return rec
	}
	if rec.Display == "" {
		rec.Display = formatAmount(amount) + symbol
	}

	if perUnit, ok := hoursPerUnit[symbol]; ok {
		rec.Hours = nonNegative(amount * perUnit)
	}
	return rec
}

// formatAmount prints a duration amount the way the reader does: integral
// values keep one decimal.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
