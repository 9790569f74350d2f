package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultHours = map[string]float64{"eh": 1, "d": 24, "ed": 24}

func f(v float64) *float64 { return &v }

func TestParseRaw(t *testing.T) {
	tests := []struct {
		name        string
		display     string
		value       *float64
		units       string
		wantUnit    Unit
		wantHours   float64
		wantDisplay string
	}{
		{"elapsed hours", "40.0eh", f(40), "eh", UnitElapsedHours, 40, "40.0eh"},
		{"days", "32.0d", f(32), "d", UnitDays, 768, "32.0d"},
		{"elapsed days", "2.0ed", f(2), "ed", UnitDays, 48, "2.0ed"},
		{"weeks are not converted", "3.0w", f(3), "w", UnitWeeks, 0, "3.0w"},
		{"months", "1.0mo", f(1), "mo", UnitMonths, 0, "1.0mo"},
		{"working hours are other", "8.0h", f(8), "h", UnitOther, 0, "8.0h"},
		{"recovered from display", "12.5eh", nil, "", UnitElapsedHours, 12.5, "12.5eh"},
		{"units recovered from display", "4d", f(4), "", UnitDays, 96, "4d"},
		{"display rendered from value", "", f(5), "d", UnitDays, 120, "5.0d"},
		{"fractional value display", "", f(2.25), "eh", UnitElapsedHours, 2.25, "2.25eh"},
		{"no duration", "", nil, "", UnitUnknown, 0, ""},
		{"garbage display", "n/a", nil, "", UnitUnknown, 0, "n/a"},
		{"negative clamps to zero", "-3.0d", f(-3), "d", UnitDays, 0, "-3.0d"},
		{"unknown symbol", "7.0qq", f(7), "qq", UnitOther, 0, "7.0qq"},
		{"case insensitive", "1.0EH", f(1), "EH", UnitElapsedHours, 1, "1.0EH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRaw(7, tt.display, tt.value, tt.units, defaultHours)

			assert.Equal(t, 7, got.TaskID)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.InDelta(t, tt.wantHours, got.Hours, 1e-9)
			assert.Equal(t, tt.wantDisplay, got.Display)
		})
	}
}

func TestClassifyUnit(t *testing.T) {
	assert.Equal(t, UnitUnknown, ClassifyUnit(""))
	assert.Equal(t, UnitElapsedHours, ClassifyUnit(" eh "))
	assert.Equal(t, UnitMonths, ClassifyUnit("emo"))
	assert.Equal(t, UnitOther, ClassifyUnit("fortnights"))
}
