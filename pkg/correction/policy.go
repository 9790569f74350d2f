package correction

import (
	"fmt"
	"math"
)

// Policy holds the thresholds of the decision. The bands are disjoint
// regions over reference/raw; a factor in neither band is surfaced as
// suspect rather than silently resolved.
type Policy struct {
	// DayUnitMin..DayUnitMax brackets a day count mislabeled as hours.
	DayUnitMin float64
	DayUnitMax float64
	// AgreementMin..AgreementMax brackets raw and reference agreeing.
	AgreementMin float64
	AgreementMax float64
	// Without a reference, elapsed-hour values below ElapsedHoursMax are
	// taken as day counts and multiplied by ElapsedHoursScale.
	ElapsedHoursMax   float64
	ElapsedHoursScale float64
}

// DefaultPolicy returns the empirically calibrated thresholds.
func DefaultPolicy() Policy {
	return Policy{
		DayUnitMin:        20,
		DayUnitMax:        28,
		AgreementMin:      0.8,
		AgreementMax:      1.2,
		ElapsedHoursMax:   100,
		ElapsedHoursScale: 24,
	}
}

// Correct applies DefaultPolicy.
func Correct(raw RawDurationRecord, ref *ReferenceDurationRecord) CorrectedDurationRecord {
	return DefaultPolicy().Correct(raw, ref)
}

// Correct decides the trusted duration for one task. It never fails: a
// missing reference or an unparseable raw value selects a fallback tag.
func (p Policy) Correct(raw RawDurationRecord, ref *ReferenceDurationRecord) CorrectedDurationRecord {
	rawHours := sanitize(raw.Hours)
	out := CorrectedDurationRecord{
		TaskID:   raw.TaskID,
		RawHours: rawHours,
	}

	if ref == nil {
		if raw.Unit == UnitElapsedHours && rawHours < p.ElapsedHoursMax {
			return out.accept(rawHours*p.ElapsedHoursScale, RawAcceptedScaled24x, "")
		}
		return out.accept(rawHours, RawAccepted, raw.Display)
	}

	refHours := sanitize(ref.Hours)
	if rawHours == 0 {
		return out.accept(refHours, ReferenceAcceptedRawZero, "")
	}

	out.Factor = refHours / rawHours
	out.HasFactor = true

	switch {
	case out.Factor >= p.DayUnitMin && out.Factor <= p.DayUnitMax:
		return out.accept(refHours, ReferenceAcceptedDayUnitFix, "")
	case out.Factor >= p.AgreementMin && out.Factor <= p.AgreementMax:
		return out.accept(rawHours, RawValidatedByReference, raw.Display)
	default:
		return out.accept(refHours, ReferenceAcceptedSuspectFactor, "")
	}
}

// accept fills the decision. An empty display is rendered from hours
// unless the tag keeps the raw value.
func (r CorrectedDurationRecord) accept(hours float64, tag Tag, display string) CorrectedDurationRecord {
	r.Hours = hours
	r.Source = tag
	if tag.KeepsRaw() {
		r.Display = display
	} else {
		r.Display = FormatHours(hours)
	}
	if !tag.carriesFactor() {
		r.Factor, r.HasFactor = 0, false
	}
	return r
}

// FormatHours renders an accepted hour value, e.g. "960.0h".
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
