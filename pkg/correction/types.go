// Package correction decides which duration to trust for a task when the
// schedule reader and an independent reference table disagree.
//
// The reader mis-reports durations for some unit encodings (elapsed hours
// versus days), producing values off by a roughly constant factor. Correct
// compares the raw value with an optional reference value and tags every
// result with the reason it was chosen.
package correction

import "fmt"

// Unit is the classified unit of a raw duration.
type Unit int

const (
	UnitUnknown Unit = iota
	UnitElapsedHours
	UnitDays
	UnitWeeks
	UnitMonths
	UnitOther
)

func (u Unit) String() string {
	switch u {
	case UnitElapsedHours:
		return "ElapsedHours"
	case UnitDays:
		return "Days"
	case UnitWeeks:
		return "Weeks"
	case UnitMonths:
		return "Months"
	case UnitOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Tag records which source was trusted for a corrected duration, and why.
type Tag int

const (
	RawAccepted Tag = iota
	RawAcceptedScaled24x
	ReferenceAcceptedDayUnitFix
	RawValidatedByReference
	ReferenceAcceptedSuspectFactor
	ReferenceAcceptedRawZero
)

// Tags lists every tag in declaration order.
var Tags = []Tag{
	RawAccepted,
	RawAcceptedScaled24x,
	ReferenceAcceptedDayUnitFix,
	RawValidatedByReference,
	ReferenceAcceptedSuspectFactor,
	ReferenceAcceptedRawZero,
}

func (t Tag) String() string {
	switch t {
	case RawAccepted:
		return "RawAccepted"
	case RawAcceptedScaled24x:
		return "RawAcceptedScaled24x"
	case ReferenceAcceptedDayUnitFix:
		return "ReferenceAcceptedDayUnitFix"
	case RawValidatedByReference:
		return "RawValidatedByReference"
	case ReferenceAcceptedSuspectFactor:
		return "ReferenceAcceptedSuspectFactor"
	case ReferenceAcceptedRawZero:
		return "ReferenceAcceptedRawZero"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// KeepsRaw reports whether the tag leaves the raw value and display
// string untouched.
func (t Tag) KeepsRaw() bool {
	return t == RawAccepted || t == RawValidatedByReference
}

// carriesFactor reports whether records with this tag hold a factor.
func (t Tag) carriesFactor() bool {
	switch t {
	case ReferenceAcceptedDayUnitFix, RawValidatedByReference, ReferenceAcceptedSuspectFactor:
		return true
	}
	return false
}

// RawDurationRecord is a duration as reported by the schedule reader.
type RawDurationRecord struct {
	TaskID  int
	Display string
	Unit    Unit
	// Hours is zero when the raw duration could not be converted.
	Hours float64
}

// ReferenceDurationRecord is a trusted duration from the reference table.
type ReferenceDurationRecord struct {
	TaskID int
	Hours  float64
	Name   string
}

// CorrectedDurationRecord is the outcome of a correction decision.
type CorrectedDurationRecord struct {
	TaskID   int
	RawHours float64
	Hours    float64
	Display  string
	Source   Tag

	// Factor is reference/raw and is only meaningful when HasFactor is set.
	Factor    float64
	HasFactor bool
}

// FactorLabel renders the factor for diagnostic display, e.g. "factor 3.4x".
func (r CorrectedDurationRecord) FactorLabel() string {
	if !r.HasFactor {
		return ""
	}
	return fmt.Sprintf("factor %.1fx", r.Factor)
}

// SourceLabel is the Duration_Source cell value. Suspect factors carry
// the factor so they can be reviewed without recomputing it.
func (r CorrectedDurationRecord) SourceLabel() string {
	if r.Source == ReferenceAcceptedSuspectFactor && r.HasFactor {
		return fmt.Sprintf("%s (%s)", r.Source, r.FactorLabel())
	}
	return r.Source.String()
}
