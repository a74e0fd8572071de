// Package eligibility decides which documents an application needs and
// whether the uploaded set covers them. Everything here is pure.
package eligibility

import (
	"math"
	"time"
)

// GuardianThresholdYears is the age below which a guardian document is required.
const GuardianThresholdYears = 14

const yearLength = time.Duration(365.25 * 24 * float64(time.Hour))

// UnknownAgePolicy decides the guardian requirement when no birthdate is known.
type UnknownAgePolicy int

const (
	// AssumeAdult treats an unknown birthdate as not requiring a guardian document.
	AssumeAdult UnknownAgePolicy = iota
	// AssumeMinor treats an unknown birthdate as requiring one.
	AssumeMinor
)

// ParseUnknownAgePolicy maps the config value ("adult" or "minor").
func ParseUnknownAgePolicy(raw string) UnknownAgePolicy {
	if raw == "minor" {
		return AssumeMinor
	}
	return AssumeAdult
}

// AgeAt returns the full years between birthdate and at, counting a year as 365.25 days.
func AgeAt(birthdate, at time.Time) int {
	elapsed := at.Sub(birthdate)
	return int(math.Floor(float64(elapsed) / float64(yearLength)))
}

// Evaluator applies the guardian rule with a configured unknown-age policy.
type Evaluator struct {
	UnknownAge UnknownAgePolicy
}

// RequiresGuardianDocument reports whether a candidate born on birthdate is
// under the guardian threshold at the instant at.
func (e Evaluator) RequiresGuardianDocument(birthdate *time.Time, at time.Time) bool {
	if birthdate == nil || birthdate.IsZero() {
		return e.UnknownAge == AssumeMinor
	}
	return AgeAt(*birthdate, at) < GuardianThresholdYears
}

// Evaluate combines the guardian rule with the uploaded set.
func (e Evaluator) Evaluate(uploaded DocSet, birthdate *time.Time, at time.Time) Completeness {
	return EvaluateCompleteness(uploaded, e.RequiresGuardianDocument(birthdate, at))
}

// RequiresGuardianDocument applies the default (assume adult) policy.
func RequiresGuardianDocument(birthdate *time.Time, at time.Time) bool {
	return Evaluator{}.RequiresGuardianDocument(birthdate, at)
}

// Completeness is the upload-side view of an application. It says nothing about
// whether an administrator has verified the files.
type Completeness struct {
	Required []DocType `json:"required"`
	Missing  []DocType `json:"missing"`
	Complete bool      `json:"complete"`
}

// RequiredDocs lists the documents an application needs, in canonical order.
func RequiredDocs(requiresGuardian bool) []DocType {
	if requiresGuardian {
		return []DocType{DocPayment, DocCandidate, DocParent}
	}
	return []DocType{DocPayment, DocCandidate}
}

// EvaluateCompleteness returns the required documents not present in uploaded.
func EvaluateCompleteness(uploaded DocSet, requiresGuardian bool) Completeness {
	required := RequiredDocs(requiresGuardian)
	missing := make([]DocType, 0, len(required))
	for _, doc := range required {
		if !uploaded.Has(doc) {
			missing = append(missing, doc)
		}
	}
	return Completeness{Required: required, Missing: missing, Complete: len(missing) == 0}
}
