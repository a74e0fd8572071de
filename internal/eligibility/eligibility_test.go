package eligibility

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hippo-backend/internal/shared/apperr"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func yearsBefore(at time.Time, years float64) *time.Time {
	t := at.Add(-time.Duration(years * float64(yearLength)))
	return &t
}

func TestAgeAt(t *testing.T) {
	assert.Equal(t, 10, AgeAt(*yearsBefore(now, 10), now))
	assert.Equal(t, 13, AgeAt(now.Add(-14*yearLength+time.Second), now))
	assert.Equal(t, 14, AgeAt(now.Add(-14*yearLength), now))
	assert.Equal(t, 0, AgeAt(now, now))
}

func TestRequiresGuardianDocumentBoundary(t *testing.T) {
	exactly14 := now.Add(-14 * yearLength)
	justUnder := exactly14.Add(time.Second)

	assert.False(t, RequiresGuardianDocument(&exactly14, now), "age == 14 must not require guardian")
	assert.True(t, RequiresGuardianDocument(&justUnder, now), "age < 14 must require guardian")
	assert.True(t, RequiresGuardianDocument(yearsBefore(now, 10), now))
	assert.False(t, RequiresGuardianDocument(yearsBefore(now, 20), now))
}

func TestRequiresGuardianDocumentForAllAges(t *testing.T) {
	for age := 0; age <= 30; age++ {
		birth := yearsBefore(now, float64(age)+0.5)
		assert.Equalf(t, age < GuardianThresholdYears, RequiresGuardianDocument(birth, now), "age %d", age)
	}
}

func TestUnknownBirthdatePolicy(t *testing.T) {
	assert.False(t, RequiresGuardianDocument(nil, now))
	assert.False(t, Evaluator{UnknownAge: AssumeAdult}.RequiresGuardianDocument(&time.Time{}, now))
	assert.True(t, Evaluator{UnknownAge: AssumeMinor}.RequiresGuardianDocument(nil, now))
	assert.Equal(t, AssumeMinor, ParseUnknownAgePolicy("minor"))
	assert.Equal(t, AssumeAdult, ParseUnknownAgePolicy("anything"))
}

func TestEvaluateCompletenessMinorMissingParent(t *testing.T) {
	got := Evaluator{}.Evaluate(NewDocSet(DocPayment, DocCandidate), yearsBefore(now, 10), now)

	assert.Equal(t, []DocType{DocParent}, got.Missing)
	assert.False(t, got.Complete)
	assert.Equal(t, []DocType{DocPayment, DocCandidate, DocParent}, got.Required)
}

func TestEvaluateCompletenessAdult(t *testing.T) {
	got := EvaluateCompleteness(NewDocSet(DocCandidate, DocPayment), false)
	assert.Empty(t, got.Missing)
	assert.True(t, got.Complete)

	got = EvaluateCompleteness(nil, false)
	assert.Equal(t, []DocType{DocPayment, DocCandidate}, got.Missing)
}

func TestEvaluateCompletenessOrderIsFixed(t *testing.T) {
	got := EvaluateCompleteness(NewDocSet(), true)
	assert.Equal(t, []DocType{DocPayment, DocCandidate, DocParent}, got.Missing)
}

func TestEvaluateCompletenessIsMonotonic(t *testing.T) {
	subsets := [][]DocType{
		{},
		{DocPayment},
		{DocCandidate},
		{DocParent},
		{DocPayment, DocCandidate},
		{DocPayment, DocParent},
		{DocCandidate, DocParent},
	}
	for _, guardian := range []bool{false, true} {
		for _, base := range subsets {
			before := EvaluateCompleteness(NewDocSet(base...), guardian)
			for _, extra := range AllDocTypes {
				grown := NewDocSet(base...)
				grown.Add(extra)
				after := EvaluateCompleteness(grown, guardian)
				assert.LessOrEqualf(t, len(after.Missing), len(before.Missing),
					"guardian=%v base=%v extra=%s", guardian, base, extra)
				for _, m := range after.Missing {
					assert.Contains(t, before.Missing, m)
				}
			}
		}
	}
}

func TestParseDocType(t *testing.T) {
	for _, raw := range []string{"payment", "candidate_doc", " parent_doc "} {
		_, err := ParseDocType(raw)
		require.NoError(t, err, raw)
	}
	_, err := ParseDocType("passport")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
