package eligibility

import (
	"strings"

	"hippo-backend/internal/shared/apperr"
)

// DocType tags an application file slot.
type DocType string

const (
	DocPayment   DocType = "payment"
	DocCandidate DocType = "candidate_doc"
	DocParent    DocType = "parent_doc"
)

// AllDocTypes in canonical order.
var AllDocTypes = []DocType{DocPayment, DocCandidate, DocParent}

// ParseDocType validates a client-supplied file type tag.
func ParseDocType(raw string) (DocType, error) {
	switch DocType(strings.TrimSpace(raw)) {
	case DocPayment:
		return DocPayment, nil
	case DocCandidate:
		return DocCandidate, nil
	case DocParent:
		return DocParent, nil
	}
	return "", apperr.Validation("bad fileType")
}

// DocSet is a set of uploaded document types.
type DocSet map[DocType]struct{}

// NewDocSet builds a set from the given types.
func NewDocSet(types ...DocType) DocSet {
	s := make(DocSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is in the set. A nil set is empty.
func (s DocSet) Has(t DocType) bool {
	_, ok := s[t]
	return ok
}

// Add inserts t.
func (s DocSet) Add(t DocType) {
	s[t] = struct{}{}
}

// Len returns the number of distinct types.
func (s DocSet) Len() int {
	return len(s)
}
