// Package matching decides which suppliers are eligible recipients of
// a sent RFQ. The engine is pure: it never touches supplier or RFQ
// state and can be replaced by an indexed implementation behind the
// same interface.
package matching

import (
	"bid2/internal/models"
)

// Policy controls how a supplier with no declared service area is
// treated. The two historical call sites disagreed on this; keeping it
// as a single flag avoids a third divergent copy.
type Policy struct {
	// EmptyAreaMeansGlobal treats an empty or missing service-area set
	// as "serves every city".
	EmptyAreaMeansGlobal bool
}

var (
	Lenient = Policy{EmptyAreaMeansGlobal: true}
	Strict  = Policy{EmptyAreaMeansGlobal: false}
)

type Matcher interface {
	Match(category, city string, suppliers []models.User) []string
}

// LinearMatcher scans supplier profiles one by one. Linear is fine at
// current scale; an index keyed by category/city would implement the
// same Matcher contract.
type LinearMatcher struct {
	policy Policy
}

func NewLinearMatcher(policy Policy) *LinearMatcher {
	return &LinearMatcher{policy: policy}
}

// Match returns the ids of suppliers whose category set contains the
// requested category and whose service area covers the requested city.
// Both sides of every comparison are trimmed and lower-cased. An empty
// result means the send must be aborted, never a broadcast to no one.
func (m *LinearMatcher) Match(category, city string, suppliers []models.User) []string {
	category = models.NormalizeTerm(category)
	city = models.NormalizeTerm(city)

	var matched []string
	for _, s := range suppliers {
		if s.Role != models.RoleSupplier {
			continue
		}
		if !containsTerm(s.Categories, category) {
			continue
		}

		if len(s.ServiceArea) == 0 {
			if m.policy.EmptyAreaMeansGlobal {
				matched = append(matched, s.Id)
			}
			continue
		}

		if containsTerm(s.ServiceArea, city) {
			matched = append(matched, s.Id)
		}
	}

	return matched
}

func containsTerm(set []string, term string) bool {
	for _, v := range set {
		if models.NormalizeTerm(v) == term {
			return true
		}
	}
	return false
}
