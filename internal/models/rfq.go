package models

import "time"

type RFQStatus string

const (
	RFQDraft    RFQStatus = "draft"
	RFQSent     RFQStatus = "sent"
	RFQSelected RFQStatus = "selected"
)

func ValidRFQStatus(s RFQStatus) bool {
	switch s {
	case RFQDraft, RFQSent, RFQSelected:
		return true
	default:
		return false
	}
}

type LineItem struct {
	Name     string     `json:"name"`
	Quantity FlexString `json:"quantity"`
	Unit     string     `json:"unit"`
}

type Delivery struct {
	City string `json:"city"`
	Zip  string `json:"zip"`
}

// StructuredRFQ is the fixed schema the structuring model fills in
// from a contractor's free text.
type StructuredRFQ struct {
	Category            string     `json:"category"`
	Items               []LineItem `json:"items"`
	Delivery            Delivery   `json:"delivery"`
	NeededBy            string     `json:"neededBy"`
	ClarifyingQuestions []string   `json:"clarifyingQuestions"`
}

// Normalize lower-cases and trims the fields the matching engine
// compares on, so stored values are exact-match safe.
func (s *StructuredRFQ) Normalize() {
	s.Category = NormalizeTerm(s.Category)
	s.Delivery.City = NormalizeTerm(s.Delivery.City)
}

type RFQ struct {
	Id                 string        `json:"id"`
	ContractorId       string        `json:"contractorId"`
	Status             RFQStatus     `json:"status"`
	RawText            string        `json:"rawText"`
	Structured         StructuredRFQ `json:"structuredData"`
	MatchedSupplierIds []string      `json:"matchingSupplierIds"`
	SelectedBidId      string        `json:"selectedBidId,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}
