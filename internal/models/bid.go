package models

import "time"

type Bid struct {
	Id         string  `json:"id"`
	RfqId      string  `json:"rfqId"`
	SupplierId string  `json:"supplierId"`
	// SupplierName is joined from the users table for listings and
	// bid ranking; it is not stored on the bid itself.
	SupplierName   string    `json:"supplierName,omitempty"`
	Price          float64   `json:"price"`
	LeadTime       string    `json:"leadTime"`
	DeliveryWindow string    `json:"deliveryWindow,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Selected       bool      `json:"selected"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Recommendation is the ranking model's verdict over the bids of one
// RFQ. It is returned to the requesting contractor and never persisted.
type Recommendation struct {
	RecommendedBidId string   `json:"recommendedBidId"`
	Reasoning        []string `json:"reasoning"`
	RiskNote         string   `json:"riskNote,omitempty"`
}
