package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bid2/internal/models"
)

// Session gateway headers carrying the authenticated caller identity.
const (
	HeaderUserId    = "X-User-Id"
	HeaderUserRole  = "X-User-Role"
	HeaderOnboarded = "X-Supplier-Onboarded"
)

func ParseActor(r *http.Request) (models.Actor, error) {
	actor := models.Actor{
		UserId:    strings.TrimSpace(r.Header.Get(HeaderUserId)),
		Role:      models.Role(r.Header.Get(HeaderUserRole)),
		Onboarded: r.Header.Get(HeaderOnboarded) == "true",
	}

	if actor.UserId == "" {
		return actor, fmt.Errorf("missing %s header", HeaderUserId)
	}
	if !models.ValidRole(actor.Role) {
		return actor, fmt.Errorf("invalid role supplied: %s, should be one of: %s, %s",
			string(actor.Role), models.RoleContractor, models.RoleSupplier)
	}

	return actor, nil
}

// Structure request

type StructureReq struct {
	RawText string `json:"rawText"`
}

func ParseStructureReq(data []byte) (*StructureReq, error) {
	t := &StructureReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(t.RawText) == "" {
		return nil, fmt.Errorf("field 'rawText' is required")
	}
	if err = checkLengthLimit(t.RawText, "rawText", 5000); err != nil {
		return nil, err
	}

	return t, nil
}

// New RFQ request

type NewRFQReq struct {
	RawText        string               `json:"rawText"`
	StructuredData models.StructuredRFQ `json:"structuredData"`
}

func ParseNewRFQReq(data []byte) (*NewRFQReq, error) {
	t := &NewRFQReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(t.RawText) == "" {
		return nil, fmt.Errorf("field 'rawText' is required")
	}
	if err = checkLengthLimit(t.RawText, "rawText", 5000); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.StructuredData.Category, "structuredData.category", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.StructuredData.Delivery.City, "structuredData.delivery.city", 100); err != nil {
		return nil, err
	}

	return t, nil
}

// New bid request

type NewBidReq struct {
	Price          *float64 `json:"price"`
	LeadTime       string   `json:"leadTime"`
	DeliveryWindow string   `json:"deliveryWindow"`
	Notes          string   `json:"notes"`
}

func ParseNewBidReq(data []byte) (*NewBidReq, error) {
	t := &NewBidReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if t.Price == nil {
		return nil, fmt.Errorf("field 'price' is required")
	}
	if *t.Price < 0 {
		return nil, fmt.Errorf("field 'price' must be non-negative")
	}
	if strings.TrimSpace(t.LeadTime) == "" {
		return nil, fmt.Errorf("field 'leadTime' is required")
	}
	if err = checkLengthLimit(t.LeadTime, "leadTime", 200); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.DeliveryWindow, "deliveryWindow", 200); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.Notes, "notes", 1000); err != nil {
		return nil, err
	}

	return t, nil
}

// Select bid request

type SelectBidReq struct {
	BidId string `json:"bidId"`
}

func ParseSelectBidReq(data []byte) (*SelectBidReq, error) {
	t := &SelectBidReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(t.BidId) == "" {
		return nil, fmt.Errorf("field 'bidId' is required")
	}

	return t, nil
}

// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
