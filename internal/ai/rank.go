package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"bid2/internal/models"
)

const rankSystemPrompt = `You are an expert procurement assistant. Your job is to compare supplier bids against the contractor's Request for Quote (RFQ) requirements and recommend ONE winning bid.

You must return ONLY a raw JSON string.
Use this exact schema:
{
  "recommendedBidId": "String (the ID of the exact recommended bid)",
  "reasoning": [
    "String (bullet point 1 explaining why)",
    "String (bullet point 2 explaining why)"
  ],
  "riskNote": "String (Optional note about potential risks like longer lead times, missing delivery specs, etc. Keep extremely brief or omit.)"
}
Do not include formatting or markdown backticks. Output raw JSON only.`

const rankTemperature = 0.1

// rankedBid is the reduced bid view serialized into the ranking prompt.
type rankedBid struct {
	Id           string  `json:"id"`
	SupplierName string  `json:"supplierName"`
	Price        float64 `json:"price"`
	LeadTime     string  `json:"leadTime"`
	Delivery     string  `json:"delivery"`
	Notes        string  `json:"notes"`
}

// Rank asks the model to pick a winner among the submitted bids. The
// model's chosen id is validated against the input set: an id pointing
// at no submitted bid is treated as an unparseable response, never
// trusted silently.
func (c *Client) Rank(ctx context.Context, structured models.StructuredRFQ, bids []models.Bid) (models.Recommendation, error) {
	var rec models.Recommendation

	if len(bids) == 0 {
		return rec, fmt.Errorf("ai.Client.Rank: %w: no bids to analyze", models.ErrValidation)
	}

	reduced := make([]rankedBid, 0, len(bids))
	for _, b := range bids {
		reduced = append(reduced, rankedBid{
			Id:           b.Id,
			SupplierName: b.SupplierName,
			Price:        b.Price,
			LeadTime:     b.LeadTime,
			Delivery:     b.DeliveryWindow,
			Notes:        b.Notes,
		})
	}

	rfqJSON, err := json.MarshalIndent(structured, "", "  ")
	if err != nil {
		return rec, fmt.Errorf("ai.Client.Rank: %w", err)
	}
	bidsJSON, err := json.MarshalIndent(reduced, "", "  ")
	if err != nil {
		return rec, fmt.Errorf("ai.Client.Rank: %w", err)
	}

	user := fmt.Sprintf("RFQ Requirements:\n%s\n\nSubmitted Bids:\n%s", rfqJSON, bidsJSON)

	raw, err := c.complete(ctx, rankSystemPrompt, user, rankTemperature)
	if err != nil {
		return rec, fmt.Errorf("ai.Client.Rank: %w", err)
	}

	if err := extractJSON(raw, &rec); err != nil {
		return rec, fmt.Errorf("ai.Client.Rank: %w", err)
	}

	if !bidExists(bids, rec.RecommendedBidId) {
		return models.Recommendation{}, fmt.Errorf("ai.Client.Rank: %w: recommended bid id %q is not among submitted bids",
			models.ErrUnparseableResponse, rec.RecommendedBidId)
	}

	return rec, nil
}

func bidExists(bids []models.Bid, id string) bool {
	for _, b := range bids {
		if b.Id == id {
			return true
		}
	}
	return false
}
