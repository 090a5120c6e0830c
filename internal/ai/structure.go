package ai

import (
	"context"
	"fmt"

	"bid2/internal/models"
)

const structureSystemPrompt = `You are an AI assistant that extracts structured data from a contractor's free-text Request for Quote (RFQ).
You must return ONLY a raw JSON string parsing the request.
Use this exact schema:
{
  "category": "String (e.g. Lumber, Plumbing, Electrical, Windows, Concrete, HVAC, Roofing, General Construction. Infer if not explicit.)",
  "items": [
    { "name": "String", "quantity": "String or Number", "unit": "String" }
  ],
  "delivery": {
    "city": "String",
    "zip": "String"
  },
  "neededBy": "String (Date or 'ASAP')",
  "clarifyingQuestions": ["Array of Strings asking for missing critical information if any"]
}
Do not include any markdown backticks or code fences. Output raw JSON only.`

const structureTemperature = 0.2

// Structure converts a contractor's free text into the fixed RFQ
// schema. Category and delivery city come back normalized so the
// matching engine can compare them verbatim.
func (c *Client) Structure(ctx context.Context, rawText string) (models.StructuredRFQ, error) {
	var structured models.StructuredRFQ

	raw, err := c.complete(ctx, structureSystemPrompt, rawText, structureTemperature)
	if err != nil {
		return structured, fmt.Errorf("ai.Client.Structure: %w", err)
	}

	if err := extractJSON(raw, &structured); err != nil {
		return structured, fmt.Errorf("ai.Client.Structure: %w", err)
	}

	structured.Normalize()
	return structured, nil
}
