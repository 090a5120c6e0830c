package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bid2/internal/config"
	"bid2/internal/models"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	retryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// completionHandler serves a chat-completion response whose assistant
// message is exactly content.
func completionHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&config.GroqConfig{
		APIKey:         "test-key",
		Model:          "llama-3.3-70b-versatile",
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
	})
}

const structuredJSON = `{
  "category": "Lumber",
  "items": [{"name": "2x4 framing lumber", "quantity": 500, "unit": "board feet"}],
  "delivery": {"city": "Seattle", "zip": "98101"},
  "neededBy": "Tuesday",
  "clarifyingQuestions": []
}`

func TestStructure(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, structuredJSON))
	defer server.Close()

	structured, err := newTestClient(server).Structure(context.Background(), "need 500 board feet of lumber in Seattle by Tuesday")
	require.NoError(t, err)

	assert.Equal(t, "lumber", structured.Category)
	assert.Equal(t, "seattle", structured.Delivery.City)
	assert.Equal(t, "98101", structured.Delivery.Zip)
	assert.Equal(t, "Tuesday", structured.NeededBy)
	require.Len(t, structured.Items, 1)
	assert.Equal(t, models.FlexString("500"), structured.Items[0].Quantity)
}

func TestStructureStripsFences(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "```json\n"+structuredJSON+"\n```"))
	defer server.Close()

	structured, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	require.NoError(t, err)
	assert.Equal(t, "lumber", structured.Category)
}

func TestStructureBraceRecovery(t *testing.T) {
	content := "Sure! Here is the structured RFQ you asked for:\n" + structuredJSON + "\nLet me know if you need anything else."
	server := httptest.NewServer(completionHandler(t, content))
	defer server.Close()

	structured, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	require.NoError(t, err)
	assert.Equal(t, "lumber", structured.Category)
}

func TestStructureUnparseable(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, "I cannot help with that."))
	defer server.Close()

	_, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	assert.ErrorIs(t, err, models.ErrUnparseableResponse)
}

func TestStructureUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}

func TestCompleteRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		completionHandler(t, structuredJSON)(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCompleteRetryExhaustion(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server).Structure(context.Background(), "lumber rfq")
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	assert.Equal(t, 4, calls) // initial attempt + 3 retries
}

func rankInput() (models.StructuredRFQ, []models.Bid) {
	structured := models.StructuredRFQ{
		Category: "lumber",
		Delivery: models.Delivery{City: "seattle", Zip: "98101"},
		NeededBy: "Tuesday",
	}
	bids := []models.Bid{
		{Id: "bid-1", SupplierName: "Evergreen Lumber", Price: 1500, LeadTime: "3 days"},
		{Id: "bid-2", SupplierName: "Cascade Supply", Price: 1200, LeadTime: "2 days"},
	}
	return structured, bids
}

func TestRank(t *testing.T) {
	content := `{"recommendedBidId": "bid-2", "reasoning": ["Lowest price", "Shortest lead time"], "riskNote": "No delivery window specified."}`
	server := httptest.NewServer(completionHandler(t, content))
	defer server.Close()

	structured, bids := rankInput()
	rec, err := newTestClient(server).Rank(context.Background(), structured, bids)
	require.NoError(t, err)

	assert.Equal(t, "bid-2", rec.RecommendedBidId)
	assert.Len(t, rec.Reasoning, 2)
	assert.Equal(t, "No delivery window specified.", rec.RiskNote)
}

func TestRankRejectsUnknownBidId(t *testing.T) {
	content := `{"recommendedBidId": "bid-99", "reasoning": ["Best value"]}`
	server := httptest.NewServer(completionHandler(t, content))
	defer server.Close()

	structured, bids := rankInput()
	_, err := newTestClient(server).Rank(context.Background(), structured, bids)
	assert.ErrorIs(t, err, models.ErrUnparseableResponse)
}

func TestRankNoBids(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("adapter must not call upstream with no bids")
	}))
	defer server.Close()

	structured, _ := rankInput()
	_, err := newTestClient(server).Rank(context.Background(), structured, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestExtractJSONFenceVariants(t *testing.T) {
	type payload struct {
		Category string `json:"category"`
	}

	for _, raw := range []string{
		`{"category": "lumber"}`,
		"```json\n{\"category\": \"lumber\"}\n```",
		"```JSON\n{\"category\": \"lumber\"}\n```",
		"```\n{\"category\": \"lumber\"}\n```",
		"noise before {\"category\": \"lumber\"} noise after",
	} {
		var p payload
		require.NoError(t, extractJSON(raw, &p), "input: %q", raw)
		assert.Equal(t, "lumber", p.Category, "input: %q", raw)
	}
}
