package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"bid2/internal/models"
)

type Service interface {
	Structure(ctx context.Context, actor models.Actor, rawText string) (models.StructuredRFQ, error)

	CreateDraft(ctx context.Context, actor models.Actor, rawText string, structured models.StructuredRFQ) (models.RFQ, error)
	Send(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error)
	SelectBid(ctx context.Context, actor models.Actor, rfqId, bidId string) (models.RFQ, error)
	GetRFQ(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error)
	MyRFQs(ctx context.Context, actor models.Actor) ([]models.RFQ, error)
	Inbox(ctx context.Context, actor models.Actor) ([]models.RFQ, error)

	SubmitBid(ctx context.Context, actor models.Actor, rfqId string, price float64, leadTime, deliveryWindow, notes string) (models.Bid, error)
	RFQBids(ctx context.Context, actor models.Actor, rfqId, sortOrder string) ([]models.Bid, error)
	MyBid(ctx context.Context, actor models.Actor, rfqId string) (models.Bid, bool, error)

	Rank(ctx context.Context, actor models.Actor, rfqId string) (models.Recommendation, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Structuring

// POST /api/rfqs/structure
func (c *Controller) StructureRFQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseStructureReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	structured, err := c.service.Structure(r.Context(), actor, req.RawText)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, structured)
}

//// RFQs

// POST /api/rfqs/new
func (c *Controller) NewRFQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewRFQReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rfq, err := c.service.CreateDraft(r.Context(), actor, req.RawText, req.StructuredData)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfq)
}

// GET /api/rfqs/my
func (c *Controller) MyRFQs(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	rfqs, err := c.service.MyRFQs(r.Context(), actor)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfqs)
}

// GET /api/rfqs/inbox
func (c *Controller) Inbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	rfqs, err := c.service.Inbox(r.Context(), actor)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfqs)
}

// GET /api/rfqs/{rfqId}
func (c *Controller) GetRFQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	rfq, err := c.service.GetRFQ(r.Context(), actor, r.PathValue("rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfq)
}

// POST /api/rfqs/{rfqId}/send
func (c *Controller) SendRFQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	rfq, err := c.service.Send(r.Context(), actor, r.PathValue("rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfq)
}

// POST /api/rfqs/{rfqId}/select
func (c *Controller) SelectBid(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseSelectBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rfq, err := c.service.SelectBid(r.Context(), actor, r.PathValue("rfqId"), req.BidId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rfq)
}

//// Bids

// POST /api/rfqs/{rfqId}/bids
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.SubmitBid(r.Context(), actor, r.PathValue("rfqId"), *req.Price, req.LeadTime, req.DeliveryWindow, req.Notes)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// GET /api/rfqs/{rfqId}/bids
func (c *Controller) RFQBids(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	bids, err := c.service.RFQBids(r.Context(), actor, r.PathValue("rfqId"), r.URL.Query().Get("sort"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bids)
}

type MyBidResp struct {
	Submitted bool        `json:"submitted"`
	Bid       *models.Bid `json:"bid,omitempty"`
}

// GET /api/rfqs/{rfqId}/bids/my
func (c *Controller) MyBid(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	bid, submitted, err := c.service.MyBid(r.Context(), actor, r.PathValue("rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	resp := MyBidResp{Submitted: submitted}
	if submitted {
		resp.Bid = &bid
	}
	c.marshalResponse(w, resp)
}

//// Ranking

// POST /api/rfqs/{rfqId}/recommendation
func (c *Controller) Recommend(w http.ResponseWriter, r *http.Request) {
	actor, ok := c.requireActor(w, r)
	if !ok {
		return
	}

	rec, err := c.service.Rank(r.Context(), actor, r.PathValue("rfqId"))
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, rec)
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

// requireActor builds the caller identity from the headers the session
// gateway sets. The core never reads ambient session state itself.
func (c *Controller) requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, err := ParseActor(r)
	if err != nil {
		c.errorResponse(w, http.StatusUnauthorized, err.Error())
		return actor, false
	}
	return actor, true
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotAuthorized):
		c.errorResponse(w, http.StatusForbidden, "user has no permission for requested action")
	case errors.Is(err, models.ErrNoRFQ):
		c.errorResponse(w, http.StatusNotFound, "requested rfq does not exist or is unaccessible")
	case errors.Is(err, models.ErrBidNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested bid does not exist for this rfq")
	case errors.Is(err, models.ErrInvalidTransition):
		c.errorResponse(w, http.StatusConflict, "rfq status does not allow the requested transition")
	case errors.Is(err, models.ErrDuplicateBid):
		c.errorResponse(w, http.StatusConflict, "a bid from this supplier already exists for this rfq")
	case errors.Is(err, models.ErrNoMatchingSuppliers):
		c.errorResponse(w, http.StatusUnprocessableEntity, "no matching suppliers found for this category and city")
	case errors.Is(err, models.ErrUpstreamUnavailable):
		c.errorResponse(w, http.StatusBadGateway, "ai service is unavailable, fill the fields manually")
	case errors.Is(err, models.ErrUnparseableResponse):
		c.errorResponse(w, http.StatusBadGateway, "ai service returned unusable output, fill the fields manually")
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error: "+err.Error())
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
