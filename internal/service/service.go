package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bid2/internal/matching"
	"bid2/internal/models"
)

// Repository is the storage surface the lifecycle controller needs.
// Conditional writes (SendRFQ, SelectBid, AddBid) carry the transition
// guards; the service never does read-then-write state checks alone.
type Repository interface {
	SuppliersByCategory(ctx context.Context, category string) ([]models.User, error)

	AddRFQ(ctx context.Context, rfq models.RFQ) (models.RFQ, error)
	GetRFQByUUID(ctx context.Context, UUID string) (models.RFQ, error)
	GetRFQsByContractor(ctx context.Context, contractorId string) ([]models.RFQ, error)
	GetInboxRFQs(ctx context.Context, supplierId string) ([]models.RFQ, error)
	SendRFQ(ctx context.Context, rfqId string, supplierIds []string) error
	SelectBid(ctx context.Context, rfqId, bidId string) error

	AddBid(ctx context.Context, bid models.Bid) (models.Bid, error)
	GetBids(ctx context.Context, rfqId string) ([]models.Bid, error)
	GetBidBySupplier(ctx context.Context, rfqId, supplierId string) (models.Bid, bool, error)
}

// Structurer converts free text into the fixed RFQ schema.
type Structurer interface {
	Structure(ctx context.Context, rawText string) (models.StructuredRFQ, error)
}

// Ranker recommends one winning bid.
type Ranker interface {
	Rank(ctx context.Context, structured models.StructuredRFQ, bids []models.Bid) (models.Recommendation, error)
}

type Service struct {
	repo       Repository
	structurer Structurer
	ranker     Ranker
	matcher    matching.Matcher
}

func NewService(repo Repository, structurer Structurer, ranker Ranker) *Service {
	return &Service{
		repo:       repo,
		structurer: structurer,
		ranker:     ranker,
		matcher:    matching.NewLinearMatcher(matching.Lenient),
	}
}

//// Structuring

func (s *Service) Structure(ctx context.Context, actor models.Actor, rawText string) (models.StructuredRFQ, error) {
	if actor.Role != models.RoleContractor {
		return models.StructuredRFQ{}, fmt.Errorf("service.Service.Structure: %w", models.ErrNotAuthorized)
	}
	if strings.TrimSpace(rawText) == "" {
		return models.StructuredRFQ{}, fmt.Errorf("service.Service.Structure: %w: rawText is empty", models.ErrValidation)
	}

	structured, err := s.structurer.Structure(ctx, rawText)
	if err != nil {
		return models.StructuredRFQ{}, fmt.Errorf("service.Service.Structure: %w", err)
	}

	return structured, nil
}

//// RFQ lifecycle

func (s *Service) CreateDraft(ctx context.Context, actor models.Actor, rawText string, structured models.StructuredRFQ) (models.RFQ, error) {
	if actor.Role != models.RoleContractor {
		return models.RFQ{}, fmt.Errorf("service.Service.CreateDraft: %w", models.ErrNotAuthorized)
	}
	if strings.TrimSpace(rawText) == "" {
		return models.RFQ{}, fmt.Errorf("service.Service.CreateDraft: %w: rawText is empty", models.ErrValidation)
	}

	structured.Normalize()

	rfq, err := s.repo.AddRFQ(ctx, models.RFQ{
		ContractorId: actor.UserId,
		RawText:      rawText,
		Structured:   structured,
	})
	if err != nil {
		return rfq, fmt.Errorf("service.Service.CreateDraft: %w", err)
	}

	return rfq, nil
}

// Send transitions a draft to sent. The matched-supplier list is
// computed before the write and committed together with the status; an
// empty match set aborts the transition entirely.
func (s *Service) Send(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error) {
	rfq, err := s.ownedRFQ(ctx, actor, rfqId)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w", err)
	}

	if rfq.Status != models.RFQDraft {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w: rfq is %s", models.ErrInvalidTransition, rfq.Status)
	}

	structured := rfq.Structured
	if structured.Category == "" || structured.Delivery.City == "" || structured.NeededBy == "" {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w: category, delivery city and needed-by are required", models.ErrValidation)
	}

	suppliers, err := s.repo.SuppliersByCategory(ctx, structured.Category)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w", err)
	}

	matched := s.matcher.Match(structured.Category, structured.Delivery.City, suppliers)
	if len(matched) == 0 {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w", models.ErrNoMatchingSuppliers)
	}

	err = s.repo.SendRFQ(ctx, rfq.Id, matched)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.Send: %w", err)
	}

	rfq.Status = models.RFQSent
	rfq.MatchedSupplierIds = matched
	return rfq, nil
}

// SelectBid finalizes the winner. The RFQ and bid mutations are one
// storage transaction conditioned on status = sent at commit time.
func (s *Service) SelectBid(ctx context.Context, actor models.Actor, rfqId, bidId string) (models.RFQ, error) {
	rfq, err := s.ownedRFQ(ctx, actor, rfqId)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.SelectBid: %w", err)
	}

	if rfq.Status != models.RFQSent {
		return models.RFQ{}, fmt.Errorf("service.Service.SelectBid: %w: rfq is %s", models.ErrInvalidTransition, rfq.Status)
	}

	err = s.repo.SelectBid(ctx, rfq.Id, bidId)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.SelectBid: %w", err)
	}

	rfq.Status = models.RFQSelected
	rfq.SelectedBidId = bidId
	return rfq, nil
}

func (s *Service) GetRFQ(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error) {
	rfq, err := s.getRFQ(ctx, rfqId)
	if err != nil {
		return models.RFQ{}, fmt.Errorf("service.Service.GetRFQ: %w", err)
	}

	if !canViewRFQ(actor, rfq) {
		return models.RFQ{}, fmt.Errorf("service.Service.GetRFQ: %w", models.ErrNotAuthorized)
	}

	return rfq, nil
}

func (s *Service) MyRFQs(ctx context.Context, actor models.Actor) ([]models.RFQ, error) {
	if actor.Role != models.RoleContractor {
		return nil, fmt.Errorf("service.Service.MyRFQs: %w", models.ErrNotAuthorized)
	}

	rfqs, err := s.repo.GetRFQsByContractor(ctx, actor.UserId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.MyRFQs: %w", err)
	}
	return rfqs, nil
}

func (s *Service) Inbox(ctx context.Context, actor models.Actor) ([]models.RFQ, error) {
	if actor.Role != models.RoleSupplier || !actor.Onboarded {
		return nil, fmt.Errorf("service.Service.Inbox: %w", models.ErrNotAuthorized)
	}

	rfqs, err := s.repo.GetInboxRFQs(ctx, actor.UserId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.Inbox: %w", err)
	}
	return rfqs, nil
}

//// Bids

// SubmitBid records a matched supplier's quote. Duplicate submissions
// are rejected by the storage layer's uniqueness guarantee, not by a
// read-then-write check.
func (s *Service) SubmitBid(ctx context.Context, actor models.Actor, rfqId string, price float64, leadTime, deliveryWindow, notes string) (models.Bid, error) {
	if actor.Role != models.RoleSupplier || !actor.Onboarded {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrNotAuthorized)
	}
	if price < 0 {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w: price must be non-negative", models.ErrValidation)
	}
	if strings.TrimSpace(leadTime) == "" {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w: leadTime is required", models.ErrValidation)
	}

	rfq, err := s.getRFQ(ctx, rfqId)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	if !containsId(rfq.MatchedSupplierIds, actor.UserId) {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w", models.ErrNotAuthorized)
	}
	if rfq.Status != models.RFQSent {
		return models.Bid{}, fmt.Errorf("service.Service.SubmitBid: %w: rfq is %s", models.ErrInvalidTransition, rfq.Status)
	}

	bid, err := s.repo.AddBid(ctx, models.Bid{
		RfqId:          rfq.Id,
		SupplierId:     actor.UserId,
		Price:          price,
		LeadTime:       leadTime,
		DeliveryWindow: deliveryWindow,
		Notes:          notes,
	})
	if err != nil {
		return bid, fmt.Errorf("service.Service.SubmitBid: %w", err)
	}

	return bid, nil
}

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

func (s *Service) RFQBids(ctx context.Context, actor models.Actor, rfqId, sortOrder string) ([]models.Bid, error) {
	rfq, err := s.ownedRFQ(ctx, actor, rfqId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.RFQBids: %w", err)
	}

	bids, err := s.repo.GetBids(ctx, rfq.Id)
	if err != nil {
		return nil, fmt.Errorf("service.Service.RFQBids: %w", err)
	}

	switch sortOrder {
	case SortPriceAsc, "":
		sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price < bids[j].Price })
	case SortPriceDesc:
		sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	default:
		return nil, fmt.Errorf("service.Service.RFQBids: %w: unknown sort order %q", models.ErrValidation, sortOrder)
	}

	return bids, nil
}

// MyBid returns a supplier's own bid for an RFQ, if any. The supplier
// pages use it for the "already submitted" state.
func (s *Service) MyBid(ctx context.Context, actor models.Actor, rfqId string) (models.Bid, bool, error) {
	if actor.Role != models.RoleSupplier || !actor.Onboarded {
		return models.Bid{}, false, fmt.Errorf("service.Service.MyBid: %w", models.ErrNotAuthorized)
	}

	bid, ok, err := s.repo.GetBidBySupplier(ctx, rfqId, actor.UserId)
	if err != nil {
		return models.Bid{}, false, fmt.Errorf("service.Service.MyBid: %w", err)
	}
	return bid, ok, nil
}

//// Ranking

func (s *Service) Rank(ctx context.Context, actor models.Actor, rfqId string) (models.Recommendation, error) {
	rfq, err := s.ownedRFQ(ctx, actor, rfqId)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("service.Service.Rank: %w", err)
	}

	bids, err := s.repo.GetBids(ctx, rfq.Id)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("service.Service.Rank: %w", err)
	}
	if len(bids) == 0 {
		return models.Recommendation{}, fmt.Errorf("service.Service.Rank: %w: no bids to analyze", models.ErrValidation)
	}

	rec, err := s.ranker.Rank(ctx, rfq.Structured, bids)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("service.Service.Rank: %w", err)
	}

	return rec, nil
}

//// Service

func (s *Service) getRFQ(ctx context.Context, rfqId string) (models.RFQ, error) {
	rfq, err := s.repo.GetRFQByUUID(ctx, rfqId)
	if errors.Is(err, sql.ErrNoRows) {
		return rfq, models.ErrNoRFQ
	} else if err != nil {
		return rfq, err
	}
	return rfq, nil
}

func (s *Service) ownedRFQ(ctx context.Context, actor models.Actor, rfqId string) (models.RFQ, error) {
	rfq, err := s.getRFQ(ctx, rfqId)
	if err != nil {
		return rfq, err
	}

	if actor.Role != models.RoleContractor || rfq.ContractorId != actor.UserId {
		return rfq, models.ErrNotAuthorized
	}

	return rfq, nil
}

func canViewRFQ(actor models.Actor, rfq models.RFQ) bool {
	if actor.Role == models.RoleContractor {
		return rfq.ContractorId == actor.UserId
	}
	// Matched suppliers see the RFQ once it is no longer a draft.
	return rfq.Status != models.RFQDraft && containsId(rfq.MatchedSupplierIds, actor.UserId)
}

func containsId(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
