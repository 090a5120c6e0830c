package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bid2/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// AddBid inserts a supplier's bid. The unique index on
// (rfq_id, supplier_id) closes the duplicate-submission race at the
// storage level; the violation surfaces as ErrDuplicateBid.
func (repo *Repository) AddBid(ctx context.Context, bid models.Bid) (models.Bid, error) {
	bid.Id = uuid.NewString()
	bid.Selected = false
	bid.CreatedAt = time.Now().UTC()

	query := `
	INSERT INTO bids (id, rfq_id, supplier_id, price, lead_time, delivery_window, notes, selected, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
	`

	_, err := repo.db.ExecContext(ctx, query,
		bid.Id, bid.RfqId, bid.SupplierId, bid.Price, bid.LeadTime, bid.DeliveryWindow, bid.Notes, bid.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return bid, fmt.Errorf("repository.Repository.AddBid: %w", models.ErrDuplicateBid)
		}
		return bid, fmt.Errorf("repository.Repository.AddBid: %w", err)
	}

	return bid, nil
}

const bidColumns = `
	b.id, b.rfq_id, b.supplier_id, u.name, b.price, b.lead_time, b.delivery_window, b.notes, b.selected, b.created_at`

func scanBid(row interface{ Scan(...any) error }) (models.Bid, error) {
	var bid models.Bid
	err := row.Scan(&bid.Id, &bid.RfqId, &bid.SupplierId, &bid.SupplierName,
		&bid.Price, &bid.LeadTime, &bid.DeliveryWindow, &bid.Notes, &bid.Selected, &bid.CreatedAt)
	return bid, err
}

func (repo *Repository) GetBids(ctx context.Context, rfqId string) ([]models.Bid, error) {
	query := `
	SELECT` + bidColumns + `
	FROM bids b
	JOIN users u ON u.id = b.supplier_id
	WHERE b.rfq_id = $1
	ORDER BY b.created_at
	`

	rows, err := repo.db.QueryContext(ctx, query, rfqId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.GetBids: %w", err)
	}
	defer rows.Close()

	var result []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.GetBids: rows scan error: %w", err)
		}
		result = append(result, bid)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.GetBids: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) GetBidByUUID(ctx context.Context, UUID string) (models.Bid, error) {
	query := `
	SELECT` + bidColumns + `
	FROM bids b
	JOIN users u ON u.id = b.supplier_id
	WHERE b.id = $1
	LIMIT 1
	`

	bid, err := scanBid(repo.db.QueryRowContext(ctx, query, UUID))
	if err == sql.ErrNoRows {
		return bid, err
	} else if err != nil {
		return bid, fmt.Errorf("repository.Repository.GetBidByUUID: %w", err)
	}

	return bid, nil
}

func (repo *Repository) GetBidBySupplier(ctx context.Context, rfqId, supplierId string) (models.Bid, bool, error) {
	query := `
	SELECT` + bidColumns + `
	FROM bids b
	JOIN users u ON u.id = b.supplier_id
	WHERE b.rfq_id = $1 AND b.supplier_id = $2
	LIMIT 1
	`

	bid, err := scanBid(repo.db.QueryRowContext(ctx, query, rfqId, supplierId))
	if err == sql.ErrNoRows {
		return bid, false, nil
	} else if err != nil {
		return bid, false, fmt.Errorf("repository.Repository.GetBidBySupplier: %w", err)
	}

	return bid, true, nil
}
