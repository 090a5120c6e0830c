package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bid2/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (repo *Repository) AddRFQ(ctx context.Context, rfq models.RFQ) (models.RFQ, error) {
	rfq.Id = uuid.NewString()
	rfq.Status = models.RFQDraft
	rfq.CreatedAt = time.Now().UTC()

	structured, err := json.Marshal(rfq.Structured)
	if err != nil {
		return rfq, fmt.Errorf("repository.Repository.AddRFQ: %w", err)
	}

	query := `
	INSERT INTO rfqs (id, contractor_id, status, raw_text, structured, matched_supplier_ids, created_at)
	VALUES ($1, $2, $3, $4, $5, '{}', $6)
	`

	_, err = repo.db.ExecContext(ctx, query, rfq.Id, rfq.ContractorId, rfq.Status, rfq.RawText, structured, rfq.CreatedAt)
	if err != nil {
		return rfq, fmt.Errorf("repository.Repository.AddRFQ: %w", err)
	}

	return rfq, nil
}

const rfqColumns = `
	id, contractor_id, status, raw_text, structured, matched_supplier_ids, selected_bid_id, created_at`

func scanRFQ(row interface{ Scan(...any) error }) (models.RFQ, error) {
	var rfq models.RFQ
	var structured []byte
	var selectedBidId sql.NullString

	err := row.Scan(&rfq.Id, &rfq.ContractorId, &rfq.Status, &rfq.RawText, &structured,
		pq.Array(&rfq.MatchedSupplierIds), &selectedBidId, &rfq.CreatedAt)
	if err != nil {
		return rfq, err
	}

	if err = json.Unmarshal(structured, &rfq.Structured); err != nil {
		return rfq, err
	}
	rfq.SelectedBidId = selectedBidId.String

	return rfq, nil
}

func (repo *Repository) GetRFQByUUID(ctx context.Context, UUID string) (models.RFQ, error) {
	query := `
	SELECT` + rfqColumns + `
	FROM rfqs
	WHERE id = $1
	LIMIT 1
	`

	rfq, err := scanRFQ(repo.db.QueryRowContext(ctx, query, UUID))
	if err == sql.ErrNoRows {
		return rfq, err
	} else if err != nil {
		return rfq, fmt.Errorf("repository.Repository.GetRFQByUUID: %w", err)
	}

	return rfq, nil
}

func (repo *Repository) GetRFQsByContractor(ctx context.Context, contractorId string) ([]models.RFQ, error) {
	query := `
	SELECT` + rfqColumns + `
	FROM rfqs
	WHERE contractor_id = $1
	ORDER BY created_at DESC
	`

	return repo.queryRFQs(ctx, "GetRFQsByContractor", query, contractorId)
}

// GetInboxRFQs returns the RFQs addressed to a supplier: sent or
// selected, with the supplier in the matched list.
func (repo *Repository) GetInboxRFQs(ctx context.Context, supplierId string) ([]models.RFQ, error) {
	query := `
	SELECT` + rfqColumns + `
	FROM rfqs
	WHERE status IN ('sent', 'selected') AND $1 = ANY(matched_supplier_ids)
	ORDER BY created_at DESC
	`

	return repo.queryRFQs(ctx, "GetInboxRFQs", query, supplierId)
}

func (repo *Repository) queryRFQs(ctx context.Context, method, query string, args ...any) ([]models.RFQ, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.%s: %w", method, err)
	}
	defer rows.Close()

	var result []models.RFQ
	for rows.Next() {
		rfq, err := scanRFQ(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.%s: rows scan error: %w", method, err)
		}
		result = append(result, rfq)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.%s: %w", method, rows.Err())
	}

	return result, nil
}

// SendRFQ commits the draft→sent transition together with the matched
// supplier snapshot. The update is conditioned on status at commit
// time, so a concurrent double-send loses with ErrInvalidTransition
// instead of overwriting the first snapshot.
func (repo *Repository) SendRFQ(ctx context.Context, rfqId string, supplierIds []string) error {
	query := `
	UPDATE rfqs
	SET status = 'sent', matched_supplier_ids = $2
	WHERE id = $1 AND status = 'draft'
	`

	res, err := repo.db.ExecContext(ctx, query, rfqId, pq.Array(supplierIds))
	if err != nil {
		return fmt.Errorf("repository.Repository.SendRFQ: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.SendRFQ: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("repository.Repository.SendRFQ: %w", models.ErrInvalidTransition)
	}

	return nil
}

// SelectBid marks the winner. Both mutations ride one transaction and
// the RFQ update is conditioned on status = 'sent' at commit time, so
// concurrent selections produce exactly one winner.
func (repo *Repository) SelectBid(ctx context.Context, rfqId, bidId string) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE bids SET selected = TRUE WHERE id = $1 AND rfq_id = $2`, bidId, rfqId)
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	if affected == 0 {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, models.ErrBidNotFound))
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE rfqs SET status = 'selected', selected_bid_id = $2 WHERE id = $1 AND status = 'sent'`, rfqId, bidId)
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, err))
	}
	if affected == 0 {
		return fmt.Errorf("repository.Repository.SelectBid: %w", wrapRollbackErr(tx, models.ErrInvalidTransition))
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("repository.Repository.SelectBid: failed to commit transaction: %w", err)
	}

	return nil
}
