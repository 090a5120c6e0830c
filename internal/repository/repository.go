package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bid2/internal/config"
	"bid2/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"

	postgres "bid2/internal/repository/db"
)

type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sql.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db, repo.cfg.MigrationsURL)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Users

func (repo *Repository) AddUser(ctx context.Context, user models.User) (models.User, error) {
	user.Id = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	query := `
	INSERT INTO users (id, role, name, categories, service_area, onboarded, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := repo.db.ExecContext(ctx, query,
		user.Id, user.Role, user.Name, pq.Array(user.Categories), pq.Array(user.ServiceArea), user.Onboarded, user.CreatedAt)
	if err != nil {
		return user, fmt.Errorf("repository.Repository.AddUser: %w", err)
	}

	return user, nil
}

func (repo *Repository) UserByUUID(ctx context.Context, UUID string) (models.User, bool, error) {
	var user models.User
	query := `
	SELECT
		id, role, name, categories, service_area, onboarded, created_at
	FROM users
	WHERE id = $1
	LIMIT 1
	`
	row := repo.db.QueryRowContext(ctx, query, UUID)
	err := row.Scan(&user.Id, &user.Role, &user.Name, pq.Array(&user.Categories), pq.Array(&user.ServiceArea), &user.Onboarded, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByUUID: %w", err)
	}

	return user, true, nil
}

// SuppliersByCategory pre-filters supplier profiles at the query level.
// The matching engine re-applies the category predicate in memory, so
// the pre-filter is an optimization, not the source of truth.
func (repo *Repository) SuppliersByCategory(ctx context.Context, category string) ([]models.User, error) {
	query := `
	SELECT
		id, role, name, categories, service_area, onboarded, created_at
	FROM users
	WHERE role = 'supplier' AND $1 = ANY(categories)
	`

	rows, err := repo.db.QueryContext(ctx, query, models.NormalizeTerm(category))
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersByCategory: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var user models.User
		err = rows.Scan(&user.Id, &user.Role, &user.Name, pq.Array(&user.Categories), pq.Array(&user.ServiceArea), &user.Onboarded, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.SuppliersByCategory: rows scan error: %w", err)
		}
		result = append(result, user)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersByCategory: %w", rows.Err())
	}

	return result, nil
}

//// Service

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

//// Test utils

func (repo *Repository) TestGetDB() *sql.DB {
	return repo.db
}
