package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
)

type inspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) repository.InspectionRepository {
	return &inspectionRepository{db: db}
}

const inspectionColumns = `id, rental_id, direction, signed_by, signed, photo_urls, notes, signed_at, created_on`

func (r *inspectionRepository) Create(ctx context.Context, insp *domain.Inspection) error {
	query := `INSERT INTO inspections (rental_id, direction, signed_by, signed, photo_urls, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, insp.RentalID, insp.Direction, insp.SignedBy, insp.Signed, joinURLs(insp.PhotoURLs), insp.Notes, time.Now()).Scan(&insp.ID)
}

func (r *inspectionRepository) GetByRentalAndDirection(ctx context.Context, rentalID int64, direction domain.InspectionDirection) (*domain.Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE rental_id = $1 AND direction = $2`
	insp, err := scanInspection(r.db.QueryRowContext(ctx, query, rentalID, direction))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return insp, err
}

func (r *inspectionRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.Inspection, error) {
	query := `SELECT ` + inspectionColumns + ` FROM inspections WHERE rental_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inspections []domain.Inspection
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, *insp)
	}
	return inspections, rows.Err()
}

func (r *inspectionRepository) Sign(ctx context.Context, rentalID, inspectionID, signedBy int64, signedAt time.Time) error {
	// Signed inspections are immutable: the guard keeps a second signature
	// from overwriting the first. The rental_id predicate keeps a caller
	// from signing another rental's inspection.
	query := `UPDATE inspections SET signed = true, signed_by = $1, signed_at = $2 WHERE id = $3 AND rental_id = $4 AND signed = false`
	res, err := r.db.ExecContext(ctx, query, signedBy, signedAt, inspectionID, rentalID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		check := `SELECT EXISTS (SELECT 1 FROM inspections WHERE id = $1 AND rental_id = $2)`
		if err := r.db.QueryRowContext(ctx, check, inspectionID, rentalID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

func scanInspection(row rowScanner) (*domain.Inspection, error) {
	insp := &domain.Inspection{}
	var photoURLs string
	var signedAt sql.NullTime
	err := row.Scan(&insp.ID, &insp.RentalID, &insp.Direction, &insp.SignedBy, &insp.Signed, &photoURLs, &insp.Notes, &signedAt, &insp.CreatedOn)
	if err != nil {
		return nil, err
	}
	insp.PhotoURLs = splitURLs(photoURLs)
	if signedAt.Valid {
		insp.SignedAt = &signedAt.Time
	}
	return insp, nil
}

func joinURLs(urls []string) string {
	return strings.Join(urls, ",")
}

func splitURLs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
