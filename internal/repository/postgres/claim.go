package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentloop-backend/internal/domain"
	"rentloop-backend/internal/repository"
)

type claimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) repository.ClaimRepository {
	return &claimRepository{db: db}
}

const claimColumns = `id, rental_id, filed_by, description, amount_cents, photo_urls, resolution, COALESCE(resolved_amount_cents, 0), created_on, resolved_on`

func (r *claimRepository) GetOpenByRental(ctx context.Context, rentalID int64) (*domain.DamageClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM damage_claims WHERE rental_id = $1 AND resolution = $2`
	claim, err := scanClaim(r.db.QueryRowContext(ctx, query, rentalID, domain.ClaimResolutionOpen))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return claim, err
}

func (r *claimRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.DamageClaim, error) {
	query := `SELECT ` + claimColumns + ` FROM damage_claims WHERE rental_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []domain.DamageClaim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

func scanClaim(row rowScanner) (*domain.DamageClaim, error) {
	claim := &domain.DamageClaim{}
	var photoURLs string
	var resolvedOn sql.NullTime
	err := row.Scan(&claim.ID, &claim.RentalID, &claim.FiledBy, &claim.Description, &claim.AmountCents, &photoURLs, &claim.Resolution, &claim.ResolvedAmountCents, &claim.CreatedOn, &resolvedOn)
	if err != nil {
		return nil, err
	}
	claim.PhotoURLs = splitURLs(photoURLs)
	if resolvedOn.Valid {
		claim.ResolvedOn = &resolvedOn.Time
	}
	return claim, nil
}
