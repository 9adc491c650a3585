package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

const bondColumns = `id, user_id, name, currency, interest_rate, rate_type, compounding_frequency,
	days_per_year, nominal_value, commercial_value, payment_frequency, years, method, emission_date,
	premium, premium_timing, structuring_percent, structuring_actor, placement_percent, placement_actor,
	flotation_percent, flotation_actor, settlement_percent, settlement_actor, cok, income_tax, hmac,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBond(row rowScanner) (*models.BondRecord, error) {
	b := &models.BondRecord{}
	s := &b.Spec
	err := row.Scan(
		&b.ID, &b.UserID, &s.Name, &s.Currency, &s.InterestRate, &s.RateType, &s.CompoundingFrequency,
		&s.DaysPerYear, &s.NominalValue, &s.CommercialValue, &s.PaymentFrequency, &s.Years, &s.Method, &s.EmissionDate,
		&s.Premium, &s.PremiumTiming,
		&s.Costs.Structuring.Percent, &s.Costs.Structuring.Actor,
		&s.Costs.Placement.Percent, &s.Costs.Placement.Actor,
		&s.Costs.Flotation.Percent, &s.Costs.Flotation.Actor,
		&s.Costs.Settlement.Percent, &s.Costs.Settlement.Actor,
		&s.COK, &s.IncomeTax, &b.HMAC,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBond stores a bond and its grace periods in one transaction.
// An empty ID is replaced by a new UUID.
func (r *Repository) CreateBond(ctx context.Context, bond *models.BondRecord) error {
	if bond.ID == "" {
		bond.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := bond.Spec
	query := `
		INSERT INTO bonds.bonds (id, user_id, name, currency, interest_rate, rate_type, compounding_frequency,
			days_per_year, nominal_value, commercial_value, payment_frequency, years, method, emission_date,
			premium, premium_timing, structuring_percent, structuring_actor, placement_percent, placement_actor,
			flotation_percent, flotation_actor, settlement_percent, settlement_actor, cok, income_tax, hmac,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		bond.ID, bond.UserID, s.Name, s.Currency, s.InterestRate, string(s.RateType), string(s.CompoundingFrequency),
		s.DaysPerYear, s.NominalValue, s.CommercialValue, string(s.PaymentFrequency), s.Years, string(s.Method), s.EmissionDate,
		s.Premium, string(s.PremiumTiming),
		s.Costs.Structuring.Percent, string(s.Costs.Structuring.Actor),
		s.Costs.Placement.Percent, string(s.Costs.Placement.Actor),
		s.Costs.Flotation.Percent, string(s.Costs.Flotation.Actor),
		s.Costs.Settlement.Percent, string(s.Costs.Settlement.Actor),
		s.COK, s.IncomeTax, bond.HMAC,
	).Scan(&bond.CreatedAt, &bond.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bond: %w", err)
	}

	for _, g := range s.GracePeriods {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bonds.grace_periods (bond_id, period, type, duration) VALUES ($1, $2, $3, $4)`,
			bond.ID, g.Period, string(g.Type), g.Duration)
		if err != nil {
			return fmt.Errorf("failed to create grace period %d: %w", g.Period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bond: %w", err)
	}
	return nil
}

// GetBond retrieves a bond owned by userID
func (r *Repository) GetBond(ctx context.Context, userID int64, id string) (*models.BondRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + bondColumns + ` FROM bonds.bonds WHERE id = $1 AND user_id = $2`
	bond, err := scanBond(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bond: %w", err)
	}
	grace, err := r.gracePeriods(ctx, []string{bond.ID})
	if err != nil {
		return nil, err
	}
	bond.Spec.GracePeriods = grace[bond.ID]
	return bond, nil
}

// ListBonds retrieves every bond owned by userID, newest first
func (r *Repository) ListBonds(ctx context.Context, userID int64) ([]models.BondRecord, error) {
	query := `SELECT ` + bondColumns + ` FROM bonds.bonds WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}
	defer rows.Close()

	var bonds []models.BondRecord
	for rows.Next() {
		bond, err := scanBond(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bond: %w", err)
		}
		bonds = append(bonds, *bond)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list bonds: %w", err)
	}

	if len(bonds) == 0 {
		return bonds, nil
	}

	ids := make([]string, len(bonds))
	for i := range bonds {
		ids[i] = bonds[i].ID
	}
	grace, err := r.gracePeriods(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bonds {
		bonds[i].Spec.GracePeriods = grace[bonds[i].ID]
	}
	return bonds, nil
}

// DeleteBond removes a bond owned by userID; grace rows cascade
func (r *Repository) DeleteBond(ctx context.Context, userID int64, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM bonds.bonds WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bond: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bond: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// gracePeriods loads the grace rows of every bond in ids with one query,
// keyed by bond id and ordered by period.
func (r *Repository) gracePeriods(ctx context.Context, ids []string) (map[string][]models.GracePeriodEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT bond_id, period, type, duration FROM bonds.grace_periods
		WHERE bond_id = ANY($1::uuid[]) ORDER BY bond_id, period`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load grace periods: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.GracePeriodEntry, len(ids))
	for rows.Next() {
		var bondID string
		var g models.GracePeriodEntry
		if err := rows.Scan(&bondID, &g.Period, &g.Type, &g.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan grace period: %w", err)
		}
		out[bondID] = append(out[bondID], g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load grace periods: %w", err)
	}
	return out, nil
}
