package plandata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/choosepower/plan-finder/internal/models"
)

// PGSource serves plan arrays from the plans table. Used when a
// DATABASE_URL is configured; the file source remains the default.
type PGSource struct {
	pool *pgxpool.Pool
}

func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

const planCols = `id, name, provider, provider_slug, provider_rating,
	base_rate, rate_type, contract_length, monthly_fee,
	green_energy_percentage, early_termination_fee, features,
	has_promotion, description`

func (s *PGSource) PlansForCity(ctx context.Context, citySlug string) ([]models.PlanRecord, error) {
	city := NormalizeSlug(citySlug)

	sql := fmt.Sprintf("SELECT %s FROM plans WHERE city = $1 ORDER BY base_rate ASC, name ASC", planCols)
	rows, err := s.pool.Query(ctx, sql, city)
	if err != nil {
		return nil, fmt.Errorf("query plans for %q failed: %w", city, err)
	}
	defer rows.Close()

	var plans []models.PlanRecord
	for rows.Next() {
		var p models.PlanRecord
		var rateType string
		var description *string

		err := rows.Scan(
			&p.ID, &p.Name, &p.Provider, &p.ProviderSlug, &p.ProviderRating,
			&p.BaseRate, &rateType, &p.ContractLength, &p.MonthlyFee,
			&p.GreenEnergyPercentage, &p.EarlyTerminationFee, &p.Features,
			&p.HasPromotion, &description,
		)
		if err != nil {
			return nil, fmt.Errorf("scan plan failed: %w", err)
		}

		p.RateType = models.RateType(rateType)
		if description != nil {
			p.Description = *description
		}
		plans = append(plans, normalizeRecord(p))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if plans == nil {
		return nil, fmt.Errorf("no plan data for city %q", citySlug)
	}

	return plans, nil
}

func (s *PGSource) Cities(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT city FROM plans ORDER BY city")
	if err != nil {
		return nil, fmt.Errorf("query cities failed: %w", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("scan city failed: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// ReplaceCity swaps out a city's plan set in one transaction. The ingest
// refresh uses this to publish a new snapshot atomically.
func (s *PGSource) ReplaceCity(ctx context.Context, citySlug string, plans []models.PlanRecord) error {
	city := NormalizeSlug(citySlug)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM plans WHERE city = $1", city); err != nil {
		return fmt.Errorf("clearing plans for %q: %w", city, err)
	}

	for _, p := range plans {
		_, err := tx.Exec(ctx, `
			INSERT INTO plans (
				city, id, name, provider, provider_slug, provider_rating,
				base_rate, rate_type, contract_length, monthly_fee,
				green_energy_percentage, early_termination_fee, features,
				has_promotion, description
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`,
			city, p.ID, p.Name, p.Provider, p.ProviderSlug, p.ProviderRating,
			p.BaseRate, string(p.RateType), p.ContractLength, p.MonthlyFee,
			p.GreenEnergyPercentage, p.EarlyTerminationFee, p.Features,
			p.HasPromotion, p.Description,
		)
		if err != nil {
			return fmt.Errorf("inserting plan %s: %w", p.ID, err)
		}
	}

	return tx.Commit(ctx)
}
