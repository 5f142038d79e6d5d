package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const performanceSnapshotsTable = "performance_snapshots ps"

type PerformanceSnapshotRepository interface {
	SaveOrUpdate(snapshot *domain.PerformanceSnapshot) error
	ListByEntity(level domain.EntityLevel, entityID string, startDate, endDate time.Time) ([]*domain.PerformanceSnapshot, error)
	TotalsForEntity(level domain.EntityLevel, entityID string, startDate, endDate time.Time) (domain.MetricTotals, error)
	DeleteOlderThan(days int) (int64, error)
}

type performanceSnapshotRepository struct {
	conn *postgres.Connection
}

func NewPerformanceSnapshotRepository(conn *postgres.Connection) PerformanceSnapshotRepository {
	return &performanceSnapshotRepository{
		conn: conn,
	}
}

// SaveOrUpdate grava a linha diária da entidade. Reprocessar o mesmo dia
// substitui os valores em vez de acumulá-los.
func (r *performanceSnapshotRepository) SaveOrUpdate(snapshot *domain.PerformanceSnapshot) error {
	query := squirrel.StatementBuilder.
		Insert("performance_snapshots").
		Columns("connection_id", "entity_level", "entity_id", "date", "impressions", "clicks", "spend_cents", "conversions", "revenue_cents").
		Values(
			snapshot.ConnectionID,
			snapshot.EntityLevel,
			snapshot.EntityID,
			snapshot.Date.Format("2006-01-02"),
			snapshot.Impressions,
			snapshot.Clicks,
			snapshot.SpendCents,
			snapshot.Conversions,
			snapshot.RevenueCents,
		).
		Suffix(`
			ON CONFLICT (entity_level, entity_id, date) DO UPDATE SET
				connection_id = EXCLUDED.connection_id,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend_cents = EXCLUDED.spend_cents,
				conversions = EXCLUDED.conversions,
				revenue_cents = EXCLUDED.revenue_cents,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *performanceSnapshotRepository) ListByEntity(level domain.EntityLevel, entityID string, startDate, endDate time.Time) ([]*domain.PerformanceSnapshot, error) {
	query, args, err := squirrel.
		Select("ps.id, ps.connection_id, ps.entity_level, ps.entity_id, ps.date, ps.impressions, ps.clicks, ps.spend_cents, ps.conversions, ps.revenue_cents, ps.created_at, ps.updated_at").
		From(performanceSnapshotsTable).
		Where(squirrel.Eq{"ps.entity_level": level, "ps.entity_id": entityID}).
		Where(squirrel.GtOrEq{"ps.date": startDate.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"ps.date": endDate.Format("2006-01-02")}).
		OrderBy("ps.date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.PerformanceSnapshot, 0)
	for rows.Next() {
		snapshot := &domain.PerformanceSnapshot{}
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.ConnectionID,
			&snapshot.EntityLevel,
			&snapshot.EntityID,
			&snapshot.Date,
			&snapshot.Impressions,
			&snapshot.Clicks,
			&snapshot.SpendCents,
			&snapshot.Conversions,
			&snapshot.RevenueCents,
			&snapshot.CreatedAt,
			&snapshot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear o snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return snapshots, nil
}

// TotalsForEntity agrega a janela direto no banco; é o insumo das regras
// de otimização.
func (r *performanceSnapshotRepository) TotalsForEntity(level domain.EntityLevel, entityID string, startDate, endDate time.Time) (domain.MetricTotals, error) {
	totals := domain.MetricTotals{}

	query, args, err := squirrel.
		Select(
			"COALESCE(SUM(ps.impressions), 0)",
			"COALESCE(SUM(ps.clicks), 0)",
			"COALESCE(SUM(ps.spend_cents), 0)",
			"COALESCE(SUM(ps.conversions), 0)",
			"COALESCE(SUM(ps.revenue_cents), 0)",
		).
		From(performanceSnapshotsTable).
		Where(squirrel.Eq{"ps.entity_level": level, "ps.entity_id": entityID}).
		Where(squirrel.GtOrEq{"ps.date": startDate.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"ps.date": endDate.Format("2006-01-02")}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return totals, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	err = row.Scan(
		&totals.Impressions,
		&totals.Clicks,
		&totals.SpendCents,
		&totals.Conversions,
		&totals.RevenueCents,
	)
	if err != nil {
		return totals, fmt.Errorf("erro ao escanear os totais: %w", err)
	}

	return totals, nil
}

func (r *performanceSnapshotRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	query, args, err := squirrel.
		Delete("performance_snapshots").
		Where(squirrel.Lt{"date": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}
