package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const optimizationLogsTable = "optimization_logs ol"

type OptimizationLogRepository interface {
	Save(entry *domain.OptimizationLogEntry) error
	ListByCycle(cycleID string) ([]*domain.OptimizationLogEntry, error)
	ListRecentByConnection(connectionID string, limit uint64) ([]*domain.OptimizationLogEntry, error)
}

type optimizationLogRepository struct {
	conn *postgres.Connection
}

func NewOptimizationLogRepository(conn *postgres.Connection) OptimizationLogRepository {
	return &optimizationLogRepository{
		conn: conn,
	}
}

// Save acrescenta uma entrada à trilha de auditoria. A trilha é só de
// inserção; entradas nunca são atualizadas.
func (r *optimizationLogRepository) Save(entry *domain.OptimizationLogEntry) error {
	if entry.Severity == "" {
		entry.Severity = domain.SeverityForAction(entry.Action)
	}

	query := squirrel.StatementBuilder.
		Insert("optimization_logs").
		Columns("cycle_id", "connection_id", "action", "severity", "entity_level", "entity_id", "rule_name", "metric_value", "threshold", "details").
		Values(
			entry.CycleID,
			entry.ConnectionID,
			entry.Action,
			entry.Severity,
			nullLevel(entry.EntityLevel),
			nullString(entry.EntityID),
			nullString(entry.RuleName),
			nullFloat64(entry.MetricValue),
			nullFloat64(entry.Threshold),
			nullString(entry.Details),
		).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.QueryRow(sqlQuery, args...).Scan(&entry.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *optimizationLogRepository) ListByCycle(cycleID string) ([]*domain.OptimizationLogEntry, error) {
	query, args, err := squirrel.
		Select("ol.id, ol.cycle_id, ol.connection_id, ol.action, ol.severity, ol.entity_level, ol.entity_id, ol.rule_name, ol.metric_value, ol.threshold, ol.details, ol.created_at").
		From(optimizationLogsTable).
		Where(squirrel.Eq{"ol.cycle_id": cycleID}).
		OrderBy("ol.id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.listEntries(query, args)
}

func (r *optimizationLogRepository) ListRecentByConnection(connectionID string, limit uint64) ([]*domain.OptimizationLogEntry, error) {
	query, args, err := squirrel.
		Select("ol.id, ol.cycle_id, ol.connection_id, ol.action, ol.severity, ol.entity_level, ol.entity_id, ol.rule_name, ol.metric_value, ol.threshold, ol.details, ol.created_at").
		From(optimizationLogsTable).
		Where(squirrel.Eq{"ol.connection_id": connectionID}).
		OrderBy("ol.id DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.listEntries(query, args)
}

func (r *optimizationLogRepository) listEntries(query string, args []interface{}) ([]*domain.OptimizationLogEntry, error) {
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.OptimizationLogEntry, 0)
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear a entrada de otimização: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

func (r *optimizationLogRepository) scanEntry(rows *sql.Rows) (*domain.OptimizationLogEntry, error) {
	entry := &domain.OptimizationLogEntry{}
	var entityLevel, entityID, ruleName, details sql.NullString
	var metricValue, threshold sql.NullFloat64

	err := rows.Scan(
		&entry.ID,
		&entry.CycleID,
		&entry.ConnectionID,
		&entry.Action,
		&entry.Severity,
		&entityLevel,
		&entityID,
		&ruleName,
		&metricValue,
		&threshold,
		&details,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if entityLevel.Valid {
		level := domain.EntityLevel(entityLevel.String)
		entry.EntityLevel = &level
	}
	entry.EntityID = stringPtr(entityID)
	entry.RuleName = stringPtr(ruleName)
	entry.MetricValue = float64Ptr(metricValue)
	entry.Threshold = float64Ptr(threshold)
	entry.Details = stringPtr(details)

	return entry, nil
}

func nullLevel(level *domain.EntityLevel) sql.NullString {
	if level == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: string(*level), Valid: true}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *value, Valid: true}
}

func nullFloat64(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}

	v := value.String
	return &v
}

func float64Ptr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}

	v := value.Float64
	return &v
}
