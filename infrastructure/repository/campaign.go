package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const campaignsTable = "campaigns cp"

type CampaignRepository interface {
	GetByID(campaignID string) (*domain.Campaign, error)
	GetByRemoteID(connectionID, remoteID string) (*domain.Campaign, error)
	ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.Campaign, error)
	SaveOrUpdate(campaign *domain.Campaign) error
	UpdateStatus(campaignID string, status domain.EntityStatus) error
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

func (r *campaignRepository) GetByID(campaignID string) (*domain.Campaign, error) {
	return r.getCampaign(squirrel.Eq{"cp.id": campaignID})
}

func (r *campaignRepository) GetByRemoteID(connectionID, remoteID string) (*domain.Campaign, error) {
	return r.getCampaign(squirrel.Eq{"cp.connection_id": connectionID, "cp.remote_id": remoteID})
}

func (r *campaignRepository) getCampaign(whereClause map[string]interface{}) (*domain.Campaign, error) {
	query, args, err := squirrel.
		Select("cp.id, cp.connection_id, cp.remote_id, cp.name, cp.status, cp.objective, cp.daily_budget_cents, cp.lifetime_budget_cents, cp.start_time, cp.end_time, cp.created_at, cp.updated_at").
		From(campaignsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	campaign, err := r.scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear a campanha: %w", err)
	}

	return campaign, nil
}

func (r *campaignRepository) ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.Campaign, error) {
	queryBuilder := squirrel.
		Select("cp.id, cp.connection_id, cp.remote_id, cp.name, cp.status, cp.objective, cp.daily_budget_cents, cp.lifetime_budget_cents, cp.start_time, cp.end_time, cp.created_at, cp.updated_at").
		From(campaignsTable).
		Where(squirrel.Eq{"cp.connection_id": connectionID}).
		OrderBy("cp.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(status) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"cp.status": status})
	}

	query, args, err := queryBuilder.ToSql()
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

	campaigns := make([]*domain.Campaign, 0)
	for rows.Next() {
		campaign, err := r.scanCampaignRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear a campanha: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return campaigns, nil
}

// SaveOrUpdate insere a campanha ou atualiza a linha existente para o
// mesmo par (conexão, id remoto). O id local sobrevive ao conflito e é
// devolvido no próprio argumento.
func (r *campaignRepository) SaveOrUpdate(campaign *domain.Campaign) error {
	query := squirrel.StatementBuilder.
		Insert("campaigns").
		Columns("id", "connection_id", "remote_id", "name", "status", "objective", "daily_budget_cents", "lifetime_budget_cents", "start_time", "end_time").
		Values(
			campaign.ID,
			campaign.ConnectionID,
			campaign.RemoteID,
			campaign.Name,
			campaign.Status,
			campaign.Objective,
			nullInt64(campaign.DailyBudgetCents),
			nullInt64(campaign.LifetimeBudgetCents),
			nullTime(campaign.StartTime),
			nullTime(campaign.EndTime),
		).
		Suffix(`
			ON CONFLICT (connection_id, remote_id) DO UPDATE SET
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				objective = EXCLUDED.objective,
				daily_budget_cents = EXCLUDED.daily_budget_cents,
				lifetime_budget_cents = EXCLUDED.lifetime_budget_cents,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				updated_at = NOW()
			RETURNING id
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	var id string
	err = r.conn.QueryRow(sqlQuery, args...).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	campaign.ID = id

	return nil
}

func (r *campaignRepository) UpdateStatus(campaignID string, status domain.EntityStatus) error {
	if campaignID == "" {
		return errors.New("o id da campanha é obrigatório")
	}

	query, args, err := squirrel.
		Update("campaigns").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": campaignID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("campanha não encontrada")
	}

	return nil
}

func (r *campaignRepository) scanCampaign(row *sql.Row) (*domain.Campaign, error) {
	campaign := &domain.Campaign{}
	var dailyBudget, lifetimeBudget sql.NullInt64
	var startTime, endTime sql.NullTime

	err := row.Scan(
		&campaign.ID,
		&campaign.ConnectionID,
		&campaign.RemoteID,
		&campaign.Name,
		&campaign.Status,
		&campaign.Objective,
		&dailyBudget,
		&lifetimeBudget,
		&startTime,
		&endTime,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.DailyBudgetCents = int64Ptr(dailyBudget)
	campaign.LifetimeBudgetCents = int64Ptr(lifetimeBudget)
	campaign.StartTime = timePtr(startTime)
	campaign.EndTime = timePtr(endTime)

	return campaign, nil
}

func (r *campaignRepository) scanCampaignRows(rows *sql.Rows) (*domain.Campaign, error) {
	campaign := &domain.Campaign{}
	var dailyBudget, lifetimeBudget sql.NullInt64
	var startTime, endTime sql.NullTime

	err := rows.Scan(
		&campaign.ID,
		&campaign.ConnectionID,
		&campaign.RemoteID,
		&campaign.Name,
		&campaign.Status,
		&campaign.Objective,
		&dailyBudget,
		&lifetimeBudget,
		&startTime,
		&endTime,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	campaign.DailyBudgetCents = int64Ptr(dailyBudget)
	campaign.LifetimeBudgetCents = int64Ptr(lifetimeBudget)
	campaign.StartTime = timePtr(startTime)
	campaign.EndTime = timePtr(endTime)

	return campaign, nil
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *value, Valid: true}
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}

	v := value.Int64
	return &v
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}

	t := value.Time
	return &t
}
