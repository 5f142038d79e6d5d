package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const adSetsTable = "ad_sets ads"

type AdSetRepository interface {
	GetByID(adSetID string) (*domain.AdSet, error)
	GetByRemoteID(connectionID, remoteID string) (*domain.AdSet, error)
	ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.AdSet, error)
	SaveOrUpdate(adSet *domain.AdSet) error
	UpdateStatus(adSetID string, status domain.EntityStatus) error
	UpdateDailyBudget(adSetID string, dailyBudgetCents int64) error
}

type adSetRepository struct {
	conn *postgres.Connection
}

func NewAdSetRepository(conn *postgres.Connection) AdSetRepository {
	return &adSetRepository{
		conn: conn,
	}
}

func (r *adSetRepository) GetByID(adSetID string) (*domain.AdSet, error) {
	return r.getAdSet(squirrel.Eq{"ads.id": adSetID})
}

func (r *adSetRepository) GetByRemoteID(connectionID, remoteID string) (*domain.AdSet, error) {
	return r.getAdSet(squirrel.Eq{"ads.connection_id": connectionID, "ads.remote_id": remoteID})
}

func (r *adSetRepository) getAdSet(whereClause map[string]interface{}) (*domain.AdSet, error) {
	query, args, err := squirrel.
		Select("ads.id, ads.connection_id, ads.campaign_id, ads.remote_id, ads.remote_campaign_id, ads.name, ads.status, ads.daily_budget_cents, ads.lifetime_budget_cents, ads.optimization_goal, ads.billing_event, ads.targeting, ads.start_time, ads.end_time, ads.created_at, ads.updated_at").
		From(adSetsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	adSet, err := r.scanAdSet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear o conjunto de anúncios: %w", err)
	}

	return adSet, nil
}

func (r *adSetRepository) ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.AdSet, error) {
	queryBuilder := squirrel.
		Select("ads.id, ads.connection_id, ads.campaign_id, ads.remote_id, ads.remote_campaign_id, ads.name, ads.status, ads.daily_budget_cents, ads.lifetime_budget_cents, ads.optimization_goal, ads.billing_event, ads.targeting, ads.start_time, ads.end_time, ads.created_at, ads.updated_at").
		From(adSetsTable).
		Where(squirrel.Eq{"ads.connection_id": connectionID}).
		OrderBy("ads.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(status) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"ads.status": status})
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

	adSets := make([]*domain.AdSet, 0)
	for rows.Next() {
		adSet, err := r.scanAdSetRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear o conjunto de anúncios: %w", err)
		}
		adSets = append(adSets, adSet)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return adSets, nil
}

func (r *adSetRepository) SaveOrUpdate(adSet *domain.AdSet) error {
	var targetingJSON []byte
	var err error

	if adSet.Targeting != nil {
		targetingJSON, err = json.Marshal(adSet.Targeting)
		if err != nil {
			return fmt.Errorf("erro ao serializar a segmentação para JSON: %w", err)
		}
	}

	query := squirrel.StatementBuilder.
		Insert("ad_sets").
		Columns("id", "connection_id", "campaign_id", "remote_id", "remote_campaign_id", "name", "status", "daily_budget_cents", "lifetime_budget_cents", "optimization_goal", "billing_event", "targeting", "start_time", "end_time").
		Values(
			adSet.ID,
			adSet.ConnectionID,
			adSet.CampaignID,
			adSet.RemoteID,
			adSet.RemoteCampaignID,
			adSet.Name,
			adSet.Status,
			nullInt64(adSet.DailyBudgetCents),
			nullInt64(adSet.LifetimeBudgetCents),
			adSet.OptimizationGoal,
			adSet.BillingEvent,
			targetingJSON,
			nullTime(adSet.StartTime),
			nullTime(adSet.EndTime),
		).
		Suffix(`
			ON CONFLICT (connection_id, remote_id) DO UPDATE SET
				campaign_id = EXCLUDED.campaign_id,
				remote_campaign_id = EXCLUDED.remote_campaign_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				daily_budget_cents = EXCLUDED.daily_budget_cents,
				lifetime_budget_cents = EXCLUDED.lifetime_budget_cents,
				optimization_goal = EXCLUDED.optimization_goal,
				billing_event = EXCLUDED.billing_event,
				targeting = EXCLUDED.targeting,
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

	adSet.ID = id

	return nil
}

func (r *adSetRepository) UpdateStatus(adSetID string, status domain.EntityStatus) error {
	if adSetID == "" {
		return errors.New("o id do conjunto de anúncios é obrigatório")
	}

	query, args, err := squirrel.
		Update("ad_sets").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": adSetID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.execExpectingRow(query, args)
}

// UpdateDailyBudget grava o novo orçamento diário decidido pelo motor de
// otimização, sempre depois da atualização remota ter sido aceita.
func (r *adSetRepository) UpdateDailyBudget(adSetID string, dailyBudgetCents int64) error {
	if adSetID == "" {
		return errors.New("o id do conjunto de anúncios é obrigatório")
	}

	query, args, err := squirrel.
		Update("ad_sets").
		Set("daily_budget_cents", dailyBudgetCents).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": adSetID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.execExpectingRow(query, args)
}

func (r *adSetRepository) execExpectingRow(query string, args []interface{}) error {
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
		return errors.New("conjunto de anúncios não encontrado")
	}

	return nil
}

func (r *adSetRepository) scanAdSet(row *sql.Row) (*domain.AdSet, error) {
	adSet := &domain.AdSet{}
	var dailyBudget, lifetimeBudget sql.NullInt64
	var startTime, endTime sql.NullTime
	var targetingJSON []byte

	err := row.Scan(
		&adSet.ID,
		&adSet.ConnectionID,
		&adSet.CampaignID,
		&adSet.RemoteID,
		&adSet.RemoteCampaignID,
		&adSet.Name,
		&adSet.Status,
		&dailyBudget,
		&lifetimeBudget,
		&adSet.OptimizationGoal,
		&adSet.BillingEvent,
		&targetingJSON,
		&startTime,
		&endTime,
		&adSet.CreatedAt,
		&adSet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	adSet.DailyBudgetCents = int64Ptr(dailyBudget)
	adSet.LifetimeBudgetCents = int64Ptr(lifetimeBudget)
	adSet.StartTime = timePtr(startTime)
	adSet.EndTime = timePtr(endTime)

	if targetingJSON != nil {
		targeting := &domain.Targeting{}
		if err := json.Unmarshal(targetingJSON, targeting); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de targeting: %w", err)
		}
		adSet.Targeting = targeting
	}

	return adSet, nil
}

func (r *adSetRepository) scanAdSetRows(rows *sql.Rows) (*domain.AdSet, error) {
	adSet := &domain.AdSet{}
	var dailyBudget, lifetimeBudget sql.NullInt64
	var startTime, endTime sql.NullTime
	var targetingJSON []byte

	err := rows.Scan(
		&adSet.ID,
		&adSet.ConnectionID,
		&adSet.CampaignID,
		&adSet.RemoteID,
		&adSet.RemoteCampaignID,
		&adSet.Name,
		&adSet.Status,
		&dailyBudget,
		&lifetimeBudget,
		&adSet.OptimizationGoal,
		&adSet.BillingEvent,
		&targetingJSON,
		&startTime,
		&endTime,
		&adSet.CreatedAt,
		&adSet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	adSet.DailyBudgetCents = int64Ptr(dailyBudget)
	adSet.LifetimeBudgetCents = int64Ptr(lifetimeBudget)
	adSet.StartTime = timePtr(startTime)
	adSet.EndTime = timePtr(endTime)

	if targetingJSON != nil {
		targeting := &domain.Targeting{}
		if err := json.Unmarshal(targetingJSON, targeting); err != nil {
			return nil, fmt.Errorf("erro ao deserializar JSON de targeting: %w", err)
		}
		adSet.Targeting = targeting
	}

	return adSet, nil
}
