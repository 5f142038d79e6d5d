package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/campaign-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const adsTable = "ads ad"

type AdRepository interface {
	GetByID(adID string) (*domain.Ad, error)
	GetByRemoteID(connectionID, remoteID string) (*domain.Ad, error)
	ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.Ad, error)
	SaveOrUpdate(ad *domain.Ad) error
	UpdateStatus(adID string, status domain.EntityStatus) error
}

type adRepository struct {
	conn *postgres.Connection
}

func NewAdRepository(conn *postgres.Connection) AdRepository {
	return &adRepository{
		conn: conn,
	}
}

func (r *adRepository) GetByID(adID string) (*domain.Ad, error) {
	return r.getAd(squirrel.Eq{"ad.id": adID})
}

func (r *adRepository) GetByRemoteID(connectionID, remoteID string) (*domain.Ad, error) {
	return r.getAd(squirrel.Eq{"ad.connection_id": connectionID, "ad.remote_id": remoteID})
}

func (r *adRepository) getAd(whereClause map[string]interface{}) (*domain.Ad, error) {
	query, args, err := squirrel.
		Select("ad.id, ad.connection_id, ad.ad_set_id, ad.remote_id, ad.remote_ad_set_id, ad.name, ad.status, ad.creative_id, ad.created_at, ad.updated_at").
		From(adsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	ad, err := r.scanAd(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear o anúncio: %w", err)
	}

	return ad, nil
}

func (r *adRepository) ListByConnection(connectionID string, status []domain.EntityStatus) ([]*domain.Ad, error) {
	queryBuilder := squirrel.
		Select("ad.id, ad.connection_id, ad.ad_set_id, ad.remote_id, ad.remote_ad_set_id, ad.name, ad.status, ad.creative_id, ad.created_at, ad.updated_at").
		From(adsTable).
		Where(squirrel.Eq{"ad.connection_id": connectionID}).
		OrderBy("ad.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(status) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"ad.status": status})
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

	ads := make([]*domain.Ad, 0)
	for rows.Next() {
		ad, err := r.scanAdRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear o anúncio: %w", err)
		}
		ads = append(ads, ad)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return ads, nil
}

func (r *adRepository) SaveOrUpdate(ad *domain.Ad) error {
	query := squirrel.StatementBuilder.
		Insert("ads").
		Columns("id", "connection_id", "ad_set_id", "remote_id", "remote_ad_set_id", "name", "status", "creative_id").
		Values(
			ad.ID,
			ad.ConnectionID,
			ad.AdSetID,
			ad.RemoteID,
			ad.RemoteAdSetID,
			ad.Name,
			ad.Status,
			ad.CreativeID,
		).
		Suffix(`
			ON CONFLICT (connection_id, remote_id) DO UPDATE SET
				ad_set_id = EXCLUDED.ad_set_id,
				remote_ad_set_id = EXCLUDED.remote_ad_set_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				creative_id = EXCLUDED.creative_id,
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

	ad.ID = id

	return nil
}

func (r *adRepository) UpdateStatus(adID string, status domain.EntityStatus) error {
	if adID == "" {
		return errors.New("o id do anúncio é obrigatório")
	}

	query, args, err := squirrel.
		Update("ads").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": adID}).
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
		return errors.New("anúncio não encontrado")
	}

	return nil
}

func (r *adRepository) scanAd(row *sql.Row) (*domain.Ad, error) {
	ad := &domain.Ad{}

	err := row.Scan(
		&ad.ID,
		&ad.ConnectionID,
		&ad.AdSetID,
		&ad.RemoteID,
		&ad.RemoteAdSetID,
		&ad.Name,
		&ad.Status,
		&ad.CreativeID,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return ad, nil
}

func (r *adRepository) scanAdRows(rows *sql.Rows) (*domain.Ad, error) {
	ad := &domain.Ad{}

	err := rows.Scan(
		&ad.ID,
		&ad.ConnectionID,
		&ad.AdSetID,
		&ad.RemoteID,
		&ad.RemoteAdSetID,
		&ad.Name,
		&ad.Status,
		&ad.CreativeID,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return ad, nil
}
