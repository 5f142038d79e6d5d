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
	"github.com/vfg2006/campaign-manager-api/pkg/cipher"
)

const connectionsTable = "connections c"

type ConnectionRepository interface {
	GetByID(connectionID string) (*domain.Connection, error)
	GetByTenantAndAccount(tenantID, accountID string) (*domain.Connection, error)
	ListByStatus(status []domain.ConnectionStatus) ([]*domain.Connection, error)
	SaveOrUpdate(connection *domain.Connection) error
	UpdateCredentials(connectionID, accessToken string, expiresAt *time.Time) error
	UpdateStatus(connectionID string, status domain.ConnectionStatus) error
}

type connectionRepository struct {
	conn   *postgres.Connection
	cipher *cipher.Cipher
}

func NewConnectionRepository(conn *postgres.Connection, cip *cipher.Cipher) ConnectionRepository {
	return &connectionRepository{
		conn:   conn,
		cipher: cip,
	}
}

func (r *connectionRepository) GetByID(connectionID string) (*domain.Connection, error) {
	query, args, err := squirrel.
		Select("c.id, c.tenant_id, c.account_id, c.origin, c.access_token, c.token_expires_at, c.status, c.created_at, c.updated_at").
		From(connectionsTable).
		Where(squirrel.Eq{"c.id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	connection, err := r.scanConnection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear a conexão: %w", err)
	}

	return connection, nil
}

func (r *connectionRepository) GetByTenantAndAccount(tenantID, accountID string) (*domain.Connection, error) {
	query, args, err := squirrel.
		Select("c.id, c.tenant_id, c.account_id, c.origin, c.access_token, c.token_expires_at, c.status, c.created_at, c.updated_at").
		From(connectionsTable).
		Where(squirrel.Eq{"c.tenant_id": tenantID, "c.account_id": accountID}).
		OrderBy("c.created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	connection, err := r.scanConnection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear a conexão: %w", err)
	}

	return connection, nil
}

func (r *connectionRepository) ListByStatus(status []domain.ConnectionStatus) ([]*domain.Connection, error) {
	queryBuilder := squirrel.
		Select("c.id, c.tenant_id, c.account_id, c.origin, c.access_token, c.token_expires_at, c.status, c.created_at, c.updated_at").
		From(connectionsTable).
		OrderBy("c.created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(status) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"c.status": status})
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

	connections := make([]*domain.Connection, 0)
	for rows.Next() {
		connection, err := r.scanConnectionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear a conexão: %w", err)
		}
		connections = append(connections, connection)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return connections, nil
}

func (r *connectionRepository) SaveOrUpdate(connection *domain.Connection) error {
	sealedToken, err := r.sealToken(connection.AccessToken)
	if err != nil {
		return err
	}

	query := squirrel.StatementBuilder.
		Insert("connections").
		Columns("id", "tenant_id", "account_id", "origin", "access_token", "token_expires_at", "status").
		Values(
			connection.ID,
			connection.TenantID,
			connection.AccountID,
			connection.Origin,
			sealedToken,
			nullTime(connection.TokenExpiresAt),
			connection.Status,
		).
		Suffix(`
			ON CONFLICT (tenant_id, account_id, origin) DO UPDATE SET
				access_token = EXCLUDED.access_token,
				token_expires_at = EXCLUDED.token_expires_at,
				status = EXCLUDED.status,
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

	connection.ID = id

	return nil
}

// UpdateCredentials grava um novo token de acesso após a renovação junto
// à plataforma. O token é selado antes de tocar o banco.
func (r *connectionRepository) UpdateCredentials(connectionID, accessToken string, expiresAt *time.Time) error {
	if connectionID == "" {
		return errors.New("o id da conexão é obrigatório")
	}

	sealedToken, err := r.sealToken(accessToken)
	if err != nil {
		return err
	}

	query, args, err := squirrel.
		Update("connections").
		Set("access_token", sealedToken).
		Set("token_expires_at", nullTime(expiresAt)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.execExpectingRow(query, args, "conexão não encontrada")
}

func (r *connectionRepository) UpdateStatus(connectionID string, status domain.ConnectionStatus) error {
	if connectionID == "" {
		return errors.New("o id da conexão é obrigatório")
	}

	query, args, err := squirrel.
		Update("connections").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.execExpectingRow(query, args, "conexão não encontrada")
}

func (r *connectionRepository) execExpectingRow(query string, args []interface{}, notFound string) error {
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
		return errors.New(notFound)
	}

	return nil
}

func (r *connectionRepository) sealToken(accessToken string) (sql.NullString, error) {
	if accessToken == "" {
		return sql.NullString{}, nil
	}

	sealed, err := r.cipher.Seal(accessToken)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("erro ao selar o token de acesso: %w", err)
	}

	return sql.NullString{String: sealed, Valid: true}, nil
}

func (r *connectionRepository) scanConnection(row *sql.Row) (*domain.Connection, error) {
	connection := &domain.Connection{}
	var sealedToken sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(
		&connection.ID,
		&connection.TenantID,
		&connection.AccountID,
		&connection.Origin,
		&sealedToken,
		&expiresAt,
		&connection.Status,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := r.openInto(connection, sealedToken, expiresAt); err != nil {
		return nil, err
	}

	return connection, nil
}

func (r *connectionRepository) scanConnectionRows(rows *sql.Rows) (*domain.Connection, error) {
	connection := &domain.Connection{}
	var sealedToken sql.NullString
	var expiresAt sql.NullTime

	err := rows.Scan(
		&connection.ID,
		&connection.TenantID,
		&connection.AccountID,
		&connection.Origin,
		&sealedToken,
		&expiresAt,
		&connection.Status,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := r.openInto(connection, sealedToken, expiresAt); err != nil {
		return nil, err
	}

	return connection, nil
}

func (r *connectionRepository) openInto(connection *domain.Connection, sealedToken sql.NullString, expiresAt sql.NullTime) error {
	if sealedToken.Valid && sealedToken.String != "" {
		accessToken, err := r.cipher.Open(sealedToken.String)
		if err != nil {
			return fmt.Errorf("erro ao abrir o token da conexão %s: %w", connection.ID, err)
		}
		connection.AccessToken = accessToken
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		connection.TokenExpiresAt = &t
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}
