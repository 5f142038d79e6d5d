package domain

import (
	"strings"
	"time"
)

type ConnectionStatus string

const (
	ConnectionStatusActive       ConnectionStatus = "ACTIVE"
	ConnectionStatusExpired      ConnectionStatus = "EXPIRED"
	ConnectionStatusRevoked      ConnectionStatus = "REVOKED"
	ConnectionStatusDisconnected ConnectionStatus = "DISCONNECTED"
)

// SandboxTokenPrefix marca credenciais de teste que nunca passam pelo
// fluxo de renovação junto à plataforma.
const SandboxTokenPrefix = "SANDBOX_"

type Connection struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"tenant_id"`
	AccountID      string           `json:"account_id"`
	Origin         string           `json:"origin"`
	AccessToken    string           `json:"-"`
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty"`
	Status         ConnectionStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Credential identifica o portador das chamadas feitas à plataforma de anúncios.
// Principal é a chave usada para contabilizar o rate limit compartilhado.
type Credential struct {
	AccessToken string
	Principal   string
}

func (c *Connection) Credential() Credential {
	return Credential{
		AccessToken: c.AccessToken,
		Principal:   c.TenantID,
	}
}

func (c *Connection) IsSandbox() bool {
	return strings.HasPrefix(c.AccessToken, SandboxTokenPrefix)
}

func (c *Connection) IsUsable() bool {
	return c != nil && c.Status == ConnectionStatusActive && c.AccessToken != ""
}

type ConnectionResponse struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"tenant_id"`
	AccountID      string           `json:"account_id"`
	Origin         string           `json:"origin"`
	Status         ConnectionStatus `json:"status"`
	TokenExpiresAt *time.Time       `json:"token_expires_at,omitempty"`
	HasToken       bool             `json:"hasToken"`
	CreatedAt      time.Time        `json:"created_at"`
}

func (c *Connection) ToResponse() *ConnectionResponse {
	return &ConnectionResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		AccountID:      c.AccountID,
		Origin:         c.Origin,
		Status:         c.Status,
		TokenExpiresAt: c.TokenExpiresAt,
		HasToken:       c.AccessToken != "",
		CreatedAt:      c.CreatedAt,
	}
}
