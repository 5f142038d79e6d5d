package metaclient

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
)

// tokenRefreshThreshold define quão perto da expiração a credencial passa
// a ser renovada antes de novas chamadas.
const tokenRefreshThreshold = 5 * time.Minute

// EnsureFreshCredential devolve um token utilizável para a conexão,
// renovando junto à plataforma quando a expiração está próxima.
// Credenciais sandbox nunca são renovadas. A renovação bem-sucedida é
// persistida e refletida na própria conexão.
func (c *MetaClient) EnsureFreshCredential(ctx context.Context, conn *domain.Connection) (string, error) {
	if conn == nil || conn.AccessToken == "" {
		return "", fmt.Errorf("conexão sem credencial de acesso")
	}

	if conn.IsSandbox() {
		return conn.AccessToken, nil
	}

	if conn.TokenExpiresAt == nil || time.Until(*conn.TokenExpiresAt) > tokenRefreshThreshold {
		return conn.AccessToken, nil
	}

	logger := log.ForContext(ctx).WithField("connection_id", conn.ID)
	logger.Info("credenciais: token próximo de expirar, renovando")

	tokenResp, err := c.ExchangeLongLivedToken(ctx, conn.Credential())
	if err != nil {
		metrics.IncTokenRefresh("error")
		return "", fmt.Errorf("erro ao renovar a credencial da conexão %s: %w", conn.ID, err)
	}

	expiresAt := CalculateTokenExpiration(tokenResp.ExpiresIn)
	conn.AccessToken = tokenResp.AccessToken
	conn.TokenExpiresAt = &expiresAt

	if c.connections != nil {
		if err := c.connections.UpdateCredentials(conn.ID, tokenResp.AccessToken, &expiresAt); err != nil {
			// O token renovado segue válido em memória; a persistência
			// volta a ser tentada na próxima renovação.
			logger.WithError(err).Error("credenciais: falha ao persistir o token renovado")
		}
	}

	metrics.IncTokenRefresh("ok")
	logger.Infof("credenciais: token renovado, expira em %s", FormatDuration(tokenResp.ExpiresIn))

	return tokenResp.AccessToken, nil
}
