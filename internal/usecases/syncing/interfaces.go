package syncing

import (
	"context"

	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

// Syncer define as operações de sincronização entre o estado local e a
// plataforma de anúncios.
type Syncer interface {
	// Pull importa a hierarquia de campanhas, conjuntos e anúncios de uma
	// conexão, substituindo o retrato local pelo remoto.
	Pull(ctx context.Context, connectionID string) (*domain.SyncResult, error)

	// PullPerformance importa as métricas diárias das entidades não
	// arquivadas da conexão para a janela de lookback informada.
	PullPerformance(ctx context.Context, connectionID string, lookbackDays int) (*domain.PerformanceSyncResult, error)

	// Push propaga uma entidade local para a plataforma, criando quando o
	// id remoto ainda é temporário e atualizando caso contrário.
	Push(ctx context.Context, ref domain.EntityRef) (*domain.PushResult, error)
}
