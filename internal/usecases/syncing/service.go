package syncing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/mapper"
	"github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
	"github.com/vfg2006/campaign-manager-api/pkg/utils"
)

// Campos pedidos à plataforma em cada listagem. Pedir só o necessário
// reduz o payload e evita campos que exigem permissões extras.
const (
	campaignFields = "id,name,status,effective_status,objective,daily_budget,lifetime_budget,start_time,stop_time"
	adSetFields    = "id,name,status,effective_status,campaign_id,daily_budget,lifetime_budget,optimization_goal,billing_event,targeting,start_time,end_time"
	adFields       = "id,name,status,effective_status,adset_id,creative{id}"
	insightFields  = "date_start,date_stop,impressions,clicks,spend,actions,action_values"
)

const defaultLookbackDays = 7

// Limite de gravações simultâneas por nível durante o upsert. Contas
// grandes têm milhares de anúncios; sem o teto, o pool de conexões do
// banco esgota.
const maxConcurrentUpserts = 5

// Entidades arquivadas ou removidas ficam fora da varredura de métricas;
// pausadas e rascunhos continuam dentro para preservar o histórico
// recente.
var nonArchivedStatuses = []domain.EntityStatus{
	domain.EntityStatusActive,
	domain.EntityStatusPaused,
	domain.EntityStatusDraft,
}

// Service implementa a interface Syncer sobre o client da plataforma e
// os repositórios locais.
type Service struct {
	client         metaclient.Client
	connectionRepo repository.ConnectionRepository
	campaignRepo   repository.CampaignRepository
	adSetRepo      repository.AdSetRepository
	adRepo         repository.AdRepository
	snapshotRepo   repository.PerformanceSnapshotRepository
}

func NewService(
	client metaclient.Client,
	connectionRepo repository.ConnectionRepository,
	campaignRepo repository.CampaignRepository,
	adSetRepo repository.AdSetRepository,
	adRepo repository.AdRepository,
	snapshotRepo repository.PerformanceSnapshotRepository,
) Syncer {
	return &Service{
		client:         client,
		connectionRepo: connectionRepo,
		campaignRepo:   campaignRepo,
		adSetRepo:      adSetRepo,
		adRepo:         adRepo,
		snapshotRepo:   snapshotRepo,
	}
}

// Pull importa campanhas, conjuntos e anúncios da conexão. As três
// listagens não dependem umas das outras e rodam em paralelo; a fase
// de upsert segue a ordem campanha -> conjunto -> anúncio, necessária
// para resolver os vínculos locais na mesma passada, mas dentro de
// cada nível as gravações rodam em paralelo, já que registros irmãos
// escrevem chaves distintas.
func (s *Service) Pull(ctx context.Context, connectionID string) (*domain.SyncResult, error) {
	conn, cred, err := s.usableConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	type fetchOutcome struct {
		raws []json.RawMessage
		err  error
	}

	edges := []struct {
		edge   string
		fields string
		what   string
	}{
		{"campaigns", campaignFields, "campanhas"},
		{"adsets", adSetFields, "conjuntos de anúncios"},
		{"ads", adFields, "anúncios"},
	}

	outcomes := make([]fetchOutcome, len(edges))

	var wg sync.WaitGroup
	for i, e := range edges {
		wg.Add(1)
		go func(i int, edge, fields string) {
			defer wg.Done()

			params := url.Values{}
			params.Set("fields", fields)

			raws, err := s.client.FetchAll(ctx, fmt.Sprintf("%s/%s", conn.AccountID, edge), params, cred)
			outcomes[i] = fetchOutcome{raws: raws, err: err}
		}(i, e.edge, e.fields)
	}
	wg.Wait()

	for i, outcome := range outcomes {
		if outcome.err != nil {
			return nil, s.platformError(outcome.err, conn, edges[i].what)
		}
	}

	result := &domain.SyncResult{}

	campaignIDsByRemote, err := s.upsertCampaigns(conn, outcomes[0].raws, result)
	if err != nil {
		return nil, err
	}

	adSetIDsByRemote, err := s.upsertAdSets(conn, outcomes[1].raws, campaignIDsByRemote, result)
	if err != nil {
		return nil, err
	}

	if err := s.upsertAds(conn, outcomes[2].raws, adSetIDsByRemote, result); err != nil {
		return nil, err
	}

	result.DurationMs = time.Since(start).Milliseconds()

	metrics.AddEntitiesSynced("campaign", result.Campaigns)
	metrics.AddEntitiesSynced("ad_set", result.AdSets)
	metrics.AddEntitiesSynced("ad", result.Ads)

	logrus.WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"campaigns":     result.Campaigns,
		"ad_sets":       result.AdSets,
		"ads":           result.Ads,
		"skipped":       result.Skipped,
		"duration_ms":   result.DurationMs,
	}).Info("Sincronização de entidades concluída")

	return result, nil
}

func (s *Service) upsertCampaigns(conn *domain.Connection, raws []json.RawMessage, result *domain.SyncResult) (map[string]string, error) {
	idsByRemote := make(map[string]string, len(raws))

	semaphore := make(chan struct{}, maxConcurrentUpserts)

	var wg sync.WaitGroup

	// Mutex protege o mapa de vínculos, o contador e o primeiro erro.
	var mu sync.Mutex
	var firstErr error

	for _, raw := range raws {
		var rc metadomain.Campaign
		if err := json.Unmarshal(raw, &rc); err != nil {
			logrus.WithError(err).Warn("Campanha remota mal formada. Pulando.")
			result.Skipped++
			continue
		}

		campaign, known, err := mapper.CampaignFromRemote(conn.ID, rc)
		if err != nil {
			logrus.WithError(err).WithField("remote_id", rc.ID).Warn("Erro ao converter campanha remota. Pulando.")
			result.Skipped++
			continue
		}

		if !known {
			s.warnUnknownStatus(conn.ID, domain.LevelCampaign, rc.ID, rc.Status, rc.EffectiveStatus)
		}

		wg.Add(1)

		go func(campaign *domain.Campaign) {
			defer wg.Done()

			// Adquirir uma vaga no semáforo
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := s.saveCampaign(campaign); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()

				return
			}

			mu.Lock()
			idsByRemote[campaign.RemoteID] = campaign.ID
			result.Campaigns++
			mu.Unlock()
		}(campaign)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return idsByRemote, nil
}

func (s *Service) upsertAdSets(conn *domain.Connection, raws []json.RawMessage, campaignIDsByRemote map[string]string, result *domain.SyncResult) (map[string]string, error) {
	idsByRemote := make(map[string]string, len(raws))

	semaphore := make(chan struct{}, maxConcurrentUpserts)

	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for _, raw := range raws {
		var ra metadomain.AdSet
		if err := json.Unmarshal(raw, &ra); err != nil {
			logrus.WithError(err).Warn("Conjunto remoto mal formado. Pulando.")
			result.Skipped++
			continue
		}

		adSet, known, err := mapper.AdSetFromRemote(conn.ID, ra)
		if err != nil {
			logrus.WithError(err).WithField("remote_id", ra.ID).Warn("Erro ao converter conjunto remoto. Pulando.")
			result.Skipped++
			continue
		}

		if !known {
			s.warnUnknownStatus(conn.ID, domain.LevelAdSet, ra.ID, ra.Status, ra.EffectiveStatus)
		}

		if localCampaignID, ok := campaignIDsByRemote[adSet.RemoteCampaignID]; ok {
			adSet.CampaignID = localCampaignID
		} else {
			logrus.WithFields(logrus.Fields{
				"connection_id":      conn.ID,
				"remote_id":          ra.ID,
				"remote_campaign_id": ra.CampaignID,
			}).Warn("Conjunto sem campanha correspondente no retrato local")
		}

		wg.Add(1)

		go func(adSet *domain.AdSet) {
			defer wg.Done()

			// Adquirir uma vaga no semáforo
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := s.saveAdSet(adSet); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()

				return
			}

			mu.Lock()
			idsByRemote[adSet.RemoteID] = adSet.ID
			result.AdSets++
			mu.Unlock()
		}(adSet)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return idsByRemote, nil
}

func (s *Service) upsertAds(conn *domain.Connection, raws []json.RawMessage, adSetIDsByRemote map[string]string, result *domain.SyncResult) error {
	semaphore := make(chan struct{}, maxConcurrentUpserts)

	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error

	for _, raw := range raws {
		var ra metadomain.Ad
		if err := json.Unmarshal(raw, &ra); err != nil {
			logrus.WithError(err).Warn("Anúncio remoto mal formado. Pulando.")
			result.Skipped++
			continue
		}

		ad, known, err := mapper.AdFromRemote(conn.ID, ra)
		if err != nil {
			logrus.WithError(err).WithField("remote_id", ra.ID).Warn("Erro ao converter anúncio remoto. Pulando.")
			result.Skipped++
			continue
		}

		if !known {
			s.warnUnknownStatus(conn.ID, domain.LevelAd, ra.ID, ra.Status, ra.EffectiveStatus)
		}

		if localAdSetID, ok := adSetIDsByRemote[ad.RemoteAdSetID]; ok {
			ad.AdSetID = localAdSetID
		} else {
			logrus.WithFields(logrus.Fields{
				"connection_id":    conn.ID,
				"remote_id":        ra.ID,
				"remote_ad_set_id": ra.AdSetID,
			}).Warn("Anúncio sem conjunto correspondente no retrato local")
		}

		wg.Add(1)

		go func(ad *domain.Ad) {
			defer wg.Done()

			// Adquirir uma vaga no semáforo
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := s.saveAd(ad); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()

				return
			}

			mu.Lock()
			result.Ads++
			mu.Unlock()
		}(ad)
	}
	wg.Wait()

	return firstErr
}

// PullPerformance importa as métricas diárias das entidades não
// arquivadas. Falhas de uma entidade não interrompem as demais;
// credencial expirada interrompe, porque as próximas chamadas falhariam
// da mesma forma.
func (s *Service) PullPerformance(ctx context.Context, connectionID string, lookbackDays int) (*domain.PerformanceSyncResult, error) {
	conn, cred, err := s.usableConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}

	until := utils.TruncateToDay(time.Now())
	since := until.AddDate(0, 0, -lookbackDays)
	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`, utils.FormatDate(since), utils.FormatDate(until))

	result := &domain.PerformanceSyncResult{}

	adSets, err := s.adSetRepo.ListByConnection(conn.ID, nonArchivedStatuses)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar conjuntos da conexão: %w", err)
	}

	ads, err := s.adRepo.ListByConnection(conn.ID, nonArchivedStatuses)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar anúncios da conexão: %w", err)
	}

	for _, adSet := range adSets {
		if err := s.pullEntityInsights(ctx, conn, cred, domain.LevelAdSet, adSet.ID, adSet.RemoteID, timeRange, result); err != nil {
			return result, err
		}
	}

	for _, ad := range ads {
		if err := s.pullEntityInsights(ctx, conn, cred, domain.LevelAd, ad.ID, ad.RemoteID, timeRange, result); err != nil {
			return result, err
		}
	}

	metrics.AddSnapshotsUpserted(result.Snapshots)

	logrus.WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"entities":      result.Entities,
		"snapshots":     result.Snapshots,
		"skipped":       result.Skipped,
		"errors":        result.Errors,
	}).Info("Sincronização de métricas concluída")

	return result, nil
}

func (s *Service) pullEntityInsights(ctx context.Context, conn *domain.Connection, cred domain.Credential, level domain.EntityLevel, entityID, remoteID, timeRange string, result *domain.PerformanceSyncResult) error {
	if remoteID == "" || domain.IsTemporaryID(remoteID) {
		result.Skipped++
		return nil
	}

	result.Entities++

	params := url.Values{}
	params.Set("fields", insightFields)
	params.Set("time_increment", "1")
	params.Set("time_range", timeRange)

	raws, err := s.client.FetchAll(ctx, fmt.Sprintf("%s/insights", remoteID), params, cred)
	if err != nil {
		s.expireOnAuthError(err, conn)
		if metadomain.IsKind(err, metadomain.KindAuthExpired) {
			return NewSyncError(ErrConnectionExpired, conn.ID, "importação de métricas")
		}

		logrus.WithFields(logrus.Fields{
			"connection_id": conn.ID,
			"entity_level":  level,
			"entity_id":     entityID,
			"error":         err.Error(),
		}).Error("Erro ao buscar métricas da entidade")
		result.Errors++
		return nil
	}

	for _, raw := range raws {
		var in metadomain.Insight
		if err := json.Unmarshal(raw, &in); err != nil {
			logrus.WithError(err).Warn("Linha de métricas mal formada. Pulando.")
			result.Skipped++
			continue
		}

		snapshot, err := mapper.SnapshotFromInsight(conn.ID, level, entityID, in)
		if err != nil {
			logrus.WithError(err).WithField("entity_id", entityID).Warn("Erro ao converter linha de métricas. Pulando.")
			result.Skipped++
			continue
		}

		if err := s.snapshotRepo.SaveOrUpdate(snapshot); err != nil {
			logrus.WithError(err).WithField("entity_id", entityID).Error("Erro ao gravar snapshot de métricas")
			result.Errors++
			continue
		}

		result.Snapshots++
		if level == domain.LevelAdSet {
			result.AdSetSnapshots++
		} else {
			result.AdSnapshots++
		}
	}

	return nil
}

// Push propaga uma entidade local para a plataforma. Entidades com id
// remoto temporário são criadas; as demais são atualizadas no id remoto
// existente.
func (s *Service) Push(ctx context.Context, ref domain.EntityRef) (*domain.PushResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, NewSyncError(ErrInvalidEntityRef, ref.ConnectionID(), err.Error())
	}

	conn, cred, err := s.usableConnection(ctx, ref.ConnectionID())
	if err != nil {
		return nil, err
	}

	switch ref.Level {
	case domain.LevelCampaign:
		return s.pushCampaign(ctx, conn, cred, ref.Campaign)
	case domain.LevelAdSet:
		return s.pushAdSet(ctx, conn, cred, ref.AdSet)
	case domain.LevelAd:
		return s.pushAd(ctx, conn, cred, ref.Ad)
	default:
		return nil, NewSyncError(ErrInvalidEntityRef, ref.ConnectionID(), string(ref.Level))
	}
}

func (s *Service) pushCampaign(ctx context.Context, conn *domain.Connection, cred domain.Credential, campaign *domain.Campaign) (*domain.PushResult, error) {
	params := mapper.CampaignToParams(campaign)

	if needsCreate(campaign.RemoteID) {
		return s.createRemote(ctx, conn, cred, fmt.Sprintf("%s/campaigns", conn.AccountID), params, "campanha")
	}

	return s.updateRemote(ctx, conn, cred, campaign.RemoteID, params, "campanha")
}

func (s *Service) pushAdSet(ctx context.Context, conn *domain.Connection, cred domain.Credential, adSet *domain.AdSet) (*domain.PushResult, error) {
	if needsCreate(adSet.RemoteID) && needsCreate(adSet.RemoteCampaignID) {
		return nil, NewSyncError(ErrCampaignNotResolved, conn.ID, adSet.Name)
	}

	params, err := mapper.AdSetToParams(adSet)
	if err != nil {
		return nil, err
	}

	if needsCreate(adSet.RemoteID) {
		return s.createRemote(ctx, conn, cred, fmt.Sprintf("%s/adsets", conn.AccountID), params, "conjunto de anúncios")
	}

	return s.updateRemote(ctx, conn, cred, adSet.RemoteID, params, "conjunto de anúncios")
}

func (s *Service) pushAd(ctx context.Context, conn *domain.Connection, cred domain.Credential, ad *domain.Ad) (*domain.PushResult, error) {
	if needsCreate(ad.RemoteID) {
		if needsCreate(ad.RemoteAdSetID) {
			return nil, NewSyncError(ErrAdSetNotResolved, conn.ID, ad.Name)
		}

		if ad.CreativeID == "" {
			return nil, NewSyncError(ErrCreativeRequired, conn.ID, ad.Name)
		}
	}

	params, err := mapper.AdToParams(ad)
	if err != nil {
		return nil, err
	}

	if needsCreate(ad.RemoteID) {
		return s.createRemote(ctx, conn, cred, fmt.Sprintf("%s/ads", conn.AccountID), params, "anúncio")
	}

	return s.updateRemote(ctx, conn, cred, ad.RemoteID, params, "anúncio")
}

func (s *Service) createRemote(ctx context.Context, conn *domain.Connection, cred domain.Credential, path string, params url.Values, what string) (*domain.PushResult, error) {
	body, err := s.client.Post(ctx, path, params, cred)
	if err != nil {
		return nil, s.platformError(err, conn, what)
	}

	var created metadomain.CreateResult
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("erro ao decodificar a resposta de criação de %s: %w", what, err)
	}

	if created.ID == "" {
		return nil, NewSyncError(ErrPlatformRejected, conn.ID, fmt.Sprintf("criação de %s sem id remoto", what))
	}

	logrus.WithFields(logrus.Fields{
		"connection_id": conn.ID,
		"remote_id":     created.ID,
	}).Infof("Criação de %s confirmada pela plataforma", what)

	return &domain.PushResult{RemoteID: created.ID, Created: true}, nil
}

func (s *Service) updateRemote(ctx context.Context, conn *domain.Connection, cred domain.Credential, remoteID string, params url.Values, what string) (*domain.PushResult, error) {
	body, err := s.client.Post(ctx, remoteID, params, cred)
	if err != nil {
		return nil, s.platformError(err, conn, what)
	}

	var confirmed metadomain.SuccessResult
	if err := json.Unmarshal(body, &confirmed); err != nil {
		return nil, fmt.Errorf("erro ao decodificar a resposta de atualização de %s: %w", what, err)
	}

	if !confirmed.Success {
		return nil, NewSyncError(ErrPlatformRejected, conn.ID, fmt.Sprintf("atualização de %s não confirmada", what))
	}

	return &domain.PushResult{RemoteID: remoteID, Created: false}, nil
}

// usableConnection carrega a conexão, valida o estado e garante que a
// credencial usada nas chamadas está dentro da validade.
func (s *Service) usableConnection(ctx context.Context, connectionID string) (*domain.Connection, domain.Credential, error) {
	if connectionID == "" {
		return nil, domain.Credential{}, ErrConnectionIDRequired
	}

	conn, err := s.connectionRepo.GetByID(connectionID)
	if err != nil {
		return nil, domain.Credential{}, fmt.Errorf("erro ao buscar a conexão: %w", err)
	}

	if conn == nil {
		return nil, domain.Credential{}, NewSyncError(ErrConnectionNotFound, connectionID, "")
	}

	if !conn.IsUsable() {
		return nil, domain.Credential{}, NewSyncError(ErrConnectionNotUsable, connectionID, string(conn.Status))
	}

	if _, err := s.client.EnsureFreshCredential(ctx, conn); err != nil {
		s.expireOnAuthError(err, conn)
		if metadomain.IsKind(err, metadomain.KindAuthExpired) {
			return nil, domain.Credential{}, NewSyncError(ErrConnectionExpired, connectionID, "renovação de credencial")
		}

		return nil, domain.Credential{}, fmt.Errorf("erro ao renovar a credencial da conexão %s: %w", connectionID, err)
	}

	return conn, conn.Credential(), nil
}

// expireOnAuthError marca a conexão como expirada quando a plataforma
// recusa a credencial. A sincronização seguinte ignora conexões expiradas
// até que um novo token seja cadastrado.
func (s *Service) expireOnAuthError(err error, conn *domain.Connection) {
	if !metadomain.IsKind(err, metadomain.KindAuthExpired) {
		return
	}

	logrus.WithField("connection_id", conn.ID).Warn("Credencial recusada pela plataforma. Marcando conexão como expirada.")

	if updErr := s.connectionRepo.UpdateStatus(conn.ID, domain.ConnectionStatusExpired); updErr != nil {
		logrus.WithError(updErr).WithField("connection_id", conn.ID).Error("Erro ao marcar a conexão como expirada")
		return
	}

	conn.Status = domain.ConnectionStatusExpired
}

func (s *Service) platformError(err error, conn *domain.Connection, what string) error {
	s.expireOnAuthError(err, conn)

	if metadomain.IsKind(err, metadomain.KindAuthExpired) {
		return NewSyncError(ErrConnectionExpired, conn.ID, what)
	}

	return fmt.Errorf("erro ao buscar %s na plataforma: %w", what, err)
}

func (s *Service) warnUnknownStatus(connectionID string, level domain.EntityLevel, remoteID, status, effectiveStatus string) {
	logrus.WithFields(logrus.Fields{
		"connection_id":    connectionID,
		"entity_level":     level,
		"remote_id":        remoteID,
		"status":           status,
		"effective_status": effectiveStatus,
	}).Warn("Status remoto desconhecido. Assumindo PAUSED.")
}

func (s *Service) saveCampaign(campaign *domain.Campaign) error {
	if campaign.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("erro ao gerar id da campanha: %w", err)
		}
		campaign.ID = id
	}

	if err := s.campaignRepo.SaveOrUpdate(campaign); err != nil {
		return fmt.Errorf("erro ao gravar a campanha %s: %w", campaign.RemoteID, err)
	}

	return nil
}

func (s *Service) saveAdSet(adSet *domain.AdSet) error {
	if adSet.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("erro ao gerar id do conjunto: %w", err)
		}
		adSet.ID = id
	}

	if err := s.adSetRepo.SaveOrUpdate(adSet); err != nil {
		return fmt.Errorf("erro ao gravar o conjunto %s: %w", adSet.RemoteID, err)
	}

	return nil
}

func (s *Service) saveAd(ad *domain.Ad) error {
	if ad.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return fmt.Errorf("erro ao gerar id do anúncio: %w", err)
		}
		ad.ID = id
	}

	if err := s.adRepo.SaveOrUpdate(ad); err != nil {
		return fmt.Errorf("erro ao gravar o anúncio %s: %w", ad.RemoteID, err)
	}

	return nil
}

func needsCreate(remoteID string) bool {
	return remoteID == "" || domain.IsTemporaryID(remoteID)
}
