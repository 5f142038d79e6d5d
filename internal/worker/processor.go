package worker

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/mapper"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/campaign-manager-api/pkg/utils"
)

// Valores exigidos pela plataforma na criação do conjunto e que o rascunho
// de lançamento não expõe ao anunciante.
const (
	defaultOptimizationGoal = "LINK_CLICKS"
	defaultBillingEvent     = "IMPRESSIONS"
)

// Processor executa um job de lançamento até produzir os ids remotos da
// cadeia criada.
type Processor interface {
	Process(ctx context.Context, job *domain.LaunchJob) (*domain.LaunchResult, error)
}

// LaunchProcessor materializa o rascunho do lançamento na plataforma em três
// etapas encadeadas: campanha, conjunto e anúncio. Cada entidade é persistida
// no retrato local logo após a plataforma confirmar a criação, então um job
// que falha no meio deixa as etapas anteriores íntegras e rastreáveis.
//
// As entidades nascem pausadas. O anunciante ativa a campanha quando quiser
// começar a gastar; o lançamento nunca ativa nada sozinho.
type LaunchProcessor struct {
	syncer         syncing.Syncer
	connectionRepo repository.ConnectionRepository
	campaignRepo   repository.CampaignRepository
	adSetRepo      repository.AdSetRepository
	adRepo         repository.AdRepository
}

func NewLaunchProcessor(
	syncer syncing.Syncer,
	connectionRepo repository.ConnectionRepository,
	campaignRepo repository.CampaignRepository,
	adSetRepo repository.AdSetRepository,
	adRepo repository.AdRepository,
) *LaunchProcessor {
	return &LaunchProcessor{
		syncer:         syncer,
		connectionRepo: connectionRepo,
		campaignRepo:   campaignRepo,
		adSetRepo:      adSetRepo,
		adRepo:         adRepo,
	}
}

func (p *LaunchProcessor) Process(ctx context.Context, job *domain.LaunchJob) (*domain.LaunchResult, error) {
	request := job.Request
	if err := request.Validate(); err != nil {
		return nil, err
	}

	conn, err := p.connectionRepo.GetByTenantAndAccount(request.TenantID, request.AccountID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar a conexão do anunciante: %w", err)
	}

	if conn == nil {
		return nil, fmt.Errorf("nenhuma conexão cadastrada para a conta %s", request.AccountID)
	}

	if !conn.IsUsable() {
		return nil, fmt.Errorf("a conexão %s não está apta para lançamento (status %s)", conn.ID, conn.Status)
	}

	campaign, err := p.launchCampaign(ctx, conn, &request)
	if err != nil {
		return nil, err
	}

	adSet, err := p.launchAdSet(ctx, conn, &request, campaign)
	if err != nil {
		return nil, err
	}

	ad, err := p.launchAd(ctx, conn, &request, adSet)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"job_id":      job.ID,
		"campaign_id": campaign.RemoteID,
		"ad_set_id":   adSet.RemoteID,
		"ad_id":       ad.RemoteID,
	}).Info("Cadeia de lançamento criada na plataforma")

	return &domain.LaunchResult{
		CampaignID: campaign.RemoteID,
		AdSetID:    adSet.RemoteID,
		AdID:       ad.RemoteID,
	}, nil
}

func (p *LaunchProcessor) launchCampaign(ctx context.Context, conn *domain.Connection, request *domain.LaunchRequest) (*domain.Campaign, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar o id da campanha: %w", err)
	}

	campaign := &domain.Campaign{
		ID:           id,
		ConnectionID: conn.ID,
		RemoteID:     domain.TempIDPrefix + id,
		Name:         request.Name,
		Status:       domain.EntityStatusPaused,
		Objective:    request.Objective,
		StartTime:    request.StartTime,
		EndTime:      request.EndTime,
	}

	pushed, err := p.syncer.Push(ctx, domain.CampaignRef(campaign))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a campanha na plataforma: %w", err)
	}

	campaign.RemoteID = pushed.RemoteID

	if err := p.campaignRepo.SaveOrUpdate(campaign); err != nil {
		return nil, fmt.Errorf("erro ao gravar a campanha %s: %w", campaign.RemoteID, err)
	}

	return campaign, nil
}

// launchAdSet cria o conjunto com o orçamento diário do rascunho. O orçamento
// fica no conjunto, não na campanha, para que a otimização possa escalá-lo
// por conjunto depois.
func (p *LaunchProcessor) launchAdSet(ctx context.Context, conn *domain.Connection, request *domain.LaunchRequest, campaign *domain.Campaign) (*domain.AdSet, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar o id do conjunto: %w", err)
	}

	budgetCents := mapper.MajorToCents(request.DailyBudget)

	adSet := &domain.AdSet{
		ID:               id,
		ConnectionID:     conn.ID,
		CampaignID:       campaign.ID,
		RemoteID:         domain.TempIDPrefix + id,
		RemoteCampaignID: campaign.RemoteID,
		Name:             request.Name + " - Conjunto",
		Status:           domain.EntityStatusPaused,
		DailyBudgetCents: &budgetCents,
		OptimizationGoal: defaultOptimizationGoal,
		BillingEvent:     defaultBillingEvent,
		Targeting:        request.Targeting,
		StartTime:        request.StartTime,
		EndTime:          request.EndTime,
	}

	pushed, err := p.syncer.Push(ctx, domain.AdSetRef(adSet))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar o conjunto na plataforma: %w", err)
	}

	adSet.RemoteID = pushed.RemoteID

	if err := p.adSetRepo.SaveOrUpdate(adSet); err != nil {
		return nil, fmt.Errorf("erro ao gravar o conjunto %s: %w", adSet.RemoteID, err)
	}

	return adSet, nil
}

func (p *LaunchProcessor) launchAd(ctx context.Context, conn *domain.Connection, request *domain.LaunchRequest, adSet *domain.AdSet) (*domain.Ad, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar o id do anúncio: %w", err)
	}

	adName := request.AdName
	if adName == "" {
		adName = request.Name + " - Anúncio"
	}

	ad := &domain.Ad{
		ID:            id,
		ConnectionID:  conn.ID,
		AdSetID:       adSet.ID,
		RemoteID:      domain.TempIDPrefix + id,
		RemoteAdSetID: adSet.RemoteID,
		Name:          adName,
		Status:        domain.EntityStatusPaused,
		CreativeID:    request.CreativeID,
	}

	pushed, err := p.syncer.Push(ctx, domain.AdRef(ad))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar o anúncio na plataforma: %w", err)
	}

	ad.RemoteID = pushed.RemoteID

	if err := p.adRepo.SaveOrUpdate(ad); err != nil {
		return nil, fmt.Errorf("erro ao gravar o anúncio %s: %w", ad.RemoteID, err)
	}

	return ad, nil
}
