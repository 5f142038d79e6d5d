package optimizing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/infrastructure/repository"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/syncing"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
	"github.com/vfg2006/campaign-manager-api/pkg/utils"
)

const (
	defaultLookbackDays = 7

	// minDailyBudgetCents é o menor orçamento que a redução pode deixar;
	// abaixo disso a plataforma rejeita a atualização.
	minDailyBudgetCents = 100
)

var (
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrConnectionNotUsable = errors.New("connection is not usable")
)

type Config struct {
	Mode         domain.OptimizationMode
	LookbackDays int
}

type Optimizer interface {
	// RunCycle avalia as regras sobre as entidades ativas da conexão e, em
	// modo ACTIVE, aplica as ações na plataforma. Todo ciclo deixa trilha
	// de auditoria, mesmo sem disparo algum.
	RunCycle(ctx context.Context, connectionID string) (*domain.CycleSummary, error)

	// CycleLogs devolve a trilha de auditoria de um ciclo na ordem de escrita.
	CycleLogs(ctx context.Context, cycleID string) ([]*domain.OptimizationLogEntry, error)

	// RecentLogs devolve as entradas mais recentes de uma conexão.
	RecentLogs(ctx context.Context, connectionID string, limit uint64) ([]*domain.OptimizationLogEntry, error)
}

type Service struct {
	syncer         syncing.Syncer
	connectionRepo repository.ConnectionRepository
	adSetRepo      repository.AdSetRepository
	adRepo         repository.AdRepository
	snapshotRepo   repository.PerformanceSnapshotRepository
	logRepo        repository.OptimizationLogRepository
	rules          []Rule
	config         Config
}

func NewService(
	syncer syncing.Syncer,
	connectionRepo repository.ConnectionRepository,
	adSetRepo repository.AdSetRepository,
	adRepo repository.AdRepository,
	snapshotRepo repository.PerformanceSnapshotRepository,
	logRepo repository.OptimizationLogRepository,
	config Config,
) Optimizer {
	return &Service{
		syncer:         syncer,
		connectionRepo: connectionRepo,
		adSetRepo:      adSetRepo,
		adRepo:         adRepo,
		snapshotRepo:   snapshotRepo,
		logRepo:        logRepo,
		rules:          DefaultRules(),
		config:         config,
	}
}

func (s *Service) RunCycle(ctx context.Context, connectionID string) (*domain.CycleSummary, error) {
	conn, err := s.connectionRepo.GetByID(connectionID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar a conexão %s: %w", connectionID, err)
	}

	if conn == nil {
		return nil, ErrConnectionNotFound
	}

	if !conn.IsUsable() {
		return nil, fmt.Errorf("%w: conexão %s com status %s", ErrConnectionNotUsable, conn.ID, conn.Status)
	}

	// O modo vale para o ciclo inteiro; trocas de configuração só surtem
	// efeito no ciclo seguinte.
	mode := s.config.Mode
	if mode != domain.OptimizationModeActive {
		mode = domain.OptimizationModeMonitor
	}

	cycleID := uuid.NewString()

	summary := &domain.CycleSummary{
		CycleID:      cycleID,
		ConnectionID: connectionID,
		Mode:         mode,
		Actions:      make(map[domain.OptimizationAction]int),
		StartedAt:    time.Now(),
	}

	if err := s.logCycleMarker(cycleID, connectionID, domain.ActionCycleStart, ""); err != nil {
		metrics.IncOptimizationCycle("failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"cycle_id":      cycleID,
		"connection_id": connectionID,
		"mode":          mode,
	}).Info("Ciclo de otimização iniciado")

	until := utils.TruncateToDay(time.Now())
	since := until.AddDate(0, 0, -s.lookbackDays())

	s.evaluateAdSets(ctx, conn, cycleID, mode, since, until, summary)
	s.evaluateAds(ctx, conn, cycleID, mode, since, until, summary)

	summary.FinishedAt = time.Now()

	details := fmt.Sprintf("avaliadas=%d disparos=%d erros=%d", summary.Evaluated, summary.Fired, summary.Errors)
	if err := s.logCycleMarker(cycleID, connectionID, domain.ActionCycleComplete, details); err != nil {
		metrics.IncOptimizationCycle("failed")
		return nil, err
	}

	metrics.IncOptimizationCycle("completed")

	logrus.WithFields(logrus.Fields{
		"cycle_id":  cycleID,
		"evaluated": summary.Evaluated,
		"fired":     summary.Fired,
		"errors":    summary.Errors,
	}).Info("Ciclo de otimização concluído")

	return summary, nil
}

func (s *Service) CycleLogs(_ context.Context, cycleID string) ([]*domain.OptimizationLogEntry, error) {
	return s.logRepo.ListByCycle(cycleID)
}

func (s *Service) RecentLogs(_ context.Context, connectionID string, limit uint64) ([]*domain.OptimizationLogEntry, error) {
	return s.logRepo.ListRecentByConnection(connectionID, limit)
}

// evaluateAdSets percorre os conjuntos ativos da conexão. Entidades já
// pausadas ficam de fora da listagem, o que impede pausa dupla entre ciclos.
func (s *Service) evaluateAdSets(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, since, until time.Time, summary *domain.CycleSummary) {
	adSets, err := s.adSetRepo.ListByConnection(conn.ID, []domain.EntityStatus{domain.EntityStatusActive})
	if err != nil {
		summary.Errors++
		s.logError(cycleID, conn.ID, domain.LevelAdSet, "", fmt.Errorf("erro ao listar os conjuntos: %w", err))
		return
	}

	for _, adSet := range adSets {
		summary.Evaluated++

		if err := s.evaluateAdSet(ctx, conn, cycleID, mode, since, until, adSet, summary); err != nil {
			summary.Errors++
			s.logError(cycleID, conn.ID, domain.LevelAdSet, adSet.ID, err)
		}
	}
}

func (s *Service) evaluateAds(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, since, until time.Time, summary *domain.CycleSummary) {
	ads, err := s.adRepo.ListByConnection(conn.ID, []domain.EntityStatus{domain.EntityStatusActive})
	if err != nil {
		summary.Errors++
		s.logError(cycleID, conn.ID, domain.LevelAd, "", fmt.Errorf("erro ao listar os anúncios: %w", err))
		return
	}

	for _, ad := range ads {
		summary.Evaluated++

		if err := s.evaluateAd(ctx, conn, cycleID, mode, since, until, ad, summary); err != nil {
			summary.Errors++
			s.logError(cycleID, conn.ID, domain.LevelAd, ad.ID, err)
		}
	}
}

// evaluateAdSet aplica as regras na ordem fixa; a primeira que dispara
// encerra a avaliação do conjunto.
func (s *Service) evaluateAdSet(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, since, until time.Time, adSet *domain.AdSet, summary *domain.CycleSummary) error {
	totals, err := s.snapshotRepo.TotalsForEntity(domain.LevelAdSet, adSet.ID, since, until)
	if err != nil {
		return fmt.Errorf("erro ao agregar as métricas do conjunto: %w", err)
	}

	for _, rule := range s.rules {
		if !rule.AppliesTo(domain.LevelAdSet) {
			continue
		}

		evaluation := rule.Evaluate(totals)
		if !evaluation.Fired {
			continue
		}

		switch rule.Action {
		case domain.ActionPause:
			return s.pauseAdSet(ctx, conn, cycleID, mode, adSet, rule, evaluation, summary)
		case domain.ActionScaleBudget:
			return s.scaleAdSetBudget(ctx, conn, cycleID, mode, adSet, rule, evaluation, summary)
		}

		return nil
	}

	return nil
}

func (s *Service) evaluateAd(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, since, until time.Time, ad *domain.Ad, summary *domain.CycleSummary) error {
	totals, err := s.snapshotRepo.TotalsForEntity(domain.LevelAd, ad.ID, since, until)
	if err != nil {
		return fmt.Errorf("erro ao agregar as métricas do anúncio: %w", err)
	}

	for _, rule := range s.rules {
		if !rule.AppliesTo(domain.LevelAd) {
			continue
		}

		evaluation := rule.Evaluate(totals)
		if !evaluation.Fired {
			continue
		}

		if rule.Action == domain.ActionPause {
			return s.pauseAd(ctx, conn, cycleID, mode, ad, rule, evaluation, summary)
		}

		return nil
	}

	return nil
}

func (s *Service) pauseAdSet(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, adSet *domain.AdSet, rule Rule, evaluation Evaluation, summary *domain.CycleSummary) error {
	details := pauseDetails(evaluation)

	if mode == domain.OptimizationModeMonitor {
		summary.CountAction(domain.ActionRecommendPause)
		metrics.IncOptimizationAction(string(domain.ActionRecommendPause))
		return s.logAction(cycleID, conn.ID, domain.ActionRecommendPause, domain.LevelAdSet, adSet.ID, rule, evaluation, details)
	}

	adSet.Status = domain.EntityStatusPaused
	if _, err := s.syncer.Push(ctx, domain.AdSetRef(adSet)); err != nil {
		return fmt.Errorf("erro ao pausar o conjunto na plataforma: %w", err)
	}

	if err := s.adSetRepo.UpdateStatus(adSet.ID, domain.EntityStatusPaused); err != nil {
		return fmt.Errorf("erro ao gravar a pausa do conjunto: %w", err)
	}

	summary.CountAction(domain.ActionPause)
	metrics.IncOptimizationAction(string(domain.ActionPause))

	logrus.WithFields(logrus.Fields{
		"cycle_id":  cycleID,
		"ad_set_id": adSet.ID,
		"rule":      rule.Name,
	}).Info("Conjunto pausado pelo motor de otimização")

	return s.logAction(cycleID, conn.ID, domain.ActionPause, domain.LevelAdSet, adSet.ID, rule, evaluation, details)
}

func (s *Service) pauseAd(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, ad *domain.Ad, rule Rule, evaluation Evaluation, summary *domain.CycleSummary) error {
	details := pauseDetails(evaluation)

	if mode == domain.OptimizationModeMonitor {
		summary.CountAction(domain.ActionRecommendPause)
		metrics.IncOptimizationAction(string(domain.ActionRecommendPause))
		return s.logAction(cycleID, conn.ID, domain.ActionRecommendPause, domain.LevelAd, ad.ID, rule, evaluation, details)
	}

	ad.Status = domain.EntityStatusPaused
	if _, err := s.syncer.Push(ctx, domain.AdRef(ad)); err != nil {
		return fmt.Errorf("erro ao pausar o anúncio na plataforma: %w", err)
	}

	if err := s.adRepo.UpdateStatus(ad.ID, domain.EntityStatusPaused); err != nil {
		return fmt.Errorf("erro ao gravar a pausa do anúncio: %w", err)
	}

	summary.CountAction(domain.ActionPause)
	metrics.IncOptimizationAction(string(domain.ActionPause))

	logrus.WithFields(logrus.Fields{
		"cycle_id": cycleID,
		"ad_id":    ad.ID,
		"rule":     rule.Name,
	}).Info("Anúncio pausado pelo motor de otimização")

	return s.logAction(cycleID, conn.ID, domain.ActionPause, domain.LevelAd, ad.ID, rule, evaluation, details)
}

func (s *Service) scaleAdSetBudget(ctx context.Context, conn *domain.Connection, cycleID string, mode domain.OptimizationMode, adSet *domain.AdSet, rule Rule, evaluation Evaluation, summary *domain.CycleSummary) error {
	if adSet.DailyBudgetCents == nil || *adSet.DailyBudgetCents <= 0 {
		// Conjuntos com orçamento na campanha não têm o que escalar aqui.
		return nil
	}

	current := *adSet.DailyBudgetCents
	scaled := int64(float64(current)*rule.BudgetFactor + 0.5)
	if scaled < minDailyBudgetCents {
		scaled = minDailyBudgetCents
	}

	details := fmt.Sprintf("orçamento diário de %d para %d centavos", current, scaled)

	if mode == domain.OptimizationModeMonitor {
		summary.CountAction(domain.ActionRecommendScaleBudget)
		metrics.IncOptimizationAction(string(domain.ActionRecommendScaleBudget))
		return s.logAction(cycleID, conn.ID, domain.ActionRecommendScaleBudget, domain.LevelAdSet, adSet.ID, rule, evaluation, details)
	}

	adSet.DailyBudgetCents = &scaled
	if _, err := s.syncer.Push(ctx, domain.AdSetRef(adSet)); err != nil {
		return fmt.Errorf("erro ao ajustar o orçamento na plataforma: %w", err)
	}

	if err := s.adSetRepo.UpdateDailyBudget(adSet.ID, scaled); err != nil {
		return fmt.Errorf("erro ao gravar o novo orçamento: %w", err)
	}

	summary.CountAction(domain.ActionScaleBudget)
	metrics.IncOptimizationAction(string(domain.ActionScaleBudget))

	logrus.WithFields(logrus.Fields{
		"cycle_id":  cycleID,
		"ad_set_id": adSet.ID,
		"rule":      rule.Name,
		"from":      current,
		"to":        scaled,
	}).Info("Orçamento do conjunto ajustado pelo motor de otimização")

	return s.logAction(cycleID, conn.ID, domain.ActionScaleBudget, domain.LevelAdSet, adSet.ID, rule, evaluation, details)
}

func (s *Service) logAction(cycleID, connectionID string, action domain.OptimizationAction, level domain.EntityLevel, entityID string, rule Rule, evaluation Evaluation, details string) error {
	entry := &domain.OptimizationLogEntry{
		CycleID:      cycleID,
		ConnectionID: connectionID,
		Action:       action,
		Severity:     domain.SeverityForAction(action),
		EntityLevel:  &level,
		EntityID:     &entityID,
		RuleName:     &rule.Name,
		MetricValue:  &evaluation.MetricValue,
		Threshold:    &rule.Threshold,
	}

	if details != "" {
		entry.Details = &details
	}

	if err := s.logRepo.Save(entry); err != nil {
		return fmt.Errorf("erro ao gravar a auditoria: %w", err)
	}

	return nil
}

func (s *Service) logError(cycleID, connectionID string, level domain.EntityLevel, entityID string, cause error) {
	logrus.WithError(cause).WithFields(logrus.Fields{
		"cycle_id":      cycleID,
		"connection_id": connectionID,
		"entity_level":  level,
		"entity_id":     entityID,
	}).Error("Erro na avaliação da entidade. Seguindo para a próxima.")

	entry := &domain.OptimizationLogEntry{
		CycleID:      cycleID,
		ConnectionID: connectionID,
		Action:       domain.ActionError,
		Severity:     domain.SeverityForAction(domain.ActionError),
		EntityLevel:  &level,
	}

	if entityID != "" {
		entry.EntityID = &entityID
	}

	causeText := cause.Error()
	entry.Details = &causeText

	if err := s.logRepo.Save(entry); err != nil {
		logrus.WithError(err).Error("Erro ao gravar a entrada de erro na auditoria")
	}
}

func (s *Service) logCycleMarker(cycleID, connectionID string, action domain.OptimizationAction, details string) error {
	entry := &domain.OptimizationLogEntry{
		CycleID:      cycleID,
		ConnectionID: connectionID,
		Action:       action,
		Severity:     domain.SeverityForAction(action),
	}

	if details != "" {
		entry.Details = &details
	}

	if err := s.logRepo.Save(entry); err != nil {
		return fmt.Errorf("erro ao gravar o marcador do ciclo: %w", err)
	}

	return nil
}

func (s *Service) lookbackDays() int {
	if s.config.LookbackDays > 0 {
		return s.config.LookbackDays
	}

	return defaultLookbackDays
}

func pauseDetails(evaluation Evaluation) string {
	if evaluation.ZeroConversions {
		return fmt.Sprintf("gasto de %.2f na janela sem nenhuma conversão", evaluation.MetricValue)
	}

	return fmt.Sprintf("CPA de %.2f acima do limiar", evaluation.MetricValue)
}
