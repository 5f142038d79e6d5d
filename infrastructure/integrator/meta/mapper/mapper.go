// Package mapper converte entidades entre o formato da plataforma de
// anúncios e o domínio. Todas as funções são puras: sem I/O, sem log e
// sem relógio; erros e avisos são devolvidos ao chamador.
package mapper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

// remoteTimeLayouts são os formatos de data/hora usados pela plataforma.
var remoteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

const dateLayout = "2006-01-02"

// NormalizeStatus reduz o par status/effective_status da plataforma ao
// status do domínio. known é falso para valores não reconhecidos ou
// ausentes, que caem em DRAFT; o chamador decide como avisar.
func NormalizeStatus(status, effectiveStatus string) (domain.EntityStatus, bool) {
	value := effectiveStatus
	if value == "" {
		value = status
	}

	switch strings.ToUpper(value) {
	case "ACTIVE":
		return domain.EntityStatusActive, true
	case "PAUSED", "CAMPAIGN_PAUSED", "ADSET_PAUSED":
		return domain.EntityStatusPaused, true
	case "DELETED":
		return domain.EntityStatusDeleted, true
	case "ARCHIVED":
		return domain.EntityStatusArchived, true
	default:
		return domain.EntityStatusDraft, false
	}
}

// StatusToRemote converte o status do domínio para o valor aceito nos
// POSTs da plataforma. DRAFT não existe lá fora; rascunho sai pausado.
func StatusToRemote(status domain.EntityStatus) string {
	if status == domain.EntityStatusDraft {
		return string(domain.EntityStatusPaused)
	}

	return string(status)
}

// ParseMinorUnits interpreta um orçamento da plataforma, que chega como
// string em unidades menores da moeda. Vazio devolve nil.
func ParseMinorUnits(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}

	cents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("valor em unidades menores inválido: %q", value)
	}

	return &cents, nil
}

// FormatMinorUnits formata unidades menores para envio à plataforma.
func FormatMinorUnits(cents int64) string {
	return strconv.FormatInt(cents, 10)
}

// MajorStringToCents converte um valor decimal em unidades maiores
// ("123.45") para unidades menores. A conversão usa aritmética inteira:
// converter de volta com CentsToMajorString devolve o valor original.
func MajorStringToCents(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(value, "-") {
		negative = true
		value = value[1:]
	}

	intPart := value
	fracPart := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		intPart = value[:idx]
		fracPart = value[idx+1:]
	}

	if intPart == "" {
		intPart = "0"
	}

	if len(fracPart) > 2 {
		return 0, fmt.Errorf("valor decimal com mais de duas casas: %q", value)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("valor decimal inválido: %q", value)
	}

	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("valor decimal inválido: %q", value)
	}

	cents := units*100 + frac
	if negative {
		cents = -cents
	}

	return cents, nil
}

// CentsToMajorString formata unidades menores como decimal em unidades
// maiores, sempre com duas casas.
func CentsToMajorString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MajorToCents converte um valor em unidades maiores vindo da API própria
// (float) para unidades menores, arredondando para o centavo mais próximo.
func MajorToCents(value float64) int64 {
	if value >= 0 {
		return int64(value*100 + 0.5)
	}

	return -int64(-value*100 + 0.5)
}

// ParseRemoteTime interpreta os formatos de data/hora da plataforma.
func ParseRemoteTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range remoteTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("data/hora remota inválida: %q", value)
}

// FormatRemoteTime formata um instante para envio à plataforma.
func FormatRemoteTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// CampaignFromRemote converte uma campanha da plataforma para o domínio.
// known é falso quando o status remoto não foi reconhecido.
func CampaignFromRemote(connectionID string, rc metadomain.Campaign) (*domain.Campaign, bool, error) {
	status, known := NormalizeStatus(rc.Status, rc.EffectiveStatus)

	daily, err := ParseMinorUnits(rc.DailyBudget)
	if err != nil {
		return nil, known, fmt.Errorf("campanha %s: %w", rc.ID, err)
	}

	lifetime, err := ParseMinorUnits(rc.LifetimeBudget)
	if err != nil {
		return nil, known, fmt.Errorf("campanha %s: %w", rc.ID, err)
	}

	startTime, err := ParseRemoteTime(rc.StartTime)
	if err != nil {
		return nil, known, fmt.Errorf("campanha %s: %w", rc.ID, err)
	}

	endTime, err := ParseRemoteTime(rc.StopTime)
	if err != nil {
		return nil, known, fmt.Errorf("campanha %s: %w", rc.ID, err)
	}

	return &domain.Campaign{
		ConnectionID:        connectionID,
		RemoteID:            rc.ID,
		Name:                rc.Name,
		Status:              status,
		Objective:           rc.Objective,
		DailyBudgetCents:    daily,
		LifetimeBudgetCents: lifetime,
		StartTime:           startTime,
		EndTime:             endTime,
	}, known, nil
}

// AdSetFromRemote converte um conjunto de anúncios da plataforma.
func AdSetFromRemote(connectionID string, ra metadomain.AdSet) (*domain.AdSet, bool, error) {
	status, known := NormalizeStatus(ra.Status, ra.EffectiveStatus)

	daily, err := ParseMinorUnits(ra.DailyBudget)
	if err != nil {
		return nil, known, fmt.Errorf("conjunto %s: %w", ra.ID, err)
	}

	lifetime, err := ParseMinorUnits(ra.LifetimeBudget)
	if err != nil {
		return nil, known, fmt.Errorf("conjunto %s: %w", ra.ID, err)
	}

	startTime, err := ParseRemoteTime(ra.StartTime)
	if err != nil {
		return nil, known, fmt.Errorf("conjunto %s: %w", ra.ID, err)
	}

	endTime, err := ParseRemoteTime(ra.EndTime)
	if err != nil {
		return nil, known, fmt.Errorf("conjunto %s: %w", ra.ID, err)
	}

	return &domain.AdSet{
		ConnectionID:        connectionID,
		RemoteID:            ra.ID,
		RemoteCampaignID:    ra.CampaignID,
		Name:                ra.Name,
		Status:              status,
		DailyBudgetCents:    daily,
		LifetimeBudgetCents: lifetime,
		OptimizationGoal:    ra.OptimizationGoal,
		BillingEvent:        ra.BillingEvent,
		Targeting:           TargetingFromRemote(ra.Targeting),
		StartTime:           startTime,
		EndTime:             endTime,
	}, known, nil
}

// AdFromRemote converte um anúncio da plataforma.
func AdFromRemote(connectionID string, ra metadomain.Ad) (*domain.Ad, bool, error) {
	status, known := NormalizeStatus(ra.Status, ra.EffectiveStatus)

	ad := &domain.Ad{
		ConnectionID:  connectionID,
		RemoteID:      ra.ID,
		RemoteAdSetID: ra.AdSetID,
		Name:          ra.Name,
		Status:        status,
	}

	if ra.Creative != nil {
		ad.CreativeID = ra.Creative.ID
	}

	return ad, known, nil
}

// TargetingFromRemote converte a segmentação da plataforma para o domínio.
func TargetingFromRemote(rt *metadomain.Targeting) *domain.Targeting {
	if rt == nil {
		return nil
	}

	t := &domain.Targeting{
		AgeMin: rt.AgeMin,
		AgeMax: rt.AgeMax,
	}

	if rt.GeoLocations != nil {
		t.Countries = append(t.Countries, rt.GeoLocations.Countries...)
	}

	for _, g := range rt.Genders {
		switch g {
		case 1:
			t.Genders = append(t.Genders, "male")
		case 2:
			t.Genders = append(t.Genders, "female")
		}
	}

	for _, interest := range rt.Interests {
		t.Interests = append(t.Interests, domain.Interest{ID: interest.ID, Name: interest.Name})
	}

	for _, audience := range rt.CustomAudiences {
		t.CustomAudiences = append(t.CustomAudiences, audience.ID)
	}

	return t
}

// TargetingToRemote converte a segmentação do domínio para o formato da
// plataforma. Gêneros desconhecidos são ignorados.
func TargetingToRemote(t *domain.Targeting) *metadomain.Targeting {
	if t.IsEmpty() {
		return nil
	}

	rt := &metadomain.Targeting{
		AgeMin: t.AgeMin,
		AgeMax: t.AgeMax,
	}

	if len(t.Countries) > 0 {
		rt.GeoLocations = &metadomain.GeoLocations{Countries: t.Countries}
	}

	for _, g := range t.Genders {
		switch strings.ToLower(g) {
		case "male":
			rt.Genders = append(rt.Genders, 1)
		case "female":
			rt.Genders = append(rt.Genders, 2)
		}
	}

	for _, interest := range t.Interests {
		rt.Interests = append(rt.Interests, metadomain.TargetingTerm{ID: interest.ID, Name: interest.Name})
	}

	for _, audience := range t.CustomAudiences {
		rt.CustomAudiences = append(rt.CustomAudiences, metadomain.AudienceHandle{ID: audience})
	}

	return rt
}

// CampaignToParams monta o formulário de criação/atualização de campanha.
func CampaignToParams(c *domain.Campaign) url.Values {
	params := url.Values{}
	params.Set("name", c.Name)
	params.Set("status", StatusToRemote(c.Status))

	if c.Objective != "" {
		params.Set("objective", c.Objective)
	}

	if c.DailyBudgetCents != nil {
		params.Set("daily_budget", FormatMinorUnits(*c.DailyBudgetCents))
	}

	if c.LifetimeBudgetCents != nil {
		params.Set("lifetime_budget", FormatMinorUnits(*c.LifetimeBudgetCents))
	}

	if c.StartTime != nil {
		params.Set("start_time", FormatRemoteTime(*c.StartTime))
	}

	if c.EndTime != nil {
		params.Set("stop_time", FormatRemoteTime(*c.EndTime))
	}

	// A plataforma exige a declaração de categorias especiais mesmo vazia.
	params.Set("special_ad_categories", "[]")

	return params
}

// AdSetToParams monta o formulário de criação/atualização de conjunto.
func AdSetToParams(a *domain.AdSet) (url.Values, error) {
	params := url.Values{}
	params.Set("name", a.Name)
	params.Set("status", StatusToRemote(a.Status))

	if a.RemoteCampaignID != "" {
		params.Set("campaign_id", a.RemoteCampaignID)
	}

	if a.DailyBudgetCents != nil {
		params.Set("daily_budget", FormatMinorUnits(*a.DailyBudgetCents))
	}

	if a.LifetimeBudgetCents != nil {
		params.Set("lifetime_budget", FormatMinorUnits(*a.LifetimeBudgetCents))
	}

	if a.OptimizationGoal != "" {
		params.Set("optimization_goal", a.OptimizationGoal)
	}

	if a.BillingEvent != "" {
		params.Set("billing_event", a.BillingEvent)
	}

	if !a.Targeting.IsEmpty() {
		targeting, err := json.Marshal(TargetingToRemote(a.Targeting))
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar a segmentação: %w", err)
		}
		params.Set("targeting", string(targeting))
	}

	if a.StartTime != nil {
		params.Set("start_time", FormatRemoteTime(*a.StartTime))
	}

	if a.EndTime != nil {
		params.Set("end_time", FormatRemoteTime(*a.EndTime))
	}

	return params, nil
}

// AdToParams monta o formulário de criação/atualização de anúncio.
func AdToParams(a *domain.Ad) (url.Values, error) {
	params := url.Values{}
	params.Set("name", a.Name)
	params.Set("status", StatusToRemote(a.Status))

	if a.RemoteAdSetID != "" {
		params.Set("adset_id", a.RemoteAdSetID)
	}

	if a.CreativeID != "" {
		creative, err := json.Marshal(metadomain.Creative{ID: a.CreativeID})
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar o creative: %w", err)
		}
		params.Set("creative", string(creative))
	}

	return params, nil
}

// SnapshotFromInsight converte uma linha diária de insights em snapshot.
// Entradas malformadas no array de ações são ignoradas sem invalidar a
// linha; contadores malformados zeram o campo correspondente.
func SnapshotFromInsight(connectionID string, level domain.EntityLevel, entityID string, in metadomain.Insight) (*domain.PerformanceSnapshot, error) {
	date, err := time.Parse(dateLayout, in.DateStart)
	if err != nil {
		return nil, fmt.Errorf("insight sem data válida: %q", in.DateStart)
	}

	spendCents, err := MajorStringToCents(in.Spend)
	if err != nil {
		return nil, fmt.Errorf("insight de %s: %w", in.DateStart, err)
	}

	snapshot := &domain.PerformanceSnapshot{
		ConnectionID: connectionID,
		EntityLevel:  level,
		EntityID:     entityID,
		Date:         date,
		Impressions:  parseCount(in.Impressions),
		Clicks:       parseCount(in.Clicks),
		SpendCents:   spendCents,
	}

	snapshot.Conversions = sumActions(in.Actions, metadomain.ConversionActionTypes)

	revenue := sumActions(in.ActionValues, metadomain.RevenueActionTypes)
	snapshot.RevenueCents = MajorToCents(revenue)

	return snapshot, nil
}

func parseCount(value string) int64 {
	if value == "" {
		return 0
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}

	return count
}

// sumActions acumula os valores das ações cujos tipos estão no conjunto.
// Valores não numéricos são pulados.
func sumActions(actions []metadomain.Action, types map[string]bool) float64 {
	var total float64

	for _, action := range actions {
		if !types[action.ActionType] {
			continue
		}

		value, err := strconv.ParseFloat(action.Value, 64)
		if err != nil {
			continue
		}

		total += value
	}

	return total
}
