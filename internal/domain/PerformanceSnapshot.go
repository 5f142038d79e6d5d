package domain

import "time"

// PerformanceSnapshot guarda as métricas de um dia para uma entidade.
// A chave lógica é (nível, entidade, data): reprocessar o mesmo dia
// substitui o snapshot em vez de duplicá-lo.
type PerformanceSnapshot struct {
	ID           int64       `json:"id"`
	ConnectionID string      `json:"connection_id"`
	EntityLevel  EntityLevel `json:"entity_level"`
	EntityID     string      `json:"entity_id"`
	Date         time.Time   `json:"date"`
	Impressions  int64       `json:"impressions"`
	Clicks       int64       `json:"clicks"`
	SpendCents   int64       `json:"spend_cents"`
	Conversions  float64     `json:"conversions"`
	RevenueCents int64       `json:"revenue_cents"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// MetricTotals agrega snapshots de uma janela para avaliação de regras.
type MetricTotals struct {
	Impressions  int64
	Clicks       int64
	SpendCents   int64
	Conversions  float64
	RevenueCents int64
}

func (t MetricTotals) Add(s *PerformanceSnapshot) MetricTotals {
	t.Impressions += s.Impressions
	t.Clicks += s.Clicks
	t.SpendCents += s.SpendCents
	t.Conversions += s.Conversions
	t.RevenueCents += s.RevenueCents
	return t
}

func (t MetricTotals) Spend() float64 {
	return float64(t.SpendCents) / 100
}

func (t MetricTotals) Revenue() float64 {
	return float64(t.RevenueCents) / 100
}

// CPA devolve o custo por conversão em unidades maiores da moeda.
// ok é falso quando não houve conversão no período.
func (t MetricTotals) CPA() (float64, bool) {
	if t.Conversions == 0 {
		return 0, false
	}

	return t.Spend() / t.Conversions, true
}

// ROAS devolve o retorno sobre o investimento. ok é falso sem gasto.
func (t MetricTotals) ROAS() (float64, bool) {
	if t.SpendCents == 0 {
		return 0, false
	}

	return t.Revenue() / t.Spend(), true
}
