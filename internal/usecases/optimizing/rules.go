package optimizing

import (
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

type Metric string

const (
	MetricCPA  Metric = "CPA"
	MetricROAS Metric = "ROAS"
)

type Operator string

const (
	OperatorGreaterThan Operator = ">"
	OperatorLessThan    Operator = "<"
	OperatorAtLeast     Operator = ">="
)

// Rule é uma regra fixa do motor: métrica calculada sobre a janela,
// comparação com o limiar e piso mínimo de gasto para filtrar ruído
// estatístico. Limiares em unidades maiores da moeda.
type Rule struct {
	Name          string
	Metric        Metric
	Operator      Operator
	Threshold     float64
	MinSpendCents int64
	Action        domain.OptimizationAction
	Levels        []domain.EntityLevel

	// BudgetFactor multiplica o orçamento diário atual quando a ação é
	// SCALE_BUDGET. Ignorado nas demais ações.
	BudgetFactor float64
}

// Evaluation é o desfecho de uma regra sobre os totais de uma entidade.
type Evaluation struct {
	Fired       bool
	MetricValue float64

	// ZeroConversions marca o caso de gasto relevante sem conversão alguma,
	// em que MetricValue carrega o gasto e não um CPA real.
	ZeroConversions bool
}

func (r Rule) AppliesTo(level domain.EntityLevel) bool {
	for _, l := range r.Levels {
		if l == level {
			return true
		}
	}

	return false
}

// Evaluate calcula a métrica da regra sobre os totais da janela. Abaixo do
// piso de gasto a regra nunca dispara, qualquer que seja a métrica.
func (r Rule) Evaluate(totals domain.MetricTotals) Evaluation {
	if totals.SpendCents < r.MinSpendCents {
		return Evaluation{}
	}

	switch r.Metric {
	case MetricCPA:
		cpa, ok := totals.CPA()
		if !ok {
			// Gasto relevante sem nenhuma conversão: o custo por conversão é
			// efetivamente infinito e supera qualquer limiar. O gasto da
			// janela fica como valor finito de auditoria.
			return Evaluation{Fired: true, MetricValue: totals.Spend(), ZeroConversions: true}
		}

		return Evaluation{Fired: r.compare(cpa), MetricValue: cpa}

	case MetricROAS:
		roas, ok := totals.ROAS()
		if !ok {
			return Evaluation{}
		}

		return Evaluation{Fired: r.compare(roas), MetricValue: roas}
	}

	return Evaluation{}
}

func (r Rule) compare(value float64) bool {
	switch r.Operator {
	case OperatorGreaterThan:
		return value > r.Threshold
	case OperatorLessThan:
		return value < r.Threshold
	case OperatorAtLeast:
		return value >= r.Threshold
	}

	return false
}

// DefaultRules devolve o conjunto fixo do motor, na ordem de avaliação.
// A primeira regra que dispara encerra a avaliação da entidade, então a
// pausa por CPA tem precedência sobre os ajustes de orçamento.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:          "cpa-alto",
			Metric:        MetricCPA,
			Operator:      OperatorGreaterThan,
			Threshold:     50.0,
			MinSpendCents: 1000,
			Action:        domain.ActionPause,
			Levels:        []domain.EntityLevel{domain.LevelAdSet, domain.LevelAd},
		},
		{
			Name:          "roas-baixo",
			Metric:        MetricROAS,
			Operator:      OperatorLessThan,
			Threshold:     1.0,
			MinSpendCents: 5000,
			Action:        domain.ActionScaleBudget,
			Levels:        []domain.EntityLevel{domain.LevelAdSet},
			BudgetFactor:  0.80,
		},
		{
			Name:          "roas-escala",
			Metric:        MetricROAS,
			Operator:      OperatorAtLeast,
			Threshold:     3.0,
			MinSpendCents: 5000,
			Action:        domain.ActionScaleBudget,
			Levels:        []domain.EntityLevel{domain.LevelAdSet},
			BudgetFactor:  1.10,
		},
	}
}
