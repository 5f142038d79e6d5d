package domain

import "time"

type OptimizationMode string

const (
	OptimizationModeMonitor OptimizationMode = "MONITOR"
	OptimizationModeActive  OptimizationMode = "ACTIVE"
)

type OptimizationAction string

const (
	ActionCycleStart           OptimizationAction = "CYCLE_START"
	ActionCycleComplete        OptimizationAction = "CYCLE_COMPLETE"
	ActionRecommendPause       OptimizationAction = "RECOMMEND_PAUSE"
	ActionPause                OptimizationAction = "PAUSE"
	ActionRecommendScaleBudget OptimizationAction = "RECOMMEND_SCALE_BUDGET"
	ActionScaleBudget          OptimizationAction = "SCALE_BUDGET"
	ActionError                OptimizationAction = "ERROR"
)

type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityForAction classifica a gravidade de uma entrada pela ação:
// marcadores de ciclo são informativos, disparos de regra pedem atenção
// e falhas de aplicação são críticas.
func SeverityForAction(action OptimizationAction) Severity {
	switch action {
	case ActionRecommendPause, ActionPause, ActionRecommendScaleBudget, ActionScaleBudget:
		return SeverityWarning
	case ActionError:
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// OptimizationLogEntry é a trilha de auditoria do motor de otimização.
// Entradas de ciclo (start/complete) não referenciam entidade alguma.
type OptimizationLogEntry struct {
	ID           int64              `json:"id"`
	CycleID      string             `json:"cycle_id"`
	ConnectionID string             `json:"connection_id"`
	Action       OptimizationAction `json:"action"`
	Severity     Severity           `json:"severity"`
	EntityLevel  *EntityLevel       `json:"entity_level,omitempty"`
	EntityID     *string            `json:"entity_id,omitempty"`
	RuleName     *string            `json:"rule_name,omitempty"`
	MetricValue  *float64           `json:"metric_value,omitempty"`
	Threshold    *float64           `json:"threshold,omitempty"`
	Details      *string            `json:"details,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// CycleSummary resume um ciclo de otimização para logs e métricas.
type CycleSummary struct {
	CycleID      string                     `json:"cycle_id"`
	ConnectionID string                     `json:"connection_id"`
	Mode         OptimizationMode           `json:"mode"`
	Evaluated    int                        `json:"evaluated"`
	Fired        int                        `json:"fired"`
	Errors       int                        `json:"errors"`
	Actions      map[OptimizationAction]int `json:"actions"`
	StartedAt    time.Time                  `json:"started_at"`
	FinishedAt   time.Time                  `json:"finished_at"`
}

func (s *CycleSummary) CountAction(action OptimizationAction) {
	if s.Actions == nil {
		s.Actions = make(map[OptimizationAction]int)
	}

	s.Actions[action]++
	s.Fired++
}
