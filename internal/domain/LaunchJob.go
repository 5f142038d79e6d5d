package domain

import (
	"fmt"
	"time"
)

type LaunchStatus string

const (
	LaunchStatusPending    LaunchStatus = "pending"
	LaunchStatusProcessing LaunchStatus = "processing"
	LaunchStatusCompleted  LaunchStatus = "completed"
	LaunchStatusFailed     LaunchStatus = "failed"
)

func (s LaunchStatus) IsTerminal() bool {
	return s == LaunchStatusCompleted || s == LaunchStatusFailed
}

// CanTransition valida a máquina de estados do job de lançamento:
// pending -> processing -> completed | failed. Estados terminais são imutáveis.
func (s LaunchStatus) CanTransition(to LaunchStatus) bool {
	switch s {
	case LaunchStatusPending:
		return to == LaunchStatusProcessing
	case LaunchStatusProcessing:
		return to == LaunchStatusCompleted || to == LaunchStatusFailed
	default:
		return false
	}
}

// LaunchRequest é o rascunho de campanha aceito pela API de lançamento.
// Valores monetários chegam em unidades maiores da moeda e são convertidos
// para unidades menores na borda da plataforma.
type LaunchRequest struct {
	TenantID    string     `json:"tenant_id"`
	AccountID   string     `json:"account_id"`
	Name        string     `json:"name"`
	Objective   string     `json:"objective"`
	DailyBudget float64    `json:"daily_budget"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Targeting   *Targeting `json:"targeting,omitempty"`
	CreativeID  string     `json:"creative_id"`
	AdName      string     `json:"ad_name,omitempty"`
}

func (r *LaunchRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("payload de lançamento vazio")
	}

	if r.TenantID == "" {
		return fmt.Errorf("tenant_id é obrigatório")
	}

	if r.AccountID == "" {
		return fmt.Errorf("account_id é obrigatório")
	}

	if r.Name == "" {
		return fmt.Errorf("name é obrigatório")
	}

	if r.Objective == "" {
		return fmt.Errorf("objective é obrigatório")
	}

	if r.DailyBudget <= 0 {
		return fmt.Errorf("daily_budget deve ser maior que zero")
	}

	if r.CreativeID == "" {
		return fmt.Errorf("creative_id é obrigatório")
	}

	if r.StartTime != nil && r.EndTime != nil && !r.EndTime.After(*r.StartTime) {
		return fmt.Errorf("end_time deve ser posterior a start_time")
	}

	return nil
}

// LaunchResult guarda os ids remotos criados pela cadeia campanha,
// conjunto e anúncio.
type LaunchResult struct {
	CampaignID string `json:"campaign_id"`
	AdSetID    string `json:"ad_set_id"`
	AdID       string `json:"ad_id"`
}

type LaunchJob struct {
	ID         string        `json:"id"`
	Status     LaunchStatus  `json:"status"`
	Request    LaunchRequest `json:"request"`
	Result     *LaunchResult `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

func (j *LaunchJob) Transition(to LaunchStatus) error {
	if !j.Status.CanTransition(to) {
		return fmt.Errorf("transição de status inválida: %s -> %s", j.Status, to)
	}

	j.Status = to
	return nil
}

// LaunchResponse é a resposta síncrona da API de lançamento. Quando o job
// não termina dentro da janela de espera, Accepted indica que ele segue
// em processamento.
type LaunchResponse struct {
	JobID    string        `json:"job_id"`
	Status   LaunchStatus  `json:"status"`
	Accepted bool          `json:"accepted"`
	Result   *LaunchResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}
