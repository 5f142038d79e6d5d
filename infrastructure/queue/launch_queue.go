// Package queue implementa a fila de lançamento de campanhas sobre o
// armazenamento chave-valor compartilhado. A lista guarda apenas os ids;
// o estado de cada job vive em um registro JSON próprio com TTL.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
)

// Store é o recorte do cliente de chave-valor que a fila utiliza.
type Store interface {
	PushID(ctx context.Context, list, id string) error
	PopID(ctx context.Context, list string) (string, error)
	ListLen(ctx context.Context, list string) (int64, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
}

type Config struct {
	Namespace string
	JobTTL    time.Duration
}

type LaunchQueue struct {
	store  Store
	config Config
}

func NewLaunchQueue(store Store, config Config) *LaunchQueue {
	if config.Namespace == "" {
		config.Namespace = "campaign-manager"
	}

	if config.JobTTL <= 0 {
		config.JobTTL = 24 * time.Hour
	}

	return &LaunchQueue{
		store:  store,
		config: config,
	}
}

// Enqueue registra o job como pendente e publica o id na fila. O job
// devolvido já carrega o identificador consultável pela API.
func (q *LaunchQueue) Enqueue(ctx context.Context, request domain.LaunchRequest) (*domain.LaunchJob, error) {
	job := &domain.LaunchJob{
		ID:         uuid.NewString(),
		Status:     domain.LaunchStatusPending,
		Request:    request,
		EnqueuedAt: time.Now(),
	}

	if err := q.saveJob(ctx, job); err != nil {
		return nil, err
	}

	if err := q.store.PushID(ctx, q.pendingKey(), job.ID); err != nil {
		return nil, fmt.Errorf("erro ao publicar o job %s na fila: %w", job.ID, err)
	}

	metrics.IncLaunchJob(string(domain.LaunchStatusPending))

	logrus.WithField("job_id", job.ID).Info("Job de lançamento enfileirado")

	return job, nil
}

// Dequeue retira o próximo job pendente. O LPOP garante que cada id sai
// para um único worker; registros que expiraram antes de serem atendidos
// são descartados com aviso. Devolve nil quando a fila está vazia.
func (q *LaunchQueue) Dequeue(ctx context.Context) (*domain.LaunchJob, error) {
	for {
		id, err := q.store.PopID(ctx, q.pendingKey())
		if err != nil {
			return nil, err
		}

		if id == "" {
			return nil, nil
		}

		job := &domain.LaunchJob{}
		found, err := q.store.GetJSON(ctx, q.jobKey(id), job)
		if err != nil {
			return nil, err
		}

		if !found {
			logrus.WithField("job_id", id).Warn("Registro do job expirou antes do processamento. Pulando.")
			continue
		}

		return job, nil
	}
}

// GetJob carrega o estado atual de um job. found é falso quando o job
// nunca existiu ou o registro já expirou.
func (q *LaunchQueue) GetJob(ctx context.Context, jobID string) (*domain.LaunchJob, bool, error) {
	job := &domain.LaunchJob{}

	found, err := q.store.GetJSON(ctx, q.jobKey(jobID), job)
	if err != nil {
		return nil, false, err
	}

	if !found {
		return nil, false, nil
	}

	return job, true, nil
}

// MarkProcessing move o job de pendente para em processamento.
func (q *LaunchQueue) MarkProcessing(ctx context.Context, job *domain.LaunchJob) error {
	if err := job.Transition(domain.LaunchStatusProcessing); err != nil {
		return err
	}

	now := time.Now()
	job.StartedAt = &now

	return q.saveJob(ctx, job)
}

// MarkCompleted encerra o job com os ids remotos criados.
func (q *LaunchQueue) MarkCompleted(ctx context.Context, job *domain.LaunchJob, result *domain.LaunchResult) error {
	if err := job.Transition(domain.LaunchStatusCompleted); err != nil {
		return err
	}

	now := time.Now()
	job.FinishedAt = &now
	job.Result = result
	job.Error = ""

	metrics.IncLaunchJob(string(domain.LaunchStatusCompleted))

	return q.saveJob(ctx, job)
}

// MarkFailed encerra o job com a causa da falha.
func (q *LaunchQueue) MarkFailed(ctx context.Context, job *domain.LaunchJob, cause string) error {
	if err := job.Transition(domain.LaunchStatusFailed); err != nil {
		return err
	}

	now := time.Now()
	job.FinishedAt = &now
	job.Error = cause

	metrics.IncLaunchJob(string(domain.LaunchStatusFailed))

	return q.saveJob(ctx, job)
}

// Depth devolve a quantidade de jobs aguardando na fila.
func (q *LaunchQueue) Depth(ctx context.Context) (int64, error) {
	return q.store.ListLen(ctx, q.pendingKey())
}

func (q *LaunchQueue) saveJob(ctx context.Context, job *domain.LaunchJob) error {
	if err := q.store.SetJSON(ctx, q.jobKey(job.ID), job, q.config.JobTTL); err != nil {
		return fmt.Errorf("erro ao gravar o job %s: %w", job.ID, err)
	}

	return nil
}

func (q *LaunchQueue) pendingKey() string {
	return fmt.Sprintf("%s:launch:pending", q.config.Namespace)
}

func (q *LaunchQueue) jobKey(jobID string) string {
	return fmt.Sprintf("%s:launch:jobs:%s", q.config.Namespace, jobID)
}
