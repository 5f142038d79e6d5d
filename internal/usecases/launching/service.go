package launching

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

const (
	defaultPollInterval = time.Second
	defaultWaitTimeout  = 30 * time.Second
)

// Queue é a visão da façade sobre a fila de lançamentos: enfileirar e
// consultar, nunca consumir.
type Queue interface {
	Enqueue(ctx context.Context, request domain.LaunchRequest) (*domain.LaunchJob, error)
	GetJob(ctx context.Context, jobID string) (*domain.LaunchJob, bool, error)
}

type Launcher interface {
	// Launch enfileira o rascunho e espera o desfecho dentro da janela
	// síncrona. Estourar a janela não é erro: a resposta volta com Accepted
	// e o job segue no worker.
	Launch(ctx context.Context, request domain.LaunchRequest) (*domain.LaunchResponse, error)

	// JobStatus consulta um job enfileirado anteriormente.
	JobStatus(ctx context.Context, jobID string) (*domain.LaunchJob, error)
}

type Config struct {
	PollInterval time.Duration
	WaitTimeout  time.Duration
}

type Service struct {
	queue  Queue
	config Config
}

func NewService(queue Queue, config Config) Launcher {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	if config.WaitTimeout <= 0 {
		config.WaitTimeout = defaultWaitTimeout
	}

	return &Service{
		queue:  queue,
		config: config,
	}
}

func (s *Service) Launch(ctx context.Context, request domain.LaunchRequest) (*domain.LaunchResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, NewLaunchError(ErrInvalidRequest, "", err.Error())
	}

	job, err := s.queue.Enqueue(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("erro ao enfileirar o lançamento: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"job_id":    job.ID,
		"tenant_id": request.TenantID,
	}).Info("Lançamento enfileirado")

	return s.waitForOutcome(ctx, job)
}

// waitForOutcome consulta o job até um estado terminal ou o fim da janela
// síncrona, o que vier primeiro.
func (s *Service) waitForOutcome(ctx context.Context, job *domain.LaunchJob) (*domain.LaunchResponse, error) {
	deadline := time.NewTimer(s.config.WaitTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	latest := job

	for {
		select {
		case <-ctx.Done():
			return acceptedResponse(latest), nil

		case <-deadline.C:
			logrus.WithField("job_id", job.ID).
				Info("Lançamento segue em processamento após a janela síncrona")
			return acceptedResponse(latest), nil

		case <-ticker.C:
			current, found, err := s.queue.GetJob(ctx, job.ID)
			if err != nil {
				return nil, fmt.Errorf("erro ao consultar o job %s: %w", job.ID, err)
			}

			if !found {
				return nil, NewLaunchError(ErrJobNotFound, job.ID, "")
			}

			if current.Status.IsTerminal() {
				return terminalResponse(current), nil
			}

			latest = current
		}
	}
}

func (s *Service) JobStatus(ctx context.Context, jobID string) (*domain.LaunchJob, error) {
	if jobID == "" {
		return nil, NewLaunchError(ErrJobNotFound, jobID, "job id vazio")
	}

	job, found, err := s.queue.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar o job %s: %w", jobID, err)
	}

	if !found {
		return nil, NewLaunchError(ErrJobNotFound, jobID, "")
	}

	return job, nil
}

func terminalResponse(job *domain.LaunchJob) *domain.LaunchResponse {
	response := &domain.LaunchResponse{
		JobID:  job.ID,
		Status: job.Status,
	}

	switch job.Status {
	case domain.LaunchStatusCompleted:
		response.Result = job.Result
	case domain.LaunchStatusFailed:
		response.Error = job.Error
	}

	return response
}

func acceptedResponse(job *domain.LaunchJob) *domain.LaunchResponse {
	return &domain.LaunchResponse{
		JobID:    job.ID,
		Status:   job.Status,
		Accepted: true,
	}
}
