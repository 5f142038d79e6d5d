package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
)

const defaultPollInterval = time.Second

// Queue é a visão do worker sobre a fila de lançamentos.
type Queue interface {
	Dequeue(ctx context.Context) (*domain.LaunchJob, error)
	MarkProcessing(ctx context.Context, job *domain.LaunchJob) error
	MarkCompleted(ctx context.Context, job *domain.LaunchJob, result *domain.LaunchResult) error
	MarkFailed(ctx context.Context, job *domain.LaunchJob, cause string) error
	Depth(ctx context.Context) (int64, error)
}

type Config struct {
	PollInterval time.Duration
}

// Worker consome a fila de lançamentos um job por vez. A ordem de chegada
// é preservada porque há um único consumidor por fila.
type Worker struct {
	queue     Queue
	processor Processor
	config    Config
}

func New(queue Queue, processor Processor, config Config) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	return &Worker{
		queue:     queue,
		processor: processor,
		config:    config,
	}
}

// Run consome a fila até o contexto ser cancelado. Erros e pânicos do
// processamento marcam o job como failed e o loop segue para o próximo.
func (w *Worker) Run(ctx context.Context) {
	logrus.WithField("poll_interval", w.config.PollInterval.String()).
		Info("Worker de lançamentos iniciado")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Worker de lançamentos encerrado")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			logrus.WithError(err).Error("Erro ao consumir a fila de lançamentos")
			w.sleep(ctx)
			continue
		}

		w.refreshDepth(ctx)

		if job == nil {
			w.sleep(ctx)
			continue
		}

		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job *domain.LaunchJob) {
	logger := logrus.WithField("job_id", job.ID)

	if err := w.queue.MarkProcessing(ctx, job); err != nil {
		logger.WithError(err).Error("Erro ao marcar o job como processing")
		return
	}

	result, err := w.process(ctx, job)
	if err != nil {
		logger.WithError(err).Error("Job de lançamento falhou")

		if markErr := w.queue.MarkFailed(ctx, job, err.Error()); markErr != nil {
			logger.WithError(markErr).Error("Erro ao marcar o job como failed")
		}

		return
	}

	if err := w.queue.MarkCompleted(ctx, job, result); err != nil {
		logger.WithError(err).Error("Erro ao marcar o job como completed")
		return
	}

	logger.Info("Job de lançamento concluído")
}

// process isola o pânico do processador: um payload inesperado não pode
// derrubar o loop do worker.
func (w *Worker) process(ctx context.Context, job *domain.LaunchJob) (result *domain.LaunchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pânico no processamento do job: %v", r)
		}
	}()

	return w.processor.Process(ctx, job)
}

func (w *Worker) refreshDepth(ctx context.Context) {
	depth, err := w.queue.Depth(ctx)
	if err != nil {
		return
	}

	metrics.SetLaunchQueueDepth(depth)
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.config.PollInterval):
	}
}
