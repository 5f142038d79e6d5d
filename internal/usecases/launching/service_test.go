package launching

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaign-manager-api/infrastructure/queue"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/worker"
)

// memoryStore simula o armazenamento chave-valor em memória para montar a
// fila real de ponta a ponta, sem Redis.
type memoryStore struct {
	mu      sync.Mutex
	lists   map[string][]string
	records map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		lists:   make(map[string][]string),
		records: make(map[string][]byte),
	}
}

func (s *memoryStore) PushID(_ context.Context, list, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list] = append(s.lists[list], id)
	return nil
}

func (s *memoryStore) PopID(_ context.Context, list string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lists[list]
	if len(items) == 0 {
		return "", nil
	}

	id := items[0]
	s.lists[list] = items[1:]
	return id, nil
}

func (s *memoryStore) ListLen(_ context.Context, list string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lists[list])), nil
}

func (s *memoryStore) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = payload
	return nil
}

func (s *memoryStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	payload, ok := s.records[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(payload, dest)
}

// scriptedProcessor devolve um desfecho fixo depois de um atraso, simulando
// o tempo de criação da cadeia na plataforma.
type scriptedProcessor struct {
	delay  time.Duration
	result *domain.LaunchResult
	err    error
}

func (p *scriptedProcessor) Process(ctx context.Context, _ *domain.LaunchJob) (*domain.LaunchResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.delay):
	}

	return p.result, p.err
}

func validRequest() domain.LaunchRequest {
	return domain.LaunchRequest{
		TenantID:    "tenant01",
		AccountID:   "act_123",
		Name:        "Promoção de Inverno",
		Objective:   "OUTCOME_SALES",
		DailyBudget: 50.0,
		CreativeID:  "cr_789",
	}
}

// startPipeline monta fila, worker e façade reais sobre o armazenamento em
// memória. O worker roda em background até o fim do teste.
func startPipeline(t *testing.T, processor worker.Processor, config Config) (Launcher, *queue.LaunchQueue) {
	t.Helper()

	store := newMemoryStore()
	launchQueue := queue.NewLaunchQueue(store, queue.Config{Namespace: "test", JobTTL: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	w := worker.New(launchQueue, processor, worker.Config{PollInterval: 10 * time.Millisecond})
	go w.Run(ctx)

	return NewService(launchQueue, config), launchQueue
}

func TestService_Launch_ConcluiDentroDaJanela(t *testing.T) {
	processor := &scriptedProcessor{
		delay:  30 * time.Millisecond,
		result: &domain.LaunchResult{CampaignID: "c1", AdSetID: "as1", AdID: "ad1"},
	}

	service, _ := startPipeline(t, processor, Config{
		PollInterval: 20 * time.Millisecond,
		WaitTimeout:  2 * time.Second,
	})

	response, err := service.Launch(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, domain.LaunchStatusCompleted, response.Status)
	assert.False(t, response.Accepted)
	require.NotNil(t, response.Result)
	assert.Equal(t, "c1", response.Result.CampaignID)
	assert.Empty(t, response.Error)
}

func TestService_Launch_EstourarAJanelaDevolveAccepted(t *testing.T) {
	processor := &scriptedProcessor{
		delay:  500 * time.Millisecond,
		result: &domain.LaunchResult{CampaignID: "c1"},
	}

	service, _ := startPipeline(t, processor, Config{
		PollInterval: 20 * time.Millisecond,
		WaitTimeout:  100 * time.Millisecond,
	})

	response, err := service.Launch(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, response)
	assert.True(t, response.Accepted)
	assert.NotEmpty(t, response.JobID)
	assert.False(t, response.Status.IsTerminal())
	assert.Nil(t, response.Result)

	// O job segue no worker depois da janela síncrona
	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := service.JobStatus(context.Background(), response.JobID)
		require.NoError(t, err)

		if job.Status == domain.LaunchStatusCompleted {
			require.NotNil(t, job.Result)
			assert.Equal(t, "c1", job.Result.CampaignID)
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("job não terminou depois da janela síncrona")
		}

		time.Sleep(20 * time.Millisecond)
	}
}

func TestService_Launch_FalhaDoJobVoltaNaResposta(t *testing.T) {
	processor := &scriptedProcessor{
		delay: 10 * time.Millisecond,
		err:   errors.New("criativo cr_789 não existe na conta"),
	}

	service, _ := startPipeline(t, processor, Config{
		PollInterval: 20 * time.Millisecond,
		WaitTimeout:  2 * time.Second,
	})

	response, err := service.Launch(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, response)
	assert.Equal(t, domain.LaunchStatusFailed, response.Status)
	assert.False(t, response.Accepted)
	assert.Contains(t, response.Error, "criativo cr_789 não existe")
	assert.Nil(t, response.Result)
}

func TestService_Launch_PayloadInvalidoNaoEnfileira(t *testing.T) {
	processor := &scriptedProcessor{delay: time.Millisecond}

	service, launchQueue := startPipeline(t, processor, Config{
		PollInterval: 20 * time.Millisecond,
		WaitTimeout:  time.Second,
	})

	request := validRequest()
	request.CreativeID = ""

	response, err := service.Launch(context.Background(), request)

	assert.Nil(t, response)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	depth, depthErr := launchQueue.Depth(context.Background())
	require.NoError(t, depthErr)
	assert.Equal(t, int64(0), depth)
}

func TestService_JobStatus(t *testing.T) {
	processor := &scriptedProcessor{
		delay:  10 * time.Millisecond,
		result: &domain.LaunchResult{CampaignID: "c1"},
	}

	service, _ := startPipeline(t, processor, Config{
		PollInterval: 20 * time.Millisecond,
		WaitTimeout:  2 * time.Second,
	})

	response, err := service.Launch(context.Background(), validRequest())
	require.NoError(t, err)

	job, err := service.JobStatus(context.Background(), response.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.LaunchStatusCompleted, job.Status)

	// Job desconhecido e job expirado são o mesmo caso para quem consulta
	missing, err := service.JobStatus(context.Background(), "nao-existe")
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
