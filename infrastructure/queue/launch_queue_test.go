package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

// fakeStore simula o armazenamento chave-valor em memória, com os mesmos
// contratos atômicos do cliente real: cada PopID entrega um id a um único
// chamador mesmo sob concorrência.
type fakeStore struct {
	mu      sync.Mutex
	lists   map[string][]string
	records map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:   make(map[string][]string),
		records: make(map[string][]byte),
	}
}

func (s *fakeStore) PushID(_ context.Context, list, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list] = append(s.lists[list], id)
	return nil
}

func (s *fakeStore) PopID(_ context.Context, list string) (string, error) {
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

func (s *fakeStore) ListLen(_ context.Context, list string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lists[list])), nil
}

func (s *fakeStore) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = payload
	return nil
}

func (s *fakeStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	payload, ok := s.records[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(payload, dest)
}

func (s *fakeStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

func launchRequest(name string) domain.LaunchRequest {
	return domain.LaunchRequest{
		TenantID:    "tenant-1",
		AccountID:   "act_123",
		Name:        name,
		Objective:   "CONVERSIONS",
		DailyBudget: 50.0,
		CreativeID:  "creative-1",
	}
}

func TestLaunchQueue_EnqueueDequeue(t *testing.T) {
	store := newFakeStore()
	queue := NewLaunchQueue(store, Config{Namespace: "test", JobTTL: time.Hour})
	ctx := context.Background()

	job, err := queue.Enqueue(ctx, launchRequest("Campanha A"))
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, domain.LaunchStatusPending, job.Status)

	depth, err := queue.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)

	dequeued, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, dequeued)
	assert.Equal(t, job.ID, dequeued.ID)
	assert.Equal(t, "Campanha A", dequeued.Request.Name)

	// Fila vazia devolve nil sem erro
	empty, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestLaunchQueue_RegistroExpiradoEhPulado(t *testing.T) {
	store := newFakeStore()
	queue := NewLaunchQueue(store, Config{Namespace: "test", JobTTL: time.Hour})
	ctx := context.Background()

	expired, err := queue.Enqueue(ctx, launchRequest("Campanha Expirada"))
	require.NoError(t, err)

	valid, err := queue.Enqueue(ctx, launchRequest("Campanha Válida"))
	require.NoError(t, err)

	// Simula a expiração do registro do primeiro job
	store.delete(fmt.Sprintf("test:launch:jobs:%s", expired.ID))

	dequeued, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, dequeued)
	assert.Equal(t, valid.ID, dequeued.ID)
}

func TestLaunchQueue_MaquinaDeEstados(t *testing.T) {
	store := newFakeStore()
	queue := NewLaunchQueue(store, Config{Namespace: "test", JobTTL: time.Hour})
	ctx := context.Background()

	job, err := queue.Enqueue(ctx, launchRequest("Campanha B"))
	require.NoError(t, err)

	// pending -> completed sem passar por processing é inválido
	err = queue.MarkCompleted(ctx, job, &domain.LaunchResult{})
	assert.Error(t, err)

	require.NoError(t, queue.MarkProcessing(ctx, job))
	assert.Equal(t, domain.LaunchStatusProcessing, job.Status)
	assert.NotNil(t, job.StartedAt)

	result := &domain.LaunchResult{CampaignID: "123", AdSetID: "456", AdID: "789"}
	require.NoError(t, queue.MarkCompleted(ctx, job, result))
	assert.Equal(t, domain.LaunchStatusCompleted, job.Status)
	assert.NotNil(t, job.FinishedAt)

	// Estado terminal é imutável
	err = queue.MarkFailed(ctx, job, "tarde demais")
	assert.Error(t, err)

	// O estado consultável reflete o desfecho
	loaded, found, err := queue.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.LaunchStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.Result)
	assert.Equal(t, "123", loaded.Result.CampaignID)
}

func TestLaunchQueue_MarkFailedGuardaCausa(t *testing.T) {
	store := newFakeStore()
	queue := NewLaunchQueue(store, Config{Namespace: "test", JobTTL: time.Hour})
	ctx := context.Background()

	job, err := queue.Enqueue(ctx, launchRequest("Campanha C"))
	require.NoError(t, err)

	require.NoError(t, queue.MarkProcessing(ctx, job))
	require.NoError(t, queue.MarkFailed(ctx, job, "criativo inexistente"))

	loaded, found, err := queue.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.LaunchStatusFailed, loaded.Status)
	assert.Equal(t, "criativo inexistente", loaded.Error)
}

// Vários workers disputando a fila: cada job deve sair exatamente uma vez.
func TestLaunchQueue_CadaJobSaiParaUmUnicoWorker(t *testing.T) {
	store := newFakeStore()
	queue := NewLaunchQueue(store, Config{Namespace: "test", JobTTL: time.Hour})
	ctx := context.Background()

	const totalJobs = 40
	const workers = 8

	expected := make(map[string]bool, totalJobs)
	for i := 0; i < totalJobs; i++ {
		job, err := queue.Enqueue(ctx, launchRequest(fmt.Sprintf("Campanha %d", i)))
		require.NoError(t, err)
		expected[job.ID] = true
	}

	seen := make(chan string, totalJobs)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := queue.Dequeue(ctx)
				assert.NoError(t, err)
				if job == nil {
					return
				}
				seen <- job.ID
			}
		}()
	}

	wg.Wait()
	close(seen)

	processed := make(map[string]int)
	for id := range seen {
		processed[id]++
	}

	assert.Len(t, processed, totalJobs)
	for id := range expected {
		assert.Equal(t, 1, processed[id], "job %s deveria sair exatamente uma vez", id)
	}
}
