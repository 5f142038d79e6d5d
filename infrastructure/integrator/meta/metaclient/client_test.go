package metaclient_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/campaign-manager-api/internal/config"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
)

type roundTrip struct {
	status int
	body   string
	err    error
}

// fakeDoer devolve as respostas na ordem enfileirada e guarda cada
// requisição recebida para inspeção.
type fakeDoer struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	queue    []roundTrip
}

func (d *fakeDoer) push(status int, body string) {
	d.queue = append(d.queue, roundTrip{status: status, body: body})
}

func (d *fakeDoer) pushErr(err error) {
	d.queue = append(d.queue, roundTrip{err: err})
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}

	d.requests = append(d.requests, req)
	d.bodies = append(d.bodies, body)

	if len(d.queue) == 0 {
		return nil, fmt.Errorf("nenhuma resposta enfileirada para %s %s", req.Method, req.URL)
	}

	next := d.queue[0]
	d.queue = d.queue[1:]

	if next.err != nil {
		return nil, next.err
	}

	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(strings.NewReader(next.body)),
		Header:     http.Header{},
	}, nil
}

func (d *fakeDoer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

// fakeCounter simula o contador compartilhado da janela de rate limit.
type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) IncrWindow(_ context.Context, _ string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

// keyedCounter contabiliza por chave, como o contador real no Redis.
type keyedCounter struct {
	counts map[string]int64
}

func (f *keyedCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func testClientConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			BaseURL:      "https://graph.test",
			URL:          "https://graph.test/v22.0",
			Version:      "v22.0",
			AppID:        "app-id-teste",
			AppSecret:    "app-secret-teste",
			RateLimitCap: 100,
		},
	}
}

func testCredential() domain.Credential {
	return domain.Credential{
		AccessToken: "token-abc",
		Principal:   "tenant01",
	}
}

func TestFetchAll_PercorreTodasAsPaginas(t *testing.T) {
	doer := &fakeDoer{}
	doer.push(http.StatusOK, `{
		"data": [{"id": "c1"}, {"id": "c2"}],
		"paging": {"next": "https://graph.test/v22.0/act_123/campaigns?after=p2"}
	}`)
	doer.push(http.StatusOK, `{
		"data": [{"id": "c3"}],
		"paging": {"next": "https://graph.test/v22.0/act_123/campaigns?after=p3"}
	}`)
	doer.push(http.StatusOK, `{
		"data": [{"id": "c4"}],
		"paging": {}
	}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	items, err := client.FetchAll(context.Background(), "act_123/campaigns", nil, testCredential())
	require.NoError(t, err)

	assert.Len(t, items, 4)
	assert.Equal(t, 3, doer.callCount())

	// A primeira chamada carrega o token na query string
	assert.Equal(t, "token-abc", doer.requests[0].URL.Query().Get("access_token"))

	// As seguintes seguem exatamente a URL de paging.next
	assert.Equal(t, "p2", doer.requests[1].URL.Query().Get("after"))
	assert.Equal(t, "p3", doer.requests[2].URL.Query().Get("after"))
}

func TestFetchAll_CursorRepetidoInterrompe(t *testing.T) {
	// Um next idêntico ao da página corrente indica cursor quebrado na
	// plataforma; a paginação precisa parar em vez de repetir para sempre.
	stuck := "https://graph.test/v22.0/act_123/ads?after=preso"

	doer := &fakeDoer{}
	doer.push(http.StatusOK, fmt.Sprintf(`{"data": [{"id": "a1"}], "paging": {"next": %q}}`, stuck))
	doer.push(http.StatusOK, fmt.Sprintf(`{"data": [{"id": "a2"}], "paging": {"next": %q}}`, stuck))

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	items, err := client.FetchAll(context.Background(), "act_123/ads", nil, testCredential())
	require.NoError(t, err)

	assert.Len(t, items, 2)
	assert.Equal(t, 2, doer.callCount())
}

func TestFetchPage_ErroTransitorioERetentado(t *testing.T) {
	if testing.Short() {
		t.Skip("teste com backoff real")
	}

	doer := &fakeDoer{}
	doer.push(http.StatusInternalServerError, `{}`)
	doer.push(http.StatusOK, `{"data": [{"id": "c1"}], "paging": {}}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	page, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.NoError(t, err)

	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, doer.callCount())
}

func TestFetchPage_FalhaDeRedeERetentada(t *testing.T) {
	if testing.Short() {
		t.Skip("teste com backoff real")
	}

	doer := &fakeDoer{}
	doer.pushErr(fmt.Errorf("connection reset by peer"))
	doer.push(http.StatusOK, `{"data": [], "paging": {}}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.NoError(t, err)

	assert.Equal(t, 2, doer.callCount())
}

func TestFetchPage_ParametroInvalidoNaoRetenta(t *testing.T) {
	doer := &fakeDoer{}
	doer.push(http.StatusBadRequest, `{
		"error": {
			"message": "Invalid parameter",
			"type": "OAuthException",
			"code": 100,
			"fbtrace_id": "trace-1"
		}
	}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.Error(t, err)

	assert.True(t, metadomain.IsKind(err, metadomain.KindInvalidParameter))
	assert.Equal(t, 1, doer.callCount())
}

func TestFetchPage_TokenExpiradoNaoRetenta(t *testing.T) {
	doer := &fakeDoer{}
	doer.push(http.StatusUnauthorized, `{
		"error": {
			"message": "Error validating access token: Session has expired",
			"type": "OAuthException",
			"code": 190,
			"fbtrace_id": "trace-2"
		}
	}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.Error(t, err)

	assert.True(t, metadomain.IsKind(err, metadomain.KindAuthExpired))
	assert.Equal(t, 1, doer.callCount())
}

func TestFetchPage_OrcamentoLocalEsgotadoNaoChamaAPlataforma(t *testing.T) {
	cfg := testClientConfig()
	cfg.Meta.RateLimitCap = 2

	doer := &fakeDoer{}
	counter := &fakeCounter{count: 2} // próxima chamada estoura o orçamento

	client := metaclient.NewClient(cfg, doer, counter, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.Error(t, err)

	assert.True(t, metadomain.IsKind(err, metadomain.KindRateLimited))
	assert.Equal(t, 0, doer.callCount())
}

func TestFetchPage_OrcamentoEhContadoPorConexao(t *testing.T) {
	cfg := testClientConfig()
	cfg.Meta.RateLimitCap = 2

	doer := &fakeDoer{}
	doer.push(http.StatusOK, `{"data": [], "paging": {}}`)

	counter := &keyedCounter{counts: map[string]int64{
		"meta:ratelimit:tenant01": 2, // orçamento da tenant01 já consumido
	}}

	client := metaclient.NewClient(cfg, doer, counter, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.Error(t, err)
	assert.True(t, metadomain.IsKind(err, metadomain.KindRateLimited))

	other := domain.Credential{AccessToken: "token-xyz", Principal: "tenant02"}
	_, err = client.FetchPage(context.Background(), "act_456/campaigns", nil, other)
	require.NoError(t, err)

	assert.Equal(t, 1, doer.callCount())
}

func TestFetchPage_FalhaNoContadorNaoBloqueia(t *testing.T) {
	doer := &fakeDoer{}
	doer.push(http.StatusOK, `{"data": [], "paging": {}}`)

	counter := &fakeCounter{err: fmt.Errorf("redis indisponível")}

	client := metaclient.NewClient(testClientConfig(), doer, counter, nil)

	_, err := client.FetchPage(context.Background(), "act_123/campaigns", nil, testCredential())
	require.NoError(t, err)

	assert.Equal(t, 1, doer.callCount())
}

func TestPost_EnviaFormularioComToken(t *testing.T) {
	doer := &fakeDoer{}
	doer.push(http.StatusOK, `{"id": "120210000000000001"}`)

	client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

	form := url.Values{}
	form.Set("name", "Campanha Agosto")
	form.Set("status", "PAUSED")

	body, err := client.Post(context.Background(), "act_123/campaigns", form, testCredential())
	require.NoError(t, err)

	assert.Contains(t, string(body), "120210000000000001")

	require.Equal(t, 1, doer.callCount())
	req := doer.requests[0]

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	sent, err := url.ParseQuery(doer.bodies[0])
	require.NoError(t, err)
	assert.Equal(t, "token-abc", sent.Get("access_token"))
	assert.Equal(t, "Campanha Agosto", sent.Get("name"))
	assert.Equal(t, "PAUSED", sent.Get("status"))
}

func TestDelete_ExigeConfirmacaoDaPlataforma(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "plataforma confirma a remoção",
			body:    `{"success": true}`,
			wantErr: false,
		},
		{
			name:    "plataforma não confirma a remoção",
			body:    `{"success": false}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &fakeDoer{}
			doer.push(http.StatusOK, tt.body)

			client := metaclient.NewClient(testClientConfig(), doer, nil, nil)

			err := client.Delete(context.Background(), "120210000000000001", testCredential())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
