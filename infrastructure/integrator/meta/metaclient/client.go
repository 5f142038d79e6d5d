package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/internal/config"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
)

// Doer abstrai o transporte HTTP. A estratégia de transporte é fixada na
// construção do client; os testes injetam um transporte fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallCounter contabiliza as chamadas da janela corrente de rate limit.
// Implementado pelo wrapper de redis; compartilhado entre processos.
type CallCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ConnectionStore persiste credenciais renovadas durante as chamadas.
type ConnectionStore interface {
	UpdateCredentials(connectionID, accessToken string, expiresAt *time.Time) error
}

type Client interface {
	FetchPage(ctx context.Context, path string, params url.Values, cred domain.Credential) (*metadomain.Page, error)
	FetchAll(ctx context.Context, path string, params url.Values, cred domain.Credential) ([]json.RawMessage, error)
	Post(ctx context.Context, path string, form url.Values, cred domain.Credential) ([]byte, error)
	Delete(ctx context.Context, path string, cred domain.Credential) error
	EnsureFreshCredential(ctx context.Context, conn *domain.Connection) (string, error)
}

type MetaClient struct {
	cfg         *config.Config
	httpClient  Doer
	counter     CallCounter
	connections ConnectionStore
}

func NewClient(cfg *config.Config, httpClient Doer, counter CallCounter, connections ConnectionStore) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &MetaClient{
		cfg:         cfg,
		httpClient:  httpClient,
		counter:     counter,
		connections: connections,
	}
}

// FetchPage busca uma única página de um recurso de listagem.
func (c *MetaClient) FetchPage(ctx context.Context, path string, params url.Values, cred domain.Credential) (*metadomain.Page, error) {
	requestURL := c.buildURL(path, params, cred.AccessToken)

	body, err := c.doRequest(ctx, http.MethodGet, requestURL, nil, cred.Principal)
	if err != nil {
		return nil, err
	}

	var page metadomain.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("erro ao decodificar a página de %s: %w", path, err)
	}

	return &page, nil
}

// FetchAll percorre todas as páginas de um recurso de listagem seguindo
// paging.next até a última página.
func (c *MetaClient) FetchAll(ctx context.Context, path string, params url.Values, cred domain.Credential) ([]json.RawMessage, error) {
	page, err := c.FetchPage(ctx, path, params, cred)
	if err != nil {
		return nil, err
	}

	all := make([]json.RawMessage, 0, len(page.Data))
	all = append(all, page.Data...)

	next := page.Paging.Next
	for next != "" {
		body, err := c.doRequest(ctx, http.MethodGet, next, nil, cred.Principal)
		if err != nil {
			return nil, err
		}

		var p metadomain.Page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("erro ao decodificar a página de %s: %w", path, err)
		}

		all = append(all, p.Data...)

		// Um next igual à página corrente indicaria cursor quebrado na
		// plataforma; interrompe em vez de paginar para sempre.
		if p.Paging.Next == next {
			log.ForContext(ctx).WithField("path", path).Warn("meta: paginação não avançou, interrompendo")
			break
		}

		next = p.Paging.Next
	}

	return all, nil
}

// Post envia um formulário de criação ou atualização para a plataforma.
func (c *MetaClient) Post(ctx context.Context, path string, form url.Values, cred domain.Credential) ([]byte, error) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("access_token", cred.AccessToken)

	requestURL := fmt.Sprintf("%s/%s", c.cfg.Meta.URL, strings.TrimPrefix(path, "/"))

	return c.doRequest(ctx, http.MethodPost, requestURL, []byte(form.Encode()), cred.Principal)
}

// Delete remove uma entidade remota. A plataforma confirma com
// {"success": true}.
func (c *MetaClient) Delete(ctx context.Context, path string, cred domain.Credential) error {
	params := url.Values{}
	requestURL := c.buildURL(path, params, cred.AccessToken)

	body, err := c.doRequest(ctx, http.MethodDelete, requestURL, nil, cred.Principal)
	if err != nil {
		return err
	}

	var result metadomain.SuccessResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("erro ao decodificar a resposta de remoção de %s: %w", path, err)
	}

	if !result.Success {
		return fmt.Errorf("a plataforma não confirmou a remoção de %s", path)
	}

	return nil
}

func (c *MetaClient) buildURL(path string, params url.Values, accessToken string) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", accessToken)

	return fmt.Sprintf("%s/%s?%s", c.cfg.Meta.URL, strings.TrimPrefix(path, "/"), params.Encode())
}
