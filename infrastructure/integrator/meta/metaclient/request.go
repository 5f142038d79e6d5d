package metaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	metadomain "github.com/vfg2006/campaign-manager-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
	"github.com/vfg2006/campaign-manager-api/pkg/metrics"
)

const (
	// maxAttempts limita o total de tentativas por chamada, contando a
	// primeira. Apenas erros transitórios são retentados.
	maxAttempts = 3

	// rateLimitWindow é a janela deslizante do orçamento local de chamadas.
	rateLimitWindow = time.Hour
)

func rateLimitKey(principal string) string {
	return "meta:ratelimit:" + principal
}

// doRequest executa uma chamada à plataforma com orçamento local de rate
// limit, classificação de erros e retry com backoff exponencial.
func (c *MetaClient) doRequest(ctx context.Context, method, requestURL string, body []byte, principal string) ([]byte, error) {
	logger := log.ForContext(ctx)

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			// Espera 2^n segundos após a tentativa n falhar.
			backoff := time.Duration(1<<(attempt-1)) * time.Second

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.checkBudget(ctx, principal); err != nil {
			metrics.IncPlatformCall(method, "rate_limited")
			return nil, err
		}

		respBody, err := c.callOnce(ctx, method, requestURL, body)
		if err == nil {
			metrics.IncPlatformCall(method, "ok")
			return respBody, nil
		}

		lastErr = err

		kind := metadomain.KindOf(err)
		if kind != metadomain.KindTransient {
			metrics.IncPlatformCall(method, outcomeLabel(kind))
			return nil, err
		}

		logger.WithFields(log.Fields{
			"method":  method,
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("meta: erro transitório na chamada, tentando novamente")
	}

	metrics.IncPlatformCall(method, "transient")

	return nil, fmt.Errorf("tentativas esgotadas após %d chamadas: %w", maxAttempts, lastErr)
}

// callOnce faz uma única chamada HTTP e classifica a resposta.
func (c *MetaClient) callOnce(ctx context.Context, method, requestURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Falha de rede vale nova tentativa.
		return nil, &metadomain.APIError{
			Kind:    metadomain.KindTransient,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &metadomain.APIError{
			Kind:    metadomain.KindTransient,
			Message: fmt.Sprintf("erro ao ler a resposta: %v", err),
		}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return respBody, nil
	}

	var errResp metadomain.ErrorResponse
	if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error.Message == "" {
		// Sem envelope de erro reconhecível, classifica pelo status HTTP.
		return nil, metadomain.Classify(resp.StatusCode, nil)
	}

	return nil, metadomain.Classify(resp.StatusCode, &errResp)
}

// checkBudget consome uma unidade do orçamento local da janela corrente.
// Falha de contabilização não bloqueia a chamada, apenas gera aviso.
func (c *MetaClient) checkBudget(ctx context.Context, principal string) error {
	if c.counter == nil {
		return nil
	}

	if principal == "" {
		principal = "global"
	}

	count, err := c.counter.IncrWindow(ctx, rateLimitKey(principal), rateLimitWindow)
	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("meta: não foi possível contabilizar o limite local de chamadas")
		return nil
	}

	budget := c.cfg.Meta.RateLimitCap
	if budget <= 0 {
		return nil
	}

	if count > budget {
		metrics.IncPlatformRateLimited()
		return metadomain.NewRateLimitedError(principal)
	}

	// Aviso ao cruzar 90% do orçamento da janela.
	if count*10 >= budget*9 {
		log.ForContext(ctx).WithFields(log.Fields{
			"principal": principal,
			"count":     count,
			"budget":    budget,
		}).Warn("meta: orçamento local de chamadas próximo do limite")
	}

	return nil
}

func outcomeLabel(kind metadomain.ErrorKind) string {
	switch kind {
	case metadomain.KindAuthExpired:
		return "auth_expired"
	case metadomain.KindRateLimited:
		return "rate_limited"
	case metadomain.KindInvalidParameter:
		return "invalid_parameter"
	case metadomain.KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}
