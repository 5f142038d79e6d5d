package metadomain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// ErrorKind é a taxonomia interna dos erros da plataforma. Os consumidores
// decidem sobre retry e tratamento olhando apenas para o Kind, nunca para
// códigos numéricos da API.
type ErrorKind string

const (
	KindAuthExpired      ErrorKind = "AUTH_EXPIRED"
	KindRateLimited      ErrorKind = "RATE_LIMITED"
	KindInvalidParameter ErrorKind = "INVALID_PARAMETER"
	KindTransient        ErrorKind = "TRANSIENT"
	KindUnknown          ErrorKind = "UNKNOWN"
)

// APIError é o erro classificado devolvido pelo client da plataforma.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Code       int
	Subcode    int
	Message    string
	FBTraceID  string
}

func (e *APIError) Error() string {
	if e.FBTraceID != "" {
		return fmt.Sprintf("meta api: %s (kind=%s code=%d subcode=%d trace=%s)", e.Message, e.Kind, e.Code, e.Subcode, e.FBTraceID)
	}

	return fmt.Sprintf("meta api: %s (kind=%s code=%d)", e.Message, e.Kind, e.Code)
}

// Retryable indica se a chamada pode ser repetida com backoff.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTransient
}

// NewRateLimitedError cria o erro usado quando o orçamento local de
// chamadas da janela corrente se esgota. Não é retentável: a janela
// precisa virar antes de novas chamadas.
func NewRateLimitedError(principal string) *APIError {
	return &APIError{
		Kind:       KindRateLimited,
		StatusCode: http.StatusTooManyRequests,
		Message:    fmt.Sprintf("limite local de chamadas atingido para %s", principal),
	}
}

// Classify converte uma resposta de erro da plataforma no APIError
// correspondente da taxonomia.
func Classify(statusCode int, resp *ErrorResponse) *APIError {
	apiErr := &APIError{
		Kind:       KindUnknown,
		StatusCode: statusCode,
	}

	if resp == nil {
		apiErr.Message = http.StatusText(statusCode)
		if statusCode >= http.StatusInternalServerError {
			apiErr.Kind = KindTransient
		}
		return apiErr
	}

	apiErr.Code = resp.Error.Code
	apiErr.Subcode = resp.Error.ErrorSubcode
	apiErr.Message = resp.Error.Message
	apiErr.FBTraceID = resp.Error.FBTraceID

	switch {
	case resp.IsTokenExpired():
		apiErr.Kind = KindAuthExpired
	case resp.Error.Code == 17 || resp.Error.Code == 4 || resp.Error.Code == 2:
		// 17 e 4 são limites de uso da própria plataforma; 2 é indisponibilidade
		// temporária. Todos valem uma nova tentativa com backoff.
		apiErr.Kind = KindTransient
	case resp.Error.Code == 100:
		apiErr.Kind = KindInvalidParameter
	case statusCode >= http.StatusInternalServerError:
		apiErr.Kind = KindTransient
	}

	return apiErr
}

// KindOf extrai o Kind de um erro, UNKNOWN quando não é um APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return KindUnknown
}

// IsKind informa se o erro carrega o Kind procurado.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
