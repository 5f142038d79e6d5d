package launching

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de lançamento
var (
	ErrInvalidRequest = errors.New("invalid launch request")

	// ErrJobNotFound cobre tanto o job que nunca existiu quanto o que já
	// expirou pelo TTL da fila; os dois casos são indistinguíveis.
	ErrJobNotFound = errors.New("launch job not found")
)

// LaunchError é um erro com contexto adicional para lançamento
type LaunchError struct {
	Err     error
	JobID   string
	Details string
}

func (e *LaunchError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func NewLaunchError(err error, jobID string, details string) *LaunchError {
	return &LaunchError{
		Err:     err,
		JobID:   jobID,
		Details: details,
	}
}
