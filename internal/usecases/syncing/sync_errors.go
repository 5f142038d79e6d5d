package syncing

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de sincronização
var (
	// Erros de validação
	ErrConnectionIDRequired = errors.New("connection ID is required")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConnectionNotUsable  = errors.New("connection is not usable")
	ErrInvalidEntityRef     = errors.New("invalid entity reference")

	// Erros de pré-condição do push
	ErrCampaignNotResolved = errors.New("ad set requires a resolved remote campaign ID")
	ErrAdSetNotResolved    = errors.New("ad requires a resolved remote ad set ID")
	ErrCreativeRequired    = errors.New("ad requires a creative ID")

	// Erros da plataforma
	ErrConnectionExpired = errors.New("connection credentials expired")
	ErrPlatformRejected  = errors.New("platform rejected the operation")
)

// SyncError é um erro com contexto adicional para sincronização
type SyncError struct {
	Err          error
	ConnectionID string
	Details      string
}

func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(err error, connectionID string, details string) *SyncError {
	return &SyncError{
		Err:          err,
		ConnectionID: connectionID,
		Details:      details,
	}
}
