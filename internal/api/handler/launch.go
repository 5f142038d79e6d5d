package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/campaign-manager-api/internal/domain"
	"github.com/vfg2006/campaign-manager-api/internal/usecases/launching"
	"github.com/vfg2006/campaign-manager-api/pkg/apiErrors"
	"github.com/vfg2006/campaign-manager-api/pkg/log"
)

// LaunchCampaign recebe o rascunho de campanha e espera o desfecho dentro
// da janela síncrona. Quando o job não termina a tempo a resposta volta
// com status 202 e o id para consulta posterior.
func LaunchCampaign(service launching.Launcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var request domain.LaunchRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
			return
		}

		logger.WithFields(log.Fields{
			"tenant_id":  request.TenantID,
			"account_id": request.AccountID,
			"name":       request.Name,
		}).Info("launch: received campaign draft")

		response, err := service.Launch(r.Context(), request)
		if err != nil {
			handleLaunchError(w, err)
			return
		}

		status := http.StatusOK
		if response.Accepted {
			status = http.StatusAccepted
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("launch: failed to encode response")
		}
	})
}

// GetLaunchJob consulta um job de lançamento pelo id.
func GetLaunchJob(service launching.Launcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		jobID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		logger.WithField("job_id", jobID).Info("launch: fetching job status")

		job, err := service.JobStatus(r.Context(), jobID)
		if err != nil {
			handleLaunchError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(job); err != nil {
			logger.WithError(err).Error("launch: failed to encode job")
		}
	})
}

// handleLaunchError traduz os erros do usecase para o envelope da API.
func handleLaunchError(w http.ResponseWriter, err error) {
	var launchErr *launching.LaunchError
	if errors.As(err, &launchErr) {
		switch {
		case errors.Is(launchErr.Err, launching.ErrInvalidRequest):
			apiErrors.WriteError(w, apiErrors.ErrLaunchRejected, "Lançamento recusado na validação", launchErr.Details)
		case errors.Is(launchErr.Err, launching.ErrJobNotFound):
			apiErrors.WriteError(w, apiErrors.ErrJobNotFound, "Job de lançamento não encontrado", nil)
		default:
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, launchErr.Error(), nil)
		}
		return
	}

	logrus.WithError(err).Error("Erro inesperado no lançamento")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao processar o lançamento", nil)
}
