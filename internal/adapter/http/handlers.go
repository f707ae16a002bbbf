package http

import (
	"fmt"
	"net/http"

	"github.com/toneforge/toneforge/internal/domain/tenant"
	"github.com/toneforge/toneforge/internal/domain/training"
	"github.com/toneforge/toneforge/internal/service"
)

// Handlers bundles the services exposed over HTTP.
type Handlers struct {
	Intake    *service.IntakeService
	Training  *service.TrainingService
	Status    *service.StatusService
	Reviser   *service.Reviser
	BaseModel string
}

// HandleRoot reports service identity, mirroring the dashboard's expectations.
func (h *Handlers) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "Tone of Voice Service is running",
		"service":    "toneforge",
		"base_model": h.BaseModel,
	})
}

// HandleHealth is the liveness endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type logPairRequest struct {
	Draft     string `json:"draft"`
	Final     string `json:"final"`
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
}

// HandleLogPair records one draft/final pair for later training.
func (h *Handlers) HandleLogPair(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[logPairRequest](w, r)
	if !ok {
		return
	}

	t, err := tenant.New(req.UserID, req.AccountID)
	if err != nil {
		writeDomainError(w, err, "invalid tenant")
		return
	}

	count, err := h.Intake.SubmitPair(r.Context(), req.Draft, req.Final, t)
	if err != nil {
		writeDomainError(w, err, "failed to log pair")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "logged",
		"count":   count,
		"message": fmt.Sprintf("Pair logged successfully. Total pairs: %d", count),
	})
}

type reviseRequest struct {
	DraftText string `json:"draft_text"`
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
}

// HandleRevise rewrites a draft in the tenant's learned style.
func (h *Handlers) HandleRevise(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[reviseRequest](w, r)
	if !ok {
		return
	}
	if req.DraftText == "" {
		writeError(w, http.StatusBadRequest, "draft_text is required")
		return
	}

	t, err := tenant.New(req.UserID, req.AccountID)
	if err != nil {
		writeDomainError(w, err, "invalid tenant")
		return
	}

	result, err := h.Reviser.Revise(r.Context(), req.DraftText, t)
	if err != nil {
		writeDomainError(w, err, "failed to revise draft")
		return
	}

	resp := map[string]any{
		"revised":         result.Revised,
		"model_used":      result.ModelUsed,
		"original_length": len(req.DraftText),
		"revised_length":  len(result.Revised),
	}
	if !result.UsedAdapter {
		resp["message"] = "No fine-tuned model available yet. Training will start when enough data is collected."
	}
	writeJSON(w, http.StatusOK, resp)
}

type triggerRequest struct {
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
}

// HandleTriggerTraining starts a background fine-tuning job for the tenant.
func (h *Handlers) HandleTriggerTraining(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[triggerRequest](w, r)
	if !ok {
		return
	}

	t, err := tenant.New(req.UserID, req.AccountID)
	if err != nil {
		writeDomainError(w, err, "invalid tenant")
		return
	}

	result, err := h.Training.Trigger(r.Context(), t)
	if err != nil {
		writeDomainError(w, err, "failed to trigger fine-tuning")
		return
	}

	resp := map[string]any{
		"status": string(result.Status),
		"count":  result.Count,
	}
	switch result.Status {
	case training.StatusStarted:
		resp["job_id"] = result.JobID
		resp["message"] = fmt.Sprintf("Fine-tuning started with %d examples. This may take several minutes.", result.Count)
	case training.StatusAlreadyInFlight:
		resp["job_id"] = result.JobID
		resp["message"] = "A fine-tuning job for this tenant is already running."
	case training.StatusInsufficientData:
		resp["required"] = result.Required
		resp["message"] = fmt.Sprintf("Need at least %d examples. Currently have %d.", result.Required, result.Count)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus reports the tenant's adaptation lifecycle state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	t, err := tenant.New(urlParam(r, "userID"), urlParam(r, "accountID"))
	if err != nil {
		writeDomainError(w, err, "invalid tenant")
		return
	}

	status, err := h.Status.Get(r.Context(), t)
	if err != nil {
		writeDomainError(w, err, "failed to get status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
