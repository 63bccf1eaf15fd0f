package handler

import (
	"encoding/json"
	"net/http"

	"actibook/internal/wizard/service"
	httputil "actibook/pkg/http"
	"actibook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type WizardHandler struct {
	service service.WizardService
	log     *logger.Logger
}

func NewWizardHandler(service service.WizardService, log *logger.Logger) *WizardHandler {
	return &WizardHandler{
		service: service,
		log:     log,
	}
}

type chooseRequest struct {
	// ActivityID empty (or Skip true) skips the current day.
	ActivityID string `json:"activity_id,omitempty"`
	Skip       bool   `json:"skip,omitempty"`
}

func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.service.Start(r.Context(), ps.ByName("student_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Start", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, state); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *WizardHandler) State(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.service.State(r.Context(), ps.ByName("student_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "State", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "State", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WizardHandler) Options(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	options, err := h.service.Options(r.Context(), ps.ByName("student_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Options", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, options); err != nil {
		h.log.Error("failed to write success response", "handler", "Options", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WizardHandler) Choose(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req chooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Choose", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	activityID := req.ActivityID
	if req.Skip {
		activityID = ""
	}

	state, err := h.service.Choose(r.Context(), ps.ByName("student_id"), activityID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Choose", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, state); err != nil {
		h.log.Error("failed to write success response", "handler", "Choose", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WizardHandler) Finalize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.Finalize(r.Context(), ps.ByName("student_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Finalize", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Finalize", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WizardHandler) Abort(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Abort(r.Context(), ps.ByName("student_id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Abort", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WizardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/wizard/:student_id/start", h.Start)
	router.GET("/api/v1/wizard/:student_id", h.State)
	router.GET("/api/v1/wizard/:student_id/options", h.Options)
	router.POST("/api/v1/wizard/:student_id/choose", h.Choose)
	router.POST("/api/v1/wizard/:student_id/finalize", h.Finalize)
	router.DELETE("/api/v1/wizard/:student_id", h.Abort)
}
