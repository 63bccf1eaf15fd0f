package handler

import (
	"encoding/json"
	"net/http"

	"actibook/internal/students/service"
	httputil "actibook/pkg/http"
	"actibook/pkg/logger"
	"actibook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type StudentHandler struct {
	service service.StudentService
	log     *logger.Logger
}

func NewStudentHandler(service service.StudentService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		log:     log,
	}
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.StudentProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateProfile(r.Context(), &profile); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, profile); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	profile, err := h.service.GetProfile(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StudentHandler) GetByAccount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	profile, err := h.service.GetProfileByAccount(r.Context(), ps.ByName("account_id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByAccount", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, profile); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByAccount", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StudentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/students", h.Create)
	router.GET("/api/v1/students/id/:id", h.Get)
	router.GET("/api/v1/students/account/:account_id", h.GetByAccount)
}
