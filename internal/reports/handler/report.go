package handler

import (
	"net/http"

	"actibook/internal/reports/service"
	httputil "actibook/pkg/http"
	"actibook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

func (h *ReportHandler) StudentsPerGrade(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.StudentsPerGrade(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "StudentsPerGrade", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "StudentsPerGrade", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) ActivityFill(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.ActivityFill(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ActivityFill", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "ActivityFill", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) QuotaDistribution(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.QuotaDistribution(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "QuotaDistribution", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "QuotaDistribution", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports/students-per-grade", h.StudentsPerGrade)
	router.GET("/api/v1/reports/activity-fill", h.ActivityFill)
	router.GET("/api/v1/reports/quota-distribution", h.QuotaDistribution)
}
