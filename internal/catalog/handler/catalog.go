package handler

import (
	"encoding/json"
	"net/http"

	"actibook/internal/catalog/service"
	httputil "actibook/pkg/http"
	"actibook/pkg/logger"
	"actibook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// CatalogHandler exposes the admin surface for grades and activities
// plus the read endpoints the booking flow consumes.
type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) CreateGrade(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var grade model.Grade
	if err := json.NewDecoder(r.Body).Decode(&grade); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateGrade", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateGrade(r.Context(), &grade); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateGrade", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, grade); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateGrade", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) ListGrades(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	grades, err := h.service.GetGrades(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListGrades", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, grades); err != nil {
		h.log.Error("failed to write success response", "handler", "ListGrades", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) CreateActivity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var activity model.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateActivity", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CreateActivity(r.Context(), &activity); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateActivity", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, activity); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateActivity", "operation", "WriteCreated", "error", err)
	}
}

func (h *CatalogHandler) GetActivity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	activity, err := h.service.GetActivity(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetActivity", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, activity); err != nil {
		h.log.Error("failed to write success response", "handler", "GetActivity", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) UpdateActivity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ActivityUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateActivity", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateActivity", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, activity); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateActivity", "operation", "WriteSuccess", "error", err)
	}
}

// ListDayActivities serves the booking flow: activities on one day
// open to one grade, with spots left.
func (h *CatalogHandler) ListDayActivities(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day := model.Weekday(ps.ByName("day"))
	gradeID := r.URL.Query().Get("grade_id")

	activities, err := h.service.GetDayActivities(r.Context(), day, gradeID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListDayActivities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, activities); err != nil {
		h.log.Error("failed to write success response", "handler", "ListDayActivities", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) ListActivities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListActivities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	activities, total, err := h.service.GetAllActivities(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListActivities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, activities, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListActivities", "operation", "WritePaginated", "error", err)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/grades", h.CreateGrade)
	router.GET("/api/v1/grades", h.ListGrades)

	router.POST("/api/v1/activities", h.CreateActivity)
	router.GET("/api/v1/activities", h.ListActivities)
	router.GET("/api/v1/activities/id/:id", h.GetActivity)
	router.PATCH("/api/v1/activities/id/:id", h.UpdateActivity)
	router.GET("/api/v1/activities/day/:day", h.ListDayActivities)
}
