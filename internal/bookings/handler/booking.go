package handler

import (
	"encoding/json"
	"net/http"

	"actibook/internal/bookings/service"
	httputil "actibook/pkg/http"
	"actibook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

type bookingRequest struct {
	StudentID  string `json:"student_id"`
	ActivityID string `json:"activity_id"`
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Create(r.Context(), req.StudentID, req.ActivityID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Replace(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Replace", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Replace(r.Context(), req.StudentID, req.ActivityID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Replace", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Replace", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	studentID := query.Get("student_id")
	activityID := query.Get("activity_id")

	if err := h.service.Remove(r.Context(), studentID, activityID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Remove", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) ListForStudent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID := ps.ByName("student_id")

	bookings, err := h.service.ListForStudent(r.Context(), studentID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForStudent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForStudent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) MarkAttended(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "MarkAttended", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.MarkAttended(r.Context(), id, req.Attended); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkAttended", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.POST("/api/v1/bookings/replace", h.Replace)
	router.DELETE("/api/v1/bookings", h.Remove)
	router.GET("/api/v1/bookings/student/:student_id", h.ListForStudent)
	router.PATCH("/api/v1/bookings/id/:id/attended", h.MarkAttended)
}
