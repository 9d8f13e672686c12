package handler

import (
	"net/http"

	"unilab/internal/labs/service"
	apperrors "unilab/pkg/errors"
	httputil "unilab/pkg/http"
	"unilab/pkg/logger"
	"unilab/pkg/middleware"
	"unilab/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type LabHandler struct {
	service service.LabService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewLabHandler(service service.LabService, auth *middleware.Authenticator, log *logger.Logger) *LabHandler {
	return &LabHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *LabHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var lab model.Lab
	if err := httputil.DecodeJSON(r, &lab); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &lab); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, lab); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *LabHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lab, err := h.service.GetByID(r.Context(), ps.ByName("labId"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	labs, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, labs, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *LabHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.LabUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	lab, err := h.service.Update(r.Context(), ps.ByName("labId"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("labId")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *LabHandler) CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "CreateBooking", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	lab, err := h.service.CreateBooking(r.Context(), ps.ByName("labId"), &req, principal.UserID)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, lab); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *LabHandler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetBooking(r.Context(), ps.ByName("labId"), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) UpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch model.BookingUpdate
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.writeError(w, "UpdateBooking", err)
		return
	}

	lab, err := h.service.UpdateBooking(r.Context(), ps.ByName("labId"), ps.ByName("bookingId"), &patch)
	if err != nil {
		h.writeError(w, "UpdateBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.StatusUpdate
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateBookingStatus", err)
		return
	}

	lab, err := h.service.UpdateBookingStatus(r.Context(), ps.ByName("labId"), ps.ByName("bookingId"), body.Status)
	if err != nil {
		h.writeError(w, "UpdateBookingStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBookingStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) AcceptBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lab, err := h.service.AcceptBooking(r.Context(), ps.ByName("labId"), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "AcceptBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "AcceptBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lab, err := h.service.CancelBooking(r.Context(), ps.ByName("labId"), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, lab); err != nil {
		h.log.Error("failed to write success response", "handler", "CancelBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LabHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *LabHandler) RegisterRoutes(router *httprouter.Router) {
	authed := h.auth.RequireRoles()
	admin := h.auth.RequireRoles(model.RoleAdmin)
	booker := h.auth.RequireRoles(model.RoleLecturer, model.RoleAdmin)
	officer := h.auth.RequireRoles(model.RoleTO, model.RoleAdmin)
	canceller := h.auth.RequireRoles(model.RoleLecturer, model.RoleAdmin, model.RoleTO, model.RoleStudent)

	router.POST("/api/v1/labs", admin(h.Create))
	router.GET("/api/v1/labs", authed(h.GetAll))
	router.GET("/api/v1/labs/:labId", authed(h.GetByID))
	router.PUT("/api/v1/labs/:labId", admin(h.Update))
	router.DELETE("/api/v1/labs/:labId", admin(h.Delete))

	router.POST("/api/v1/labs/:labId/bookings", booker(h.CreateBooking))
	router.GET("/api/v1/labs/:labId/bookings/:bookingId", authed(h.GetBooking))
	router.PUT("/api/v1/labs/:labId/bookings/:bookingId", booker(h.UpdateBooking))
	router.PUT("/api/v1/labs/:labId/bookings/:bookingId/status", officer(h.UpdateBookingStatus))
	router.POST("/api/v1/labs/:labId/bookings/:bookingId/accept", officer(h.AcceptBooking))
	router.DELETE("/api/v1/labs/:labId/bookings/:bookingId", canceller(h.CancelBooking))
}
