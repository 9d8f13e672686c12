package handler

import (
	"net/http"

	"unilab/internal/notifications/service"
	apperrors "unilab/pkg/errors"
	httputil "unilab/pkg/http"
	"unilab/pkg/logger"
	"unilab/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service service.NotificationService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, auth *middleware.Authenticator, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "List", apperrors.Unauthorized("Authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	notifications, err := h.service.GetUserNotifications(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, notifications); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) MarkAsSeen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "MarkAsSeen", apperrors.Unauthorized("Authentication required"))
		return
	}

	notification, err := h.service.MarkAsSeen(r.Context(), ps.ByName("id"), principal.UserID)
	if err != nil {
		h.writeError(w, "MarkAsSeen", err)
		return
	}

	if err := httputil.WriteSuccess(w, notification); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkAsSeen", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	authed := h.auth.RequireRoles()

	router.GET("/api/v1/notifications", authed(h.List))
	router.PUT("/api/v1/notifications/:id/seen", authed(h.MarkAsSeen))
}
