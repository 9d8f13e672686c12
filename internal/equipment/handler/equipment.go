package handler

import (
	"net/http"

	"unilab/internal/equipment/service"
	apperrors "unilab/pkg/errors"
	httputil "unilab/pkg/http"
	"unilab/pkg/logger"
	"unilab/pkg/middleware"
	"unilab/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EquipmentHandler struct {
	service service.EquipmentService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewEquipmentHandler(service service.EquipmentService, auth *middleware.Authenticator, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var equipment model.Equipment
	if err := httputil.DecodeJSON(r, &equipment); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &equipment); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, equipment); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EquipmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipment, err := h.service.GetByID(r.Context(), ps.ByName("equipmentId"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	items, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, items, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.EquipmentUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	equipment, err := h.service.Update(r.Context(), ps.ByName("equipmentId"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("equipmentId")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EquipmentHandler) Borrow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, "Borrow", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.BorrowRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Borrow", err)
		return
	}

	equipment, err := h.service.BorrowEquipment(r.Context(), ps.ByName("equipmentId"), &req, principal.UserID)
	if err != nil {
		h.writeError(w, "Borrow", err)
		return
	}

	if err := httputil.WriteCreated(w, equipment); err != nil {
		h.log.Error("failed to write created response", "handler", "Borrow", "operation", "WriteCreated", "error", err)
	}
}

func (h *EquipmentHandler) UpdateBorrowing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch model.BorrowingUpdate
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.writeError(w, "UpdateBorrowing", err)
		return
	}

	equipment, err := h.service.UpdateBorrowing(r.Context(), ps.ByName("equipmentId"), ps.ByName("borrowingId"), &patch)
	if err != nil {
		h.writeError(w, "UpdateBorrowing", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBorrowing", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) UpdateBorrowStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.StatusUpdate
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateBorrowStatus", err)
		return
	}

	equipment, err := h.service.UpdateBorrowStatus(r.Context(), ps.ByName("equipmentId"), ps.ByName("borrowingId"), body.Status)
	if err != nil {
		h.writeError(w, "UpdateBorrowStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateBorrowStatus", "operation", "WriteSuccess", "error", err)
	}
}

// Return accepts an empty body, in which case the return is stamped now.
func (h *EquipmentHandler) Return(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ReturnRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Return", err)
			return
		}
	}

	equipment, err := h.service.ReturnEquipment(r.Context(), ps.ByName("equipmentId"), ps.ByName("borrowingId"), &req)
	if err != nil {
		h.writeError(w, "Return", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "Return", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) DeleteBorrowing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipment, err := h.service.DeleteBorrowing(r.Context(), ps.ByName("equipmentId"), ps.ByName("borrowingId"))
	if err != nil {
		h.writeError(w, "DeleteBorrowing", err)
		return
	}

	if err := httputil.WriteSuccess(w, equipment); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteBorrowing", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EquipmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EquipmentHandler) RegisterRoutes(router *httprouter.Router) {
	authed := h.auth.RequireRoles()
	keeper := h.auth.RequireRoles(model.RoleAdmin, model.RoleTO)
	borrower := h.auth.RequireRoles(model.RoleLecturer, model.RoleStudent, model.RoleAdmin)
	editor := h.auth.RequireRoles(model.RoleAdmin, model.RoleTO, model.RoleLecturer)
	returner := h.auth.RequireRoles(model.RoleLecturer, model.RoleStudent)

	router.POST("/api/v1/equipment", keeper(h.Create))
	router.GET("/api/v1/equipment", authed(h.GetAll))
	router.GET("/api/v1/equipment/:equipmentId", authed(h.GetByID))
	router.PUT("/api/v1/equipment/:equipmentId", keeper(h.Update))
	router.DELETE("/api/v1/equipment/:equipmentId", keeper(h.Delete))

	router.POST("/api/v1/equipment/:equipmentId/borrow", borrower(h.Borrow))
	router.PUT("/api/v1/equipment/:equipmentId/borrowings/:borrowingId", editor(h.UpdateBorrowing))
	router.PUT("/api/v1/equipment/:equipmentId/borrowings/:borrowingId/status", keeper(h.UpdateBorrowStatus))
	router.PUT("/api/v1/equipment/:equipmentId/borrowings/:borrowingId/return", returner(h.Return))
	router.DELETE("/api/v1/equipment/:equipmentId/borrowings/:borrowingId", editor(h.DeleteBorrowing))
}
