package service

import (
	"context"
	"errors"
	"time"

	equipmenterrors "unilab/internal/equipment/errors"
	"unilab/internal/equipment/repository"
	"unilab/internal/equipment/validator"
	notifications "unilab/internal/notifications/service"
	"unilab/pkg/config"
	apperrors "unilab/pkg/errors"
	"unilab/pkg/lock"
	"unilab/pkg/model"
	"unilab/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const lockKind = "equipment"

type EquipmentService interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, int64, error)
	Update(ctx context.Context, id string, updates *model.EquipmentUpdate) (*model.Equipment, error)
	Delete(ctx context.Context, id string) error

	BorrowEquipment(ctx context.Context, equipmentID string, req *model.BorrowRequest, requesterID string) (*model.Equipment, error)
	UpdateBorrowStatus(ctx context.Context, equipmentID, borrowingID string, status model.Status) (*model.Equipment, error)
	UpdateBorrowing(ctx context.Context, equipmentID, borrowingID string, patch *model.BorrowingUpdate) (*model.Equipment, error)
	ReturnEquipment(ctx context.Context, equipmentID, borrowingID string, req *model.ReturnRequest) (*model.Equipment, error)
	DeleteBorrowing(ctx context.Context, equipmentID, borrowingID string) (*model.Equipment, error)
}

type equipmentService struct {
	repo      repository.EquipmentRepository
	validator *validator.EquipmentValidator
	locker    lock.Locker
	notifier  notifications.Notifier
	cfg       *config.Config
}

func NewEquipmentService(
	repo repository.EquipmentRepository,
	validator *validator.EquipmentValidator,
	locker lock.Locker,
	notifier notifications.Notifier,
	cfg *config.Config,
) EquipmentService {
	return &equipmentService{
		repo:      repo,
		validator: validator,
		locker:    locker,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *equipmentService) Create(ctx context.Context, equipment *model.Equipment) error {
	equipment.ItemNum = sanitizer.SanitizeCode(equipment.ItemNum)
	equipment.Name = sanitizer.SanitizeText(equipment.Name)
	equipment.ImgURL = sanitizer.SanitizeURL(equipment.ImgURL)
	equipment.ID = ""
	equipment.Borrowings = []model.Borrowing{}

	if err := s.validator.Validate(equipment); err != nil {
		s.cfg.Log.Warn("Equipment validation failed",
			"item_num", equipment.ItemNum,
			"error", err,
		)
		return apperrors.Validation("Equipment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, equipment); err != nil {
		s.cfg.Log.Error("Failed to create equipment",
			"item_num", equipment.ItemNum,
			"error", err,
		)
		return s.translate(err, equipment.ItemNum)
	}

	s.cfg.Log.Info("Equipment created successfully",
		"id", equipment.ID,
		"item_num", equipment.ItemNum,
		"quantity", equipment.Quantity,
	)
	return nil
}

func (s *equipmentService) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return equipment, nil
}

func (s *equipmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var items []*model.Equipment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count equipment", "error", err)
			return apperrors.Internal("Failed to count equipment", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all equipment",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve equipment", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (s *equipmentService) Update(ctx context.Context, id string, updates *model.EquipmentUpdate) (*model.Equipment, error) {
	updates.ItemNum = sanitizer.SanitizeCode(updates.ItemNum)
	updates.Name = sanitizer.SanitizeText(updates.Name)
	if updates.ImgURL != nil {
		*updates.ImgURL = sanitizer.SanitizeURL(*updates.ImgURL)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Equipment update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Equipment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	equipment, err := s.mutate(ctx, id, func(e *model.Equipment) error {
		if updates.ItemNum != "" {
			e.ItemNum = updates.ItemNum
		}
		if updates.Name != "" {
			e.Name = updates.Name
		}
		if updates.Quantity != nil {
			e.Quantity = *updates.Quantity
		}
		if updates.ImgURL != nil {
			e.ImgURL = *updates.ImgURL
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Equipment updated successfully", "id", id, "version", equipment.Version)
	return equipment, nil
}

func (s *equipmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	release, err := s.locker.Acquire(ctx, lock.Key(lockKind, id))
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id)
	}

	s.cfg.Log.Info("Equipment deleted successfully", "id", id)
	return nil
}

// BorrowEquipment records a pending request if the units asked for fit next to
// the outstanding accepted borrowings.
func (s *equipmentService) BorrowEquipment(ctx context.Context, equipmentID string, req *model.BorrowRequest, requesterID string) (*model.Equipment, error) {
	req.Batch = sanitizer.SanitizeText(req.Batch)
	req.Purpose = sanitizer.SanitizeText(req.Purpose)
	req.BorrowDate = sanitizer.SanitizeText(req.BorrowDate)

	borrowDate, returnDate, err := s.validator.ValidateBorrowRequest(req)
	if err != nil {
		s.cfg.Log.Warn("Borrow request validation failed",
			"equipment_id", equipmentID,
			"requester", requesterID,
			"error", err,
		)
		return nil, apperrors.Validation("Borrow request validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var borrowing model.Borrowing
	equipment, err := s.mutate(ctx, equipmentID, func(e *model.Equipment) error {
		if !e.CanLend(req.NumOfItems, "") {
			return s.capacityError(e, "", req.NumOfItems, "Not enough items available")
		}

		borrowing = model.Borrowing{
			ID:         primitive.NewObjectID().Hex(),
			BorrowedBy: requesterID,
			NumOfItems: req.NumOfItems,
			BorrowDate: borrowDate,
			ReturnDate: returnDate,
			Status:     model.StatusPending,
			Batch:      req.Batch,
			Purpose:    req.Purpose,
			IsNew:      true,
			CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		}
		e.Borrowings = append(e.Borrowings, borrowing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Borrow request created",
		"equipment_id", equipment.ID,
		"borrowing_id", borrowing.ID,
		"num_of_items", borrowing.NumOfItems,
		"available", equipment.Available(),
	)

	s.notify(ctx, "BorrowRequestCreated", equipment.ID, borrowing.ID, func(ctx context.Context) error {
		return s.notifier.BorrowRequestCreated(ctx, equipment, &borrowing)
	})
	return equipment, nil
}

// UpdateBorrowStatus does not re-check availability on accept.
func (s *equipmentService) UpdateBorrowStatus(ctx context.Context, equipmentID, borrowingID string, status model.Status) (*model.Equipment, error) {
	if err := validator.ValidateStatus(status); err != nil {
		return nil, apperrors.Validation("Invalid borrowing status", map[string]any{
			"error": err.Error(),
		})
	}

	var borrowing model.Borrowing
	equipment, err := s.mutate(ctx, equipmentID, func(e *model.Equipment) error {
		idx := e.FindBorrowing(borrowingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Borrowing record", borrowingID)
		}
		e.Borrowings[idx].Status = status
		borrowing = e.Borrowings[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Borrow status updated",
		"equipment_id", equipment.ID,
		"borrowing_id", borrowingID,
		"status", status,
	)

	s.notify(ctx, "BorrowStatusChanged", equipment.ID, borrowingID, func(ctx context.Context) error {
		return s.notifier.BorrowStatusChanged(ctx, equipment, &borrowing)
	})
	return equipment, nil
}

// UpdateBorrowing applies the present fields. A new item count, or a cleared
// return date on an accepted borrowing, is checked against availability
// excluding this borrowing. A status change notifies like UpdateBorrowStatus.
func (s *equipmentService) UpdateBorrowing(ctx context.Context, equipmentID, borrowingID string, patch *model.BorrowingUpdate) (*model.Equipment, error) {
	if err := s.validator.ValidateBorrowingUpdate(patch); err != nil {
		s.cfg.Log.Warn("Borrowing update validation failed",
			"equipment_id", equipmentID,
			"borrowing_id", borrowingID,
			"error", err,
		)
		return nil, apperrors.Validation("Borrowing validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var borrowing model.Borrowing
	statusChanged := false
	equipment, err := s.mutate(ctx, equipmentID, func(e *model.Equipment) error {
		idx := e.FindBorrowing(borrowingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Borrowing record", borrowingID)
		}

		if patch.NumOfItems != nil && !e.CanLend(*patch.NumOfItems, borrowingID) {
			return s.capacityError(e, borrowingID, *patch.NumOfItems, "Not enough items available for this update")
		}

		current := e.Borrowings[idx]
		patched := current
		if err := applyBorrowingPatch(&patched, patch); err != nil {
			return apperrors.Validation("Borrowing validation failed", map[string]any{
				"error": err.Error(),
			})
		}

		// Clearing return_date puts the units back out. Accepting through a
		// status change alone is not re-checked.
		unreturned := current.ReturnDate != nil && patched.ReturnDate == nil
		if patch.NumOfItems == nil && unreturned && patched.Outstanding() && !e.CanLend(patched.NumOfItems, borrowingID) {
			return s.capacityError(e, borrowingID, patched.NumOfItems, "Not enough items available for this update")
		}

		e.Borrowings[idx] = patched
		statusChanged = patched.Status != current.Status
		borrowing = patched
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Borrowing updated",
		"equipment_id", equipment.ID,
		"borrowing_id", borrowingID,
		"status_changed", statusChanged,
	)

	if statusChanged {
		s.notify(ctx, "BorrowStatusChanged", equipment.ID, borrowingID, func(ctx context.Context) error {
			return s.notifier.BorrowStatusChanged(ctx, equipment, &borrowing)
		})
	}
	return equipment, nil
}

// ReturnEquipment stamps the return date, defaulting to now. The status is
// left as is.
func (s *equipmentService) ReturnEquipment(ctx context.Context, equipmentID, borrowingID string, req *model.ReturnRequest) (*model.Equipment, error) {
	var requested *string
	if req != nil {
		requested = req.ReturnDate
	}
	returnDate, err := validator.ParseReturnDate(requested)
	if err != nil {
		return nil, apperrors.Validation("Return validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if returnDate == nil {
		now := time.Now().UTC().Truncate(time.Millisecond)
		returnDate = &now
	}

	equipment, err := s.mutate(ctx, equipmentID, func(e *model.Equipment) error {
		idx := e.FindBorrowing(borrowingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Borrowing record", borrowingID)
		}
		e.Borrowings[idx].ReturnDate = returnDate
		e.Borrowings[idx].IsNew = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Equipment returned",
		"equipment_id", equipment.ID,
		"borrowing_id", borrowingID,
		"return_date", returnDate,
	)
	return equipment, nil
}

func (s *equipmentService) DeleteBorrowing(ctx context.Context, equipmentID, borrowingID string) (*model.Equipment, error) {
	equipment, err := s.mutate(ctx, equipmentID, func(e *model.Equipment) error {
		idx := e.FindBorrowing(borrowingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Borrowing record", borrowingID)
		}
		e.Borrowings = append(e.Borrowings[:idx], e.Borrowings[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Borrowing deleted", "equipment_id", equipment.ID, "borrowing_id", borrowingID)
	return equipment, nil
}

// mutate loads the equipment under its lock, applies fn and saves the result.
func (s *equipmentService) mutate(ctx context.Context, equipmentID string, fn func(e *model.Equipment) error) (*model.Equipment, error) {
	if equipmentID == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	release, err := s.locker.Acquire(ctx, lock.Key(lockKind, equipmentID))
	if err != nil {
		s.cfg.Log.Warn("Failed to lock equipment", "equipment_id", equipmentID, "error", err)
		return nil, err
	}
	defer release()

	equipment, err := s.repo.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, s.translate(err, equipmentID)
	}

	if err := fn(equipment); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, equipment); err != nil {
		s.cfg.Log.Error("Failed to save equipment", "equipment_id", equipmentID, "error", err)
		return nil, s.translate(err, equipmentID)
	}
	return equipment, nil
}

func (s *equipmentService) notify(ctx context.Context, event, equipmentID, borrowingID string, fn func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.cfg.Log.Error("Failed to dispatch notifications",
			"event", event,
			"equipment_id", equipmentID,
			"borrowing_id", borrowingID,
			"error", err,
		)
	}
}

func (s *equipmentService) capacityError(e *model.Equipment, excludeID string, requested int, message string) error {
	borrowed := e.BorrowedCount(excludeID)
	s.cfg.Log.Info("Borrow exceeds availability",
		"equipment_id", e.ID,
		"quantity", e.Quantity,
		"borrowed", borrowed,
		"requested", requested,
	)
	return apperrors.Capacity(message, map[string]any{
		"quantity":  e.Quantity,
		"available": max(e.Quantity-borrowed, 0),
		"requested": requested,
	})
}

func (s *equipmentService) translate(err error, id string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, equipmenterrors.ErrNotFound):
		return apperrors.NotFoundWithID("Equipment", id)
	case errors.Is(err, equipmenterrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid equipment ID format")
	case errors.Is(err, equipmenterrors.ErrDuplicate):
		return apperrors.Conflict("Equipment with this item number already exists")
	case errors.Is(err, equipmenterrors.ErrVersionConflict):
		return apperrors.Conflict("Equipment was modified by another request. Please try again.")
	default:
		s.cfg.Log.Error("Equipment storage failure", "id", id, "error", err)
		return apperrors.Internal("Failed to access equipment", err)
	}
}

// applyBorrowingPatch writes the non-nil fields. An empty return_date clears it.
func applyBorrowingPatch(b *model.Borrowing, patch *model.BorrowingUpdate) error {
	if patch.NumOfItems != nil {
		b.NumOfItems = *patch.NumOfItems
	}
	if patch.BorrowDate != nil {
		t, err := model.ParseTimestamp(*patch.BorrowDate)
		if err != nil {
			return err
		}
		b.BorrowDate = t
	}
	if patch.ReturnDate != nil {
		t, err := validator.ParseReturnDate(patch.ReturnDate)
		if err != nil {
			return err
		}
		b.ReturnDate = t
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.BorrowedBy != nil {
		b.BorrowedBy = *patch.BorrowedBy
	}
	return nil
}
