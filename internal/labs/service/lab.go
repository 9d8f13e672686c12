package service

import (
	"context"
	"errors"
	"time"

	labserrors "unilab/internal/labs/errors"
	"unilab/internal/labs/repository"
	"unilab/internal/labs/validator"
	notifications "unilab/internal/notifications/service"
	"unilab/pkg/config"
	apperrors "unilab/pkg/errors"
	"unilab/pkg/lock"
	"unilab/pkg/model"
	"unilab/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const lockKind = "lab"

// errNoChange lets a mutation skip the save without failing the call.
var errNoChange = errors.New("no change")

type LabService interface {
	Create(ctx context.Context, lab *model.Lab) error
	GetByID(ctx context.Context, id string) (*model.Lab, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, int64, error)
	Update(ctx context.Context, id string, updates *model.LabUpdate) (*model.Lab, error)
	Delete(ctx context.Context, id string) error

	CreateBooking(ctx context.Context, labID string, req *model.BookingRequest, requesterID string) (*model.Lab, error)
	UpdateBookingStatus(ctx context.Context, labID, bookingID string, status model.Status) (*model.Lab, error)
	UpdateBooking(ctx context.Context, labID, bookingID string, patch *model.BookingUpdate) (*model.Lab, error)
	CancelBooking(ctx context.Context, labID, bookingID string) (*model.Lab, error)
	GetBooking(ctx context.Context, labID, bookingID string) (*model.Booking, error)
	AcceptBooking(ctx context.Context, labID, bookingID string) (*model.Lab, error)
}

type labService struct {
	repo      repository.LabRepository
	validator *validator.LabValidator
	locker    lock.Locker
	notifier  notifications.Notifier
	cfg       *config.Config
}

func NewLabService(
	repo repository.LabRepository,
	validator *validator.LabValidator,
	locker lock.Locker,
	notifier notifications.Notifier,
	cfg *config.Config,
) LabService {
	return &labService{
		repo:      repo,
		validator: validator,
		locker:    locker,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *labService) Create(ctx context.Context, lab *model.Lab) error {
	lab.Name = sanitizer.SanitizeText(lab.Name)
	lab.Type = sanitizer.SanitizeText(lab.Type)
	lab.ID = ""
	lab.Bookings = []model.Booking{}

	if err := s.validator.Validate(lab); err != nil {
		s.cfg.Log.Warn("Lab validation failed",
			"lab_name", lab.Name,
			"error", err,
		)
		return apperrors.Validation("Lab validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, lab); err != nil {
		s.cfg.Log.Error("Failed to create lab",
			"lab_name", lab.Name,
			"error", err,
		)
		return s.translate(err, lab.Name)
	}

	s.cfg.Log.Info("Lab created successfully",
		"id", lab.ID,
		"lab_name", lab.Name,
		"max_capacity", lab.MaxCapacity,
	)
	return nil
}

func (s *labService) GetByID(ctx context.Context, id string) (*model.Lab, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Lab ID cannot be empty")
	}

	lab, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return lab, nil
}

func (s *labService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var labs []*model.Lab

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count labs", "error", err)
			return apperrors.Internal("Failed to count labs", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		labs, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all labs",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve labs", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return labs, count, nil
}

func (s *labService) Update(ctx context.Context, id string, updates *model.LabUpdate) (*model.Lab, error) {
	updates.Name = sanitizer.SanitizeText(updates.Name)
	updates.Type = sanitizer.SanitizeText(updates.Type)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Lab update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Lab validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	lab, err := s.mutate(ctx, id, func(lab *model.Lab) error {
		if updates.Name != "" {
			lab.Name = updates.Name
		}
		if updates.Type != "" {
			lab.Type = updates.Type
		}
		if updates.MaxCapacity != nil {
			lab.MaxCapacity = *updates.MaxCapacity
		}
		if updates.AllocatedTO != "" {
			lab.AllocatedTO = updates.AllocatedTO
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Lab updated successfully", "id", id, "version", lab.Version)
	return lab, nil
}

func (s *labService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Lab ID cannot be empty")
	}

	release, err := s.locker.Acquire(ctx, lock.Key(lockKind, id))
	if err != nil {
		return err
	}
	defer release()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id)
	}

	s.cfg.Log.Info("Lab deleted successfully", "id", id)
	return nil
}

// CreateBooking adds a pending booking unless its slot intersects any booking
// already held by the lab on the same day.
func (s *labService) CreateBooking(ctx context.Context, labID string, req *model.BookingRequest, requesterID string) (*model.Lab, error) {
	s.sanitizeBookingRequest(req)

	day, err := s.validator.ValidateBookingRequest(req)
	if err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"lab_id", labID,
			"requester", requesterID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var booking model.Booking
	lab, err := s.mutate(ctx, labID, func(lab *model.Lab) error {
		if existing, overlaps := lab.FindOverlap(day, req.Duration); overlaps {
			s.cfg.Log.Info("Booking rejected, slot taken",
				"lab_id", labID,
				"date", day.Format(model.DayLayout),
				"from", req.Duration.From,
				"to", req.Duration.To,
				"existing_booking_id", existing.ID,
			)
			return apperrors.Conflict("Time slot already booked")
		}

		booking = model.Booking{
			ID:                     primitive.NewObjectID().Hex(),
			BookBy:                 requesterID,
			Department:             req.Department,
			Batch:                  req.Batch,
			Course:                 req.Course,
			Reason:                 req.Reason,
			Date:                   day,
			Duration:               req.Duration,
			AdditionalRequirements: req.AdditionalRequirements,
			Status:                 model.StatusPending,
			CreatedAt:              time.Now().UTC().Truncate(time.Millisecond),
		}
		lab.Bookings = append(lab.Bookings, booking)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Lab booking created",
		"lab_id", lab.ID,
		"booking_id", booking.ID,
		"date", day.Format(model.DayLayout),
		"from", booking.Duration.From,
		"to", booking.Duration.To,
	)

	s.notify(ctx, "LabBookingCreated", lab.ID, booking.ID, func(ctx context.Context) error {
		return s.notifier.LabBookingCreated(ctx, lab, &booking)
	})
	return lab, nil
}

func (s *labService) UpdateBookingStatus(ctx context.Context, labID, bookingID string, status model.Status) (*model.Lab, error) {
	if err := validator.ValidateStatus(status); err != nil {
		return nil, apperrors.Validation("Invalid booking status", map[string]any{
			"error": err.Error(),
		})
	}

	var booking model.Booking
	lab, err := s.mutate(ctx, labID, func(lab *model.Lab) error {
		idx := lab.FindBooking(bookingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		lab.Bookings[idx].Status = status
		booking = lab.Bookings[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Lab booking status updated",
		"lab_id", lab.ID,
		"booking_id", bookingID,
		"status", status,
	)

	s.notify(ctx, "LabBookingStatusChanged", lab.ID, bookingID, func(ctx context.Context) error {
		return s.notifier.LabBookingStatusChanged(ctx, lab, &booking)
	})
	return lab, nil
}

// UpdateBooking merges the present patch fields into the booking. The slot is
// not checked against other bookings.
func (s *labService) UpdateBooking(ctx context.Context, labID, bookingID string, patch *model.BookingUpdate) (*model.Lab, error) {
	s.sanitizeBookingUpdate(patch)

	if err := s.validator.ValidateBookingUpdate(patch); err != nil {
		s.cfg.Log.Warn("Booking update validation failed",
			"lab_id", labID,
			"booking_id", bookingID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	lab, err := s.mutate(ctx, labID, func(lab *model.Lab) error {
		idx := lab.FindBooking(bookingID)
		if idx < 0 {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}

		merged, err := mergeBooking(lab.Bookings[idx], patch)
		if err != nil {
			return apperrors.Validation("Booking validation failed", map[string]any{
				"error": err.Error(),
			})
		}
		lab.Bookings[idx] = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Lab booking updated", "lab_id", lab.ID, "booking_id", bookingID)
	return lab, nil
}

func (s *labService) CancelBooking(ctx context.Context, labID, bookingID string) (*model.Lab, error) {
	lab, err := s.mutate(ctx, labID, func(lab *model.Lab) error {
		if !lab.RemoveBooking(bookingID) {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Lab booking cancelled", "lab_id", lab.ID, "booking_id", bookingID)
	return lab, nil
}

func (s *labService) GetBooking(ctx context.Context, labID, bookingID string) (*model.Booking, error) {
	lab, err := s.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := lab.FindBooking(bookingID)
	if idx < 0 {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}
	booking := lab.Bookings[idx]
	return &booking, nil
}

// AcceptBooking re-announces a booking as accepted without touching the
// stored booking.
func (s *labService) AcceptBooking(ctx context.Context, labID, bookingID string) (*model.Lab, error) {
	lab, err := s.GetByID(ctx, labID)
	if err != nil {
		return nil, err
	}

	idx := lab.FindBooking(bookingID)
	if idx < 0 {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}
	booking := lab.Bookings[idx]
	booking.Status = model.StatusAccepted

	s.notify(ctx, "LabBookingAccepted", lab.ID, bookingID, func(ctx context.Context) error {
		return s.notifier.LabBookingStatusChanged(ctx, lab, &booking)
	})
	return lab, nil
}

// mutate loads the lab under its lock, applies fn and saves the result.
func (s *labService) mutate(ctx context.Context, labID string, fn func(lab *model.Lab) error) (*model.Lab, error) {
	if labID == "" {
		return nil, apperrors.InvalidInput("Lab ID cannot be empty")
	}

	release, err := s.locker.Acquire(ctx, lock.Key(lockKind, labID))
	if err != nil {
		s.cfg.Log.Warn("Failed to lock lab", "lab_id", labID, "error", err)
		return nil, err
	}
	defer release()

	lab, err := s.repo.FindByID(ctx, labID)
	if err != nil {
		return nil, s.translate(err, labID)
	}

	if err := fn(lab); err != nil {
		if errors.Is(err, errNoChange) {
			return lab, nil
		}
		return nil, err
	}

	if err := s.repo.Save(ctx, lab); err != nil {
		s.cfg.Log.Error("Failed to save lab", "lab_id", labID, "error", err)
		return nil, s.translate(err, labID)
	}
	return lab, nil
}

// notify runs a fan-out after the save. Failures are logged and dropped.
func (s *labService) notify(ctx context.Context, event, labID, bookingID string, fn func(ctx context.Context) error) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.cfg.Log.Error("Failed to dispatch notifications",
			"event", event,
			"lab_id", labID,
			"booking_id", bookingID,
			"error", err,
		)
	}
}

func (s *labService) translate(err error, id string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, labserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Lab", id)
	case errors.Is(err, labserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid lab ID format")
	case errors.Is(err, labserrors.ErrDuplicate):
		return apperrors.Conflict("A lab with this name already exists")
	case errors.Is(err, labserrors.ErrVersionConflict):
		return apperrors.Conflict("Lab was modified by another request. Please try again.")
	default:
		s.cfg.Log.Error("Lab storage failure", "id", id, "error", err)
		return apperrors.Internal("Failed to access lab", err)
	}
}

func (s *labService) sanitizeBookingRequest(req *model.BookingRequest) {
	req.Department = sanitizer.SanitizeText(req.Department)
	req.Batch = sanitizer.SanitizeText(req.Batch)
	req.Course = sanitizer.SanitizeText(req.Course)
	req.Reason = sanitizer.SanitizeText(req.Reason)
	req.Date = sanitizer.SanitizeText(req.Date)
	req.AdditionalRequirements = sanitizer.SanitizeText(req.AdditionalRequirements)
}

func (s *labService) sanitizeBookingUpdate(patch *model.BookingUpdate) {
	sanitizer.SanitizeTextPtr(patch.Department)
	sanitizer.SanitizeTextPtr(patch.Batch)
	sanitizer.SanitizeTextPtr(patch.Course)
	sanitizer.SanitizeTextPtr(patch.Reason)
	sanitizer.SanitizeTextPtr(patch.Date)
	sanitizer.SanitizeTextPtr(patch.AdditionalRequirements)
}

func mergeBooking(b model.Booking, patch *model.BookingUpdate) (model.Booking, error) {
	if patch.Department != nil {
		b.Department = *patch.Department
	}
	if patch.Batch != nil {
		b.Batch = *patch.Batch
	}
	if patch.Course != nil {
		b.Course = *patch.Course
	}
	if patch.Reason != nil {
		b.Reason = *patch.Reason
	}
	if patch.Date != nil {
		day, err := model.ParseDay(*patch.Date)
		if err != nil {
			return b, err
		}
		b.Date = day
	}
	if patch.Duration != nil {
		b.Duration = *patch.Duration
	}
	if patch.AdditionalRequirements != nil {
		b.AdditionalRequirements = *patch.AdditionalRequirements
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}

	if err := validator.ValidateSlot(b.Duration); err != nil {
		return b, err
	}
	return b, nil
}
