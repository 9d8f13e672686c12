package validator

import (
	"time"

	"unilab/pkg/logger"
	"unilab/pkg/model"
	"unilab/pkg/validation"
)

type LabValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewLabValidator(log *logger.Logger) *LabValidator {
	return &LabValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *LabValidator) Validate(lab *model.Lab) error {
	return v.validate.Struct(lab)
}

func (v *LabValidator) ValidateUpdate(update *model.LabUpdate) error {
	return v.validate.Struct(update)
}

// ValidateBookingRequest checks the request and returns the booking day it
// names, as UTC midnight.
func (v *LabValidator) ValidateBookingRequest(req *model.BookingRequest) (time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		return time.Time{}, err
	}

	day, err := model.ParseDay(req.Date)
	if err != nil {
		return time.Time{}, validation.Field("date", err.Error())
	}
	if err := ValidateSlot(req.Duration); err != nil {
		return time.Time{}, err
	}
	return day, nil
}

// ValidateBookingUpdate checks the format of the fields present in the patch.
// Ordering of the merged slot is checked separately with ValidateSlot.
func (v *LabValidator) ValidateBookingUpdate(patch *model.BookingUpdate) error {
	if err := v.validate.Struct(patch); err != nil {
		return err
	}
	if patch.Date != nil {
		if _, err := model.ParseDay(*patch.Date); err != nil {
			return validation.Field("date", err.Error())
		}
	}
	return nil
}

func ValidateSlot(slot model.TimeSlot) error {
	if err := slot.Validate(); err != nil {
		return validation.Field("duration", err.Error())
	}
	return nil
}

func ValidateStatus(status model.Status) error {
	if !status.Valid() {
		return validation.Field("status", "status must be one of pending, accepted, rejected")
	}
	return nil
}
