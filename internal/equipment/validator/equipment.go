package validator

import (
	"time"

	"unilab/pkg/logger"
	"unilab/pkg/model"
	"unilab/pkg/validation"
)

type EquipmentValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewEquipmentValidator(log *logger.Logger) *EquipmentValidator {
	return &EquipmentValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *EquipmentValidator) Validate(equipment *model.Equipment) error {
	return v.validate.Struct(equipment)
}

func (v *EquipmentValidator) ValidateUpdate(update *model.EquipmentUpdate) error {
	return v.validate.Struct(update)
}

// ValidateBorrowRequest checks the request and returns its parsed dates. The
// return date is nil when absent.
func (v *EquipmentValidator) ValidateBorrowRequest(req *model.BorrowRequest) (time.Time, *time.Time, error) {
	if err := v.validate.Struct(req); err != nil {
		return time.Time{}, nil, err
	}

	borrowDate, err := model.ParseTimestamp(req.BorrowDate)
	if err != nil {
		return time.Time{}, nil, validation.Field("borrow_date", err.Error())
	}

	returnDate, err := parseOptionalTimestamp("return_date", req.ReturnDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	return borrowDate, returnDate, nil
}

func (v *EquipmentValidator) ValidateBorrowingUpdate(patch *model.BorrowingUpdate) error {
	if err := v.validate.Struct(patch); err != nil {
		return err
	}
	if patch.BorrowDate != nil {
		if _, err := model.ParseTimestamp(*patch.BorrowDate); err != nil {
			return validation.Field("borrow_date", err.Error())
		}
	}
	if _, err := parseOptionalTimestamp("return_date", patch.ReturnDate); err != nil {
		return err
	}
	return nil
}

func ValidateStatus(status model.Status) error {
	if !status.Valid() {
		return validation.Field("status", "status must be one of pending, accepted, rejected")
	}
	return nil
}

// ParseReturnDate resolves an optional return date; nil or empty yields nil.
func ParseReturnDate(s *string) (*time.Time, error) {
	return parseOptionalTimestamp("return_date", s)
}

func parseOptionalTimestamp(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := model.ParseTimestamp(*s)
	if err != nil {
		return nil, validation.Field(field, err.Error())
	}
	return &t, nil
}
