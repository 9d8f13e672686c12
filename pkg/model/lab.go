package model

import (
	"time"
)

type Lab struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"lab_name" bson:"lab_name" validate:"required,min=2,max=100"`
	Type        string    `json:"lab_type" bson:"lab_type" validate:"required,min=2,max=50"`
	MaxCapacity int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=1000"`
	AllocatedTO string    `json:"allocated_TO" bson:"allocated_TO" validate:"required,mongodb"`
	Bookings    []Booking `json:"bookings" bson:"bookings"`
	Version     int64     `json:"version" bson:"version"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type LabUpdate struct {
	Name        string `json:"lab_name,omitempty" validate:"omitempty,min=2,max=100"`
	Type        string `json:"lab_type,omitempty" validate:"omitempty,min=2,max=50"`
	MaxCapacity *int   `json:"max_capacity,omitempty" validate:"omitempty,min=1,max=1000"`
	AllocatedTO string `json:"allocated_TO,omitempty" validate:"omitempty,mongodb"`
}

type Booking struct {
	ID                     string    `json:"id" bson:"_id"`
	BookBy                 string    `json:"bookBy" bson:"bookBy"`
	Department             string    `json:"bookForDept" bson:"bookForDept"`
	Batch                  string    `json:"bookForBatch" bson:"bookForBatch"`
	Course                 string    `json:"bookForCourse" bson:"bookForCourse"`
	Reason                 string    `json:"reason" bson:"reason"`
	Date                   time.Time `json:"date" bson:"date"`
	Duration               TimeSlot  `json:"duration" bson:"duration"`
	AdditionalRequirements string    `json:"additionalRequirements,omitempty" bson:"additionalRequirements,omitempty"`
	Status                 Status    `json:"status" bson:"status"`
	CreatedAt              time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the body of a new lab booking. Date may be a bare calendar
// date or an RFC3339 timestamp; only its UTC calendar day is kept.
type BookingRequest struct {
	Department             string   `json:"bookForDept" validate:"required,min=1,max=100"`
	Batch                  string   `json:"bookForBatch" validate:"required,min=1,max=50"`
	Course                 string   `json:"bookForCourse" validate:"required,min=1,max=100"`
	Reason                 string   `json:"reason" validate:"required,min=1,max=500"`
	Date                   string   `json:"date" validate:"required"`
	Duration               TimeSlot `json:"duration" validate:"required"`
	AdditionalRequirements string   `json:"additionalRequirements,omitempty" validate:"omitempty,max=1000"`
}

// BookingUpdate carries a shallow patch for an existing booking. Nil fields are
// left untouched.
type BookingUpdate struct {
	Department             *string   `json:"bookForDept,omitempty" validate:"omitempty,min=1,max=100"`
	Batch                  *string   `json:"bookForBatch,omitempty" validate:"omitempty,min=1,max=50"`
	Course                 *string   `json:"bookForCourse,omitempty" validate:"omitempty,min=1,max=100"`
	Reason                 *string   `json:"reason,omitempty" validate:"omitempty,min=1,max=500"`
	Date                   *string   `json:"date,omitempty" validate:"omitempty"`
	Duration               *TimeSlot `json:"duration,omitempty" validate:"omitempty"`
	AdditionalRequirements *string   `json:"additionalRequirements,omitempty" validate:"omitempty,max=1000"`
	Status                 *Status   `json:"status,omitempty" validate:"omitempty,status"`
}

type StatusUpdate struct {
	Status Status `json:"status"`
}

// FindBooking returns the index of the booking with the given id, or -1.
func (l *Lab) FindBooking(id string) int {
	for i := range l.Bookings {
		if l.Bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// FindOverlap returns the first booking on the same UTC calendar day whose slot
// intersects the candidate slot. Bookings of every status take part in the scan.
func (l *Lab) FindOverlap(day time.Time, slot TimeSlot) (*Booking, bool) {
	for i := range l.Bookings {
		b := &l.Bookings[i]
		if !SameDay(b.Date, day) {
			continue
		}
		if slot.Overlaps(b.Duration) {
			return b, true
		}
	}
	return nil, false
}

// RemoveBooking drops the booking with the given id and reports whether one was
// removed. Unknown ids leave the collection untouched.
func (l *Lab) RemoveBooking(id string) bool {
	kept := l.Bookings[:0]
	removed := false
	for _, b := range l.Bookings {
		if b.ID == id {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	l.Bookings = kept
	return removed
}
