package model

import (
	"time"
)

type Equipment struct {
	ID         string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ItemNum    string      `json:"item_num" bson:"item_num" validate:"required,min=1,max=50"`
	Name       string      `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Quantity   int         `json:"quantity" bson:"quantity" validate:"min=0,max=100000"`
	ImgURL     string      `json:"img_url,omitempty" bson:"img_url,omitempty" validate:"omitempty,max=500"`
	Borrowings []Borrowing `json:"borrowings" bson:"borrowings"`
	Version    int64       `json:"version" bson:"version"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" bson:"updated_at"`
}

type EquipmentUpdate struct {
	ItemNum  string  `json:"item_num,omitempty" validate:"omitempty,min=1,max=50"`
	Name     string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,min=0,max=100000"`
	ImgURL   *string `json:"img_url,omitempty" validate:"omitempty,max=500"`
}

type Borrowing struct {
	ID         string     `json:"id" bson:"_id"`
	BorrowedBy string     `json:"borrowed_by" bson:"borrowed_by"`
	NumOfItems int        `json:"num_of_items" bson:"num_of_items"`
	BorrowDate time.Time  `json:"borrow_date" bson:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" bson:"return_date,omitempty"`
	Status     Status     `json:"status" bson:"status"`
	Batch      string     `json:"bookForBatch,omitempty" bson:"bookForBatch,omitempty"`
	Purpose    string     `json:"purpose,omitempty" bson:"purpose,omitempty"`
	IsNew      bool       `json:"isNew" bson:"isNew"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
}

// Outstanding reports whether the borrowing currently holds units: accepted and
// not yet returned.
func (b *Borrowing) Outstanding() bool {
	return b.Status == StatusAccepted && b.ReturnDate == nil
}

type BorrowRequest struct {
	NumOfItems int     `json:"num_of_items" validate:"required,min=1"`
	BorrowDate string  `json:"borrow_date" validate:"required"`
	ReturnDate *string `json:"return_date,omitempty" validate:"omitempty"`
	Batch      string  `json:"bookForBatch,omitempty" validate:"omitempty,max=50"`
	Purpose    string  `json:"purpose,omitempty" validate:"omitempty,max=500"`
}

// BorrowingUpdate is a partial update; nil fields are never written.
type BorrowingUpdate struct {
	NumOfItems *int    `json:"num_of_items,omitempty" validate:"omitempty,min=1"`
	BorrowDate *string `json:"borrow_date,omitempty" validate:"omitempty"`
	ReturnDate *string `json:"return_date,omitempty" validate:"omitempty"`
	Status     *Status `json:"status,omitempty" validate:"omitempty,status"`
	BorrowedBy *string `json:"borrowed_by,omitempty" validate:"omitempty,mongodb"`
}

type ReturnRequest struct {
	ReturnDate *string `json:"return_date,omitempty"`
}

func (e *Equipment) FindBorrowing(id string) int {
	for i := range e.Borrowings {
		if e.Borrowings[i].ID == id {
			return i
		}
	}
	return -1
}

// BorrowedCount sums num_of_items over outstanding borrowings, skipping the
// borrowing identified by excludeID (pass "" to count all).
func (e *Equipment) BorrowedCount(excludeID string) int {
	total := 0
	for i := range e.Borrowings {
		b := &e.Borrowings[i]
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Outstanding() {
			total += b.NumOfItems
		}
	}
	return total
}

// CanLend reports whether n more units fit next to the outstanding borrowings,
// excluding excludeID from the tally.
func (e *Equipment) CanLend(n int, excludeID string) bool {
	return e.BorrowedCount(excludeID)+n <= e.Quantity
}

func (e *Equipment) Available() int {
	return max(e.Quantity-e.BorrowedCount(""), 0)
}
