package service

import (
	"fmt"
	"time"

	"unilab/pkg/model"
)

const displayDateLayout = "Mon, 2 Jan 2006"

const (
	TitleLabBookingRequest   = "New Lab Booking Request"
	TitleLabSessionScheduled = "Lab Session Scheduled"
	TitleBorrowRequest       = "New Equipment Borrow Request"
	TitleBatchBorrowed       = "Equipment Borrowed for Your Batch"
)

func displayDate(t time.Time) string {
	return t.UTC().Format(displayDateLayout)
}

func labBookingStatusTitle(status model.Status) string {
	return "Lab Booking " + status.Title()
}

func borrowStatusTitle(status model.Status) string {
	return "Equipment Borrow Request " + status.Title()
}

func labBookingCreatedMessage(lab *model.Lab, b *model.Booking) string {
	return fmt.Sprintf("New booking request for %s on %s from %s to %s",
		lab.Name, displayDate(b.Date), b.Duration.From, b.Duration.To)
}

func labBookingStatusMessage(lab *model.Lab, b *model.Booking) string {
	return fmt.Sprintf("Your booking for %s on %s from %s to %s has been %s",
		lab.Name, displayDate(b.Date), b.Duration.From, b.Duration.To, b.Status)
}

func labSessionScheduledMessage(lab *model.Lab, b *model.Booking) string {
	return fmt.Sprintf("A lab session has been scheduled for your batch (%s) in %s on %s from %s to %s for %s",
		b.Batch, lab.Name, displayDate(b.Date), b.Duration.From, b.Duration.To, b.Course)
}

func borrowCreatedMessage(eq *model.Equipment, b *model.Borrowing) string {
	return fmt.Sprintf("New borrow request for %s (%d items) on %s",
		eq.Name, b.NumOfItems, displayDate(b.BorrowDate))
}

func borrowStatusMessage(eq *model.Equipment, b *model.Borrowing) string {
	msg := fmt.Sprintf("Your request to borrow %s (%d items) on %s has been %s",
		eq.Name, b.NumOfItems, displayDate(b.BorrowDate), b.Status)
	if b.ReturnDate != nil {
		msg += fmt.Sprintf(" (to be returned by %s)", displayDate(*b.ReturnDate))
	}
	return msg
}

func borrowedForBatchMessage(eq *model.Equipment, b *model.Borrowing) string {
	msg := fmt.Sprintf("Equipment %s (%d items) has been borrowed for your batch (%s) on %s",
		eq.Name, b.NumOfItems, b.Batch, displayDate(b.BorrowDate))
	if b.ReturnDate != nil {
		msg += fmt.Sprintf(" and will be returned by %s", displayDate(*b.ReturnDate))
	}
	if b.Purpose != "" {
		msg += " for the purpose: " + b.Purpose
	}
	return msg
}
