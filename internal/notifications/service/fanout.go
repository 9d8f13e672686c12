package service

import (
	"context"
	"fmt"

	"unilab/internal/identity"
	"unilab/pkg/logger"
	"unilab/pkg/model"

	"golang.org/x/sync/errgroup"
)

// batchLookupConcurrency bounds parallel profile→account lookups.
const batchLookupConcurrency = 8

// Notifier is the fan-out surface the booking and borrowing engines call after
// a successful save. Callers log and drop returned errors.
type Notifier interface {
	LabBookingCreated(ctx context.Context, lab *model.Lab, booking *model.Booking) error
	LabBookingStatusChanged(ctx context.Context, lab *model.Lab, booking *model.Booking) error
	BorrowRequestCreated(ctx context.Context, equipment *model.Equipment, borrowing *model.Borrowing) error
	BorrowStatusChanged(ctx context.Context, equipment *model.Equipment, borrowing *model.Borrowing) error
}

// FanOut decides who hears about a booking or borrowing event and hands the
// message to the dispatcher.
type FanOut struct {
	dispatcher Dispatcher
	identity   identity.Store
	log        *logger.Logger
}

func NewFanOut(dispatcher Dispatcher, store identity.Store, log *logger.Logger) *FanOut {
	return &FanOut{
		dispatcher: dispatcher,
		identity:   store,
		log:        log,
	}
}

var _ Notifier = (*FanOut)(nil)

func (f *FanOut) LabBookingCreated(ctx context.Context, lab *model.Lab, booking *model.Booking) error {
	tos, err := f.technicalOfficers(ctx)
	if err != nil {
		return err
	}
	_, err = f.dispatcher.CreateNotification(ctx, TitleLabBookingRequest, labBookingCreatedMessage(lab, booking), tos)
	return err
}

// LabBookingStatusChanged always tells the requester; an accepted booking is
// also announced to every student of its batch that has an account.
func (f *FanOut) LabBookingStatusChanged(ctx context.Context, lab *model.Lab, booking *model.Booking) error {
	if booking.BookBy != "" {
		if _, err := f.dispatcher.CreateNotification(ctx,
			labBookingStatusTitle(booking.Status),
			labBookingStatusMessage(lab, booking),
			[]string{booking.BookBy},
		); err != nil {
			return err
		}
	}

	if booking.Status != model.StatusAccepted || booking.Batch == "" {
		return nil
	}

	students, err := f.batchUsers(ctx, booking.Batch)
	if err != nil {
		return err
	}
	_, err = f.dispatcher.CreateNotification(ctx, TitleLabSessionScheduled, labSessionScheduledMessage(lab, booking), students)
	return err
}

func (f *FanOut) BorrowRequestCreated(ctx context.Context, equipment *model.Equipment, borrowing *model.Borrowing) error {
	tos, err := f.technicalOfficers(ctx)
	if err != nil {
		return err
	}
	_, err = f.dispatcher.CreateNotification(ctx, TitleBorrowRequest, borrowCreatedMessage(equipment, borrowing), tos)
	return err
}

func (f *FanOut) BorrowStatusChanged(ctx context.Context, equipment *model.Equipment, borrowing *model.Borrowing) error {
	if borrowing.BorrowedBy != "" {
		if _, err := f.dispatcher.CreateNotification(ctx,
			borrowStatusTitle(borrowing.Status),
			borrowStatusMessage(equipment, borrowing),
			[]string{borrowing.BorrowedBy},
		); err != nil {
			return err
		}
	}

	if borrowing.Status != model.StatusAccepted || borrowing.Batch == "" {
		return nil
	}

	students, err := f.batchUsers(ctx, borrowing.Batch)
	if err != nil {
		return err
	}
	_, err = f.dispatcher.CreateNotification(ctx, TitleBatchBorrowed, borrowedForBatchMessage(equipment, borrowing), students)
	return err
}

func (f *FanOut) technicalOfficers(ctx context.Context) ([]string, error) {
	users, err := f.identity.FindUsersByRole(ctx, model.RoleTO)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve technical officers: %w", err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// batchUsers maps every student profile of the batch to its user account.
// Profiles without an account are skipped. Order follows the profile list.
func (f *FanOut) batchUsers(ctx context.Context, batch string) ([]string, error) {
	profiles, err := f.identity.FindProfilesByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve batch %s: %w", batch, err)
	}

	resolved := make([]string, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLookupConcurrency)
	for i, p := range profiles {
		g.Go(func() error {
			user, err := f.identity.FindUserByProfileID(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to resolve account for profile %s: %w", p.ID, err)
			}
			if user != nil {
				resolved[i] = user.ID
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resolved))
	skipped := 0
	for _, id := range resolved {
		if id == "" {
			skipped++
			continue
		}
		ids = append(ids, id)
	}
	if skipped > 0 {
		f.log.Debug("Skipped batch students without an account", "batch", batch, "skipped", skipped)
	}
	return ids, nil
}
