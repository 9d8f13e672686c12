package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	labserrors "unilab/internal/labs/errors"
	"unilab/internal/labs/validator"
	"unilab/pkg/config"
	apperrors "unilab/pkg/errors"
	"unilab/pkg/lock"
	"unilab/pkg/logger"
	"unilab/pkg/model"
)

const (
	testLabID = "65f0000000000000000000aa"
	testTOID  = "65f0000000000000000000bb"
)

// mockLabRepository keeps labs in memory and hands out copies, so a rejected
// mutation never leaks into stored state. Func fields override single calls.
type mockLabRepository struct {
	labs      map[string]*model.Lab
	findCalls int
	saves     int

	findByIDFunc func(ctx context.Context, id string) (*model.Lab, error)
	saveFunc     func(ctx context.Context, lab *model.Lab) error
	createFunc   func(ctx context.Context, lab *model.Lab) error
	countFunc    func(ctx context.Context) (int64, error)
}

func newMockLabRepository(labs ...*model.Lab) *mockLabRepository {
	m := &mockLabRepository{labs: map[string]*model.Lab{}}
	for _, l := range labs {
		m.labs[l.ID] = cloneLab(l)
	}
	return m
}

func cloneLab(l *model.Lab) *model.Lab {
	c := *l
	c.Bookings = append([]model.Booking(nil), l.Bookings...)
	return &c
}

func (m *mockLabRepository) Create(ctx context.Context, lab *model.Lab) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, lab)
	}
	lab.ID = fmt.Sprintf("65f0000000000000000001%02d", len(m.labs))
	m.labs[lab.ID] = cloneLab(lab)
	return nil
}

func (m *mockLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	l, ok := m.labs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", labserrors.ErrNotFound, id)
	}
	return cloneLab(l), nil
}

func (m *mockLabRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, error) {
	out := []*model.Lab{}
	for _, l := range m.labs {
		out = append(out, cloneLab(l))
	}
	return out, nil
}

func (m *mockLabRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return int64(len(m.labs)), nil
}

func (m *mockLabRepository) Save(ctx context.Context, lab *model.Lab) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, lab)
	}
	stored, ok := m.labs[lab.ID]
	if !ok {
		return fmt.Errorf("%w: %s", labserrors.ErrNotFound, lab.ID)
	}
	if stored.Version != lab.Version {
		return fmt.Errorf("%w: %s", labserrors.ErrVersionConflict, lab.ID)
	}
	lab.Version++
	m.labs[lab.ID] = cloneLab(lab)
	m.saves++
	return nil
}

func (m *mockLabRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.labs[id]; !ok {
		return fmt.Errorf("%w: %s", labserrors.ErrNotFound, id)
	}
	delete(m.labs, id)
	return nil
}

type notifierCall struct {
	event   string
	status  model.Status
	booking string
}

type recordingNotifier struct {
	calls []notifierCall
	err   error
}

func (n *recordingNotifier) LabBookingCreated(_ context.Context, _ *model.Lab, b *model.Booking) error {
	n.calls = append(n.calls, notifierCall{event: "created", status: b.Status, booking: b.ID})
	return n.err
}

func (n *recordingNotifier) LabBookingStatusChanged(_ context.Context, _ *model.Lab, b *model.Booking) error {
	n.calls = append(n.calls, notifierCall{event: "status", status: b.Status, booking: b.ID})
	return n.err
}

func (n *recordingNotifier) BorrowRequestCreated(context.Context, *model.Equipment, *model.Borrowing) error {
	return nil
}

func (n *recordingNotifier) BorrowStatusChanged(context.Context, *model.Equipment, *model.Borrowing) error {
	return nil
}

type lockerFunc func(ctx context.Context, key string) (func(), error)

func (f lockerFunc) Acquire(ctx context.Context, key string) (func(), error) {
	return f(ctx, key)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.Discard(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func physicsLab(bookings ...model.Booking) *model.Lab {
	return &model.Lab{
		ID:          testLabID,
		Name:        "Physics Lab",
		Type:        "physics",
		MaxCapacity: 40,
		AllocatedTO: testTOID,
		Bookings:    bookings,
	}
}

func booking(id, from, to string, status model.Status) model.Booking {
	return model.Booking{
		ID:         id,
		BookBy:     "lecturer-1",
		Department: "Physics",
		Batch:      "2023",
		Course:     "PHY101",
		Reason:     "Practical",
		Date:       time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Duration:   model.TimeSlot{From: from, To: to},
		Status:     status,
	}
}

func bookingRequest(date, from, to string) *model.BookingRequest {
	return &model.BookingRequest{
		Department: "Physics",
		Batch:      "2023",
		Course:     "PHY101",
		Reason:     "Practical",
		Date:       date,
		Duration:   model.TimeSlot{From: from, To: to},
	}
}

func newTestService(repo *mockLabRepository, notifier *recordingNotifier) LabService {
	cfg := testConfig()
	return NewLabService(repo, validator.NewLabValidator(cfg.Log), lock.NopLocker{}, notifier, cfg)
}

func TestCreateBooking_OverlapScenario(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "lecturer-1"); err != nil {
		t.Fatalf("first booking: unexpected error: %v", err)
	}

	_, err := svc.CreateBooking(ctx, testLabID, bookingRequest("2025-04-01", "09:30", "10:30"), "lecturer-2")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("overlapping booking: expected conflict, got %v", err)
	}
	if got := apperrors.AsAppError(err).Message; got != "Time slot already booked" {
		t.Errorf("unexpected conflict message %q", got)
	}
	if n := len(repo.labs[testLabID].Bookings); n != 1 {
		t.Fatalf("conflict must not mutate, got %d bookings", n)
	}

	lab, err := svc.CreateBooking(ctx, testLabID, bookingRequest("2025-04-01", "10:00", "11:00"), "lecturer-3")
	if err != nil {
		t.Fatalf("touching booking: unexpected error: %v", err)
	}

	if len(lab.Bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(lab.Bookings))
	}
	for _, b := range lab.Bookings {
		if b.Status != model.StatusPending {
			t.Errorf("new booking should be pending, got %s", b.Status)
		}
		if b.ID == "" {
			t.Error("new booking should get an id")
		}
	}
	if lab.Bookings[1].BookBy != "lecturer-3" {
		t.Errorf("expected requester lecturer-3, got %s", lab.Bookings[1].BookBy)
	}
	assertPairwiseDisjoint(t, lab)

	if repo.saves != 2 {
		t.Errorf("expected 2 saves, got %d", repo.saves)
	}
	if len(notifier.calls) != 2 || notifier.calls[0].event != "created" {
		t.Errorf("expected 2 created notifications, got %+v", notifier.calls)
	}
}

func assertPairwiseDisjoint(t *testing.T, lab *model.Lab) {
	t.Helper()
	for i := range lab.Bookings {
		for j := i + 1; j < len(lab.Bookings); j++ {
			a, b := lab.Bookings[i], lab.Bookings[j]
			if model.SameDay(a.Date, b.Date) && a.Duration.Overlaps(b.Duration) {
				t.Errorf("bookings %s and %s overlap", a.ID, b.ID)
			}
		}
	}
}

func TestCreateBooking_DayScoping(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		from, to string
		wantCode string
	}{
		{name: "same slot next day", date: "2025-04-02", from: "09:00", to: "10:00"},
		{name: "same slot same day", date: "2025-04-01", from: "09:00", to: "10:00", wantCode: apperrors.CodeConflict},
		{name: "timestamp on same UTC day", date: "2025-04-01T15:30:00Z", from: "09:15", to: "09:45", wantCode: apperrors.CodeConflict},
		{name: "enclosing slot", date: "2025-04-01", from: "08:00", to: "12:00", wantCode: apperrors.CodeConflict},
		{name: "ends at start", date: "2025-04-01", from: "08:00", to: "09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusPending)))
			svc := newTestService(repo, &recordingNotifier{})

			_, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest(tt.date, tt.from, tt.to), "lecturer-2")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCreateBooking_RejectedBookingStillBlocks(t *testing.T) {
	repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusRejected)))
	svc := newTestService(repo, &recordingNotifier{})

	_, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "lecturer-2")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict against rejected booking, got %v", err)
	}
}

func TestCreateBooking_ValidationFailsBeforeLoad(t *testing.T) {
	tests := []struct {
		name string
		req  *model.BookingRequest
	}{
		{name: "from equals to", req: bookingRequest("2025-04-01", "10:00", "10:00")},
		{name: "from after to", req: bookingRequest("2025-04-01", "11:00", "10:00")},
		{name: "single digit hour", req: bookingRequest("2025-04-01", "9:00", "10:00")},
		{name: "minute out of range", req: bookingRequest("2025-04-01", "09:60", "10:00")},
		{name: "missing date", req: bookingRequest("", "09:00", "10:00")},
		{name: "unparseable date", req: bookingRequest("01/04/2025", "09:00", "10:00")},
		{name: "missing course", req: func() *model.BookingRequest {
			r := bookingRequest("2025-04-01", "09:00", "10:00")
			r.Course = "   "
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockLabRepository(physicsLab())
			notifier := &recordingNotifier{}
			svc := newTestService(repo, notifier)

			_, err := svc.CreateBooking(context.Background(), testLabID, tt.req, "lecturer-1")
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.findCalls != 0 || repo.saves != 0 {
				t.Errorf("validation must precede storage, got %d loads %d saves", repo.findCalls, repo.saves)
			}
			if len(notifier.calls) != 0 {
				t.Errorf("no notification expected, got %+v", notifier.calls)
			}
		})
	}
}

func TestCreateBooking_LabLookupErrors(t *testing.T) {
	svc := newTestService(newMockLabRepository(), &recordingNotifier{})

	_, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "u1")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	repo := newMockLabRepository()
	repo.findByIDFunc = func(ctx context.Context, id string) (*model.Lab, error) {
		return nil, fmt.Errorf("%w: %s", labserrors.ErrInvalidID, id)
	}
	svc = newTestService(repo, &recordingNotifier{})
	_, err = svc.CreateBooking(context.Background(), "not-hex", bookingRequest("2025-04-01", "09:00", "10:00"), "u1")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestCreateBooking_LockHeldElsewhere(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	cfg := testConfig()
	var key string
	locker := lockerFunc(func(ctx context.Context, k string) (func(), error) {
		key = k
		return nil, apperrors.Conflict("This resource is being modified by another request. Please try again.")
	})
	svc := NewLabService(repo, validator.NewLabValidator(cfg.Log), locker, &recordingNotifier{}, cfg)

	_, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "u1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if key != "lab:"+testLabID {
		t.Errorf("unexpected lock key %q", key)
	}
	if repo.findCalls != 0 {
		t.Error("lab must not be loaded without the lock")
	}
}

func TestCreateBooking_LostVersionRace(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	repo.saveFunc = func(ctx context.Context, lab *model.Lab) error {
		return fmt.Errorf("%w: %s", labserrors.ErrVersionConflict, lab.ID)
	}
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "u1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Error("no notification may follow a failed save")
	}
}

func TestCreateBooking_NotificationFailureIsSwallowed(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	notifier := &recordingNotifier{err: errors.New("mongo down")}
	svc := newTestService(repo, notifier)

	lab, err := svc.CreateBooking(context.Background(), testLabID, bookingRequest("2025-04-01", "09:00", "10:00"), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lab.Bookings) != 1 || repo.saves != 1 {
		t.Error("booking must be persisted despite notification failure")
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	tests := []struct {
		name       string
		bookingID  string
		status     model.Status
		wantCode   string
		wantLoaded bool
	}{
		{name: "accept", bookingID: "b1", status: model.StatusAccepted, wantLoaded: true},
		{name: "back to pending", bookingID: "b1", status: model.StatusPending, wantLoaded: true},
		{name: "unknown status", bookingID: "b1", status: "approved", wantCode: apperrors.CodeValidation},
		{name: "empty status", bookingID: "b1", status: "", wantCode: apperrors.CodeValidation},
		{name: "unknown booking", bookingID: "nope", status: model.StatusRejected, wantCode: apperrors.CodeNotFound, wantLoaded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusRejected)))
			notifier := &recordingNotifier{}
			svc := newTestService(repo, notifier)

			lab, err := svc.UpdateBookingStatus(context.Background(), testLabID, tt.bookingID, tt.status)
			if (repo.findCalls > 0) != tt.wantLoaded {
				t.Errorf("loaded = %v, want %v", repo.findCalls > 0, tt.wantLoaded)
			}

			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if repo.labs[testLabID].Bookings[0].Status != model.StatusRejected || repo.saves != 0 {
					t.Error("failed update must not mutate")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lab.Bookings[0].Status != tt.status {
				t.Errorf("returned status %s, want %s", lab.Bookings[0].Status, tt.status)
			}
			if repo.labs[testLabID].Bookings[0].Status != tt.status {
				t.Error("status not persisted")
			}
			if len(notifier.calls) != 1 || notifier.calls[0].event != "status" || notifier.calls[0].status != tt.status {
				t.Errorf("unexpected notifications %+v", notifier.calls)
			}
		})
	}
}

func TestUpdateBooking(t *testing.T) {
	reason := "Make-up practical"
	badDuration := model.TimeSlot{From: "12:00", To: "11:00"}
	overlapping := model.TimeSlot{From: "10:30", To: "11:30"}
	onlyTo := model.TimeSlot{From: "09:00", To: "08:00"}
	rejected := model.StatusRejected
	bogus := model.Status("maybe")

	tests := []struct {
		name     string
		patch    *model.BookingUpdate
		wantCode string
		check    func(t *testing.T, b model.Booking)
	}{
		{
			name:  "reason only",
			patch: &model.BookingUpdate{Reason: &reason},
			check: func(t *testing.T, b model.Booking) {
				if b.Reason != reason || b.Duration.From != "09:00" || b.Course != "PHY101" {
					t.Errorf("unexpected merge result %+v", b)
				}
			},
		},
		{
			name:  "slot moved onto another booking is allowed",
			patch: &model.BookingUpdate{Duration: &overlapping},
			check: func(t *testing.T, b model.Booking) {
				if b.Duration != overlapping {
					t.Errorf("duration not applied: %+v", b.Duration)
				}
			},
		},
		{
			name:  "status through patch",
			patch: &model.BookingUpdate{Status: &rejected},
			check: func(t *testing.T, b model.Booking) {
				if b.Status != model.StatusRejected {
					t.Errorf("status not applied: %s", b.Status)
				}
			},
		},
		{name: "inverted slot", patch: &model.BookingUpdate{Duration: &badDuration}, wantCode: apperrors.CodeValidation},
		{name: "merged slot inverted", patch: &model.BookingUpdate{Duration: &onlyTo}, wantCode: apperrors.CodeValidation},
		{name: "unknown status", patch: &model.BookingUpdate{Status: &bogus}, wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockLabRepository(physicsLab(
				booking("b1", "09:00", "10:00", model.StatusPending),
				booking("b2", "11:00", "12:00", model.StatusAccepted),
			))
			notifier := &recordingNotifier{}
			svc := newTestService(repo, notifier)

			lab, err := svc.UpdateBooking(context.Background(), testLabID, "b1", tt.patch)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if repo.saves != 0 {
					t.Error("failed update must not save")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, lab.Bookings[0])
			if len(notifier.calls) != 0 {
				t.Errorf("booking edits do not notify, got %+v", notifier.calls)
			}
		})
	}
}

func TestUpdateBooking_UnknownBooking(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	svc := newTestService(repo, &recordingNotifier{})
	reason := "x"

	_, err := svc.UpdateBooking(context.Background(), testLabID, "nope", &model.BookingUpdate{Reason: &reason})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	repo := newMockLabRepository(physicsLab(
		booking("b1", "09:00", "10:00", model.StatusPending),
		booking("b2", "11:00", "12:00", model.StatusAccepted),
	))
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	lab, err := svc.CancelBooking(ctx, testLabID, "unknown")
	if err != nil {
		t.Fatalf("unknown booking should be a no-op, got %v", err)
	}
	if len(lab.Bookings) != 2 || repo.saves != 0 {
		t.Errorf("no-op cancel changed state: %d bookings, %d saves", len(lab.Bookings), repo.saves)
	}

	lab, err = svc.CancelBooking(ctx, testLabID, "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lab.Bookings) != 1 || lab.Bookings[0].ID != "b2" {
		t.Errorf("expected only b2 left, got %+v", lab.Bookings)
	}
	if len(repo.labs[testLabID].Bookings) != 1 {
		t.Error("cancellation not persisted")
	}

	_, err = svc.CancelBooking(ctx, "65f0000000000000000000ff", "b2")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found for missing lab, got %v", err)
	}
}

func TestGetBooking(t *testing.T) {
	repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusPending)))
	svc := newTestService(repo, &recordingNotifier{})

	b, err := svc.GetBooking(context.Background(), testLabID, "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID != "b1" {
		t.Errorf("got booking %s", b.ID)
	}

	_, err = svc.GetBooking(context.Background(), testLabID, "b9")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAcceptBooking_AnnouncesWithoutMutating(t *testing.T) {
	repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusPending)))
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	lab, err := svc.AcceptBooking(context.Background(), testLabID, "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lab.Bookings[0].Status != model.StatusPending || repo.saves != 0 {
		t.Error("accept must not change the stored booking")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].status != model.StatusAccepted {
		t.Errorf("expected one accepted announcement, got %+v", notifier.calls)
	}

	_, err = svc.AcceptBooking(context.Background(), testLabID, "b2")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateLab(t *testing.T) {
	repo := newMockLabRepository()
	svc := newTestService(repo, &recordingNotifier{})

	lab := &model.Lab{Name: "  Chemistry   Lab ", Type: "chemistry", MaxCapacity: 30, AllocatedTO: testTOID,
		Bookings: []model.Booking{booking("x", "09:00", "10:00", model.StatusAccepted)}}
	if err := svc.Create(context.Background(), lab); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lab.Name != "Chemistry Lab" {
		t.Errorf("name not sanitized: %q", lab.Name)
	}
	if len(lab.Bookings) != 0 {
		t.Error("client supplied bookings must be dropped")
	}

	invalid := &model.Lab{Name: "X", Type: "chemistry", MaxCapacity: 0, AllocatedTO: "nope"}
	if err := svc.Create(context.Background(), invalid); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	repo.createFunc = func(ctx context.Context, lab *model.Lab) error {
		return fmt.Errorf("%w: %s", labserrors.ErrDuplicate, lab.Name)
	}
	dup := &model.Lab{Name: "Chemistry Lab", Type: "chemistry", MaxCapacity: 30, AllocatedTO: testTOID}
	if err := svc.Create(context.Background(), dup); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUpdateLab_LeavesBookingsAlone(t *testing.T) {
	repo := newMockLabRepository(physicsLab(booking("b1", "09:00", "10:00", model.StatusPending)))
	svc := newTestService(repo, &recordingNotifier{})
	capacity := 55

	lab, err := svc.Update(context.Background(), testLabID, &model.LabUpdate{Name: "Physics Lab B", MaxCapacity: &capacity})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lab.Name != "Physics Lab B" || lab.MaxCapacity != 55 || lab.Type != "physics" {
		t.Errorf("unexpected lab after update %+v", lab)
	}
	if len(lab.Bookings) != 1 {
		t.Error("bookings must survive a lab update")
	}
	if lab.Version != 1 {
		t.Errorf("expected version 1, got %d", lab.Version)
	}
}

func TestGetAllLabs(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	svc := newTestService(repo, &recordingNotifier{})

	labs, total, err := svc.GetAll(context.Background(), 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labs) != 1 || total != 1 {
		t.Errorf("got %d labs, total %d", len(labs), total)
	}

	repo.countFunc = func(ctx context.Context) (int64, error) {
		return 0, errors.New("boom")
	}
	if _, _, err := svc.GetAll(context.Background(), 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestDeleteLab(t *testing.T) {
	repo := newMockLabRepository(physicsLab())
	svc := newTestService(repo, &recordingNotifier{})

	if err := svc.Delete(context.Background(), testLabID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), testLabID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
