package model

import (
	"testing"
	"time"
)

func TestClockMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ClockMinutes(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ClockMinutes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeSlot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		slot    TimeSlot
		wantErr bool
	}{
		{"valid", TimeSlot{From: "09:00", To: "10:00"}, false},
		{"from equals to", TimeSlot{From: "09:00", To: "09:00"}, true},
		{"from after to", TimeSlot{From: "11:00", To: "10:00"}, true},
		{"bad from", TimeSlot{From: "9", To: "10:00"}, true},
		{"bad to", TimeSlot{From: "09:00", To: "25:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slot.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeSlot_Overlaps(t *testing.T) {
	existing := TimeSlot{From: "09:00", To: "10:00"}

	tests := []struct {
		name      string
		candidate TimeSlot
		want      bool
	}{
		{"identical", TimeSlot{From: "09:00", To: "10:00"}, true},
		{"starts inside", TimeSlot{From: "09:30", To: "10:30"}, true},
		{"ends inside", TimeSlot{From: "08:30", To: "09:30"}, true},
		{"contains", TimeSlot{From: "08:00", To: "11:00"}, true},
		{"contained", TimeSlot{From: "09:15", To: "09:45"}, true},
		{"touches end", TimeSlot{From: "10:00", To: "11:00"}, false},
		{"touches start", TimeSlot{From: "08:00", To: "09:00"}, false},
		{"disjoint", TimeSlot{From: "13:00", To: "14:00"}, false},
		{"unparseable", TimeSlot{From: "xx", To: "10:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Overlaps(existing); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := existing.Overlaps(tt.candidate); got != tt.want {
				t.Errorf("Overlaps() is not symmetric for %v", tt.candidate)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	want := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-04-01", "2025-04-01T00:00:00Z", "2025-04-01T17:45:00Z"} {
		got, err := ParseDay(in)
		if err != nil {
			t.Fatalf("ParseDay(%q) unexpected error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDay(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseDay("01/04/2025"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestLab_FindOverlap(t *testing.T) {
	day := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	lab := &Lab{
		Bookings: []Booking{
			{ID: "a", Date: day, Duration: TimeSlot{From: "09:00", To: "10:00"}, Status: StatusAccepted},
			{ID: "b", Date: day.AddDate(0, 0, 1), Duration: TimeSlot{From: "09:30", To: "10:30"}, Status: StatusPending},
			{ID: "c", Date: day, Duration: TimeSlot{From: "14:00", To: "15:00"}, Status: StatusRejected},
		},
	}

	if b, ok := lab.FindOverlap(day, TimeSlot{From: "09:30", To: "10:30"}); !ok || b.ID != "a" {
		t.Errorf("expected overlap with booking a, got %v %v", b, ok)
	}
	if _, ok := lab.FindOverlap(day, TimeSlot{From: "10:00", To: "11:00"}); ok {
		t.Error("touching slot must not overlap")
	}
	if b, ok := lab.FindOverlap(day, TimeSlot{From: "14:30", To: "15:30"}); !ok || b.ID != "c" {
		t.Error("rejected bookings still take part in the overlap scan")
	}
	if _, ok := lab.FindOverlap(day.AddDate(0, 0, 2), TimeSlot{From: "09:00", To: "10:00"}); ok {
		t.Error("different day must not overlap")
	}
}

func TestLab_RemoveBooking(t *testing.T) {
	lab := &Lab{Bookings: []Booking{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	if !lab.RemoveBooking("b") {
		t.Fatal("expected b to be removed")
	}
	if len(lab.Bookings) != 2 || lab.Bookings[0].ID != "a" || lab.Bookings[1].ID != "c" {
		t.Errorf("unexpected bookings after removal: %+v", lab.Bookings)
	}
	if lab.RemoveBooking("missing") {
		t.Error("unknown id must not report a removal")
	}
	if len(lab.Bookings) != 2 {
		t.Errorf("unknown id must not change the collection, got %d", len(lab.Bookings))
	}
}

func TestStatus(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Status("cancelled").Valid() {
		t.Error("cancelled is not a workflow status")
	}
	if StatusAccepted.Title() != "Accepted" {
		t.Errorf("Title() = %q", StatusAccepted.Title())
	}
}
