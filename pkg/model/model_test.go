package model

import (
	"testing"
	"time"
)

func TestParseWeekday(t *testing.T) {
	for _, day := range Weekdays {
		parsed, err := ParseWeekday(string(day))
		if err != nil {
			t.Errorf("ParseWeekday(%s): unexpected error: %v", day, err)
		}
		if parsed != day {
			t.Errorf("ParseWeekday(%s) = %s", day, parsed)
		}
	}

	for _, bad := range []string{"", "monday", "Mon", "Funday"} {
		if _, err := ParseWeekday(bad); err == nil {
			t.Errorf("ParseWeekday(%q): expected error", bad)
		}
	}
}

func TestWeekdaysOrder(t *testing.T) {
	if len(Weekdays) != 7 {
		t.Fatalf("expected 7 weekdays, got %d", len(Weekdays))
	}
	if Weekdays[0] != Monday || Weekdays[6] != Sunday {
		t.Errorf("expected Monday-first ordering, got %v", Weekdays)
	}
}

func TestNewBooking_DerivesDay(t *testing.T) {
	activity := &Activity{
		ID:  "a1",
		Day: Thursday,
	}

	booking := NewBooking("s1", activity)
	if booking.Day != Thursday {
		t.Errorf("expected day copied from activity, got %s", booking.Day)
	}
	if booking.StudentID != "s1" || booking.ActivityID != "a1" {
		t.Errorf("unexpected booking: %+v", booking)
	}
	if booking.Attended {
		t.Error("new bookings start unattended")
	}
}

func TestBooking_ModifiableAt(t *testing.T) {
	window := 100 * 24 * time.Hour
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	booking := &Booking{CreatedAt: created}

	if !booking.ModifiableAt(created.Add(window), window) {
		t.Error("booking at the window boundary must still be modifiable")
	}
	if booking.ModifiableAt(created.Add(window+time.Second), window) {
		t.Error("booking past the window must be frozen")
	}
}

func TestActivity_SpotsLeft(t *testing.T) {
	activity := &Activity{Capacity: 10}

	if got := activity.SpotsLeft(4); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	if got := activity.SpotsLeft(12); got != 0 {
		t.Errorf("overbooked count must clamp to zero, got %d", got)
	}

	unlimited := &Activity{Capacity: 0}
	if !unlimited.Unlimited() {
		t.Error("capacity zero means unlimited")
	}
}

func TestActivity_AllowsGrade(t *testing.T) {
	activity := &Activity{AllowedGrades: []string{"g1", "g2"}}

	if !activity.AllowsGrade("g2") {
		t.Error("expected g2 allowed")
	}
	if activity.AllowsGrade("g3") {
		t.Error("expected g3 denied")
	}
}

func TestWizardState_ResetAndChosenCount(t *testing.T) {
	state := &WizardState{SessionID: "s", StudentID: "st"}
	state.Reset()

	if state.Phase != WizardCollecting || state.Step != 0 {
		t.Errorf("unexpected state after reset: %+v", state)
	}

	state.Selections[Monday] = "a1"
	state.Selections[Tuesday] = ""
	state.Selections[Friday] = "a2"

	if got := state.ChosenCount(); got != 2 {
		t.Errorf("skipped days must not count, got %d", got)
	}

	state.Reset()
	if state.ChosenCount() != 0 {
		t.Error("reset must clear selections")
	}
}
