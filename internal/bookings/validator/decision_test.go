package validator

import (
	"errors"
	"testing"
	"time"

	bookingserrors "actibook/internal/bookings/errors"
	"actibook/pkg/model"
)

var testPolicy = Policy{
	MinBookings:        3,
	MaxBookings:        7,
	ModificationWindow: 100 * 24 * time.Hour,
}

func testStudent() *model.StudentProfile {
	return &model.StudentProfile{
		ID:      "507f1f77bcf86cd799439011",
		Name:    "Dana",
		GradeID: "grade-5",
	}
}

func testActivity(capacity int) *model.Activity {
	return &model.Activity{
		ID:            "507f1f77bcf86cd799439022",
		Name:          "Chess Club",
		Day:           model.Monday,
		Capacity:      capacity,
		AllowedGrades: []string{"grade-5", "grade-6"},
	}
}

func TestEvaluate_CreateDenialOrder(t *testing.T) {
	now := time.Now()
	wrongGradeActivity := testActivity(10)
	wrongGradeActivity.AllowedGrades = []string{"grade-1"}

	mondayBooking := &model.Booking{
		ID:         "existing",
		StudentID:  testStudent().ID,
		ActivityID: "other-activity",
		Day:        model.Monday,
		CreatedAt:  now,
	}

	tests := []struct {
		name     string
		activity *model.Activity
		snap     Snapshot
		want     error
	}{
		{
			name:     "grade check comes first",
			activity: wrongGradeActivity,
			snap: Snapshot{
				DayBooking:    mondayBooking,
				ActivityCount: 10,
				TotalBookings: 7,
				Now:           now,
			},
			want: bookingserrors.ErrIneligibleGrade,
		},
		{
			name:     "day conflict before capacity",
			activity: testActivity(10),
			snap: Snapshot{
				DayBooking:    mondayBooking,
				ActivityCount: 10,
				TotalBookings: 7,
				Now:           now,
			},
			want: bookingserrors.ErrDayAlreadyBooked,
		},
		{
			name:     "capacity before quota",
			activity: testActivity(10),
			snap: Snapshot{
				ActivityCount: 10,
				TotalBookings: 7,
				Now:           now,
			},
			want: bookingserrors.ErrActivityFull,
		},
		{
			name:     "quota last",
			activity: testActivity(10),
			snap: Snapshot{
				ActivityCount: 3,
				TotalBookings: 7,
				Now:           now,
			},
			want: bookingserrors.ErrQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(Candidate{
				Student:  testStudent(),
				Activity: tt.activity,
				Mode:     ModeCreate,
			}, tt.snap, testPolicy)

			if decision.Allowed {
				t.Fatal("expected denial, got allowed")
			}
			if !errors.Is(decision.Reason, tt.want) {
				t.Errorf("expected reason %v, got %v", tt.want, decision.Reason)
			}
		})
	}
}

func TestEvaluate_CreateAllowed(t *testing.T) {
	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: testActivity(10),
		Mode:     ModeCreate,
	}, Snapshot{
		ActivityCount: 9,
		TotalBookings: 6,
		Now:           time.Now(),
	}, testPolicy)

	if !decision.Allowed {
		t.Errorf("expected allowed, got denial: %v", decision.Reason)
	}
}

func TestEvaluate_LastSeat(t *testing.T) {
	activity := testActivity(1)

	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: activity,
		Mode:     ModeCreate,
	}, Snapshot{ActivityCount: 0, TotalBookings: 0, Now: time.Now()}, testPolicy)
	if !decision.Allowed {
		t.Fatalf("expected last seat to be bookable, got %v", decision.Reason)
	}

	decision = Evaluate(Candidate{
		Student:  testStudent(),
		Activity: activity,
		Mode:     ModeCreate,
	}, Snapshot{ActivityCount: 1, TotalBookings: 0, Now: time.Now()}, testPolicy)
	if decision.Allowed {
		t.Fatal("expected full activity to deny")
	}
	if !errors.Is(decision.Reason, bookingserrors.ErrActivityFull) {
		t.Errorf("expected ErrActivityFull, got %v", decision.Reason)
	}
}

func TestEvaluate_UnlimitedCapacityNeverFull(t *testing.T) {
	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: testActivity(0),
		Mode:     ModeCreate,
	}, Snapshot{
		ActivityCount: 100000,
		TotalBookings: 0,
		Now:           time.Now(),
	}, testPolicy)

	if !decision.Allowed {
		t.Errorf("capacity zero means unlimited, got denial: %v", decision.Reason)
	}
}

func TestEvaluate_ReplaceIsCountNeutral(t *testing.T) {
	now := time.Now()
	existing := &model.Booking{
		ID:         "existing",
		StudentID:  testStudent().ID,
		ActivityID: "other-activity",
		Day:        model.Monday,
		CreatedAt:  now,
	}

	// At the weekly ceiling a swap must still go through.
	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: testActivity(10),
		Mode:     ModeReplace,
	}, Snapshot{
		DayBooking:    existing,
		ActivityCount: 5,
		TotalBookings: 7,
		Now:           now,
	}, testPolicy)

	if !decision.Allowed {
		t.Errorf("expected count-neutral replace to pass, got %v", decision.Reason)
	}
}

func TestEvaluate_ReplaceSameActivityFreesOwnSeat(t *testing.T) {
	now := time.Now()
	activity := testActivity(5)
	existing := &model.Booking{
		ID:         "existing",
		StudentID:  testStudent().ID,
		ActivityID: activity.ID,
		Day:        model.Monday,
		CreatedAt:  now,
	}

	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: activity,
		Mode:     ModeReplace,
	}, Snapshot{
		DayBooking:    existing,
		ActivityCount: 5,
		TotalBookings: 3,
		Now:           now,
	}, testPolicy)

	if !decision.Allowed {
		t.Errorf("student's own seat must not count against them, got %v", decision.Reason)
	}
}

func TestEvaluate_ReplaceWindowExpired(t *testing.T) {
	now := time.Now()
	stale := &model.Booking{
		ID:         "existing",
		StudentID:  testStudent().ID,
		ActivityID: "other-activity",
		Day:        model.Monday,
		CreatedAt:  now.Add(-101 * 24 * time.Hour),
	}

	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: testActivity(10),
		Mode:     ModeReplace,
	}, Snapshot{
		DayBooking:    stale,
		ActivityCount: 0,
		TotalBookings: 3,
		Now:           now,
	}, testPolicy)

	if decision.Allowed {
		t.Fatal("expected expired window to deny")
	}
	if !errors.Is(decision.Reason, bookingserrors.ErrWindowExpired) {
		t.Errorf("expected ErrWindowExpired, got %v", decision.Reason)
	}
}

func TestEvaluate_ReplaceWithoutExistingActsAsCreate(t *testing.T) {
	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: testActivity(10),
		Mode:     ModeReplace,
	}, Snapshot{
		ActivityCount: 0,
		TotalBookings: 7,
		Now:           time.Now(),
	}, testPolicy)

	if decision.Allowed {
		t.Fatal("net-new booking at ceiling must deny")
	}
	if !errors.Is(decision.Reason, bookingserrors.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", decision.Reason)
	}
}

func TestEvaluate_Remove(t *testing.T) {
	now := time.Now()
	fresh := &model.Booking{
		ID:        "existing",
		StudentID: testStudent().ID,
		Day:       model.Monday,
		CreatedAt: now,
	}
	stale := &model.Booking{
		ID:        "existing",
		StudentID: testStudent().ID,
		Day:       model.Monday,
		CreatedAt: now.Add(-101 * 24 * time.Hour),
	}

	tests := []struct {
		name string
		snap Snapshot
		want error
	}{
		{
			name: "no booking",
			snap: Snapshot{TotalBookings: 5, Now: now},
			want: bookingserrors.ErrNotFound,
		},
		{
			name: "window expired",
			snap: Snapshot{DayBooking: stale, TotalBookings: 5, Now: now},
			want: bookingserrors.ErrWindowExpired,
		},
		{
			name: "would drop below minimum",
			snap: Snapshot{DayBooking: fresh, TotalBookings: 3, Now: now},
			want: bookingserrors.ErrQuotaUnderflow,
		},
		{
			name: "allowed above floor",
			snap: Snapshot{DayBooking: fresh, TotalBookings: 4, Now: now},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(Candidate{
				Student:  testStudent(),
				Activity: testActivity(10),
				Mode:     ModeRemove,
			}, tt.snap, testPolicy)

			if tt.want == nil {
				if !decision.Allowed {
					t.Errorf("expected allowed, got %v", decision.Reason)
				}
				return
			}
			if decision.Allowed {
				t.Fatal("expected denial, got allowed")
			}
			if !errors.Is(decision.Reason, tt.want) {
				t.Errorf("expected reason %v, got %v", tt.want, decision.Reason)
			}
		})
	}
}

func TestEvaluate_RemoveIgnoresGrade(t *testing.T) {
	// A grade rule tightened after enrollment never traps a booking.
	now := time.Now()
	activity := testActivity(10)
	activity.AllowedGrades = []string{"grade-1"}

	decision := Evaluate(Candidate{
		Student:  testStudent(),
		Activity: activity,
		Mode:     ModeRemove,
	}, Snapshot{
		DayBooking: &model.Booking{
			ID:        "existing",
			StudentID: testStudent().ID,
			Day:       model.Monday,
			CreatedAt: now,
		},
		TotalBookings: 5,
		Now:           now,
	}, testPolicy)

	if !decision.Allowed {
		t.Errorf("expected removal regardless of grade rules, got %v", decision.Reason)
	}
}
