package service

import (
	"context"
	"errors"
	"fmt"

	bookingsservice "actibook/internal/bookings/service"
	catalogrepo "actibook/internal/catalog/repository"
	studentserrors "actibook/internal/students/errors"
	studentsrepo "actibook/internal/students/repository"
	"actibook/internal/wizard/session"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/model"

	"github.com/google/uuid"
)

// DayOption is one bookable choice presented for the current wizard
// day. SpotsLeft is nil for unlimited-capacity activities.
type DayOption struct {
	Activity  *model.Activity `json:"activity"`
	SpotsLeft *int            `json:"spots_left,omitempty"`
}

// DayFailure records one selection the allocator rejected during
// finalization. The remaining selections still commit.
type DayFailure struct {
	Day        model.Weekday `json:"day"`
	ActivityID string        `json:"activity_id"`
	Reason     string        `json:"reason"`
}

// FinalizeResult reports the outcome of committing a wizard session.
type FinalizeResult struct {
	Created  []*model.Booking `json:"created"`
	Failures []DayFailure     `json:"failures,omitempty"`
}

// WizardService walks a student with zero bookings through a day-by-
// day selection of the week. Choices accumulate in session storage
// only; nothing touches the ledger until Finalize, and the allocator
// remains the sole enforcement point for capacity.
type WizardService interface {
	Start(ctx context.Context, studentID string) (*model.WizardState, error)
	State(ctx context.Context, studentID string) (*model.WizardState, error)
	Options(ctx context.Context, studentID string) ([]DayOption, error)
	Choose(ctx context.Context, studentID, activityID string) (*model.WizardState, error)
	Finalize(ctx context.Context, studentID string) (*FinalizeResult, error)
	Abort(ctx context.Context, studentID string) error
}

type wizardService struct {
	sessions  session.Store
	allocator bookingsservice.BookingService
	catalog   catalogrepo.CatalogRepository
	students  studentsrepo.StudentRepository
	counter   ActivityCounter
	cfg       *config.Config
}

// ActivityCounter exposes the two ledger reads the wizard needs:
// the entry guard and the spots-left display.
type ActivityCounter interface {
	CountByActivity(ctx context.Context, activityID string) (int64, error)
	CountByStudent(ctx context.Context, studentID string) (int64, error)
}

func NewWizardService(
	sessions session.Store,
	allocator bookingsservice.BookingService,
	catalog catalogrepo.CatalogRepository,
	students studentsrepo.StudentRepository,
	counter ActivityCounter,
	cfg *config.Config,
) WizardService {
	return &wizardService{
		sessions:  sessions,
		allocator: allocator,
		catalog:   catalog,
		students:  students,
		counter:   counter,
		cfg:       cfg,
	}
}

func (s *wizardService) Start(ctx context.Context, studentID string) (*model.WizardState, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	// Entry guard: the wizard is for first enrollment only.
	total, err := s.counter.CountByStudent(ctx, student.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	if total > 0 {
		return nil, apperrors.Conflict("You already have bookings for this week.").WithDetails(map[string]any{
			"student_id":     student.ID,
			"total_bookings": total,
		})
	}

	state := &model.WizardState{
		SessionID: uuid.New().String(),
		StudentID: student.ID,
	}
	state.Reset()
	s.sessions.Set(state)

	s.cfg.Log.Info("Wizard session started", "session_id", state.SessionID, "student_id", student.ID)
	return state, nil
}

func (s *wizardService) State(ctx context.Context, studentID string) (*model.WizardState, error) {
	state, ok := s.sessions.Get(studentID)
	if !ok {
		return nil, apperrors.NotFound("Wizard session")
	}
	return state, nil
}

func (s *wizardService) Options(ctx context.Context, studentID string) ([]DayOption, error) {
	state, err := s.State(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.WizardCollecting {
		return nil, apperrors.InvalidInput("Wizard is not collecting day selections")
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	day := model.Weekdays[state.Step]
	activities, err := s.catalog.ListActivities(ctx, day, student.GradeID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list activities", err)
	}

	options := make([]DayOption, 0, len(activities))
	for _, activity := range activities {
		option := DayOption{Activity: activity}
		if !activity.Unlimited() {
			count, err := s.counter.CountByActivity(ctx, activity.ID)
			if err != nil {
				return nil, apperrors.Internal("Failed to count activity bookings", err)
			}
			left := activity.SpotsLeft(count)
			option.SpotsLeft = &left
		}
		options = append(options, option)
	}

	return options, nil
}

// Choose records the selection for the current day (empty activityID
// means skip) and advances. After the last day the wizard moves to the
// finalizing phase; nothing is validated against the ledger yet.
func (s *wizardService) Choose(ctx context.Context, studentID, activityID string) (*model.WizardState, error) {
	state, err := s.State(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.WizardCollecting {
		return nil, apperrors.InvalidInput("Wizard is not collecting day selections")
	}

	day := model.Weekdays[state.Step]

	if activityID != "" {
		activity, err := s.catalog.FindActivityByID(ctx, activityID)
		if err != nil {
			return nil, apperrors.NotFoundWithID("Activity", activityID)
		}
		if activity.Day != day {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Activity %s runs on %s, not %s", activity.Name, activity.Day, day))
		}
	}

	state.Selections[day] = activityID
	state.Step++
	if state.Step >= len(model.Weekdays) {
		state.Phase = model.WizardFinalizing
	}
	s.sessions.Set(state)

	return state, nil
}

// Finalize commits the collected selections. Below the minimum the
// whole session resets to day one; otherwise selections are created in
// day order and individual allocator denials (a seat raced away, a
// grade rule changed) are collected without aborting the rest.
func (s *wizardService) Finalize(ctx context.Context, studentID string) (*FinalizeResult, error) {
	state, err := s.State(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if state.Phase != model.WizardFinalizing {
		return nil, apperrors.InvalidInput("Wizard has not collected all day selections yet")
	}

	if state.ChosenCount() < s.cfg.MinBookings {
		state.Reset()
		s.sessions.Set(state)
		return nil, apperrors.Validation(
			fmt.Sprintf("You must choose at least %d activities for the week.", s.cfg.MinBookings),
			map[string]any{
				"min_bookings": s.cfg.MinBookings,
				"chosen":       state.ChosenCount(),
			},
		)
	}

	result := &FinalizeResult{}
	for _, day := range model.Weekdays {
		activityID := state.Selections[day]
		if activityID == "" {
			continue
		}

		booking, err := s.allocator.Create(ctx, studentID, activityID)
		if err != nil {
			appErr := apperrors.AsAppError(err)
			s.cfg.Log.Warn("Wizard selection rejected at commit",
				"student_id", studentID,
				"day", day,
				"activity_id", activityID,
				"reason", appErr.Message,
			)
			result.Failures = append(result.Failures, DayFailure{
				Day:        day,
				ActivityID: activityID,
				Reason:     appErr.Message,
			})
			continue
		}
		result.Created = append(result.Created, booking)
	}

	s.sessions.Delete(studentID)
	s.cfg.Log.Info("Wizard session committed",
		"session_id", state.SessionID,
		"student_id", studentID,
		"created", len(result.Created),
		"failed", len(result.Failures),
	)
	return result, nil
}

func (s *wizardService) Abort(ctx context.Context, studentID string) error {
	if _, ok := s.sessions.Get(studentID); !ok {
		return apperrors.NotFound("Wizard session")
	}
	s.sessions.Delete(studentID)
	s.cfg.Log.Info("Wizard session aborted", "student_id", studentID)
	return nil
}

func (s *wizardService) loadStudent(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, studentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Student", studentID)
		}
		if errors.Is(err, studentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid student ID format")
		}
		return nil, apperrors.Internal("Failed to load student", err)
	}
	return student, nil
}
