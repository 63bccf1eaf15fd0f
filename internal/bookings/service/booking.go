package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "actibook/internal/bookings/errors"
	"actibook/internal/bookings/repository"
	"actibook/internal/bookings/validator"
	catalogerrors "actibook/internal/catalog/errors"
	catalogrepo "actibook/internal/catalog/repository"
	studentserrors "actibook/internal/students/errors"
	studentsrepo "actibook/internal/students/repository"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/events"
	"actibook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService is the allocator: the only mutation path into the
// bookings collection. Every operation runs as one transaction with
// the decision pipeline re-evaluated inside it, so interleaved
// requests for the same activity cannot both observe spare capacity.
type BookingService interface {
	Create(ctx context.Context, studentID, activityID string) (*model.Booking, error)
	Replace(ctx context.Context, studentID, activityID string) (*model.Booking, error)
	Remove(ctx context.Context, studentID, activityID string) error
	MarkAttended(ctx context.Context, bookingID string, attended bool) error
	ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SeatLockRepository
	catalog   catalogrepo.CatalogRepository
	students  studentsrepo.StudentRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SeatLockRepository,
	catalog catalogrepo.CatalogRepository,
	students studentsrepo.StudentRepository,
	bookingValidator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		students:  students,
		validator: bookingValidator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) policy() validator.Policy {
	return validator.Policy{
		MinBookings:        s.cfg.MinBookings,
		MaxBookings:        s.cfg.MaxBookings,
		ModificationWindow: s.cfg.ModificationWindow,
	}
}

func (s *bookingService) Create(ctx context.Context, studentID, activityID string) (*model.Booking, error) {
	student, activity, err := s.loadPair(ctx, studentID, activityID)
	if err != nil {
		return nil, err
	}

	booking := model.NewBooking(student.ID, activity)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSeatLock(ctx, activity.ID)
	if err != nil {
		return nil, err
	}
	defer s.releaseSeatLock(ctx, lockID)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snap, err := s.snapshot(sessCtx, student, activity)
		if err != nil {
			return err
		}

		decision := validator.Evaluate(validator.Candidate{
			Student:  student,
			Activity: activity,
			Mode:     validator.ModeCreate,
		}, snap, s.policy())
		if !decision.Allowed {
			return s.denial(decision.Reason, student, activity, snap)
		}

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDayAlreadyBooked) {
				return s.denial(err, student, activity, snap)
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"student_id", student.ID,
		"activity_id", activity.ID,
		"day", booking.Day,
	)
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeBookingCreated,
		BookingID:  booking.ID,
		StudentID:  booking.StudentID,
		ActivityID: booking.ActivityID,
		Day:        booking.Day,
	})
	return booking, nil
}

func (s *bookingService) Replace(ctx context.Context, studentID, activityID string) (*model.Booking, error) {
	student, activity, err := s.loadPair(ctx, studentID, activityID)
	if err != nil {
		return nil, err
	}

	booking := model.NewBooking(student.ID, activity)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSeatLock(ctx, activity.ID)
	if err != nil {
		return nil, err
	}
	defer s.releaseSeatLock(ctx, lockID)

	var replacedID string
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snap, err := s.snapshot(sessCtx, student, activity)
		if err != nil {
			return err
		}

		decision := validator.Evaluate(validator.Candidate{
			Student:  student,
			Activity: activity,
			Mode:     validator.ModeReplace,
		}, snap, s.policy())
		if !decision.Allowed {
			// The old booking survives untouched: nothing has been
			// written yet and the transaction never commits a partial
			// swap.
			return s.denial(decision.Reason, student, activity, snap)
		}

		if snap.DayBooking != nil {
			replacedID = snap.DayBooking.ID
			if err := s.repo.Delete(sessCtx, snap.DayBooking.ID); err != nil {
				return apperrors.Internal("Failed to replace booking", err)
			}
		}

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to replace booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking replaced",
		"id", booking.ID,
		"replaced_id", replacedID,
		"student_id", student.ID,
		"activity_id", activity.ID,
		"day", booking.Day,
	)
	eventType := events.TypeBookingReplaced
	if replacedID == "" {
		eventType = events.TypeBookingCreated
	}
	s.publish(ctx, events.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		StudentID:  booking.StudentID,
		ActivityID: booking.ActivityID,
		Day:        booking.Day,
		ReplacedID: replacedID,
	})
	return booking, nil
}

func (s *bookingService) Remove(ctx context.Context, studentID, activityID string) error {
	var removed *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.FindByStudentAndActivity(sessCtx, studentID, activityID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFound("Booking")
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking reference")
			}
			return apperrors.Internal("Failed to look up booking", err)
		}

		total, err := s.repo.CountByStudent(sessCtx, studentID)
		if err != nil {
			return apperrors.Internal("Failed to count bookings", err)
		}

		snap := validator.Snapshot{
			DayBooking:    booking,
			TotalBookings: total,
			Now:           time.Now(),
		}
		decision := validator.Evaluate(validator.Candidate{
			Mode: validator.ModeRemove,
		}, snap, s.policy())
		if !decision.Allowed {
			return s.removalDenial(decision.Reason, booking)
		}

		if err := s.repo.Delete(sessCtx, booking.ID); err != nil {
			return apperrors.Internal("Failed to delete booking", err)
		}
		removed = booking
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Booking removed",
		"id", removed.ID,
		"student_id", removed.StudentID,
		"activity_id", removed.ActivityID,
		"day", removed.Day,
	)
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeBookingRemoved,
		BookingID:  removed.ID,
		StudentID:  removed.StudentID,
		ActivityID: removed.ActivityID,
		Day:        removed.Day,
	})
	return nil
}

func (s *bookingService) MarkAttended(ctx context.Context, bookingID string, attended bool) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to look up booking", err)
	}

	if err := s.repo.SetAttended(ctx, bookingID, attended); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		return apperrors.Internal("Failed to update attendance", err)
	}

	s.cfg.Log.Info("Attendance updated", "id", bookingID, "attended", attended)
	if attended {
		s.publish(ctx, events.BookingEvent{
			Type:       events.TypeBookingAttended,
			BookingID:  booking.ID,
			StudentID:  booking.StudentID,
			ActivityID: booking.ActivityID,
			Day:        booking.Day,
		})
	}
	return nil
}

func (s *bookingService) ListForStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	bookings, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) loadPair(ctx context.Context, studentID, activityID string) (*model.StudentProfile, *model.Activity, error) {
	if studentID == "" || activityID == "" {
		return nil, nil, apperrors.InvalidInput("Student ID and activity ID are required")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, studentserrors.ErrNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Student", studentID)
		}
		if errors.Is(err, studentserrors.ErrInvalidID) {
			return nil, nil, apperrors.InvalidInput("Invalid student ID format")
		}
		return nil, nil, apperrors.Internal("Failed to load student", err)
	}

	activity, err := s.catalog.FindActivityByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrActivityNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Activity", activityID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, nil, apperrors.InvalidInput("Invalid activity ID format")
		}
		return nil, nil, apperrors.Internal("Failed to load activity", err)
	}

	return student, activity, nil
}

// snapshot captures the ledger state the decision pipeline needs.
// Called inside the transaction so capacity and day-conflict checks
// hold at commit time.
func (s *bookingService) snapshot(ctx context.Context, student *model.StudentProfile, activity *model.Activity) (validator.Snapshot, error) {
	snap := validator.Snapshot{Now: time.Now()}

	dayBooking, err := s.repo.FindByStudentAndDay(ctx, student.ID, activity.Day)
	if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
		return snap, apperrors.Internal("Failed to check day bookings", err)
	}
	snap.DayBooking = dayBooking

	if !activity.Unlimited() {
		count, err := s.repo.CountByActivity(ctx, activity.ID)
		if err != nil {
			return snap, apperrors.Internal("Failed to count activity bookings", err)
		}
		snap.ActivityCount = count
	}

	total, err := s.repo.CountByStudent(ctx, student.ID)
	if err != nil {
		return snap, apperrors.Internal("Failed to count student bookings", err)
	}
	snap.TotalBookings = total

	return snap, nil
}

// denial maps a decision reason to a user-facing error that names the
// activity and the bound that was hit.
func (s *bookingService) denial(reason error, student *model.StudentProfile, activity *model.Activity, snap validator.Snapshot) *apperrors.AppError {
	details := map[string]any{
		"activity_id": activity.ID,
		"activity":    activity.Name,
		"day":         activity.Day,
	}

	switch {
	case errors.Is(reason, bookingserrors.ErrIneligibleGrade):
		details["grade_id"] = student.GradeID
		return apperrors.Forbidden(fmt.Sprintf("Your grade is not allowed to book %s.", activity.Name)).WithDetails(details)

	case errors.Is(reason, bookingserrors.ErrDayAlreadyBooked):
		return apperrors.Conflict(fmt.Sprintf("You already have a booking on %s.", activity.Day)).WithDetails(details)

	case errors.Is(reason, bookingserrors.ErrActivityFull):
		details["capacity"] = activity.Capacity
		return apperrors.Conflict(fmt.Sprintf("%s is already full.", activity.Name)).WithDetails(details)

	case errors.Is(reason, bookingserrors.ErrQuotaExceeded):
		details["max_bookings"] = s.cfg.MaxBookings
		return apperrors.Conflict(fmt.Sprintf("You can only book up to %d activities for the week.", s.cfg.MaxBookings)).WithDetails(details)

	case errors.Is(reason, bookingserrors.ErrWindowExpired):
		details["modification_window"] = s.cfg.ModificationWindow.String()
		return apperrors.Conflict(fmt.Sprintf("Your %s booking can no longer be changed (time limit exceeded).", activity.Day)).WithDetails(details)

	default:
		return apperrors.Internal("Booking was denied for an unexpected reason", reason)
	}
}

func (s *bookingService) removalDenial(reason error, booking *model.Booking) *apperrors.AppError {
	details := map[string]any{
		"booking_id":  booking.ID,
		"activity_id": booking.ActivityID,
		"day":         booking.Day,
	}

	switch {
	case errors.Is(reason, bookingserrors.ErrWindowExpired):
		details["modification_window"] = s.cfg.ModificationWindow.String()
		return apperrors.Conflict("You can no longer unbook this activity (time limit exceeded).").WithDetails(details)

	case errors.Is(reason, bookingserrors.ErrQuotaUnderflow):
		details["min_bookings"] = s.cfg.MinBookings
		return apperrors.Conflict(fmt.Sprintf("You must keep at least %d bookings for the week.", s.cfg.MinBookings)).WithDetails(details)

	default:
		return apperrors.Internal("Removal was denied for an unexpected reason", reason)
	}
}

// acquireSeatLock serializes seat allocation per activity. The unique
// _id insert either succeeds or reports that another request is mid-
// allocation for the same activity.
func (s *bookingService) acquireSeatLock(ctx context.Context, activityID string) (string, error) {
	lockID := fmt.Sprintf("seat_lock_%s", activityID)

	lock := &model.SeatLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SeatLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This activity is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire seat lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSeatLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release seat lock", "lock_id", lockID, "error", err)
	}
}

// publish is best-effort: the booking is already committed, so a
// publish failure is logged by the publisher and swallowed here.
func (s *bookingService) publish(ctx context.Context, event events.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Booking event not published", "type", event.Type, "booking_id", event.BookingID)
	}
}
