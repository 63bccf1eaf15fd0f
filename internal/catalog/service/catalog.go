package service

import (
	"context"
	"errors"
	"sync"

	catalogerrors "actibook/internal/catalog/errors"
	"actibook/internal/catalog/repository"
	catalogvalidator "actibook/internal/catalog/validator"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/model"
)

// ActivityAvailability pairs an activity with its remaining seats for
// display. SpotsLeft is nil when the activity has unlimited capacity.
type ActivityAvailability struct {
	Activity  *model.Activity `json:"activity"`
	SpotsLeft *int            `json:"spots_left,omitempty"`
}

// SeatCounter reports how many bookings an activity currently holds.
// The count is a display snapshot; enforcement happens in the booking
// transaction, never here.
type SeatCounter interface {
	CountByActivity(ctx context.Context, activityID string) (int64, error)
}

type CatalogService interface {
	CreateGrade(ctx context.Context, grade *model.Grade) error
	GetGrades(ctx context.Context) ([]*model.Grade, error)

	CreateActivity(ctx context.Context, activity *model.Activity) error
	GetActivity(ctx context.Context, id string) (*model.Activity, error)
	UpdateActivity(ctx context.Context, id string, update *model.ActivityUpdate) (*model.Activity, error)
	GetDayActivities(ctx context.Context, day model.Weekday, gradeID string) ([]ActivityAvailability, error)
	GetAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, int64, error)
}

type catalogService struct {
	repo      repository.CatalogRepository
	seats     SeatCounter
	validator *catalogvalidator.CatalogValidator
	cfg       *config.Config
}

func NewCatalogService(
	repo repository.CatalogRepository,
	seats SeatCounter,
	validator *catalogvalidator.CatalogValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		seats:     seats,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) CreateGrade(ctx context.Context, grade *model.Grade) error {
	if err := s.validator.ValidateGrade(grade); err != nil {
		return apperrors.Validation("Grade validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.InsertGrade(ctx, grade); err != nil {
		if errors.Is(err, catalogerrors.ErrDuplicateGrade) {
			return apperrors.Conflict("A grade with this name already exists")
		}
		s.cfg.Log.Error("Failed to create grade", "name", grade.Name, "error", err)
		return apperrors.Internal("Failed to create grade", err)
	}

	s.cfg.Log.Info("Grade created", "id", grade.ID, "name", grade.Name)
	return nil
}

func (s *catalogService) GetGrades(ctx context.Context) ([]*model.Grade, error) {
	grades, err := s.repo.ListGrades(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list grades", "error", err)
		return nil, apperrors.Internal("Failed to retrieve grades", err)
	}
	return grades, nil
}

func (s *catalogService) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if err := s.validator.ValidateActivity(activity); err != nil {
		return apperrors.Validation("Activity validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	for _, gradeID := range activity.AllowedGrades {
		if _, err := s.repo.FindGradeByID(ctx, gradeID); err != nil {
			if errors.Is(err, catalogerrors.ErrGradeNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
				return apperrors.InvalidInput("Unknown grade in allowed_grades: " + gradeID)
			}
			s.cfg.Log.Error("Failed to verify grade", "grade_id", gradeID, "error", err)
			return apperrors.Internal("Failed to verify grade", err)
		}
	}

	if err := s.repo.InsertActivity(ctx, activity); err != nil {
		if errors.Is(err, catalogerrors.ErrDuplicateActivity) {
			return apperrors.Conflict("An activity with this name already exists on this day")
		}
		s.cfg.Log.Error("Failed to create activity", "name", activity.Name, "day", activity.Day, "error", err)
		return apperrors.Internal("Failed to create activity", err)
	}

	s.cfg.Log.Info("Activity created",
		"id", activity.ID,
		"name", activity.Name,
		"day", activity.Day,
		"capacity", activity.Capacity,
	)
	return nil
}

func (s *catalogService) GetActivity(ctx context.Context, id string) (*model.Activity, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Activity ID cannot be empty")
	}

	activity, err := s.repo.FindActivityByID(ctx, id)
	if err != nil {
		return nil, s.mapActivityError(id, err)
	}
	return activity, nil
}

// UpdateActivity applies a partial update. The day is immutable after
// creation; bookings carry a copy of it and would silently desync.
func (s *catalogService) UpdateActivity(ctx context.Context, id string, update *model.ActivityUpdate) (*model.Activity, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Activity ID cannot be empty")
	}
	if err := s.validator.ValidateActivityUpdate(update); err != nil {
		return nil, apperrors.Validation("Activity validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	activity, err := s.repo.FindActivityByID(ctx, id)
	if err != nil {
		return nil, s.mapActivityError(id, err)
	}

	if update.Name != "" {
		activity.Name = update.Name
	}
	if update.Capacity != nil {
		activity.Capacity = *update.Capacity
	}
	if len(update.AllowedGrades) > 0 {
		for _, gradeID := range update.AllowedGrades {
			if _, err := s.repo.FindGradeByID(ctx, gradeID); err != nil {
				if errors.Is(err, catalogerrors.ErrGradeNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
					return nil, apperrors.InvalidInput("Unknown grade in allowed_grades: " + gradeID)
				}
				s.cfg.Log.Error("Failed to verify grade", "grade_id", gradeID, "error", err)
				return nil, apperrors.Internal("Failed to verify grade", err)
			}
		}
		activity.AllowedGrades = update.AllowedGrades
	}
	if update.Instructor != nil {
		activity.Instructor = *update.Instructor
	}
	if update.Venue != nil {
		activity.Venue = *update.Venue
	}
	if update.TimeLabel != nil {
		activity.TimeLabel = *update.TimeLabel
	}

	if err := s.repo.UpdateActivity(ctx, id, activity); err != nil {
		if errors.Is(err, catalogerrors.ErrDuplicateActivity) {
			return nil, apperrors.Conflict("An activity with this name already exists on this day")
		}
		return nil, s.mapActivityError(id, err)
	}

	s.cfg.Log.Info("Activity updated", "id", id, "name", activity.Name)
	return activity, nil
}

// GetDayActivities lists the activities a grade may book on a day,
// each annotated with its remaining seats.
func (s *catalogService) GetDayActivities(ctx context.Context, day model.Weekday, gradeID string) ([]ActivityAvailability, error) {
	if !model.IsWeekday(string(day)) {
		return nil, apperrors.InvalidInput("Unknown weekday: " + string(day))
	}
	if gradeID == "" {
		return nil, apperrors.InvalidInput("Grade ID cannot be empty")
	}

	activities, err := s.repo.ListActivities(ctx, day, gradeID)
	if err != nil {
		s.cfg.Log.Error("Failed to list activities", "day", day, "grade_id", gradeID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve activities", err)
	}

	result := make([]ActivityAvailability, 0, len(activities))
	for _, activity := range activities {
		entry := ActivityAvailability{Activity: activity}
		if !activity.Unlimited() {
			count, err := s.seats.CountByActivity(ctx, activity.ID)
			if err != nil {
				s.cfg.Log.Error("Failed to count bookings", "activity_id", activity.ID, "error", err)
				return nil, apperrors.Internal("Failed to retrieve activities", err)
			}
			left := activity.SpotsLeft(count)
			entry.SpotsLeft = &left
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *catalogService) GetAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var activities []*model.Activity
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.CountActivities(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count activities", "error", err)
			errCount = apperrors.Internal("Failed to count activities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		activities, err = s.repo.ListAllActivities(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all activities",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve activities", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return activities, count, nil
}

func (s *catalogService) mapActivityError(id string, err error) error {
	switch {
	case errors.Is(err, catalogerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid activity ID format")
	case errors.Is(err, catalogerrors.ErrActivityNotFound):
		return apperrors.NotFoundWithID("Activity", id)
	default:
		s.cfg.Log.Error("Activity lookup failed", "id", id, "error", err)
		return apperrors.Internal("Failed to retrieve activity", err)
	}
}
