package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "actibook/internal/catalog/errors"
	catalogvalidator "actibook/internal/catalog/validator"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/logger"
	"actibook/pkg/model"
)

type mockCatalogRepository struct {
	insertActivityFunc func(ctx context.Context, activity *model.Activity) error
	findActivityFunc   func(ctx context.Context, id string) (*model.Activity, error)
	updateActivityFunc func(ctx context.Context, id string, activity *model.Activity) error
	findGradeFunc      func(ctx context.Context, id string) (*model.Grade, error)
	listActivitiesFunc func(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error)
}

func (m *mockCatalogRepository) InsertGrade(ctx context.Context, grade *model.Grade) error {
	return nil
}

func (m *mockCatalogRepository) FindGradeByID(ctx context.Context, id string) (*model.Grade, error) {
	if m.findGradeFunc != nil {
		return m.findGradeFunc(ctx, id)
	}
	return &model.Grade{ID: id, Name: "5A"}, nil
}

func (m *mockCatalogRepository) ListGrades(ctx context.Context) ([]*model.Grade, error) {
	return nil, nil
}

func (m *mockCatalogRepository) InsertActivity(ctx context.Context, activity *model.Activity) error {
	if m.insertActivityFunc != nil {
		return m.insertActivityFunc(ctx, activity)
	}
	return nil
}

func (m *mockCatalogRepository) UpdateActivity(ctx context.Context, id string, activity *model.Activity) error {
	if m.updateActivityFunc != nil {
		return m.updateActivityFunc(ctx, id, activity)
	}
	return nil
}

func (m *mockCatalogRepository) FindActivityByID(ctx context.Context, id string) (*model.Activity, error) {
	if m.findActivityFunc != nil {
		return m.findActivityFunc(ctx, id)
	}
	return nil, catalogerrors.ErrActivityNotFound
}

func (m *mockCatalogRepository) ListActivities(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error) {
	if m.listActivitiesFunc != nil {
		return m.listActivitiesFunc(ctx, day, gradeID)
	}
	return nil, nil
}

func (m *mockCatalogRepository) ListAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, error) {
	return nil, nil
}

func (m *mockCatalogRepository) CountActivities(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockSeatCounter struct {
	counts map[string]int64
}

func (m *mockSeatCounter) CountByActivity(ctx context.Context, activityID string) (int64, error) {
	return m.counts[activityID], nil
}

func catalogConfig() *config.Config {
	return &config.Config{
		ReadTimeout: 5 * time.Second,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func fixtureService(repo *mockCatalogRepository, seats *mockSeatCounter) CatalogService {
	cfg := catalogConfig()
	if seats == nil {
		seats = &mockSeatCounter{counts: map[string]int64{}}
	}
	return NewCatalogService(repo, seats, catalogvalidator.NewCatalogValidator(cfg.Log), cfg)
}

func validActivity() *model.Activity {
	return &model.Activity{
		Name:          "Chess Club",
		Day:           model.Monday,
		Capacity:      10,
		AllowedGrades: []string{"507f1f77bcf86cd799439011"},
	}
}

func TestCreateActivity_RejectsBadWeekday(t *testing.T) {
	svc := fixtureService(&mockCatalogRepository{}, nil)

	activity := validActivity()
	activity.Day = "Funday"

	err := svc.CreateActivity(context.Background(), activity)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %s", appErr.Code)
	}
}

func TestCreateActivity_RejectsUnknownGrade(t *testing.T) {
	repo := &mockCatalogRepository{
		findGradeFunc: func(ctx context.Context, id string) (*model.Grade, error) {
			return nil, catalogerrors.ErrGradeNotFound
		},
	}
	svc := fixtureService(repo, nil)

	err := svc.CreateActivity(context.Background(), validActivity())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %s", appErr.Code)
	}
}

func TestCreateActivity_DuplicateNameOnDay(t *testing.T) {
	repo := &mockCatalogRepository{
		insertActivityFunc: func(ctx context.Context, activity *model.Activity) error {
			return catalogerrors.ErrDuplicateActivity
		},
	}
	svc := fixtureService(repo, nil)

	err := svc.CreateActivity(context.Background(), validActivity())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %s", appErr.Code)
	}
}

func TestUpdateActivity_PatchesWithoutTouchingDay(t *testing.T) {
	stored := validActivity()
	stored.ID = "507f1f77bcf86cd799439022"

	var written *model.Activity
	repo := &mockCatalogRepository{
		findActivityFunc: func(ctx context.Context, id string) (*model.Activity, error) {
			return stored, nil
		},
		updateActivityFunc: func(ctx context.Context, id string, activity *model.Activity) error {
			written = activity
			return nil
		},
	}
	svc := fixtureService(repo, nil)

	capacity := 25
	updated, err := svc.UpdateActivity(context.Background(), stored.ID, &model.ActivityUpdate{
		Name:     "Advanced Chess",
		Capacity: &capacity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written == nil {
		t.Fatal("expected repository update")
	}
	if updated.Name != "Advanced Chess" || updated.Capacity != 25 {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Day != model.Monday {
		t.Errorf("day must never change on update, got %s", updated.Day)
	}
}

func TestGetDayActivities_SpotsLeft(t *testing.T) {
	repo := &mockCatalogRepository{
		listActivitiesFunc: func(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error) {
			return []*model.Activity{
				{ID: "a1", Name: "Chess", Day: day, Capacity: 10, AllowedGrades: []string{gradeID}},
				{ID: "a2", Name: "Choir", Day: day, Capacity: 0, AllowedGrades: []string{gradeID}},
			}, nil
		},
	}
	seats := &mockSeatCounter{counts: map[string]int64{"a1": 8}}
	svc := fixtureService(repo, seats)

	result, err := svc.GetDayActivities(context.Background(), model.Monday, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(result))
	}
	if result[0].SpotsLeft == nil || *result[0].SpotsLeft != 2 {
		t.Errorf("expected 2 spots left, got %v", result[0].SpotsLeft)
	}
	if result[1].SpotsLeft != nil {
		t.Error("unlimited activity must not report spots left")
	}
}

func TestGetDayActivities_UnknownWeekday(t *testing.T) {
	svc := fixtureService(&mockCatalogRepository{}, nil)

	_, err := svc.GetDayActivities(context.Background(), "Someday", "g1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %s", appErr.Code)
	}
}
