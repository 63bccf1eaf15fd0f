package service

import (
	"context"
	"testing"

	"actibook/internal/reports/repository"
	"actibook/pkg/config"
	"actibook/pkg/logger"
	"actibook/pkg/model"
)

type mockReportRepository struct {
	gradeCounts    []repository.GradeCount
	activityCounts []repository.ActivityCount
	studentCounts  []repository.StudentCount
	totalStudents  int64
}

func (m *mockReportRepository) StudentsPerGrade(ctx context.Context) ([]repository.GradeCount, error) {
	return m.gradeCounts, nil
}

func (m *mockReportRepository) BookingCountsByActivity(ctx context.Context) ([]repository.ActivityCount, error) {
	return m.activityCounts, nil
}

func (m *mockReportRepository) BookingCountsByStudent(ctx context.Context) ([]repository.StudentCount, error) {
	return m.studentCounts, nil
}

func (m *mockReportRepository) CountStudents(ctx context.Context) (int64, error) {
	return m.totalStudents, nil
}

type mockCatalogRepository struct {
	grades     []*model.Grade
	activities []*model.Activity
}

func (m *mockCatalogRepository) InsertGrade(ctx context.Context, grade *model.Grade) error {
	return nil
}

func (m *mockCatalogRepository) FindGradeByID(ctx context.Context, id string) (*model.Grade, error) {
	return nil, nil
}

func (m *mockCatalogRepository) ListGrades(ctx context.Context) ([]*model.Grade, error) {
	return m.grades, nil
}

func (m *mockCatalogRepository) InsertActivity(ctx context.Context, activity *model.Activity) error {
	return nil
}

func (m *mockCatalogRepository) UpdateActivity(ctx context.Context, id string, activity *model.Activity) error {
	return nil
}

func (m *mockCatalogRepository) FindActivityByID(ctx context.Context, id string) (*model.Activity, error) {
	return nil, nil
}

func (m *mockCatalogRepository) ListActivities(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error) {
	return nil, nil
}

func (m *mockCatalogRepository) ListAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, error) {
	return m.activities, nil
}

func (m *mockCatalogRepository) CountActivities(ctx context.Context) (int64, error) {
	return int64(len(m.activities)), nil
}

func reportConfig() *config.Config {
	return &config.Config{
		MinBookings: 3,
		MaxBookings: 7,
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
	}
}

func TestStudentsPerGrade_IncludesEmptyGrades(t *testing.T) {
	repo := &mockReportRepository{
		gradeCounts: []repository.GradeCount{
			{GradeID: "g1", Students: 12},
		},
	}
	catalog := &mockCatalogRepository{
		grades: []*model.Grade{
			{ID: "g1", Name: "5A"},
			{ID: "g2", Name: "5B"},
		},
	}
	svc := NewReportService(repo, catalog, reportConfig())

	report, err := svc.StudentsPerGrade(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report))
	}
	if report[0].Students != 12 || report[0].Name != "5A" {
		t.Errorf("unexpected first row: %+v", report[0])
	}
	if report[1].Students != 0 {
		t.Errorf("empty grade must report zero, got %d", report[1].Students)
	}
}

func TestActivityFill_RanksAndExcludesUnlimited(t *testing.T) {
	repo := &mockReportRepository{
		activityCounts: []repository.ActivityCount{
			{ActivityID: "a1", Booked: 5, Attended: 4},
			{ActivityID: "a2", Booked: 9, Attended: 2},
			{ActivityID: "a3", Booked: 50, Attended: 10},
		},
	}
	catalog := &mockCatalogRepository{
		activities: []*model.Activity{
			{ID: "a1", Name: "Chess", Day: model.Monday, Capacity: 10},
			{ID: "a2", Name: "Soccer", Day: model.Tuesday, Capacity: 10},
			{ID: "a3", Name: "Choir", Day: model.Wednesday, Capacity: 0},
			{ID: "a4", Name: "Drama", Day: model.Thursday, Capacity: 20},
		},
	}
	svc := NewReportService(repo, catalog, reportConfig())

	report, err := svc.ActivityFill(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(report))
	}

	// Capped activities rank by percentage, unlimited ones trail.
	if report[0].ActivityID != "a2" {
		t.Errorf("expected a2 (90%%) first, got %s", report[0].ActivityID)
	}
	if report[0].FillPercent == nil || *report[0].FillPercent != 90 {
		t.Errorf("expected 90%%, got %v", report[0].FillPercent)
	}
	last := report[len(report)-1]
	if last.ActivityID != "a3" {
		t.Errorf("expected unlimited activity last, got %s", last.ActivityID)
	}
	if last.FillPercent != nil {
		t.Error("unlimited activity must have no percentage")
	}
	if last.Attended != 10 {
		t.Errorf("expected attendance carried through, got %d", last.Attended)
	}
}

func TestQuotaDistribution_Buckets(t *testing.T) {
	repo := &mockReportRepository{
		studentCounts: []repository.StudentCount{
			{StudentID: "s1", Bookings: 1},
			{StudentID: "s2", Bookings: 3},
			{StudentID: "s3", Bookings: 3},
			{StudentID: "s4", Bookings: 5},
			{StudentID: "s5", Bookings: 7},
		},
		totalStudents: 8,
	}
	svc := NewReportService(repo, &mockCatalogRepository{}, reportConfig())

	dist, err := svc.QuotaDistribution(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dist.Unbooked != 3 {
		t.Errorf("expected 3 unbooked, got %d", dist.Unbooked)
	}
	if dist.BelowMinimum != 1 {
		t.Errorf("expected 1 below minimum, got %d", dist.BelowMinimum)
	}
	if dist.AtMinimum != 2 {
		t.Errorf("expected 2 at minimum, got %d", dist.AtMinimum)
	}
	if dist.Between != 1 {
		t.Errorf("expected 1 between, got %d", dist.Between)
	}
	if dist.AtMaximum != 1 {
		t.Errorf("expected 1 at maximum, got %d", dist.AtMaximum)
	}
}
