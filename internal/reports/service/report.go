package service

import (
	"context"
	"sort"

	catalogrepo "actibook/internal/catalog/repository"
	"actibook/internal/reports/repository"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
)

// GradeReport is one row of the students-per-grade rollup. Grades with
// no students still appear with a zero count.
type GradeReport struct {
	GradeID  string `json:"grade_id"`
	Name     string `json:"name"`
	Students int64  `json:"students"`
}

// ActivityFillReport is one row of the fill rollup. FillPercent is nil
// for unlimited-capacity activities; those rank by raw count only.
type ActivityFillReport struct {
	ActivityID  string   `json:"activity_id"`
	Name        string   `json:"name"`
	Day         string   `json:"day"`
	Capacity    int      `json:"capacity"`
	Booked      int64    `json:"booked"`
	Attended    int64    `json:"attended"`
	FillPercent *float64 `json:"fill_percent,omitempty"`
}

// QuotaDistribution buckets students by how many bookings they hold
// relative to the weekly quota.
type QuotaDistribution struct {
	Unbooked     int64 `json:"unbooked"`
	BelowMinimum int64 `json:"below_minimum"`
	AtMinimum    int64 `json:"at_minimum"`
	Between      int64 `json:"between"`
	AtMaximum    int64 `json:"at_maximum"`
}

type ReportService interface {
	StudentsPerGrade(ctx context.Context) ([]GradeReport, error)
	ActivityFill(ctx context.Context) ([]ActivityFillReport, error)
	QuotaDistribution(ctx context.Context) (*QuotaDistribution, error)
}

type reportService struct {
	repo    repository.ReportRepository
	catalog catalogrepo.CatalogRepository
	cfg     *config.Config
}

func NewReportService(
	repo repository.ReportRepository,
	catalog catalogrepo.CatalogRepository,
	cfg *config.Config,
) ReportService {
	return &reportService{
		repo:    repo,
		catalog: catalog,
		cfg:     cfg,
	}
}

func (s *reportService) StudentsPerGrade(ctx context.Context) ([]GradeReport, error) {
	grades, err := s.catalog.ListGrades(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list grades for report", "error", err)
		return nil, apperrors.Internal("Failed to build students-per-grade report", err)
	}

	counts, err := s.repo.StudentsPerGrade(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate students per grade", "error", err)
		return nil, apperrors.Internal("Failed to build students-per-grade report", err)
	}

	byGrade := make(map[string]int64, len(counts))
	for _, c := range counts {
		byGrade[c.GradeID] = c.Students
	}

	report := make([]GradeReport, 0, len(grades))
	for _, grade := range grades {
		report = append(report, GradeReport{
			GradeID:  grade.ID,
			Name:     grade.Name,
			Students: byGrade[grade.ID],
		})
	}
	return report, nil
}

func (s *reportService) ActivityFill(ctx context.Context) ([]ActivityFillReport, error) {
	total, err := s.catalog.CountActivities(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count activities for report", "error", err)
		return nil, apperrors.Internal("Failed to build activity fill report", err)
	}

	activities, err := s.catalog.ListAllActivities(ctx, int(total), 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list activities for report", "error", err)
		return nil, apperrors.Internal("Failed to build activity fill report", err)
	}

	counts, err := s.repo.BookingCountsByActivity(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate bookings per activity", "error", err)
		return nil, apperrors.Internal("Failed to build activity fill report", err)
	}

	byActivity := make(map[string]repository.ActivityCount, len(counts))
	for _, c := range counts {
		byActivity[c.ActivityID] = c
	}

	report := make([]ActivityFillReport, 0, len(activities))
	for _, activity := range activities {
		count := byActivity[activity.ID]
		row := ActivityFillReport{
			ActivityID: activity.ID,
			Name:       activity.Name,
			Day:        string(activity.Day),
			Capacity:   activity.Capacity,
			Booked:     count.Booked,
			Attended:   count.Attended,
		}
		if !activity.Unlimited() {
			percent := float64(count.Booked) / float64(activity.Capacity) * 100
			row.FillPercent = &percent
		}
		report = append(report, row)
	}

	// Fullest first. Unlimited activities sort after capped ones and
	// rank among themselves by raw count.
	sort.SliceStable(report, func(i, j int) bool {
		a, b := report[i], report[j]
		switch {
		case a.FillPercent != nil && b.FillPercent != nil:
			return *a.FillPercent > *b.FillPercent
		case a.FillPercent != nil:
			return true
		case b.FillPercent != nil:
			return false
		default:
			return a.Booked > b.Booked
		}
	})
	return report, nil
}

func (s *reportService) QuotaDistribution(ctx context.Context) (*QuotaDistribution, error) {
	counts, err := s.repo.BookingCountsByStudent(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate bookings per student", "error", err)
		return nil, apperrors.Internal("Failed to build quota distribution report", err)
	}

	totalStudents, err := s.repo.CountStudents(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count students for report", "error", err)
		return nil, apperrors.Internal("Failed to build quota distribution report", err)
	}

	dist := &QuotaDistribution{}
	for _, c := range counts {
		switch {
		case c.Bookings < int64(s.cfg.MinBookings):
			dist.BelowMinimum++
		case c.Bookings == int64(s.cfg.MinBookings):
			dist.AtMinimum++
		case c.Bookings >= int64(s.cfg.MaxBookings):
			dist.AtMaximum++
		default:
			dist.Between++
		}
	}
	dist.Unbooked = totalStudents - int64(len(counts))
	if dist.Unbooked < 0 {
		dist.Unbooked = 0
	}
	return dist, nil
}
