package repository

import (
	"context"
	"fmt"
	"time"

	"actibook/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	StudentsCollection = "Students"
	BookingsCollection = "Bookings"
)

// GradeCount is the number of student profiles in one grade.
type GradeCount struct {
	GradeID  string `bson:"_id"`
	Students int64  `bson:"students"`
}

// ActivityCount is the booked and attended totals for one activity.
type ActivityCount struct {
	ActivityID string `bson:"_id"`
	Booked     int64  `bson:"booked"`
	Attended   int64  `bson:"attended"`
}

// StudentCount is the number of bookings one student currently holds.
type StudentCount struct {
	StudentID string `bson:"_id"`
	Bookings  int64  `bson:"bookings"`
}

// ReportRepository runs the read-only rollups. All reads are
// read-committed snapshots; numbers may lag concurrent bookings.
type ReportRepository interface {
	StudentsPerGrade(ctx context.Context) ([]GradeCount, error)
	BookingCountsByActivity(ctx context.Context) ([]ActivityCount, error)
	BookingCountsByStudent(ctx context.Context) ([]StudentCount, error)
	CountStudents(ctx context.Context) (int64, error)
}

type mongoReportRepository struct {
	cfg      *config.Config
	students *mongo.Collection
	bookings *mongo.Collection
}

func NewMongoReportRepository(cfg *config.Config) ReportRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReportRepository{
		cfg:      cfg,
		students: db.Collection(StudentsCollection),
		bookings: db.Collection(BookingsCollection),
	}
}

func (r *mongoReportRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoReportRepository) StudentsPerGrade(ctx context.Context) ([]GradeCount, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$grade_id"},
			{Key: "students", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.students.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate students per grade: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []GradeCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode grade counts: %w", err)
	}
	return counts, nil
}

func (r *mongoReportRepository) BookingCountsByActivity(ctx context.Context) ([]ActivityCount, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$activity_id"},
			{Key: "booked", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "attended", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$attended", 1, 0}},
			}}}},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings per activity: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []ActivityCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode activity counts: %w", err)
	}
	return counts, nil
}

func (r *mongoReportRepository) BookingCountsByStudent(ctx context.Context) ([]StudentCount, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$student_id"},
			{Key: "bookings", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings per student: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []StudentCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode student counts: %w", err)
	}
	return counts, nil
}

func (r *mongoReportRepository) CountStudents(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.students.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}
