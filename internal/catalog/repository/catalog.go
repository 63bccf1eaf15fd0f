package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "actibook/internal/catalog/errors"
	"actibook/pkg/config"
	"actibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	GradesCollection     = "Grades"
	ActivitiesCollection = "Activities"
)

// CatalogRepository holds the facts the booking engine reads but never
// writes: grades and the weekly activity slate. Mutations come only
// from the admin surface.
type CatalogRepository interface {
	InsertGrade(ctx context.Context, grade *model.Grade) error
	FindGradeByID(ctx context.Context, id string) (*model.Grade, error)
	ListGrades(ctx context.Context) ([]*model.Grade, error)

	InsertActivity(ctx context.Context, activity *model.Activity) error
	UpdateActivity(ctx context.Context, id string, activity *model.Activity) error
	FindActivityByID(ctx context.Context, id string) (*model.Activity, error)
	// ListActivities returns activities on the given day open to the
	// given grade, ordered by name.
	ListActivities(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error)
	ListAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, error)
	CountActivities(ctx context.Context) (int64, error)
}

type mongoCatalogRepository struct {
	cfg        *config.Config
	grades     *mongo.Collection
	activities *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:        cfg,
		grades:     db.Collection(GradesCollection),
		activities: db.Collection(ActivitiesCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCatalogRepository) InsertGrade(ctx context.Context, grade *model.Grade) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.grades.InsertOne(ctx, grade)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalogerrors.ErrDuplicateGrade
		}
		return fmt.Errorf("failed to insert grade: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		grade.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCatalogRepository) FindGradeByID(ctx context.Context, id string) (*model.Grade, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var grade model.Grade
	err = r.grades.FindOne(ctx, bson.M{"_id": objectID}).Decode(&grade)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrGradeNotFound
		}
		return nil, fmt.Errorf("failed to find grade: %w", err)
	}

	return &grade, nil
}

func (r *mongoCatalogRepository) ListGrades(ctx context.Context) ([]*model.Grade, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.grades.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	defer cursor.Close(ctx)

	var grades []*model.Grade
	if err = cursor.All(ctx, &grades); err != nil {
		return nil, fmt.Errorf("failed to decode grades: %w", err)
	}

	return grades, nil
}

func (r *mongoCatalogRepository) InsertActivity(ctx context.Context, activity *model.Activity) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.activities.InsertOne(ctx, activity)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalogerrors.ErrDuplicateActivity
		}
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		activity.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCatalogRepository) UpdateActivity(ctx context.Context, id string, activity *model.Activity) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":           activity.Name,
			"capacity":       activity.Capacity,
			"allowed_grades": activity.AllowedGrades,
			"instructor":     activity.Instructor,
			"venue":          activity.Venue,
			"time":           activity.TimeLabel,
		},
	}

	result, err := r.activities.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalogerrors.ErrDuplicateActivity
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.ErrActivityNotFound
	}
	return nil
}

func (r *mongoCatalogRepository) FindActivityByID(ctx context.Context, id string) (*model.Activity, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var activity model.Activity
	err = r.activities.FindOne(ctx, bson.M{"_id": objectID}).Decode(&activity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}

	return &activity, nil
}

func (r *mongoCatalogRepository) ListActivities(ctx context.Context, day model.Weekday, gradeID string) ([]*model.Activity, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"day":            day,
		"allowed_grades": gradeID,
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.activities.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*model.Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}

	return activities, nil
}

func (r *mongoCatalogRepository) CountActivities(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.activities.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

func (r *mongoCatalogRepository) ListAllActivities(ctx context.Context, limit int, offset int64) ([]*model.Activity, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: 1}, {Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.activities.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*model.Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}

	return activities, nil
}
