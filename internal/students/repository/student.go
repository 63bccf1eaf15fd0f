package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	studentserrors "actibook/internal/students/errors"
	"actibook/pkg/config"
	"actibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Students"
)

type StudentRepository interface {
	Insert(ctx context.Context, profile *model.StudentProfile) error
	FindByID(ctx context.Context, id string) (*model.StudentProfile, error)
	FindByAccount(ctx context.Context, accountID string) (*model.StudentProfile, error)
}

type mongoStudentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStudentRepository(cfg *config.Config) StudentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStudentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoStudentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoStudentRepository) Insert(ctx context.Context, profile *model.StudentProfile) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Unique account_id index: one profile per account.
			return studentserrors.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to insert student profile: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		profile.ID = oid.Hex()
	}
	return nil
}

func (r *mongoStudentRepository) FindByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", studentserrors.ErrInvalidID, id)
	}

	var profile model.StudentProfile
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, studentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student profile: %w", err)
	}

	return &profile, nil
}

func (r *mongoStudentRepository) FindByAccount(ctx context.Context, accountID string) (*model.StudentProfile, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var profile model.StudentProfile
	err := r.collection.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, studentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find student profile by account: %w", err)
	}

	return &profile, nil
}
