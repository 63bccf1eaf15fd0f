package repository

import (
	"context"
	"time"

	"actibook/pkg/config"
	"actibook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeatLockRepository provides operations for advisory seat locks.
type SeatLockRepository interface {
	Create(ctx context.Context, lock *model.SeatLock) (*model.SeatLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoSeatLockRepository struct {
	collection *mongo.Collection
}

func NewSeatLockRepository(cfg *config.Config) SeatLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeatLockRepository{
		collection: db.Collection("Seat_locks"),
	}
}

// Returns a duplicate key error if the lock is already held.
func (r *mongoSeatLockRepository) Create(ctx context.Context, lock *model.SeatLock) (*model.SeatLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoSeatLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
