package lock

import (
	"context"
	"fmt"
	"time"

	apperrors "unilab/pkg/errors"
	"unilab/pkg/logger"
	"unilab/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Aggregate_locks"

// Locker serialises writers of a single aggregate. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Key builds the lock id for an aggregate, e.g. "lab:<id>".
func Key(kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

type mongoLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	log        *logger.Logger
}

func NewMongoLocker(db *mongo.Database, ttl time.Duration, log *logger.Logger) Locker {
	return &mongoLocker{
		collection: db.Collection(CollectionName),
		ttl:        ttl,
		log:        log,
	}
}

// Acquire inserts the lock document. A duplicate key means another request
// holds the aggregate; stale locks are reaped by the TTL index on expires_at.
func (l *mongoLocker) Acquire(ctx context.Context, key string) (func(), error) {
	now := time.Now().UTC()
	lock := &model.AggregateLock{
		ID:        key,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	if _, err := l.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("This resource is being modified by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire lock", err)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := l.collection.DeleteOne(releaseCtx, bson.M{"_id": lock.ID, "owner": lock.Owner}); err != nil {
			l.log.Warn("Failed to release lock", "lock_id", lock.ID, "error", err)
		}
	}, nil
}

// NopLocker grants every acquisition. Used by tests and single-writer tools.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
