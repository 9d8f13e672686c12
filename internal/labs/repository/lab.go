package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	labserrors "unilab/internal/labs/errors"
	"unilab/pkg/config"
	"unilab/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Labs"
)

type LabRepository interface {
	Create(ctx context.Context, lab *model.Lab) error
	FindByID(ctx context.Context, id string) (*model.Lab, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, error)
	Count(ctx context.Context) (int64, error)
	// Save writes the mutable fields, bookings included, if the stored version
	// still equals lab.Version, and bumps the version on success.
	Save(ctx context.Context, lab *model.Lab) error
	Delete(ctx context.Context, id string) error
}

type mongoLabRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLabRepository(cfg *config.Config) LabRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLabRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout keeps the caller's deadline when it is the shorter one.
func (r *mongoLabRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLabRepository) Create(ctx context.Context, lab *model.Lab) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	lab.CreatedAt = now
	lab.UpdatedAt = now
	lab.Version = 0
	if lab.Bookings == nil {
		lab.Bookings = []model.Booking{}
	}

	result, err := r.collection.InsertOne(ctx, lab)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", labserrors.ErrDuplicate, lab.Name)
		}
		return fmt.Errorf("failed to create lab: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lab.ID = oid.Hex()
	}

	return nil
}

func (r *mongoLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", labserrors.ErrInvalidID, id)
	}

	var lab model.Lab
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lab)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", labserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find lab: %w", err)
	}
	return &lab, nil
}

func (r *mongoLabRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lab, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "lab_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query labs: %w", err)
	}
	defer cursor.Close(ctx)

	labs := []*model.Lab{}
	if err = cursor.All(ctx, &labs); err != nil {
		return nil, fmt.Errorf("failed to decode labs: %w", err)
	}

	return labs, nil
}

func (r *mongoLabRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count labs: %w", err)
	}
	return count, nil
}

func (r *mongoLabRepository) Save(ctx context.Context, lab *model.Lab) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(lab.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", labserrors.ErrInvalidID, lab.ID)
	}

	bookings := lab.Bookings
	if bookings == nil {
		bookings = []model.Booking{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": objectID, "version": lab.Version}
	update := bson.M{
		"$set": bson.M{
			"lab_name":     lab.Name,
			"lab_type":     lab.Type,
			"max_capacity": lab.MaxCapacity,
			"allocated_TO": lab.AllocatedTO,
			"bookings":     bookings,
			"updated_at":   now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", labserrors.ErrDuplicate, lab.Name)
		}
		return fmt.Errorf("failed to save lab: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to save lab: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", labserrors.ErrNotFound, lab.ID)
		}
		return fmt.Errorf("%w: %s (version %d)", labserrors.ErrVersionConflict, lab.ID, lab.Version)
	}

	lab.Version++
	lab.Bookings = bookings
	lab.UpdatedAt = now
	return nil
}

func (r *mongoLabRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", labserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete lab: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", labserrors.ErrNotFound, id)
	}

	return nil
}
