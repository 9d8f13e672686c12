package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	equipmenterrors "unilab/internal/equipment/errors"
	"unilab/pkg/config"
	"unilab/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Equipment"
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	FindByID(ctx context.Context, id string) (*model.Equipment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, error)
	Count(ctx context.Context) (int64, error)
	// Save is a compare-and-swap on version covering every mutable field,
	// borrowings included.
	Save(ctx context.Context, equipment *model.Equipment) error
	Delete(ctx context.Context, id string) error
}

type mongoEquipmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEquipmentRepository(cfg *config.Config) EquipmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEquipmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEquipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	equipment.CreatedAt = now
	equipment.UpdatedAt = now
	equipment.Version = 0
	if equipment.Borrowings == nil {
		equipment.Borrowings = []model.Borrowing{}
	}

	result, err := r.collection.InsertOne(ctx, equipment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", equipmenterrors.ErrDuplicate, equipment.ItemNum)
		}
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		equipment.ID = oid.Hex()
	}

	return nil
}

func (r *mongoEquipmentRepository) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	var equipment model.Equipment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&equipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", equipmenterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}
	return &equipment, nil
}

func (r *mongoEquipmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "item_num", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.Equipment{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}

	return items, nil
}

func (r *mongoEquipmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}
	return count, nil
}

func (r *mongoEquipmentRepository) Save(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(equipment.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, equipment.ID)
	}

	borrowings := equipment.Borrowings
	if borrowings == nil {
		borrowings = []model.Borrowing{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": objectID, "version": equipment.Version}
	update := bson.M{
		"$set": bson.M{
			"item_num":   equipment.ItemNum,
			"name":       equipment.Name,
			"quantity":   equipment.Quantity,
			"img_url":    equipment.ImgURL,
			"borrowings": borrowings,
			"updated_at": now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", equipmenterrors.ErrDuplicate, equipment.ItemNum)
		}
		return fmt.Errorf("failed to save equipment: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to save equipment: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", equipmenterrors.ErrNotFound, equipment.ID)
		}
		return fmt.Errorf("%w: %s (version %d)", equipmenterrors.ErrVersionConflict, equipment.ID, equipment.Version)
	}

	equipment.Version++
	equipment.Borrowings = borrowings
	equipment.UpdatedAt = now
	return nil
}

func (r *mongoEquipmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrNotFound, id)
	}

	return nil
}
