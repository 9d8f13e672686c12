package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	equipmentrepo "unilab/internal/equipment/repository"
	"unilab/internal/identity"
	labrepo "unilab/internal/labs/repository"
	"unilab/internal/migrations/mongo/validators"
	notificationrepo "unilab/internal/notifications/repository"
	"unilab/pkg/lock"
	"unilab/pkg/logger"
)

var (
	LabsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "lab_name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "allocated_TO", Value: 1}}},
		{Keys: bson.D{{Key: "bookings.date", Value: 1}}},
	}

	EquipmentIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_num", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "borrowings.borrowed_by", Value: 1}}},
	}

	NotificationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "to.user", Value: 1}, {Key: "date", Value: -1}}},
	}

	// Expired locks are reaped by Mongo once expires_at has passed.
	LocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}

	UsersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "profile", Value: 1}}},
	}

	StudentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "batch", Value: 1}}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M // nil leaves the collection schema alone
}

// Collections lists everything the migration touches. The identity
// collections are owned elsewhere, so only their lookup indexes are ensured.
func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		labrepo.CollectionName: {
			Indexes:   LabsIndexes,
			Validator: validators.LabValidator,
		},
		equipmentrepo.CollectionName: {
			Indexes:   EquipmentIndexes,
			Validator: validators.EquipmentValidator,
		},
		notificationrepo.CollectionName: {
			Indexes:   NotificationsIndexes,
			Validator: validators.NotificationValidator,
		},
		lock.CollectionName: {
			Indexes: LocksIndexes,
		},
		identity.UsersCollection: {
			Indexes: UsersIndexes,
		},
		identity.StudentsCollection: {
			Indexes: StudentsIndexes,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
