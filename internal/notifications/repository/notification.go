package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	notificationserrors "unilab/internal/notifications/errors"
	"unilab/pkg/config"
	"unilab/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Notifications"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error)
	MarkSeen(ctx context.Context, id string, userID string) error
}

type mongoNotificationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoNotificationRepository(cfg *config.Config) NotificationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNotificationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoNotificationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

// userRef matches a recipient stored either as a hex string or as an ObjectID.
func userRef(userID string) bson.M {
	candidates := bson.A{userID}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		candidates = append(candidates, oid)
	}
	return bson.M{"$in": candidates}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if notification.Date.IsZero() {
		notification.Date = time.Now().UTC().Truncate(time.Millisecond)
	}
	result, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		notification.ID = oid.Hex()
	}
	return nil
}

func (r *mongoNotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", notificationserrors.ErrInvalidID, id)
	}

	var notification model.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&notification); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notificationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	return &notification, nil
}

func (r *mongoNotificationRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Notification, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"to.user": userRef(userID)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []*model.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

// MarkSeen flips the seen flag of the matching recipient entry only.
func (r *mongoNotificationRepository) MarkSeen(ctx context.Context, id string, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", notificationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "to.user": userRef(userID)}
	update := bson.M{"$set": bson.M{"to.$.seen": true}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification as seen: %w", err)
	}
	if result.MatchedCount == 0 {
		return notificationserrors.ErrRecipientNotFound
	}

	return nil
}
