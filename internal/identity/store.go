package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unilab/pkg/config"
	"unilab/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "Users"
	StudentsCollection = "Students"
)

// Store is the read-only view of accounts and student profiles that the
// notification fan-out resolves recipients against.
type Store interface {
	FindUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	// FindUserByProfileID returns nil, nil when no account owns the profile.
	FindUserByProfileID(ctx context.Context, profileID string) (*model.User, error)
	FindProfilesByBatch(ctx context.Context, batch string) ([]model.StudentProfile, error)
}

type mongoStore struct {
	users       *mongo.Collection
	students    *mongo.Collection
	readTimeout time.Duration
}

func NewMongoStore(cfg *config.Config) Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		users:       db.Collection(UsersCollection),
		students:    db.Collection(StudentsCollection),
		readTimeout: cfg.ReadTimeout,
	}
}

var userProjection = bson.M{"_id": 1, "email": 1, "role": 1, "profile": 1, "roleModel": 1}

func (s *mongoStore) FindUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	opts := options.Find().SetProjection(userProjection)
	cursor, err := s.users.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by role: %w", err)
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// FindUserByProfileID matches the profile reference whether it was stored as
// an ObjectID or as its hex string.
func (s *mongoStore) FindUserByProfileID(ctx context.Context, profileID string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	candidates := bson.A{profileID}
	if oid, err := primitive.ObjectIDFromHex(profileID); err == nil {
		candidates = append(candidates, oid)
	}

	var user model.User
	err := s.users.FindOne(ctx, bson.M{"profile": bson.M{"$in": candidates}},
		options.FindOne().SetProjection(userProjection)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by profile: %w", err)
	}
	return &user, nil
}

func (s *mongoStore) FindProfilesByBatch(ctx context.Context, batch string) ([]model.StudentProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	cursor, err := s.students.Find(ctx, bson.M{"batch": batch})
	if err != nil {
		return nil, fmt.Errorf("failed to find students by batch: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []model.StudentProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode students: %w", err)
	}
	return profiles, nil
}
