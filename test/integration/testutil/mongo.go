//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	equipmentrepo "unilab/internal/equipment/repository"
	"unilab/internal/identity"
	labrepo "unilab/internal/labs/repository"
	notificationrepo "unilab/internal/notifications/repository"
	"unilab/pkg/lock"
	"unilab/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "unilab"
	ConnectionTimeout   = 10 * time.Second
)

// domainCollections are emptied between tests. Collections and their
// validators and indexes are left in place.
var domainCollections = []string{
	labrepo.CollectionName,
	equipmentrepo.CollectionName,
	notificationrepo.CollectionName,
	lock.CollectionName,
	identity.UsersCollection,
	identity.StudentsCollection,
}

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	for _, name := range domainCollections {
		m.CleanCollection(t, name)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(collectionName).DeleteMany(ctx, bson.M{}); err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// SeedUser inserts an account so notification fan-out can resolve it.
func (m *MongoHelper) SeedUser(t *testing.T, user model.User) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(identity.UsersCollection).InsertOne(ctx, user); err != nil {
		t.Fatalf("failed to seed user %s: %v", user.ID, err)
	}
}
