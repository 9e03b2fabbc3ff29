package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/prefeitura-rio/app-matriculas/internal/redisclient"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testDatabase = "matriculas_test"

// TestContainers holds references to test containers
type TestContainers struct {
	MongoContainer *mongodb.MongoDBContainer
	RedisContainer *redis.RedisContainer
	MongoDB        *mongo.Database
	Redis          *redisclient.Client
}

// SetupTestContainers starts MongoDB and Redis containers, points the global
// configuration at them and creates the indexes. The test is skipped in
// short mode or when no container runtime is available. Containers are
// terminated when the test finishes.
func SetupTestContainers(t *testing.T) *TestContainers {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container tests in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7.0")
	if err != nil {
		t.Skipf("Skipping container tests: MongoDB unavailable: %v", err)
	}
	t.Cleanup(func() { mongoContainer.Terminate(context.Background()) })

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("Skipping container tests: Redis unavailable: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(context.Background()) })

	mongoURI, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	redisURI, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { mongoClient.Disconnect(context.Background()) })
	require.NoError(t, mongoClient.Ping(ctx, nil), "Failed to ping MongoDB")

	redisOpts, err := goredis.ParseURL(redisURI)
	require.NoError(t, err, "Failed to parse Redis connection string")
	redisClient := redisclient.NewClient(goredis.NewClient(redisOpts))
	require.NoError(t, redisClient.Ping(ctx).Err(), "Failed to ping Redis")

	database := mongoClient.Database(testDatabase)

	config.AppConfig = &config.Config{
		MongoURI:            mongoURI,
		MongoDatabase:       testDatabase,
		RedisURI:            redisOpts.Addr,
		RedisTTL:            time.Minute,
		PersonCollection:    "people",
		AuditLogsCollection: "audit_logs",
		AuditLogsEnabled:    true,
		AuditWorkerCount:    1,
		AuditBufferSize:     100,
		DefaultPhoneRegion:  "BR",
	}
	config.MongoDB = database
	config.Redis = redisClient

	require.NoError(t, config.EnsureIndexes(ctx, database), "Failed to create indexes")

	return &TestContainers{
		MongoContainer: mongoContainer,
		RedisContainer: redisContainer,
		MongoDB:        database,
		Redis:          redisClient,
	}
}

// CleanupDatabase empties all collections in the test database, keeping indexes
func CleanupDatabase(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	require.NoError(t, err, "Failed to list collections")

	for _, collection := range collections {
		_, err := db.Collection(collection).DeleteMany(ctx, bson.M{})
		require.NoError(t, err, fmt.Sprintf("Failed to clean collection %s", collection))
	}
}
