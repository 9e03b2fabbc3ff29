package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// PersonCPFIndexName is the unique index backing CPF uniqueness in storage
const PersonCPFIndexName = "cpf_unique"

// ErrUniqueIndexConflict is returned when a unique index cannot be built
// because the collection already holds repeated values.
var ErrUniqueIndexConflict = errors.New("stored values conflict with unique index")

var (
	// MongoDB client
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client
)

// InitMongoDB initializes the MongoDB connection
func InitMongoDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logging.Logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logging.Logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := EnsureIndexes(context.Background(), MongoDB); err != nil {
		logging.Logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
}

// InitRedis initializes the Redis connection
func InitRedis() {
	var target string
	if AppConfig.RedisClusterEnabled {
		clusterClient := redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        AppConfig.RedisClusterAddrs,
			Password:     AppConfig.RedisPassword,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 5,
		})
		Redis = redisclient.NewClusterClient(clusterClient)
		target = strings.Join(AppConfig.RedisClusterAddrs, ",")
	} else {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         AppConfig.RedisURI,
			Password:     AppConfig.RedisPassword,
			DB:           AppConfig.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 5,
		})
		Redis = redisclient.NewClient(redisClient)
		target = AppConfig.RedisURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		logging.Logger.Error("failed to connect to Redis",
			zap.String("uri", target),
			zap.Bool("cluster", AppConfig.RedisClusterEnabled),
			zap.Error(err))
		return
	}

	logging.Logger.Info("connected to Redis",
		zap.String("uri", target),
		zap.Bool("cluster", AppConfig.RedisClusterEnabled))
}

// maskMongoURI masks the credentials in a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	return "mongodb://****:****@" + uri[at+1:]
}

// EnsureIndexes creates the indexes the service relies on if they don't exist
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	logger := logging.Logger.Unwrap().Named("database")
	logger.Info("ensuring required indexes exist")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := ensureCollectionIndexes(ctx, logger, db.Collection(AppConfig.PersonCollection), personIndexes()); err != nil {
		return err
	}
	if err := ensureCollectionIndexes(ctx, logger, db.Collection(AppConfig.AuditLogsCollection), auditLogsIndexes()); err != nil {
		return err
	}

	logger.Info("all required indexes verified")
	return nil
}

// personIndexes returns the indexes of the people collection.
// The CPF index only covers documents where cpf is a string, so records
// without a CPF never collide with each other.
func personIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "cpf", Value: 1}},
			Options: options.Index().
				SetName(PersonCPFIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"cpf": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().
				SetName("tenant_id_1_created_at_-1"),
		},
	}
}

func auditLogsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}},
			Options: options.Index().
				SetName("resource_1_resource_id_1"),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().
				SetName("timestamp_ttl").
				SetExpireAfterSeconds(365 * 24 * 60 * 60), // 1 year
		},
	}
}

// ensureCollectionIndexes creates the given indexes that are missing by name
func ensureCollectionIndexes(ctx context.Context, logger *zap.Logger, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		logger.Error("failed to list indexes",
			zap.String("collection", collection.Name()),
			zap.Error(err))
		return err
	}
	defer cursor.Close(ctx)

	existing := make(map[string]bool)
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok {
			existing[name] = true
		}
	}

	created := 0
	for _, indexModel := range indexes {
		name := *indexModel.Options.Name
		if existing[name] {
			continue
		}
		if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			if mongo.IsDuplicateKeyError(err) && isUniqueIndex(indexModel) {
				logger.Error("unique index not created: collection holds repeated values, run cmd/normalize",
					zap.String("collection", collection.Name()),
					zap.String("index", name),
					zap.Error(err))
				return fmt.Errorf("%w: %s.%s: %v", ErrUniqueIndexConflict, collection.Name(), name, err)
			}
			// Another instance may have created it concurrently
			if mongo.IsDuplicateKeyError(err) {
				logger.Info("index already exists (created by another instance)",
					zap.String("collection", collection.Name()),
					zap.String("index", name))
				continue
			}
			logger.Error("failed to create index",
				zap.String("collection", collection.Name()),
				zap.String("index", name),
				zap.Error(err))
			return err
		}
		created++
	}

	if created > 0 {
		logger.Info("created collection indexes",
			zap.String("collection", collection.Name()),
			zap.Int("count", created))
	} else {
		logger.Debug("collection indexes already exist",
			zap.String("collection", collection.Name()))
	}

	return nil
}

func isUniqueIndex(index mongo.IndexModel) bool {
	return index.Options != nil && index.Options.Unique != nil && *index.Options.Unique
}
