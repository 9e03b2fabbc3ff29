package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/config"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"github.com/prefeitura-rio/app-matriculas/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setupMongoStore(t *testing.T) (*tests.TestContainers, *MongoPersonStore) {
	containers := tests.SetupTestContainers(t)
	collection := containers.MongoDB.Collection(config.AppConfig.PersonCollection)
	return containers, NewMongoPersonStore(collection)
}

func newPerson(name, tenantID string, cpf *string) *models.Person {
	person := &models.Person{
		TenantID: tenantID,
		Name:     name,
		Kind:     models.PersonKindGuardian,
		CPF:      cpf,
	}
	person.BeforeCreate()
	return person
}

func TestMongoPersonStore(t *testing.T) {
	containers, store := setupMongoStore(t)
	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		ana := newPerson("Ana", "escola-1", strPtr("52998224725"))
		require.NoError(t, store.Insert(ctx, ana))
		require.False(t, ana.ID.IsZero())

		got, err := store.Get(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Name)
		require.NotNil(t, got.CPF)
		assert.Equal(t, "52998224725", *got.CPF)

		_, err = store.Get(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, models.ErrPersonNotFound)
	})

	t.Run("unique index rejects duplicate CPF", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		require.NoError(t, store.Insert(ctx, newPerson("Ana", "escola-1", strPtr("52998224725"))))
		err := store.Insert(ctx, newPerson("Beatriz", "escola-2", strPtr("52998224725")))
		require.Error(t, err)
		assert.True(t, mongo.IsDuplicateKeyError(err))
	})

	t.Run("blank CPFs never collide", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		for i := 0; i < 3; i++ {
			require.NoError(t, store.Insert(ctx, newPerson("Sem CPF", "escola-1", nil)))
		}

		count, err := containers.MongoDB.Collection(config.AppConfig.PersonCollection).
			CountDocuments(ctx, bson.M{"cpf": bson.M{"$exists": true}})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("find by CPF with exclusion", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		ana := newPerson("Ana", "escola-1", strPtr("52998224725"))
		require.NoError(t, store.Insert(ctx, ana))

		found, err := store.FindByCPF(ctx, "52998224725", primitive.NilObjectID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, ana.ID, found.ID)

		found, err = store.FindByCPF(ctx, "52998224725", ana.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = store.FindByCPF(ctx, "11144477735", primitive.NilObjectID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("update removes cleared CPF", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		ana := newPerson("Ana", "escola-1", strPtr("52998224725"))
		require.NoError(t, store.Insert(ctx, ana))

		ana.CPF = nil
		ana.BeforeUpdate()
		require.NoError(t, store.Update(ctx, ana))

		var raw bson.M
		err := containers.MongoDB.Collection(config.AppConfig.PersonCollection).
			FindOne(ctx, bson.M{"_id": ana.ID}).Decode(&raw)
		require.NoError(t, err)
		_, hasCPF := raw["cpf"]
		assert.False(t, hasCPF)

		missing := newPerson("Ninguém", "escola-1", nil)
		missing.ID = primitive.NewObjectID()
		assert.ErrorIs(t, store.Update(ctx, missing), models.ErrPersonNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		base := time.Now().Add(-time.Hour)
		for i, name := range []string{"Ana", "Bruno", "Carla"} {
			person := newPerson(name, "escola-1", nil)
			person.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, store.Insert(ctx, person))
		}
		require.NoError(t, store.Insert(ctx, newPerson("Outra", "escola-2", nil)))

		people, total, err := store.List(ctx, "escola-1", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, people, 2)
		assert.Equal(t, "Carla", people[0].Name)
		assert.Equal(t, "Bruno", people[1].Name)

		people, _, err = store.List(ctx, "escola-1", 2, 2)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "Ana", people[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		tests.CleanupDatabase(t, containers.MongoDB)

		ana := newPerson("Ana", "escola-1", nil)
		require.NoError(t, store.Insert(ctx, ana))
		require.NoError(t, store.Delete(ctx, ana.ID))
		assert.ErrorIs(t, store.Delete(ctx, ana.ID), models.ErrPersonNotFound)
	})
}

func TestPersonService_WithMongoAndRedis(t *testing.T) {
	containers, store := setupMongoStore(t)
	tests.CleanupDatabase(t, containers.MongoDB)
	ctx := context.Background()

	writer := utils.NewMongoAuditWriter(containers.MongoDB.Collection(config.AppConfig.AuditLogsCollection))
	worker := utils.NewAuditWorker(writer, 1, 10, nil)
	worker.Start()

	service := NewPersonService(store, containers.Redis, worker, logging.NewSafeLogger(zap.NewNop()), PersonServiceConfig{
		CacheTTL:    config.AppConfig.RedisTTL,
		PhoneRegion: config.AppConfig.DefaultPhoneRegion,
	})

	ana, err := service.Create(ctx, "escola-1", guardianRequest("Ana", "529.982.247-25"))
	require.NoError(t, err)

	_, err = service.Create(ctx, "escola-1", guardianRequest("Beatriz", "52998224725"))
	var conflict *models.CPFConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Ana", conflict.ExistingName)

	_, err = service.Update(ctx, ana.ID, guardianRequest("Ana Souza", "52998224725"))
	require.NoError(t, err)

	got, err := service.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Name)

	cached, err := containers.Redis.Get(ctx, personCacheKey(ana.ID)).Result()
	require.NoError(t, err)
	assert.Contains(t, cached, "Ana Souza")

	worker.Stop()

	count, err := containers.MongoDB.Collection(config.AppConfig.AuditLogsCollection).
		CountDocuments(ctx, bson.M{"resource_id": ana.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCPFNormalizer_WithMongo(t *testing.T) {
	containers, store := setupMongoStore(t)
	ctx := context.Background()
	tests.CleanupDatabase(t, containers.MongoDB)

	collection := containers.MongoDB.Collection(config.AppConfig.PersonCollection)
	masked := primitive.NewObjectID()
	blank := primitive.NewObjectID()
	_, err := collection.InsertMany(ctx, []interface{}{
		bson.M{"_id": masked, "tenant_id": "escola-1", "name": "Ana", "cpf": "529.982.247-25"},
		bson.M{"_id": blank, "tenant_id": "escola-1", "name": "Bruno", "cpf": ""},
	})
	require.NoError(t, err)

	report, err := NewCPFNormalizer(store, logging.NewSafeLogger(zap.NewNop())).Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Rewritten)
	assert.Equal(t, 1, report.Cleared)
	assert.True(t, report.Clean())

	found, err := store.FindByCPF(ctx, "52998224725", primitive.NilObjectID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, masked, found.ID)

	var raw bson.M
	require.NoError(t, collection.FindOne(ctx, bson.M{"_id": blank}).Decode(&raw))
	assert.NotContains(t, raw, "cpf")
}
