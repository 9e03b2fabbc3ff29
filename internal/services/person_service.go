package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100

	// cacheFillTimeout bounds a shared lookup that outlives its first caller
	cacheFillTimeout = 10 * time.Second
)

// CacheClient is the subset of the traced Redis client used for caching
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// PersonServiceConfig holds the settings of a PersonService
type PersonServiceConfig struct {
	CacheTTL    time.Duration
	PhoneRegion string
	// Location is the zone whose calendar day is used for ages
	Location *time.Location
}

// PersonService handles person registration
type PersonService struct {
	store  PersonStore
	guard  *CPFGuard
	cache  CacheClient
	audit  *utils.AuditWorker
	logger *logging.SafeLogger
	config PersonServiceConfig
	group  singleflight.Group
	now    func() time.Time

	// writes counts invalidations; a cache fill started before the last
	// write is discarded
	fillMu sync.RWMutex
	writes uint64
}

// NewPersonService creates a new person service. cache and audit may be nil.
func NewPersonService(store PersonStore, cache CacheClient, audit *utils.AuditWorker, logger *logging.SafeLogger, cfg PersonServiceConfig) *PersonService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "BR"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &PersonService{
		store:  store,
		guard:  NewCPFGuard(store, logger),
		cache:  cache,
		audit:  audit,
		logger: logger,
		config: cfg,
		now:    time.Now,
	}
}

// today returns the current time in the configured zone
func (s *PersonService) today() time.Time {
	return s.now().In(s.config.Location)
}

func personCacheKey(id string) string {
	return "person:" + id
}

// Create registers a new person under tenantID
func (s *PersonService) Create(ctx context.Context, tenantID string, req *models.PersonRequest) (*models.PersonResponse, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "create_person")
	defer span.End()

	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, models.NewValidationError("tenant_id", models.ErrInvalidTenantID)
	}

	person := &models.Person{TenantID: tenantID}
	if err := s.applyRequest(ctx, person, req, primitive.NilObjectID); err != nil {
		return nil, err
	}
	person.BeforeCreate()

	if err := s.store.Insert(ctx, person); err != nil {
		utils.RecordErrorInSpan(span, err)
		return nil, s.mapWriteError(ctx, err, person, primitive.NilObjectID)
	}

	s.logAudit(ctx, utils.AuditActionCreate, person, nil, person)
	s.logger.Info("person created",
		zap.String("person_id", person.ID.Hex()),
		zap.String("tenant_id", tenantID),
		zap.Bool("has_cpf", person.HasCPF()))

	return toPersonResponse(person, s.today()), nil
}

// Update replaces the mutable fields of an existing person
func (s *PersonService) Update(ctx context.Context, id string, req *models.PersonRequest) (*models.PersonResponse, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "update_person")
	defer span.End()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidPersonID
	}

	existing, err := s.store.Get(ctx, objectID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if err := s.applyRequest(ctx, &updated, req, objectID); err != nil {
		return nil, err
	}
	updated.BeforeUpdate()

	if err := s.store.Update(ctx, &updated); err != nil {
		if errors.Is(err, models.ErrPersonNotFound) {
			return nil, err
		}
		utils.RecordErrorInSpan(span, err, attribute.String("person_id", id))
		return nil, s.mapWriteError(ctx, err, &updated, objectID)
	}

	s.invalidate(ctx, id)
	s.logAudit(ctx, utils.AuditActionUpdate, &updated, existing, &updated)
	s.logger.Info("person updated",
		zap.String("person_id", id),
		zap.String("tenant_id", updated.TenantID))

	return toPersonResponse(&updated, s.today()), nil
}

// applyRequest validates req and copies its normalized fields into person.
// The CPF guard runs last so that no lookup happens for otherwise bad input.
func (s *PersonService) applyRequest(ctx context.Context, person *models.Person, req *models.PersonRequest, excludeID primitive.ObjectID) error {
	if err := req.Validate(); err != nil {
		return err
	}

	phone, err := utils.NormalizePhone(req.Phone, s.config.PhoneRegion)
	if err != nil {
		return models.NewValidationError("phone", models.ErrInvalidPhone)
	}

	canonical, err := s.guard.Check(ctx, req.CPF, excludeID)
	if err != nil {
		return err
	}

	person.Name = strings.TrimSpace(req.Name)
	person.Kind = req.Kind
	person.CPF = optionalString(canonical)
	person.BirthDate = req.BirthDate
	person.Phone = optionalString(phone)
	person.Email = optionalString(strings.TrimSpace(req.Email))
	return nil
}

// mapWriteError turns a duplicate key on the CPF index into a conflict
func (s *PersonService) mapWriteError(ctx context.Context, err error, person *models.Person, excludeID primitive.ObjectID) error {
	if !mongo.IsDuplicateKeyError(err) || !person.HasCPF() {
		return err
	}

	observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardBackstop).Inc()
	s.logger.Warn("CPF conflict caught by unique index",
		zap.String("cpf", observability.MaskCPF(*person.CPF)))

	conflict := &models.CPFConflictError{}
	owner, lookupErr := s.store.FindByCPF(ctx, *person.CPF, excludeID)
	if lookupErr != nil {
		s.logger.Warn("failed to look up CPF owner", zap.Error(lookupErr))
	} else if owner != nil {
		conflict.ExistingID = owner.ID.Hex()
		conflict.ExistingName = owner.Name
	}
	return conflict
}

// Get returns a person by ID, reading through the cache
func (s *PersonService) Get(ctx context.Context, id string) (*models.PersonResponse, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidPersonID
	}

	cacheKey := personCacheKey(id)
	if person := s.getCached(ctx, cacheKey); person != nil {
		return toPersonResponse(person, s.today()), nil
	}

	// Concurrent misses for the same person share one lookup, so it must
	// not fail when the caller that started it goes away
	result, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheFillTimeout)
		defer cancel()

		generation := s.writeGeneration()
		person, err := s.store.Get(fillCtx, objectID)
		if err != nil {
			return nil, err
		}
		s.fillCache(fillCtx, cacheKey, person, generation)
		return person, nil
	})
	if err != nil {
		return nil, err
	}

	return toPersonResponse(result.(*models.Person), s.today()), nil
}

func (s *PersonService) getCached(ctx context.Context, cacheKey string) *models.Person {
	if s.cache == nil {
		return nil
	}

	ctx, span := utils.TraceCacheGet(ctx, cacheKey)
	defer span.End()

	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read person cache", zap.String("key", cacheKey), zap.Error(err))
		}
		observability.CacheHits.WithLabelValues("get_person", "miss").Inc()
		return nil
	}

	var person models.Person
	if err := json.Unmarshal([]byte(cached), &person); err != nil {
		s.logger.Warn("discarding unreadable person cache entry", zap.String("key", cacheKey), zap.Error(err))
		observability.CacheHits.WithLabelValues("get_person", "miss").Inc()
		return nil
	}

	observability.CacheHits.WithLabelValues("get_person", "hit").Inc()
	return &person
}

func (s *PersonService) writeGeneration() uint64 {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()
	return s.writes
}

// fillCache stores person unless a write happened since generation was read
func (s *PersonService) fillCache(ctx context.Context, cacheKey string, person *models.Person, generation uint64) {
	s.fillMu.RLock()
	defer s.fillMu.RUnlock()

	if s.writes != generation {
		s.logger.Debug("skipping cache fill after concurrent write", zap.String("key", cacheKey))
		return
	}
	s.setCached(ctx, cacheKey, person)
}

func (s *PersonService) setCached(ctx context.Context, cacheKey string, person *models.Person) {
	if s.cache == nil {
		return
	}

	personJSON, err := json.Marshal(person)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, personJSON, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache person", zap.String("key", cacheKey), zap.Error(err))
	}
}

func (s *PersonService) invalidate(ctx context.Context, id string) {
	s.fillMu.Lock()
	s.writes++
	s.fillMu.Unlock()

	if s.cache == nil {
		return
	}

	cacheKey := personCacheKey(id)
	ctx, span := utils.TraceCacheInvalidation(ctx, cacheKey)
	defer span.End()

	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate person cache", zap.String("key", cacheKey), zap.Error(err))
	}
}

// List returns a page of a tenant's people, newest first
func (s *PersonService) List(ctx context.Context, tenantID string, page, perPage int) (*models.PersonListResponse, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, models.NewValidationError("tenant_id", models.ErrInvalidTenantID)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	people, total, err := s.store.List(ctx, tenantID, page, perPage)
	if err != nil {
		return nil, err
	}

	now := s.today()
	responses := make([]models.PersonResponse, 0, len(people))
	for i := range people {
		responses = append(responses, *toPersonResponse(&people[i], now))
	}

	return &models.PersonListResponse{
		People: responses,
		Pagination: models.PaginationInfo{
			Page:       page,
			PerPage:    perPage,
			Total:      int(total),
			TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
		},
	}, nil
}

// Delete removes a person
func (s *PersonService) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidPersonID
	}

	existing, err := s.store.Get(ctx, objectID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, objectID); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logAudit(ctx, utils.AuditActionDelete, existing, existing, nil)
	s.logger.Info("person deleted",
		zap.String("person_id", id),
		zap.String("tenant_id", existing.TenantID))
	return nil
}

func (s *PersonService) logAudit(ctx context.Context, action string, person *models.Person, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, action, utils.AuditResourcePerson, person.ID.Hex(), person.TenantID, auditValue(oldValue), auditValue(newValue)); err != nil {
		s.logger.Error("failed to log audit event",
			zap.String("action", action),
			zap.String("person_id", person.ID.Hex()),
			zap.Error(err))
	}
}

// auditValue keeps audit entries from holding a full CPF
func auditValue(value interface{}) interface{} {
	person, ok := value.(*models.Person)
	if !ok || person == nil {
		return nil
	}
	masked := *person
	if person.HasCPF() {
		cpf := observability.MaskCPF(*person.CPF)
		masked.CPF = &cpf
	}
	return masked
}

// InspectCPF reports the canonical and formatted forms of a raw CPF input
func InspectCPF(input string) models.CPFInspection {
	return models.CPFInspection{
		Input:     input,
		Canonical: utils.UnmaskCPF(input),
		Formatted: utils.FormatCPF(input),
		Valid:     utils.ValidateCPF(input),
	}
}

func toPersonResponse(person *models.Person, now time.Time) *models.PersonResponse {
	response := &models.PersonResponse{
		ID:        person.ID.Hex(),
		TenantID:  person.TenantID,
		Name:      person.Name,
		Kind:      person.Kind,
		BirthDate: person.BirthDate,
		CreatedAt: person.CreatedAt,
		UpdatedAt: person.UpdatedAt,
	}

	if person.HasCPF() {
		response.CPF = *person.CPF
		response.CPFFormatted = utils.FormatCPF(*person.CPF)
	}
	if person.BirthDate != nil {
		age := utils.CalculateAge(*person.BirthDate, now)
		response.Age = &age
	}
	if person.Phone != nil {
		response.Phone = *person.Phone
		response.WhatsAppLink = utils.WhatsAppLink(*person.Phone, "")
	}
	if person.Email != nil {
		response.Email = *person.Email
	}

	return response
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
