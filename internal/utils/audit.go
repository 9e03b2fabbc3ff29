package utils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID   string             `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action     string             `bson:"action" json:"action"`
	Resource   string             `bson:"resource" json:"resource"`
	ResourceID string             `bson:"resource_id" json:"resource_id"`
	OldValue   interface{}        `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue   interface{}        `bson:"new_value,omitempty" json:"new_value,omitempty"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	RequestID  string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// Audit constants
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"

	AuditResourcePerson = "person"
)

const (
	auditBatchSize     = 100
	auditFlushInterval = 100 * time.Millisecond
	auditWriteTimeout  = 5 * time.Second
)

// AuditContext carries request information attached to audit entries
type AuditContext struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type auditContextKey struct{}

// WithAuditContext stores the audit context in ctx
func WithAuditContext(ctx context.Context, auditCtx AuditContext) context.Context {
	return context.WithValue(ctx, auditContextKey{}, auditCtx)
}

// AuditContextFrom returns the audit context stored in ctx, if any
func AuditContextFrom(ctx context.Context) AuditContext {
	auditCtx, _ := ctx.Value(auditContextKey{}).(AuditContext)
	return auditCtx
}

// GetAuditContextFromGin extracts audit context from Gin context
func GetAuditContextFromGin(c *gin.Context) AuditContext {
	return AuditContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("RequestID"),
	}
}

// AuditWriter persists batches of audit entries
type AuditWriter interface {
	WriteAuditLogs(ctx context.Context, logs []AuditLog) error
}

// MongoAuditWriter writes audit entries to a MongoDB collection
type MongoAuditWriter struct {
	collection *mongo.Collection
}

// NewMongoAuditWriter creates a writer for the given collection
func NewMongoAuditWriter(collection *mongo.Collection) *MongoAuditWriter {
	return &MongoAuditWriter{collection: collection}
}

// WriteAuditLogs bulk inserts the entries unordered
func (w *MongoAuditWriter) WriteAuditLogs(ctx context.Context, logs []AuditLog) error {
	operations := make([]mongo.WriteModel, 0, len(logs))
	for _, log := range logs {
		operations = append(operations, mongo.NewInsertOneModel().SetDocument(log))
	}

	if _, err := w.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert audit logs: %w", err)
	}
	return nil
}

// AuditWorker manages asynchronous audit logging
type AuditWorker struct {
	auditChan chan AuditLog
	workers   int
	writer    AuditWriter
	logger    *logging.SafeLogger
	wg        sync.WaitGroup
	stopOnce  sync.Once

	// mu guards sends on auditChan against Stop closing it
	mu      sync.RWMutex
	stopped bool
}

// NewAuditWorker creates an audit worker; call Start to begin draining
func NewAuditWorker(writer AuditWriter, workers, bufferSize int, logger *logging.SafeLogger) *AuditWorker {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &AuditWorker{
		auditChan: make(chan AuditLog, bufferSize),
		workers:   workers,
		writer:    writer,
		logger:    logger,
	}
}

// Start starts the audit worker pool
func (aw *AuditWorker) Start() {
	aw.wg.Add(aw.workers)
	for i := 0; i < aw.workers; i++ {
		go func() {
			defer aw.wg.Done()
			aw.processAuditLogs()
		}()
	}

	aw.logger.Info("audit worker started",
		zap.Int("workers", aw.workers),
		zap.Int("buffer_size", cap(aw.auditChan)))
}

// processAuditLogs drains the channel in batches until it is closed
func (aw *AuditWorker) processAuditLogs() {
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	var batch []AuditLog
	for {
		select {
		case auditLog, ok := <-aw.auditChan:
			if !ok {
				aw.flushBatch(batch)
				return
			}
			batch = append(batch, auditLog)
			if len(batch) >= auditBatchSize {
				aw.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			aw.flushBatch(batch)
			batch = batch[:0]
		}
	}
}

func (aw *AuditWorker) flushBatch(batch []AuditLog) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := aw.writer.WriteAuditLogs(ctx, batch); err != nil {
		aw.logger.Error("failed to insert audit log batch",
			zap.Error(err),
			zap.Int("batch_size", len(batch)))
		return
	}

	aw.logger.Debug("audit log batch inserted", zap.Int("batch_size", len(batch)))
}

// Log queues an audit entry without blocking. When the buffer is full the
// entry is written synchronously instead.
func (aw *AuditWorker) Log(ctx context.Context, action, resource, resourceID, tenantID string, oldValue, newValue interface{}) error {
	if aw == nil {
		return nil
	}

	auditCtx := AuditContextFrom(ctx)
	auditLog := AuditLog{
		TenantID:   tenantID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  auditCtx.IPAddress,
		UserAgent:  auditCtx.UserAgent,
		RequestID:  auditCtx.RequestID,
		Timestamp:  time.Now(),
	}

	queued, stopped := aw.enqueue(auditLog)
	if queued {
		return nil
	}
	if stopped {
		aw.logger.Warn("audit worker stopped, falling back to synchronous logging",
			zap.String("action", action),
			zap.String("resource_id", resourceID))
	} else {
		aw.logger.Warn("audit channel full, falling back to synchronous logging",
			zap.String("action", action),
			zap.String("resource_id", resourceID))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()
	return aw.writer.WriteAuditLogs(ctx, []AuditLog{auditLog})
}

func (aw *AuditWorker) enqueue(auditLog AuditLog) (queued, stopped bool) {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	if aw.stopped {
		return false, true
	}
	select {
	case aw.auditChan <- auditLog:
		return true, false
	default:
		return false, false
	}
}

// Stop flushes pending entries and waits for the workers to exit
func (aw *AuditWorker) Stop() {
	if aw == nil {
		return
	}
	aw.stopOnce.Do(func() {
		aw.mu.Lock()
		aw.stopped = true
		close(aw.auditChan)
		aw.mu.Unlock()
		aw.wg.Wait()
	})
}
