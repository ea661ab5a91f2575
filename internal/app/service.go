// Package service provides the core business service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/drivefit/riskd/internal/adapters/alert"
	"github.com/drivefit/riskd/internal/adapters/repository"
	"github.com/drivefit/riskd/internal/domain/model"
	"github.com/drivefit/riskd/internal/domain/risk"
	"github.com/drivefit/riskd/pkg/logger"
	"github.com/drivefit/riskd/pkg/metrics"
)

// Default query window: the driver_id filter only sees this many newest
// records, a documented trade-off carried over from the original read path.
const defaultQueryWindow = 10

const (
	alertSubject       = "Don't Drive: High Risk Detected"
	alertMessageFormat = "High risk alert for user %s\nRisk Level: HIGH\nTimestamp: %s"
)

// Service composes the classifier, record store and alert publisher behind
// the two operations the HTTP API needs. Each call is an independent,
// synchronous unit of work; the service holds no per-request state.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	classifier risk.Classifier
	publisher  alert.Publisher

	queryWindow int
	started     bool

	// Lifetime counters for /stats.
	ingested      atomic.Int64
	alertsSent    atomic.Int64
	writesDropped atomic.Int64
	queriesFailed atomic.Int64

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store backend.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifier sets the risk classifier.
func WithClassifier(c risk.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithPublisher sets the alert publisher.
func WithPublisher(p alert.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithQueryWindow sets how many newest records a latest-record query fetches
// before the optional driver filter is applied.
func WithQueryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queryWindow = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queryWindow: defaultQueryWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start fills in defaults for unset dependencies and marks the service
// ready. Safe to call once at process startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.log.Info(ctx, "using in-memory record store")
	}
	if s.classifier == nil {
		s.classifier = risk.NewRuleClassifier()
		s.log.Info(ctx, "using rule classifier")
	}
	if s.publisher == nil {
		s.publisher = alert.NewLogPublisher(s.log)
	}

	s.started = true
	s.log.Info(ctx, "risk service started",
		logger.Int("queryWindow", s.queryWindow),
	)
	return nil
}

// Stop releases backend resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	} else if closer, ok := s.store.(interface{ Close() }); ok {
		closer.Close()
	}

	s.started = false
	s.log.Info(context.Background(), "risk service stopped")
}

// Ingest classifies the submission, persists a new record, and publishes an
// alert iff the resulting risk is high. It never fails: classification
// failure degrades to the error label, and store or publish failures are
// logged and counted but do not fail the request.
func (s *Service) Ingest(ctx context.Context, sub model.Submission) model.Record {
	s.ingested.Add(1)
	metrics.RecordSampleIngested()

	for metric, r := range sub.Health {
		if r.Malformed {
			metrics.RecordMalformedReading()
			s.log.Warn(ctx, "malformed health entry",
				logger.String("metric", metric),
				logger.String("uid", sub.UserID),
			)
		}
	}

	start := time.Now()
	label := s.classifier.Classify(ctx, sub.Health)
	metrics.RecordClassificationLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordClassification(label.String())
	if label == model.LabelError {
		metrics.RecordClassifierFailure()
	}

	rec := model.Record{
		RecordID:  uuid.NewString(),
		UserID:    sub.UserID,
		Timestamp: sub.Timestamp,
		DriverID:  sub.DriverID,
		Risk:      label,
		Health:    sub.Health,
	}
	if rec.DriverID == "" {
		rec.DriverID = "unknown"
	}

	if err := s.store.Put(ctx, rec); err != nil {
		// Best-effort persistence: acknowledge the ingest anyway.
		s.writesDropped.Add(1)
		metrics.RecordStoreWriteFailure()
		s.log.Error(ctx, "record store write failed",
			logger.String("uid", rec.UserID),
			logger.String("ts", rec.Timestamp),
			logger.Error(err),
		)
	} else {
		metrics.RecordStoreWrite()
		s.log.Debug(ctx, "record stored",
			logger.String("uid", rec.UserID),
			logger.String("risk", label.String()),
		)
	}

	if label == model.LabelHigh {
		s.publishAlert(ctx, rec)
	}

	return rec
}

// publishAlert attempts exactly one publish; failures are swallowed.
func (s *Service) publishAlert(ctx context.Context, rec model.Record) {
	message := fmt.Sprintf(alertMessageFormat, rec.UserID, rec.Timestamp)
	if err := s.publisher.Publish(ctx, alertSubject, message); err != nil {
		metrics.RecordAlertPublishFailure()
		s.log.Error(ctx, "alert publish failed",
			logger.String("uid", rec.UserID),
			logger.Error(err),
		)
		return
	}
	s.alertsSent.Add(1)
	metrics.RecordAlertPublished()
	s.log.Info(ctx, "high risk alert published",
		logger.String("uid", rec.UserID),
		logger.String("ts", rec.Timestamp),
	)
}

// Latest returns the newest record for userID, optionally restricted to an
// exact driverID match. The filter only applies within the query window of
// newest records. Returns ErrNoRecords when nothing matches and ErrStoreQuery
// when the backend fails.
func (s *Service) Latest(ctx context.Context, userID, driverID string) (model.Record, error) {
	metrics.RecordStoreQuery()

	start := time.Now()
	records, err := s.store.Recent(ctx, userID, s.queryWindow)
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.queriesFailed.Add(1)
		metrics.RecordStoreQueryFailure()
		s.log.Error(ctx, "record store query failed",
			logger.String("uid", userID),
			logger.Error(err),
		)
		return model.Record{}, fmt.Errorf("%w: %w", ErrStoreQuery, err)
	}

	for _, rec := range records {
		if driverID != "" && rec.DriverID != driverID {
			continue
		}
		return rec, nil
	}
	return model.Record{}, ErrNoRecords
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"queryWindow":   s.queryWindow,
		"ingested":      s.ingested.Load(),
		"alertsSent":    s.alertsSent.Load(),
		"writesDropped": s.writesDropped.Load(),
		"queriesFailed": s.queriesFailed.Load(),
	}

	if s.started {
		if counter, ok := s.store.(interface{ Count(context.Context) int }); ok {
			stats["storedRecords"] = counter.Count(context.Background())
		}
	}

	return stats
}
