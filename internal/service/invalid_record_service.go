package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sia-validation-api/internal/models"
	appErrors "github.com/noah-isme/sia-validation-api/pkg/errors"
)

const (
	invalidRecordSummaryKey     = "invalid_records:summary"
	invalidRecordCachePattern   = "invalid_records:*"
	defaultSummaryErrorFieldCap = 10
)

type invalidRecordStore interface {
	Create(ctx context.Context, log *models.InvalidRecordLog) error
	List(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error)
	CountTotal(ctx context.Context) (int, error)
	CountByType(ctx context.Context) (map[models.RecordKind]int, error)
	TopErrorFields(ctx context.Context, limit int) ([]models.FieldErrorCount, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// InvalidRecordService maintains the append-only rejection ledger. Ledger
// writes are best effort: a failed write is logged and counted but never
// surfaces to the caller, so a broken ledger cannot block the primary flow.
type InvalidRecordService struct {
	store    invalidRecordStore
	cache    summaryCache
	metrics  *MetricsService
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewInvalidRecordService constructs the service. The cache may be nil, in
// which case summaries are always computed from the database.
func NewInvalidRecordService(store invalidRecordStore, cache summaryCache, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *InvalidRecordService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidRecordService{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// LogInvalidRecord appends a rejection entry carrying the verbatim attempted
// payload. It never returns an error; failures are logged and counted so the
// rejection response to the client is unaffected.
func (s *InvalidRecordService) LogInvalidRecord(ctx context.Context, kind models.RecordKind, payload json.RawMessage, errs []models.ValidationError, actor models.Actor, entityID string, metadata models.Metadata) {
	entry := &models.InvalidRecordLog{
		RecordType:       kind,
		RecordData:       payload,
		ValidationErrors: errs,
		RejectionReason:  RejectionReason(kind, errs),
		UserID:           actor.ID,
		UserEmail:        actor.Email,
		EntityID:         entityID,
		AttemptedAt:      s.now(),
		Metadata:         metadata,
	}
	if err := s.store.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to append rejection ledger entry",
			zap.String("record_type", string(kind)),
			zap.String("entity_id", entityID),
			zap.Error(err))
		s.metrics.RecordAuditWriteFailure("invalid_records")
		return
	}
	s.invalidateSummary(ctx)
}

// RejectionReason builds the canonical one-line reason stored with an entry.
func RejectionReason(kind models.RecordKind, errs []models.ValidationError) string {
	return fmt.Sprintf("%s record rejected with %d validation error(s)", kind.Label(), len(errs))
}

// FormatErrorDetails renders ledger findings as a bulleted block for
// operator-facing views.
func (s *InvalidRecordService) FormatErrorDetails(errs []models.ValidationError) string {
	if len(errs) == 0 {
		return "no validation errors recorded"
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, fmt.Sprintf("• %s: %s", e.Field, e.Message))
	}
	return strings.Join(lines, "\n")
}

// Query returns ledger entries matching the filter, newest first.
func (s *InvalidRecordService) Query(ctx context.Context, filter models.InvalidRecordFilter) ([]models.InvalidRecordLog, error) {
	if filter.RecordType != "" && !filter.RecordType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown record type %q", filter.RecordType))
	}
	logs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query rejection ledger")
	}
	return logs, nil
}

// Summary aggregates the ledger: totals, per-kind counts and the most common
// offending fields. Results are cached; every ledger write invalidates the
// cache so the summary never lags behind a new rejection.
func (s *InvalidRecordService) Summary(ctx context.Context) (*models.InvalidRecordSummary, error) {
	if s.cache != nil {
		var cached models.InvalidRecordSummary
		if err := s.cache.Get(ctx, invalidRecordSummaryKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	total, err := s.store.CountTotal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rejection ledger")
	}
	byType, err := s.store.CountByType(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate rejections by type")
	}
	topFields, err := s.store.TopErrorFields(ctx, defaultSummaryErrorFieldCap)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate error fields")
	}

	var findings int
	for _, f := range topFields {
		findings += f.Count
	}
	for i := range topFields {
		if findings > 0 {
			topFields[i].Percentage = float64(topFields[i].Count) / float64(findings) * 100
		}
	}

	summary := &models.InvalidRecordSummary{
		TotalInvalidRecords: total,
		ByType:              byType,
		MostCommonErrors:    topFields,
		GeneratedAt:         s.now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, invalidRecordSummaryKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache rejection ledger summary", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *InvalidRecordService) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, invalidRecordCachePattern); err != nil {
		s.logger.Warn("failed to invalidate rejection ledger summary cache", zap.Error(err))
	}
}
