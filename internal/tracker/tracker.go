// Package tracker is the operation layer of the finance tracker. Every
// mutation runs as one atomic store update: the rules in ledger are applied
// to a copy of the user's data, and the copy is kept only on success.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/metrics"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

const instrumentationName = "gitlab.com/yelinaung/finance-tracker/internal/tracker"

var tracer = otel.Tracer(instrumentationName)

var (
	// ErrMissingField is returned when a required input is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidInput is returned for out-of-range or unknown values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateTag is returned when a tag name is already used.
	ErrDuplicateTag = errors.New("tag already exists")
	// ErrNotFound is returned when an entity does not exist for the user.
	ErrNotFound = repository.ErrNotFound
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = ledger.ErrInvalidAmount
)

// CategorySuggester proposes a category for an expense description.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description string) (models.ExpenseCategory, error)
}

// Service implements every tracker operation.
type Service struct {
	store     *repository.Store
	users     *repository.UserRepository
	loc       *time.Location
	now       func() time.Time
	metrics   *metrics.Metrics
	suggester CategorySuggester

	generatedPerSession metric.Int64Histogram

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSuggester enables category suggestions for imported expenses.
func WithSuggester(sg CategorySuggester) Option {
	return func(s *Service) { s.suggester = sg }
}

// New creates a Service. Calendar-day math happens in loc.
func New(store *repository.Store, users *repository.UserRepository, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		store:    store,
		users:    users,
		loc:      loc,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}

	hist, err := otel.Meter(instrumentationName).Int64Histogram(
		"tracker.session.generated",
		metric.WithDescription("Recurring transactions materialized per session start."),
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create session histogram")
	}
	s.generatedPerSession = hist
	return s
}

// Now returns the service clock's current time in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the location used for calendar-day math.
func (s *Service) Location() *time.Location {
	return s.loc
}

// IsValidation reports whether err is a user-facing validation failure
// rather than an unexpected one.
func IsValidation(err error) bool {
	var insufficient *ledger.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateTag),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidTax),
		errors.Is(err, ledger.ErrGoalNotFunded),
		errors.Is(err, ledger.ErrGoalCompleted):
		return true
	}
	return false
}

// start opens a span for an operation on behalf of userID.
func (s *Service) start(ctx context.Context, name, userID string) (context.Context, trace.Span, time.Time) {
	ctx, span := tracer.Start(ctx, "Tracker."+name)
	span.SetAttributes(attribute.String("user.hash", logger.HashUserID(userID)))
	return ctx, span, time.Now()
}

// finish records the outcome of an operation on the span, metrics and log.
func (s *Service) finish(span trace.Span, op, userID string, began time.Time, err error) {
	defer span.End()
	s.metrics.RecordOperation(op, time.Since(began), err)
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if IsValidation(err) {
		logger.Log.Warn().Err(err).Str("op", op).Str("user_hash", logger.HashUserID(userID)).Msg("Operation rejected")
		return
	}
	logger.Log.Error().Err(err).Str("op", op).Str("user_hash", logger.HashUserID(userID)).Msg("Operation failed")
}

// currencySymbol is the display symbol of the user's currency.
func (s *Service) currencySymbol(ctx context.Context, userID string) string {
	if s.users != nil {
		if user, err := s.users.GetUserByID(ctx, userID); err == nil && user.Currency != "" {
			return ledger.CurrencySymbol(user.Currency)
		}
	}
	return ledger.CurrencySymbol(models.DefaultCurrency)
}
