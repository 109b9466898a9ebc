package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-openapi-service/internal/adapter/cache"
	domain "user-openapi-service/internal/domain/user"
	pkgerrors "user-openapi-service/pkg/errors"
	"user-openapi-service/pkg/logger"
	"user-openapi-service/pkg/uid"
)

// CreationRecorder records creation events. Implementations must be safe for concurrent use.
type CreationRecorder interface {
	Record(ctx context.Context, ev domain.CreationEvent) error
}

// Service implements Usecase. Users are synthesized per call and never stored.
type Service struct {
	ids      uid.StringID           // Generator for new user identifiers
	idem     cache.IdempotencyCache // Optional cache for idempotent creates
	audit    CreationRecorder       // Optional creation audit
	log      *zap.Logger            // Logger for structured logging
	validate *validator.Validate    // Validator for request validation
	group    singleflight.Group     // Collapses concurrent creates sharing an idempotency key
	now      func() time.Time
}

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithIdempotencyCache enables idempotent creates keyed by CreateUserRequest.IdempotencyKey.
func WithIdempotencyCache(c cache.IdempotencyCache) Option {
	return func(s *Service) {
		s.idem = c
	}
}

// WithCreationRecorder enables the creation audit.
func WithCreationRecorder(r CreationRecorder) Option {
	return func(s *Service) {
		s.audit = r
	}
}

// New creates a new Service with the provided identifier generator and logger.
func New(ids uid.StringID, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		ids:      ids,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newValidator reports field errors using the json names of the request fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CreateUser builds a user with a fresh time-ordered identifier and echoes name and age.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		return s.createIdempotent(ctx, in)
	}

	u := s.newUser(in)
	s.record(ctx, u, in.Transport)

	log.Info("user created", zap.String("id", u.ID), zap.String("transport", in.Transport))
	return toResponse(u, false), nil
}

// createIdempotent returns the user created for the same key earlier, or creates and caches one.
func (s *Service) createIdempotent(ctx context.Context, in CreateUserRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, s.log).With(zap.String("idempotency_key", in.IdempotencyKey))
	fp := fingerprint(*in.Name, *in.Age)

	executed := false
	result, err, _ := s.group.Do(in.IdempotencyKey, func() (any, error) {
		executed = true

		entry, err := s.idem.Get(ctx, in.IdempotencyKey)
		if err != nil {
			log.Warn("idempotency cache get error, creating without replay", zap.Error(err))
		} else if entry != nil {
			return &idempotentResult{entry: entry, replayed: true}, nil
		}

		u := s.newUser(in)
		entry = &cache.IdempotentEntry{User: u, Fingerprint: fp}

		stored, err := s.idem.Set(ctx, in.IdempotencyKey, entry)
		if err != nil {
			log.Warn("failed to cache idempotent create", zap.String("id", u.ID), zap.Error(err))
			stored = entry
		}
		if stored != entry {
			log.Info("idempotency key claimed concurrently, discarding new user",
				zap.String("id", u.ID), zap.String("stored_id", stored.User.ID))
			return &idempotentResult{entry: stored, replayed: true}, nil
		}

		s.record(ctx, u, in.Transport)
		log.Info("user created", zap.String("id", u.ID), zap.String("transport", in.Transport))
		return &idempotentResult{entry: entry}, nil
	})
	if err != nil {
		return nil, err
	}

	res := result.(*idempotentResult)
	if res.entry.Fingerprint != fp {
		log.Warn("idempotency key reused with a different payload")
		return nil, pkgerrors.NewAlreadyExistsError("idempotency key", "idempotency key already used with a different payload")
	}

	// Callers that joined an in-flight create did not create the user themselves.
	replayed := res.replayed || !executed
	if replayed {
		log.Debug("replaying idempotent create", zap.String("id", res.entry.User.ID))
	}
	return toResponse(res.entry.User, replayed), nil
}

type idempotentResult struct {
	entry    *cache.IdempotentEntry
	replayed bool
}

// GetUser returns the placeholder user for the requested identifier.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*UserResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		logger.WithContext(ctx, s.log).Warn("get user validation failed", zap.String("id", in.ID), zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}

	u := domain.Placeholder(in.ID)
	logger.WithContext(ctx, s.log).Debug("user synthesized", zap.String("id", u.ID))

	return toResponse(u, false), nil
}

func (s *Service) newUser(in CreateUserRequest) domain.User {
	return domain.User{
		ID:   s.ids.Generate(),
		Name: *in.Name,
		Age:  *in.Age,
	}
}

// record writes the creation audit. Failures never fail the request.
func (s *Service) record(ctx context.Context, u domain.User, transport string) {
	if s.audit == nil {
		return
	}

	ev := domain.CreationEvent{
		UserID:    u.ID,
		Transport: transport,
		RequestID: logger.GetRequestID(ctx),
		CreatedAt: s.now().UTC(),
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		logger.WithContext(ctx, s.log).Warn("failed to record user creation", zap.String("id", u.ID), zap.Error(err))
	}
}

// fingerprint identifies a create payload so that a reused idempotency key can be detected.
func fingerprint(name string, age float64) string {
	sum := sha256.Sum256([]byte(name + "\x00" + strconv.FormatFloat(age, 'g', -1, 64)))
	return hex.EncodeToString(sum[:])
}

func toResponse(u domain.User, replayed bool) *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Age:      u.Age,
		Replayed: replayed,
	}
}
