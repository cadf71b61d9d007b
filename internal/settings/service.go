package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/crypto"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// ErrNotifyFailed wraps observer failures. The values were saved when a Put
// returns an error wrapping it.
var ErrNotifyFailed = errors.New("settings: observer notification failed")

// Change is delivered to observers after a group is saved. Values are
// decrypted.
type Change struct {
	Group  Group
	Values Values
}

// Observer reacts to saved settings, e.g. to rebuild a mail transport.
type Observer interface {
	SettingsChanged(ctx context.Context, change Change) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, change Change) error

func (fn ObserverFunc) SettingsChanged(ctx context.Context, change Change) error {
	return fn(ctx, change)
}

// PutInput replaces the values of a group. Secrets sent as Mask or omitted
// keep their stored value.
type PutInput struct {
	Group     Group          `json:"group"`
	Values    map[string]any `json:"values"`
	UpdatedBy uuid.UUID      `json:"updated_by"`
}

// Service reads and writes settings groups.
type Service interface {
	Groups() []Group
	Get(ctx context.Context, group Group) (Values, error)
	Masked(ctx context.Context, group Group) (Values, error)
	Put(ctx context.Context, input PutInput) (Values, error)
}

// ServiceOption configures the settings service.
type ServiceOption func(*service)

// WithRegistry replaces the default group registry.
func WithRegistry(registry *Registry) ServiceOption {
	return func(s *service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithEncrypter sets the encrypter for secret fields.
func WithEncrypter(encrypter interfaces.Encrypter) ServiceOption {
	return func(s *service) {
		if encrypter != nil {
			s.encrypter = encrypter
		}
	}
}

// WithObserver registers an observer notified after every save.
func WithObserver(observer Observer) ServiceOption {
	return func(s *service) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type service struct {
	repo      Repository
	registry  *Registry
	encrypter interfaces.Encrypter
	observers []Observer
	logger    interfaces.Logger
	now       func() time.Time
}

// NewService constructs the settings service. Without an encrypter, groups
// holding secrets can only be saved with those fields empty.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:      repo,
		registry:  DefaultRegistry(),
		encrypter: crypto.Disabled(),
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Groups() []Group {
	return s.registry.Groups()
}

func (s *service) Get(ctx context.Context, group Group) (Values, error) {
	def, err := s.registry.Lookup(group)
	if err != nil {
		return nil, err
	}
	stored, err := s.load(ctx, def)
	if err != nil {
		return nil, err
	}
	return Values(merge(def.Defaults, stored)), nil
}

func (s *service) Masked(ctx context.Context, group Group) (Values, error) {
	def, err := s.registry.Lookup(group)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.Get(ctx, def.Group)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}
	var payload map[string]any
	if record != nil {
		payload = cloneMap(record.Payload)
	}
	values := merge(def.Defaults, payload)
	for _, path := range def.Secrets {
		walkSecrets(values, path, func(container map[string]any, key string) {
			if text, _ := container[key].(string); text != "" {
				container[key] = Mask
			}
		})
	}
	return Values(values), nil
}

func (s *service) Put(ctx context.Context, input PutInput) (Values, error) {
	def, err := s.registry.Lookup(input.Group)
	if err != nil {
		return nil, err
	}
	logger := logging.WithSettingsGroup(s.logger, string(def.Group))

	current, err := s.load(ctx, def)
	if err != nil {
		return nil, err
	}
	next := merge(def.Defaults, cloneMap(input.Values))
	s.keepMaskedSecrets(def, next, current)

	if err := def.Schema.Validate(next); err != nil {
		return nil, err
	}

	payload := cloneMap(next)
	var sealErr error
	for _, path := range def.Secrets {
		walkSecrets(payload, path, func(container map[string]any, key string) {
			text, _ := container[key].(string)
			sealed, err := s.encrypter.Encrypt(text)
			if err != nil {
				sealErr = errors.Join(sealErr, fmt.Errorf("seal %s: %w", path, err))
				return
			}
			container[key] = sealed
		})
	}
	if sealErr != nil {
		return nil, sealErr
	}

	now := s.now().UTC()
	if _, err := s.repo.Upsert(ctx, &Record{
		Group:     def.Group,
		Payload:   payload,
		UpdatedBy: input.UpdatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}
	logger.Info("settings.group.saved", "updated_by", input.UpdatedBy)

	masked, err := s.Masked(ctx, def.Group)
	if err != nil {
		return nil, err
	}
	if err := s.notify(ctx, Change{Group: def.Group, Values: Values(next)}); err != nil {
		return masked, fmt.Errorf("%w: %w", ErrNotifyFailed, err)
	}
	return masked, nil
}

// load returns the stored payload with secrets decrypted.
func (s *service) load(ctx context.Context, def Definition) (map[string]any, error) {
	record, err := s.repo.Get(ctx, def.Group)
	if errors.Is(err, ErrRecordNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	payload := cloneMap(record.Payload)
	var openErr error
	for _, path := range def.Secrets {
		walkSecrets(payload, path, func(container map[string]any, key string) {
			text, _ := container[key].(string)
			if !crypto.IsEncrypted(text) {
				return
			}
			plain, err := s.encrypter.Decrypt(text)
			if err != nil {
				openErr = errors.Join(openErr, fmt.Errorf("open %s: %w", path, err))
				return
			}
			container[key] = plain
		})
	}
	if openErr != nil {
		return nil, openErr
	}
	return payload, nil
}

// keepMaskedSecrets restores stored secrets where the caller echoed Mask or
// left the field out of an object that still exists.
func (s *service) keepMaskedSecrets(def Definition, next, current map[string]any) {
	for _, pattern := range def.Secrets {
		for _, path := range expandPaths(current, pattern) {
			value, present := getPath(next, path)
			if present && value != Mask {
				continue
			}
			stored, _ := getPath(current, path)
			setPath(next, path, stored)
		}
		for _, path := range expandPaths(next, pattern) {
			if value, _ := getPath(next, path); value == Mask {
				setPath(next, path, "")
			}
		}
	}
}

func (s *service) notify(ctx context.Context, change Change) error {
	var errs []error
	for _, observer := range s.observers {
		if err := observer.SettingsChanged(ctx, change); err != nil {
			s.logger.Error("settings.observer.failed", "group", string(change.Group), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
