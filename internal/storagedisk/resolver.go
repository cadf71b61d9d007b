package storagedisk

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/storageconfig"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/goliatone/go-portal/pkg/storage"
)

// Defaults seeds the built-in local and public disks.
type Defaults struct {
	DefaultDisk string
	LocalRoot   string
	PublicURL   string
}

// SettingsReader loads a settings group with secrets decrypted.
type SettingsReader interface {
	Get(ctx context.Context, group settings.Group) (settings.Values, error)
}

// Option configures the resolver.
type Option func(*Resolver)

// WithProfiles publishes resolved disks to repo after each reload.
func WithProfiles(repo storageconfig.Repository) Option {
	return func(r *Resolver) {
		r.profiles = repo
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps disk names to configurations built from the storage
// settings group. It starts with the built-in disks only.
type Resolver struct {
	mu          sync.RWMutex
	defaults    Defaults
	disks       map[string]Disk
	defaultName string
	profiles    storageconfig.Repository
	logger      interfaces.Logger
}

// NewResolver constructs a resolver holding the built-in disks.
func NewResolver(defaults Defaults, opts ...Option) *Resolver {
	r := &Resolver{defaults: defaults, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.disks = r.builtins()
	r.defaultName = storage.DriverPublic
	if name := strings.TrimSpace(defaults.DefaultDisk); name != "" {
		if _, ok := r.disks[name]; ok {
			r.defaultName = name
		}
	}
	return r
}

// Load reads the storage group and applies it.
func (r *Resolver) Load(ctx context.Context, reader SettingsReader) error {
	values, err := reader.Get(ctx, settings.GroupStorage)
	if err != nil {
		return err
	}
	return r.Apply(ctx, values)
}

// SettingsChanged reloads disks when the storage group is saved.
func (r *Resolver) SettingsChanged(ctx context.Context, change settings.Change) error {
	if change.Group != settings.GroupStorage {
		return nil
	}
	return r.Apply(ctx, change.Values)
}

// Apply replaces the configured disks with those in values.
func (r *Resolver) Apply(ctx context.Context, values settings.Values) error {
	disks := r.builtins()
	for _, name := range values.Map("disks").Keys() {
		cfg, err := decodeConfig(values.Map("disks").Map(name))
		if err != nil {
			return fmt.Errorf("storagedisk: disk %s: %w", name, err)
		}
		if cfg.Driver == storage.DriverLocal || cfg.Driver == storage.DriverPublic {
			base := disks[cfg.Driver].Config
			if cfg.Root == "" {
				cfg.Root = base.Root
			}
			if cfg.URL == "" {
				cfg.URL = base.URL
			}
		}
		disks[name] = Disk{Name: name, Config: cfg}
	}

	defaultName := strings.TrimSpace(values.String("default_disk"))
	if defaultName == "" {
		defaultName = r.defaultName
	}
	selected, ok := disks[defaultName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDisk, defaultName)
	}
	selected.Default = true
	disks[defaultName] = selected

	r.mu.Lock()
	r.disks = disks
	r.defaultName = defaultName
	r.mu.Unlock()

	r.logger.Info("storage.disks.reloaded", "default_disk", defaultName, "disks", len(disks))
	return r.publish(ctx, disks)
}

// Disk returns the disk called name.
func (r *Resolver) Disk(name string) (Disk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	disk, ok := r.disks[strings.TrimSpace(name)]
	if !ok {
		return Disk{}, fmt.Errorf("%w: %s", ErrUnknownDisk, name)
	}
	return disk, nil
}

// Default returns the disk selected in settings.
func (r *Resolver) Default() Disk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disks[r.defaultName]
}

// Names lists configured disks in name order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.disks))
}

func (r *Resolver) builtins() map[string]Disk {
	root := r.defaults.LocalRoot
	if root == "" {
		root = "storage/app"
	}
	publicURL := r.defaults.PublicURL
	if publicURL == "" {
		publicURL = "/storage"
	}
	return map[string]Disk{
		storage.DriverLocal: {
			Name:   storage.DriverLocal,
			Config: storage.Config{Driver: storage.DriverLocal, Root: root, Visibility: "private"},
		},
		storage.DriverPublic: {
			Name:   storage.DriverPublic,
			Config: storage.Config{Driver: storage.DriverPublic, Root: filepath.Join(root, "public"), URL: publicURL, Visibility: "public"},
		},
	}
}

func (r *Resolver) publish(ctx context.Context, disks map[string]Disk) error {
	if r.profiles == nil {
		return nil
	}
	desired := make([]storage.Profile, 0, len(disks))
	for _, name := range slices.Sorted(maps.Keys(disks)) {
		desired = append(desired, disks[name].Profile())
	}
	events, err := r.profiles.Replace(ctx, desired)
	if err != nil {
		r.logger.Error("storage.profiles.publish_failed", "error", err)
		return fmt.Errorf("storagedisk: publish profiles: %w", err)
	}
	if len(events) > 0 {
		r.logger.Info("storage.profiles.published", "changes", len(events), "disks", len(desired))
	}
	return nil
}

func decodeConfig(values settings.Values) (storage.Config, error) {
	var cfg storage.Config
	encoded, err := json.Marshal(values)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(encoded, &cfg); err != nil {
		return cfg, err
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if !slices.Contains(storage.Drivers, cfg.Driver) {
		return cfg, fmt.Errorf("%w: %s", ErrUnknownDisk, cfg.Driver)
	}
	return cfg, nil
}
