package storagedisk

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-portal/pkg/storage"
)

var (
	ErrUnknownDisk    = errors.New("storagedisk: unknown disk")
	ErrNotLocal       = errors.New("storagedisk: disk is not on the local filesystem")
	ErrNoPublicURL    = errors.New("storagedisk: disk has no public url")
	ErrMissingSetting = errors.New("storagedisk: disk configuration incomplete")
)

// Disk is a resolved disk with plaintext credentials.
type Disk struct {
	Name    string
	Config  storage.Config
	Default bool
}

// Capabilities reports what the disk supports.
func (d Disk) Capabilities() storage.Capabilities {
	return storage.CapabilitiesOf(d.Config)
}

// Path maps an object key onto the local filesystem.
func (d Disk) Path(key string) (string, error) {
	if d.Config.Remote() {
		return "", fmt.Errorf("%w: %s", ErrNotLocal, d.Name)
	}
	return filepath.Join(d.Config.Root, filepath.FromSlash(cleanKey(key))), nil
}

// URL returns the public address of an object key.
func (d Disk) URL(key string) (string, error) {
	key = cleanKey(key)
	cfg := d.Config
	if base := strings.TrimSpace(cfg.URL); base != "" {
		return joinURL(base, key)
	}
	switch cfg.Driver {
	case storage.DriverPublic:
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, d.Name)
	case storage.DriverLocal:
		return "", fmt.Errorf("%w: %s", ErrNoPublicURL, d.Name)
	case storage.DriverS3:
		if cfg.Bucket == "" {
			return "", fmt.Errorf("%w: %s bucket", ErrMissingSetting, d.Name)
		}
		if cfg.Endpoint != "" {
			return joinURL(cfg.Endpoint, cfg.Bucket, key)
		}
		region := cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region), key)
	case storage.DriverR2:
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return "", fmt.Errorf("%w: %s endpoint and bucket", ErrMissingSetting, d.Name)
		}
		return joinURL(cfg.Endpoint, cfg.Bucket, key)
	case storage.DriverGCS:
		if cfg.Bucket == "" {
			return "", fmt.Errorf("%w: %s bucket", ErrMissingSetting, d.Name)
		}
		return joinURL("https://storage.googleapis.com", cfg.Bucket, key)
	case storage.DriverAzure:
		if cfg.Account == "" || cfg.Bucket == "" {
			return "", fmt.Errorf("%w: %s account and container", ErrMissingSetting, d.Name)
		}
		return joinURL(fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Account), cfg.Bucket, key)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownDisk, cfg.Driver)
}

// Profile is the disk as published to other components, without credentials.
func (d Disk) Profile() storage.Profile {
	cfg := d.Config
	cfg.AccessKey = ""
	cfg.SecretKey = ""
	return storage.Profile{
		Name:    d.Name,
		Config:  cfg,
		Default: d.Default,
		Labels:  map[string]string{"driver": cfg.Driver},
	}
}

func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(key)), "/")
}

func joinURL(base string, elems ...string) (string, error) {
	if strings.HasPrefix(base, "/") {
		return path.Join(append([]string{base}, elems...)...), nil
	}
	joined, err := url.JoinPath(base, elems...)
	if err != nil {
		return "", fmt.Errorf("storagedisk: %w", err)
	}
	return joined, nil
}
