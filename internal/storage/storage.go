// Package storage abstracts where graph input files come from: the local
// filesystem or a Tencent Cloud COS bucket. Large public web graphs live in
// object storage; the CLI stages them to a temporary file before parsing.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/pagerank-analysis/pkg/config"
)

// Storage defines the graph source operations.
type Storage interface {
	// Download opens the object at the specified key for reading.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// DownloadFile stages the object at the specified key to a local file.
	DownloadFile(ctx context.Context, key string, localPath string) error

	// Exists checks whether an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL for the specified key (if applicable).
	GetURL(key string) string
}

// Type represents the type of storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// New creates a Storage instance based on the configuration.
func New(cfg *config.StorageConfig) (Storage, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	switch Type(cfg.Type) {
	case TypeCOS:
		return NewCOSStorage(&COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}

// ValidateConfig validates the storage configuration.
func ValidateConfig(cfg *config.StorageConfig) error {
	if cfg == nil {
		return fmt.Errorf("storage config is nil")
	}

	storageType := Type(cfg.Type)
	if storageType == "" {
		storageType = TypeLocal
	}

	switch storageType {
	case TypeLocal:
		return nil
	case TypeCOS:
		if cfg.Bucket == "" {
			return fmt.Errorf("COS bucket is required")
		}
		if cfg.Region == "" {
			return fmt.Errorf("COS region is required")
		}
		if cfg.SecretID == "" || cfg.SecretKey == "" {
			return fmt.Errorf("COS credentials are required")
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
