// Package objstore implements the output store over an S3-compatible
// bucket, for caches shared between machines.
package objstore

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Config is the connection configuration for the bucket backend.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// ConfigFromEnv reads the SURFGEN_MINIO_* variables.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:  envOr("SURFGEN_MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: os.Getenv("SURFGEN_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("SURFGEN_MINIO_SECRET_KEY"),
		Region:    envOr("SURFGEN_MINIO_REGION", "us-east-1"),
		UseSSL:    os.Getenv("SURFGEN_MINIO_USE_SSL") == "true",
		Bucket:    envOr("SURFGEN_MINIO_BUCKET", "surfgen"),
		Prefix:    os.Getenv("SURFGEN_MINIO_PREFIX"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks the configuration is complete.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		return errors.New("bucket is required")
	}
	return nil
}
