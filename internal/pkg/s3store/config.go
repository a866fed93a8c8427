package s3store

import (
	"errors"
	"fmt"

	"github.com/vietscribe/vietscribe/internal/pkg/env"
)

// Config holds object storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads object storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "ap-southeast-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_EXPORTS_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when exports storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when exports storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when exports storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if exports object storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ExportObjectKey generates a standardized object key for an exported document.
// Format: exports/YYYY/MM/<project-uuid>/<filename>
func (c *Config) ExportObjectKey(projectUUID, filename string, year, month int) string {
	return fmt.Sprintf("exports/%04d/%02d/%s/%s", year, month, projectUUID, filename)
}
