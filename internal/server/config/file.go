package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/flagx"
	"github.com/dmitrijs2005/recipeshare/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Pointer fields keep
// keys that are absent from the file from overwriting earlier values.
type FileConfig struct {
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN        *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey          *string         `json:"secret_key" yaml:"secret_key"`
	StorageBackend     *string         `json:"storage_backend" yaml:"storage_backend"`
	S3RootUser         *string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword     *string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket           *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region           *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicBaseURL    *string         `json:"s3_public_base_url" yaml:"s3_public_base_url"`
	MaxUploadMB        *int64          `json:"max_upload_mb" yaml:"max_upload_mb"`
	RateLimitRPS       *float64        `json:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst     *int            `json:"rate_limit_burst" yaml:"rate_limit_burst"`
	ProfileCacheTTL    *timex.Duration `json:"profile_cache_ttl" yaml:"profile_cache_ttl"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSAllowedOrigins []string        `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	LogLevel           *string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config, if any. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.StorageBackend, fc.StorageBackend)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicBaseURL, fc.S3PublicBaseURL)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.MaxUploadMB != nil {
		c.MaxUploadBytes = *fc.MaxUploadMB << 20
	}
	if fc.RateLimitRPS != nil {
		c.RateLimitRPS = *fc.RateLimitRPS
	}
	if fc.RateLimitBurst != nil {
		c.RateLimitBurst = *fc.RateLimitBurst
	}
	if fc.ProfileCacheTTL != nil {
		c.ProfileCacheTTL = fc.ProfileCacheTTL.Duration
	}
	if fc.ShutdownTimeout != nil {
		c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
	if fc.CORSAllowedOrigins != nil {
		c.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
