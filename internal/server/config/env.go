package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "RECIPESHARE_"

// parseEnv overlays RECIPESHARE_* variables. lookup is os.LookupEnv outside
// of tests.
func parseEnv(c *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"HTTP_ADDR":          &c.EndpointAddrHTTP,
		"DATABASE_DSN":       &c.DatabaseDSN,
		"SECRET_KEY":         &c.SecretKey,
		"STORAGE_BACKEND":    &c.StorageBackend,
		"S3_ROOT_USER":       &c.S3RootUser,
		"S3_ROOT_PASSWORD":   &c.S3RootPassword,
		"S3_BUCKET":          &c.S3Bucket,
		"S3_REGION":          &c.S3Region,
		"S3_BASE_ENDPOINT":   &c.S3BaseEndpoint,
		"S3_PUBLIC_BASE_URL": &c.S3PublicBaseURL,
		"LOG_LEVEL":          &c.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("MAX_UPLOAD_MB"); ok {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_MB: %w", envPrefix, err)
		}
		c.MaxUploadBytes = mb << 20
	}
	if v, ok := get("RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPS: %w", envPrefix, err)
		}
		c.RateLimitRPS = rps
	}
	if v, ok := get("RATE_LIMIT_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_BURST: %w", envPrefix, err)
		}
		c.RateLimitBurst = burst
	}
	if v, ok := get("PROFILE_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPROFILE_CACHE_TTL: %w", envPrefix, err)
		}
		c.ProfileCacheTTL = d
	}
	if v, ok := get("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSHUTDOWN_TIMEOUT: %w", envPrefix, err)
		}
		c.ShutdownTimeout = d
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
