package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   identity token HMAC secret
//	-o string   storage backend: s3 or memory
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   public base URL of stored images
//	-m int      max upload size, MiB
//	-l float    rate limit, requests per second per caller
//	-k int      rate limit burst
//	-t int      profile cache TTL, minutes
//	-v string   log level
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-o", "-u", "-p", "-b", "-g", "-e", "-w", "-m", "-l", "-k", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.StorageBackend, "o", config.StorageBackend, "storage backend (s3|memory)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "w", config.S3PublicBaseURL, "public base URL of stored images")

	maxUploadMB := fs.Int64("m", config.MaxUploadBytes>>20, "max upload size (in MiB)")
	fs.Float64Var(&config.RateLimitRPS, "l", config.RateLimitRPS, "rate limit (requests per second)")
	fs.IntVar(&config.RateLimitBurst, "k", config.RateLimitBurst, "rate limit burst")
	profileCacheTTL := fs.Int("t", int(config.ProfileCacheTTL.Minutes()), "profile cache ttl (in minutes)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Unit-converted flags only apply when given, so a finer value from the
	// file or environment survives.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			config.MaxUploadBytes = *maxUploadMB << 20
		case "t":
			config.ProfileCacheTTL = time.Duration(*profileCacheTTL) * time.Minute
		}
	})
	return nil
}
