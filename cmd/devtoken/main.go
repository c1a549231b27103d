// Command devtoken prints a bearer token signed with the server's secret key,
// for calling the API locally without the identity provider.
//
// Usage:
//
//	devtoken -sub google|123 -name "Ana" -email ana@example.com -ttl 2h
//
// The secret is resolved exactly like the server does (file, environment,
// -s flag).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/flagx"
	"github.com/dmitrijs2005/recipeshare/internal/server/auth"
	"github.com/dmitrijs2005/recipeshare/internal/server/config"
)

// seam for tests
var loadConfig = config.LoadConfig

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		id  auth.Identity
		ttl time.Duration
	)
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&id.ExternalID, "sub", "", "external id of the caller")
	fs.StringVar(&id.Name, "name", "", "display name")
	fs.StringVar(&id.Email, "email", "", "email")
	fs.StringVar(&id.PictureURL, "picture", "", "picture url")
	fs.DurationVar(&ttl, "ttl", time.Hour, "token validity")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-sub", "-name", "-email", "-picture", "-ttl"})); err != nil {
		return err
	}
	if id.ExternalID == "" {
		return errors.New("-sub is required")
	}

	token, err := auth.GenerateToken(id, []byte(cfg.SecretKey), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
