// gentoken mints a service bearer token for the gateway API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/mediakit/offload/internal/service/auth"
)

func main() {
	var (
		secretKey string
		service   string
		ttl       time.Duration
	)

	fs := pflag.NewFlagSet("gentoken", pflag.ContinueOnError)
	fs.StringVarP(&secretKey, "secret-key", "s", "", "Secret key the gateway is running with")
	fs.StringVarP(&service, "service", "n", "host", "Name of the calling service")
	fs.DurationVarP(&ttl, "ttl", "t", 24*time.Hour, "Token lifetime")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while parsing flags: %v\n", err)
		os.Exit(1)
	}

	tokenManager, err := auth.New(auth.Config{SecretKey: secretKey, TTL: ttl})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while creating token manager: %v\n", err)
		os.Exit(1)
	}

	token, expiresAt, err := tokenManager.Issue(service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while issuing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
