package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gotodo/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string      HTTP bind address (e.g., ":3000")
//	-d string      PostgreSQL DSN
//	-s string      JWT HMAC secret key
//	-t int         session token validity, minutes (0 = no expiry)
//	-k int         bcrypt cost
//	-p string      todo read policy (owner, public)
//	-store string  store driver (postgres, memory)
//
// -c/-config and -m/-mode are consumed earlier by Load.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-k", "-p", "-store"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.TodoReadPolicy, "p", config.TodoReadPolicy, "todo read policy")
	fs.StringVar(&config.StoreDriver, "store", config.StoreDriver, "store driver")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
	return nil
}
