package main

import (
	"fmt"
	"os"
	"time"

	"planetwars-server/internal/auth"
	"planetwars-server/internal/shared/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// token mints a bearer token for the status server's operator endpoints
func main() {
	var (
		operator string
		role     string
		ttl      time.Duration
	)

	flagSet := pflag.NewFlagSet("token", pflag.ContinueOnError)
	flagSet.StringVarP(&operator, "operator", "o", "", "operator name recorded in the token (required)")
	flagSet.StringVar(&role, "role", auth.RoleOperator, "token role: operator or viewer")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fail(err)
	}
	if operator == "" {
		fail(fmt.Errorf("--operator is required"))
	}
	if role != auth.RoleOperator && role != auth.RoleViewer {
		fail(fmt.Errorf("unknown role %q", role))
	}

	// the secret comes from the same .env the server reads
	_ = godotenv.Load()

	token, err := auth.GenerateToken(utils.GetEnv("JWT_SECRET", ""), operator, role, ttl)
	if err != nil {
		fail(err)
	}
	fmt.Println(token)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "token: %v\n", err)
	os.Exit(1)
}
