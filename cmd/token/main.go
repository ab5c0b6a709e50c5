// Command token issues a bearer token for the catalog API, signed with the
// same JWT_SECRET the server validates against.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nekogravitycat/link-catalog-backend/internal/auth"
	"github.com/nekogravitycat/link-catalog-backend/internal/config"
)

func main() {
	subject := flag.String("sub", "", "token subject (operator or integration name)")
	email := flag.String("email", "", "optional email claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL).GenerateAccessToken(*subject, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
