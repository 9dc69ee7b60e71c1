package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"skill-swap/internal/config"
	"skill-swap/internal/pkg/jwt"

	"github.com/joho/godotenv"
)

// devtoken prints an access token for local testing against cmd/server.
func main() {
	userID := flag.String("user", "", "user id to put in the token subject")
	email := flag.String("email", "", "optional email claim")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	svc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn, jwt.WithIssuer(cfg.JWT.Issuer))
	tok, err := svc.Issue(*userID, *email)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(tok)
}
