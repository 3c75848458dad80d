package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/attendance-sync-api/pkg/idtoken"
)

// devtoken mints HS256 bearer tokens for servers running with AUTH_MODE=hs256.
func main() {
	var (
		secret  string
		subject string
		email   string
		name    string
		ttl     time.Duration
	)

	flag.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Shared HS256 secret (defaults to $JWT_SECRET)")
	flag.StringVar(&subject, "uid", "", "Subject (firebase uid) of the token")
	flag.StringVar(&email, "email", "", "Email claim")
	flag.StringVar(&name, "name", "", "Name claim")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flag.Parse()

	if subject == "" {
		log.Fatal("-uid is required")
	}

	verifier, err := idtoken.NewHMACVerifier(secret)
	if err != nil {
		log.Fatalf("invalid secret: %v", err)
	}
	token, err := verifier.Issue(idtoken.Identity{Subject: subject, Email: email, Name: name}, ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
