//go:build ignore

// prints a JWT for local testing.
//
//	go run scripts/gen_test_token.go -subject events-backend -service
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"codeberg.org/eventnotify/server/internal/auth"
)

func main() {
	subject := flag.String("subject", "test-user", "token subject, also the user's notification channel")
	service := flag.Bool("service", false, "issue a service token allowed to publish")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	token, err := auth.GenerateJWT(*subject, *service)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	kind := "user"
	if *service {
		kind = "service"
	}

	fmt.Printf("\n🔑 Test %s token for %q:\n%s\n\n", kind, *subject, token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
