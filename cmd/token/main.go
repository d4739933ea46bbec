// Command token mints a bearer token for local development.
//
//	go run ./cmd/token -user alice
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/songcontest/songcontest-api/internal/config"
	"github.com/songcontest/songcontest-api/internal/pkg/jwthelper"
)

func main() {
	configPath := flag.String("config", "./cmd/app/config.yml", "path to the API config")
	userID := flag.String("user", "", "user id to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*configPath, *userID, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, userID string, ttl time.Duration) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config.Load -> %w", err)
	}

	token, err := jwthelper.GenerateTokenWithTTL([]byte(conf.API.JWTSigningKey), userID, "", ttl)
	if err != nil {
		return fmt.Errorf("jwthelper.GenerateTokenWithTTL -> %w", err)
	}

	fmt.Println(token)
	return nil
}
