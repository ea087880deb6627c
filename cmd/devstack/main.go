package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/barangay-konek/portal-api/internal/containers"
)

func main() {
	var envFilename string
	var showHelp bool
	flag.StringVar(&envFilename, "f", "", "path to .env file")
	flag.BoolVar(&showHelp, "h", false, "show usage")
	flag.Parse()

	usage := `
Run the portal dev containers (MariaDB + Redis) with the environment
variables from the .env file.

Usage:

devstack [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  devstack -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx := context.Background()

	db, err := containers.StartMariaDB(ctx, containers.MariaDBConfig{
		Image:        os.Getenv("DB_IMAGE"),
		Database:     envOr("DB_DATABASE", "portal"),
		User:         envOr("DB_USER", "portal"),
		Password:     envOr("DB_PASSWORD", "portal"),
		RootPassword: envOr("DB_ROOT_PASSWORD", "root"),
	})
	if err != nil {
		log.Fatalf("Failed to start MariaDB: %v\n", err)
	}
	log.Printf("DB_HOST=%s DB_PORT=%s\n", db.Host, db.Port)

	redis, err := containers.StartRedis(ctx)
	if err != nil {
		_ = db.Terminate(ctx)
		log.Fatalf("Failed to start Redis: %v\n", err)
	}
	log.Printf("REDIS_ADDR=%s\n", redis.Addr())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating dev containers...\n", sig)
	if err := redis.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate Redis: %v\n", err)
	}
	if err := db.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate MariaDB: %v\n", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
