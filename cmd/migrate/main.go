package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	dbURL := os.Getenv("DEPOT_DB_URL")
	if dbURL == "" {
		log.Fatal("goose: DEPOT_DB_URL is required")
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./migrations", "directory with migration files")
	flag.Parse()

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v", err)
		}
	}()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
