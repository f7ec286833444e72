package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"shopauth.org/internal/migrate"
)

func main() {
	var (
		dsn           = flag.String("dsn", os.Getenv("AUTH_PG_DSN"), "PostgreSQL DSN (defaults to AUTH_PG_DSN)")
		migrationsDir = flag.String("migrations", "migrations/sql", "directory with .up.sql/.down.sql files")
		seedsDir      = flag.String("seeds", "migrations/seeds", "directory with seed .sql files")
	)
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		log.Fatal("usage: migrate [flags] up|down|seed|status")
	}
	if *dsn == "" {
		log.Fatal("a DSN is required: pass -dsn or set AUTH_PG_DSN")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	mgr := migrate.NewManager(db, *migrationsDir, *seedsDir)

	switch cmd {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var applied []string
		applied, err = mgr.Status(ctx)
		if err == nil {
			if len(applied) == 0 {
				fmt.Println("no migrations applied")
			}
			for _, name := range applied {
				fmt.Println(name)
			}
		}
	default:
		log.Fatalf("unknown command %q: want up, down, seed or status", cmd)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
