package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/gully/go/internal/cricketers"
	"github.com/mcdev12/gully/go/internal/dbconfig"
	"github.com/mcdev12/gully/go/internal/models"
)

// SeedCricketer mirrors the JSON layout of the pool file
type SeedCricketer struct {
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Nationality  string  `json:"nationality"`
	BasePrice    float64 `json:"base_price"`
	AuctionOrder int     `json:"auction_order"`
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: seed_cricketers <game-id> [pool.json]\n")
		os.Exit(1)
	}
	gameID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid game id: %v\n", err)
		os.Exit(1)
	}
	path := "go/internal/assets/cricketers.json"
	if len(os.Args) > 2 {
		path = os.Args[2]
	}

	// 1) Load the pool file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var seeds []SeedCricketer
	if err := json.Unmarshal(data, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal cricketers: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to Postgres
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Import the pool through the app layer so validation applies
	app := cricketers.NewApp(cricketers.NewRepository(pool))

	reqs := make([]cricketers.CreateCricketerRequest, len(seeds))
	for i, s := range seeds {
		reqs[i] = cricketers.CreateCricketerRequest{
			GameID:       gameID,
			Name:         s.Name,
			Role:         models.CricketerRole(s.Role),
			Nationality:  s.Nationality,
			BasePrice:    decimal.NewFromFloat(s.BasePrice),
			AuctionOrder: s.AuctionOrder,
		}
	}

	if err := app.ImportPool(ctx, cricketers.ImportPoolRequest{GameID: gameID, Cricketers: reqs}); err != nil {
		fmt.Fprintf(os.Stderr, "import pool: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d cricketers into game %s\n", len(seeds), gameID)
}
