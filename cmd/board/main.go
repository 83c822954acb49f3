package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"rankbook/internal/app"
	"rankbook/internal/config"
	"rankbook/internal/leaderboard"
)

func main() {
	// Load .env file
	godotenv.Load()

	region := flag.String("region", leaderboard.RegionAll, "filter by region, or \"all\"")
	limit := flag.Int("limit", 0, "print at most N entries (0 = everything)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg.LogLevel)

	blobs, err := app.OpenBlobstore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}
	board := leaderboard.NewStore(blobs)

	view, err := board.FilteredView(context.Background(), *region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leaderboard: %v\n", err)
		os.Exit(1)
	}

	if len(view) == 0 {
		fmt.Println("Leaderboard is empty - run lookup to add players")
		return
	}
	if *limit > 0 && len(view) > *limit {
		view = view[:*limit]
	}

	fmt.Printf("%-4s %-18s %-8s %-14s %6s %8s\n", "#", "Player", "Region", "Rank", "LP", "W/L")
	for i, e := range view {
		rank := "Unranked"
		if e.Tier != "" {
			rank = fmt.Sprintf("%s %s", e.Tier, e.Division)
		}
		fmt.Printf("%-4d %-18s %-8s %-14s %6d %5dW %dL\n",
			i+1, e.DisplayName, e.Region, rank, e.LeaguePoints, e.Wins, e.Losses)
	}
}
