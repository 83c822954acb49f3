package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"rankbook/internal/app"
	"rankbook/internal/config"
	"rankbook/internal/leaderboard"
	"rankbook/internal/notify"
	"rankbook/internal/ratelimit"
	"rankbook/internal/respcache"
	"rankbook/internal/riot"
)

func main() {
	// Load .env file
	godotenv.Load()

	name := flag.String("name", "", "player name to look up")
	region := flag.String("region", "", "platform region (defaults to configured region)")
	flag.Parse()

	if *name == "" {
		fmt.Println("Usage: lookup --name=\"PlayerName\" [--region=euw1]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg.LogLevel)

	if *region == "" {
		*region = cfg.Region
	}

	blobs, err := app.OpenBlobstore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		os.Exit(1)
	}
	board := leaderboard.NewStore(blobs)

	client, err := riot.NewClient(cfg.APIKey, ratelimit.New(), respcache.New(),
		riot.WithBaseURLTemplate(cfg.BaseURLTemplate),
		riot.WithEndpoints(app.Endpoints(cfg)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	res, err := client.LookupPlayer(ctx, *name, *region)
	if err != nil {
		fmt.Fprintln(os.Stderr, riot.UserMessage(err))
		os.Exit(1)
	}

	printResult(res)

	wasTopTen := inTopTen(ctx, board, res.Identity.ID, *region)
	if err := board.RecordObservation(ctx, res.Identity, *region, res.Standings); err != nil {
		fmt.Fprintf(os.Stderr, "leaderboard: %v\n", err)
		os.Exit(1)
	}

	if pos, ok := boardPosition(ctx, board, res.Identity.ID, *region); ok {
		fmt.Printf("\nLeaderboard position: #%d\n", pos)

		if cfg.WebhookURL != "" && pos <= 10 && !wasTopTen {
			notifier := notify.NewWebhookClient(cfg.WebhookURL)
			view, _ := board.FilteredView(ctx, leaderboard.RegionAll)
			if err := notifier.SendTopEntryNotification(ctx, view[pos-1], pos); err != nil {
				slog.Warn("webhook notification failed", "err", err)
			}
		}
	} else {
		fmt.Println("\nUnranked in solo queue - not tracked on the leaderboard")
	}
}

func printResult(res *riot.LookupResult) {
	fmt.Printf("%s (level %d)\n", res.Identity.Name, res.Identity.SummonerLevel)

	if len(res.Standings) == 0 {
		fmt.Println("  No ranked entries found (unranked)")
	}
	for _, entry := range res.Standings {
		queueName := entry.QueueType
		switch entry.QueueType {
		case riot.QueueSolo:
			queueName = "Solo/Duo"
		case "RANKED_FLEX_SR":
			queueName = "Flex"
		}
		fmt.Printf("  %s: %s %s (%d LP) - %dW %dL\n",
			queueName, entry.Tier, entry.Rank, entry.LeaguePoints, entry.Wins, entry.Losses)
	}

	if len(res.Masteries) > 0 {
		fmt.Println("  Top champions:")
		for _, m := range res.Masteries {
			fmt.Printf("    champion %d: level %d (%d pts)\n",
				m.ChampionID, m.ChampionLevel, m.ChampionPoints)
		}
	}
}

func inTopTen(ctx context.Context, board *leaderboard.Store, playerID, region string) bool {
	pos, ok := boardPosition(ctx, board, playerID, region)
	return ok && pos <= 10
}

func boardPosition(ctx context.Context, board *leaderboard.Store, playerID, region string) (int, bool) {
	view, err := board.FilteredView(ctx, leaderboard.RegionAll)
	if err != nil {
		return 0, false
	}
	for i, e := range view {
		if e.PlayerID == playerID && e.Region == region {
			return i + 1, true
		}
	}
	return 0, false
}
