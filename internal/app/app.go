// Package app wires configuration into the concrete collaborators the cmd
// entrypoints share.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"rankbook/internal/blobstore"
	"rankbook/internal/config"
	"rankbook/internal/riot"
)

// SetupLogger installs the process-wide slog default at the configured
// level.
func SetupLogger(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

// OpenBlobstore builds the configured persistence adapter.
func OpenBlobstore(cfg *config.Config) (blobstore.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return blobstore.NewMemory(), nil
	case config.StorageFile:
		return blobstore.NewFile(cfg.FileDir)
	case config.StorageRedis:
		rc := blobstore.DefaultRedisConfig()
		rc.Addr = cfg.RedisAddr
		rc.Password = cfg.RedisPassword
		rc.DB = cfg.RedisDB
		return blobstore.NewRedis(rc)
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", cfg.Storage)
	}
}

// Endpoints builds the client's path templates from config.
func Endpoints(cfg *config.Config) riot.Endpoints {
	return riot.Endpoints{
		riot.KindSummoner: cfg.SummonerEndpoint,
		riot.KindLeague:   cfg.LeagueEndpoint,
		riot.KindMastery:  cfg.MasteryEndpoint,
	}
}
