package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/config"
	"github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/db"
	httpinfra "github.com/fstevanovic/sk-connect-rp-server-sample/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	zerolog.TimeFieldFormat = time.RFC3339
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Logger = log.Output(os.Stderr)

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init store")
	}

	srv := httpinfra.NewServer(cfg, store)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("starting rp server")
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
