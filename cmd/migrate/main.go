package main

import (
	"context"
	"flag"

	"github.com/mbeoliero/kit/log"

	"github.com/mbeoliero/coursehub/internal/config"
	"github.com/mbeoliero/coursehub/internal/repository"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		log.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	if err := repository.AutoMigrate(repos.DB); err != nil {
		log.CtxError(ctx, "migration failed: %v", err)
		panic(err)
	}

	log.CtxInfo(ctx, "migration finished")
}
