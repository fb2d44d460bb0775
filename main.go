package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	"openbank-advisor/agent/dispatch"
	"openbank-advisor/agent/llm"
	"openbank-advisor/agent/tool"
	configx "openbank-advisor/pkg/config"
	_ "openbank-advisor/pkg/logger/autoload"
	ollamax "openbank-advisor/pkg/ollama"
	"openbank-advisor/server"
)

type AppConfig struct {
	CatalogPath string `envconfig:"CATALOG_PATH" default:"configs/config.yaml"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	defs, toolSettings, err := catalog.Load(appCfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.CatalogPath).Msg("load agent catalog")
	}
	agents, err := catalog.New(defs)
	if err != nil {
		log.Fatal().Err(err).Msg("build agent catalog")
	}

	tools := tool.DefaultRegistry()
	for _, setting := range toolSettings {
		if err := tools.SetEnabled(setting.Name, setting.Enabled); err != nil {
			log.Fatal().Err(err).Str("tool", setting.Name).Msg("apply tool setting")
		}
	}

	bankCfg := configx.MustNew[bankdata.Config]("BANK_API")
	bank := bankdata.MustNew(*bankCfg)

	ollamaCfg := configx.MustNew[ollamax.Config]("OLLAMA")
	models, err := llm.NewRegistry(context.Background(), *ollamaCfg, agents.Definitions())
	if err != nil {
		log.Fatal().Err(err).Msg("build model registry")
	}

	dispatcher, err := dispatch.New(agents, tools, bank, models)
	if err != nil {
		log.Fatal().Err(err).Msg("build dispatcher")
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	handler := server.NewHandler(dispatcher, agents, tools.Names(), bank, models)
	srv := server.New(*serverCfg, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}

	log.Info().Msg("shutdown complete")
}
