// Command brewctl is the process entrypoint for the brewing-automation
// control plane: it loads the typed configuration, compiles the message
// registry, wires the CAN port and supervisor, and serves the HTTP API
// until terminated (spec.md §6 "Environment").
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brewbot/controller/pkg/canport"
	"github.com/brewbot/controller/pkg/config"
	"github.com/brewbot/controller/pkg/httpapi"
	"github.com/brewbot/controller/pkg/registry"
	"github.com/brewbot/controller/pkg/supervisor"
	"github.com/sirupsen/logrus"
)

const defaultHTTPAddr = ":8080"

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())

	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	reg, err := registry.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to compile message registry")
	}

	port := canport.New(portConfig(cfg), log)
	sup := supervisor.New(cfg, reg, port, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api := httpapi.New(sup, log)
	go func() {
		if err := api.ListenAndServe(defaultHTTPAddr); err != nil {
			log.WithError(err).Error("http api server stopped")
		}
	}()

	log.WithField("config", path).Info("brewctl starting")
	sup.Run(ctx)
	log.Info("brewctl shutting down")
}

func portConfig(cfg *config.Config) canport.Config {
	if cfg.Port.Bus == nil {
		return canport.Config{}
	}
	return canport.Config{
		InterfaceName:  cfg.Port.Bus.Interface,
		Channel:        cfg.Port.Bus.Channel,
		ReceiveTimeout: time.Duration(cfg.Port.Bus.ReceiveTimeout * float64(time.Second)),
	}
}
