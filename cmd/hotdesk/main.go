package main

import (
	"github.com/matej-podzemny/hotdesk-helper/internal/booking"
	"github.com/matej-podzemny/hotdesk-helper/internal/bookinglist"
	"github.com/matej-podzemny/hotdesk-helper/internal/credentials"
	"github.com/matej-podzemny/hotdesk-helper/internal/hotdesk"
	"github.com/matej-podzemny/hotdesk-helper/internal/session"
	"github.com/matej-podzemny/hotdesk-helper/pkg/app"
	"github.com/matej-podzemny/hotdesk-helper/pkg/client"
	"github.com/matej-podzemny/hotdesk-helper/pkg/config"
	"github.com/matej-podzemny/hotdesk-helper/pkg/middleware"
)

const ServiceName = "hotdesk-helper"

// sessionSweepDivisor spaces expiry sweeps at a fraction of the TTL.
const sessionSweepDivisor = 4

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting hot-desk booking helper")

	remote := hotdesk.NewClient(client.NewHttpClient(cfg.APIBase, cfg.UpstreamTimeout), cfg.Log)

	credStore, err := credentials.NewStore(cfg.CredentialsDB, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Could not open credentials store", "path", cfg.CredentialsDB, "error", err)
	}

	validator := credentials.NewValidator(cfg.Log)
	bookingSvc := booking.NewService(remote, validator, cfg.Log)
	listsSvc := bookinglist.NewService(remote, nil, cfg.Log)

	sessions := session.NewStore(cfg.SessionTTL, nil, cfg.Log)
	sessions.StartSweeping(cfg.SessionTTL / sessionSweepDivisor)

	guard := middleware.NewInFlightGuard()

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(sessions.Stop)
	serverApp.OnShutdown(func() {
		if err := credStore.Close(); err != nil {
			cfg.Log.Error("Could not close credentials store", "error", err)
		}
	})
	serverApp.SetApp(
		session.NewHandler(sessions, validator, credStore, nil, cfg.Log),
		session.NewBookingsHandler(sessions, bookingSvc, listsSvc, credStore, guard, cfg.Log),
	)
	serverApp.Run()
}
