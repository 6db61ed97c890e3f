package cmd

import (
	"context"
	"fmt"

	"artificer/config"
	"artificer/database"
	"artificer/events"
	"artificer/repository"
	"artificer/service"

	log "github.com/sirupsen/logrus"
)

// Services bundles the economy engine's operation surface. A request layer
// (already authenticated, resolving user identities) drives these.
type Services struct {
	User   service.UserService
	Shop   service.ShopService
	Craft  service.CraftService
	Market service.MarketService
	Admin  service.AdminService
}

// Run initializes the engine and blocks until the context is canceled.
// A transport layer registers itself through the attach hooks; the engine
// itself carries no routing or authentication.
func Run(ctx context.Context, attach ...func(*Services)) error {
	log.Info("Starting artificer economy engine...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()

	// Forward committed economy events to NATS when configured
	var natsPublisher *events.NATSPublisher
	if cfg.NatsURL != "" {
		log.WithField("url", cfg.NatsURL).Info("Connecting to NATS...")
		natsPublisher, err = events.NewNATSPublisher(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		natsPublisher.AttachToBus(eventBus)
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	svcs := &Services{
		User:   service.NewUserService(uowFactory),
		Shop:   service.NewShopService(uowFactory, service.NewRand()),
		Craft:  service.NewCraftService(uowFactory, service.NewRand()),
		Market: service.NewMarketService(uowFactory),
		Admin:  service.NewAdminService(uowFactory),
	}
	for _, fn := range attach {
		fn(svcs)
	}

	log.WithField("environment", cfg.Environment).Info("Engine is running")

	<-ctx.Done()

	log.Info("Shutting down engine...")
	return nil
}
