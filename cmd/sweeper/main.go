package main

import (
	"context"
	"log"

	"github.com/example/inventory-core/internal/config"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/events"
	"github.com/example/inventory-core/internal/infrastructure/kafka"
	"github.com/example/inventory-core/internal/infrastructure/store"
)

// One-shot expiry sweep, intended to be run on a schedule (cron or similar).
// The core never owns a background timer.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Sweeper] %v", err)
	}

	db, err := store.ConnectPostgres(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("[Sweeper] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.InventoryTopic)
	defer producer.Close()
	publisher := events.NewBusPublisher(producer)

	itemStore := store.NewPostgresItemStore(db)
	reservationStore := store.NewPostgresReservationStore(db)
	engine := reservation.NewEngine(reservationStore, itemStore, publisher)

	count, err := engine.ProcessExpired(context.Background())
	if err != nil {
		log.Fatalf("[Sweeper] Sweep failed: %v", err)
	}
	log.Printf("[Sweeper] Cancelled %d expired reservation(s)", count)
}
