package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/inventory-core/internal/api"
	"github.com/example/inventory-core/internal/config"
	"github.com/example/inventory-core/internal/domain/item"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
	"github.com/example/inventory-core/internal/events"
	"github.com/example/inventory-core/internal/infrastructure/kafka"
	"github.com/example/inventory-core/internal/infrastructure/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Inventory Core")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[API] Inventory topic: %s", cfg.Kafka.InventoryTopic)

	db, err := store.ConnectPostgres(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("[API] Failed to ensure schema: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.InventoryTopic)
	defer producer.Close()
	publisher := events.NewBusPublisher(producer)

	itemStore := store.NewPostgresItemStore(db)
	reservationStore := store.NewPostgresReservationStore(db)
	transactionStore := store.NewPostgresTransactionStore(db)

	itemSvc := item.NewService(itemStore, itemStore, publisher)
	engine := reservation.NewEngine(reservationStore, itemStore, publisher)
	recorder := transaction.NewRecorder(transactionStore, itemStore)

	handlers := api.NewHandlers(itemSvc, engine, recorder)
	router := api.NewRouter(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[API] Server started on %s", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
