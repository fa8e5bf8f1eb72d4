package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/inventory-core/internal/config"
	"github.com/example/inventory-core/internal/domain/product"
	"github.com/example/inventory-core/internal/domain/reservation"
	"github.com/example/inventory-core/internal/domain/transaction"
	"github.com/example/inventory-core/internal/events"
	"github.com/example/inventory-core/internal/infrastructure/cache"
	"github.com/example/inventory-core/internal/infrastructure/kafka"
	"github.com/example/inventory-core/internal/infrastructure/store"
	"github.com/example/inventory-core/internal/orchestrator"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Consumer] %v", err)
	}

	log.Println("[Consumer] ========================================")
	log.Println("[Consumer] Inventory Core - Order Event Consumer")
	log.Println("[Consumer] ========================================")
	log.Printf("[Consumer] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Consumer] Topics: %s, %s", cfg.Kafka.OrdersTopic, cfg.Kafka.ProductsTopic)

	db, err := store.ConnectPostgres(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("[Consumer] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("[Consumer] Failed to ensure schema: %v", err)
	}
	log.Println("[Consumer] Connected to PostgreSQL")

	productCache, err := cache.NewRedisProductCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		// The cache is an optimization; run without it rather than refuse to start.
		log.Printf("[Consumer] Redis unavailable, running without product cache: %v", err)
	} else {
		defer productCache.Close()
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.InventoryTopic)
	defer producer.Close()
	publisher := events.NewBusPublisher(producer)

	itemStore := store.NewPostgresItemStore(db)
	reservationStore := store.NewPostgresReservationStore(db)
	transactionStore := store.NewPostgresTransactionStore(db)
	productStore := store.NewPostgresProductStore(db)

	engine := reservation.NewEngine(reservationStore, itemStore, publisher)
	recorder := transaction.NewRecorder(transactionStore, itemStore)

	orderHandler := orchestrator.NewHandler(engine, recorder, itemStore, productStore, cacheOrNil(productCache), publisher)
	productHandler := orchestrator.NewProductSyncHandler(productStore, cacheOrNil(productCache))

	orderConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.GroupID)
	defer orderConsumer.Close()
	productConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ProductsTopic, cfg.Kafka.GroupID)
	defer productConsumer.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		log.Println("[Consumer] Consuming order events...")
		if err := orderConsumer.Consume(ctx, orderHandler.HandleEvent); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Consumer] Order consumer error: %v", err)
			}
		}
	}()

	go func() {
		defer wg.Done()
		log.Println("[Consumer] Consuming product events...")
		if err := productConsumer.Consume(ctx, productHandler.HandleEvent); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Consumer] Product consumer error: %v", err)
			}
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Consumer] Shutting down...")
	cancel()
	wg.Wait()
}

// cacheOrNil keeps the orchestrator's nil check meaningful when redis is
// down: a typed nil pointer must not masquerade as a usable cache.
func cacheOrNil(c *cache.RedisProductCache) product.Cache {
	if c == nil {
		return nil
	}
	return c
}
