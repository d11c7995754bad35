package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	inbound_httpapi "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/inbound/httpapi"
	outbound_cache "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/cache"
	outbound_messaging "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/messaging"
	outbound_repository "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/repository"
	outbound_storage "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/storage"
	outbound_store "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/store"
	outbound_transcoder "github.com/akamhy/Video-Streaming-Dockerized-App/internal/adapters/outbound/transcoder"
	core_ports "github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/ports"
	core_services "github.com/akamhy/Video-Streaming-Dockerized-App/internal/core/services"
)

func main() {
	fmt.Println("🚀 Video chunk store starting...")

	// Start Prometheus metrics server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Println("📊 Metrics server started on :9090")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			log.Printf("⚠️ Metrics server failed: %v", err)
		}
	}()

	// Create root context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verify dependencies
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			log.Fatalf("❌ Error: %s not found in system", tool)
		}
	}

	rdb, err := initRedis(ctx)
	if err != nil {
		log.Fatal("❌ Error connecting to Redis: ", err)
	}
	defer rdb.Close()

	chunkStore := outbound_store.NewRedisChunkStore(rdb)

	var registry core_ports.MetadataRegistry
	switch backend := getEnv("METADATA_BACKEND", "redis"); backend {
	case "redis":
		registry = outbound_store.NewRedisMetadataRegistry(rdb, getEnv("REDIS_HASH_NAME", outbound_store.DefaultHashName))
	case "postgres":
		dbPool, err := initDatabase(ctx)
		if err != nil {
			log.Fatal("❌ Error initializing database: ", err)
		}
		defer dbPool.Close()
		registry, err = outbound_repository.NewPostgresMetadataRegistry(ctx, dbPool)
		if err != nil {
			log.Fatal("❌ Error initializing metadata registry: ", err)
		}
	default:
		log.Fatalf("❌ Unknown METADATA_BACKEND %q (want redis or postgres)", backend)
	}

	basePath := getEnv("BASE_TMPFS_VIDEO_PATH", "/tmp/videos")
	workspace, err := outbound_storage.NewFSWorkspace(basePath)
	if err != nil {
		log.Fatal("❌ Error creating workspace: ", err)
	}
	artifactCache, err := outbound_cache.NewFSArtifactCache(filepath.Join(basePath, "cache"))
	if err != nil {
		log.Fatal("❌ Error creating artifact cache: ", err)
	}

	ffmpeg := outbound_transcoder.NewPooledTranscoder(
		outbound_transcoder.NewFFmpegTranscoder(),
		int64(runtime.NumCPU()),
	)

	// NATS is optional: without it the service runs, just without events.
	var events core_ports.EventPublisher
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		publisher, err := outbound_messaging.NewNatsPublisherAdapter(natsURL)
		if err != nil {
			log.Printf("⚠️ Error connecting to NATS: %v. Continuing without events.", err)
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	videos := core_services.NewVideoService(registry, chunkStore, artifactCache, workspace, ffmpeg, events)
	api := inbound_httpapi.NewServer(videos)

	server := &http.Server{
		Addr:    ":" + getEnv("PORT", "8000"),
		Handler: api.Handler(),
	}

	go func() {
		log.Printf("✅ API listening on %s. Press Ctrl+C to stop.", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ API server failed: ", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Println("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ API shutdown failed: %v", err)
	}

	log.Println("🛑 Stopped.")
}

func initRedis(ctx context.Context) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379"))
	client := redis.NewClient(&redis.Options{Addr: addr})

	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		log.Printf("⏳ Waiting for Redis... (%d/10)", i+1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return nil, err
}

func initDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbHost := getEnv("DB_HOST", "db")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)

	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, connStr)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
		}
		log.Printf("⏳ Waiting for database... (%d/10)", i+1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return nil, err
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
