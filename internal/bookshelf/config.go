// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/z5labs/schemaroute"
	"github.com/z5labs/schemaroute/app"
	"github.com/z5labs/schemaroute/config"
	"github.com/z5labs/schemaroute/health"
	"github.com/z5labs/schemaroute/rest"
)

// Store kinds accepted by BOOKSHELF_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Info is the document info, optionally read from a YAML file.
type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// Config holds the readers the service is assembled from.
type Config struct {
	Info         config.Reader[Info]
	Store        config.Reader[string]
	PostgresURL  config.Reader[string]
	Minio        config.Reader[MinioConfig]
	KafkaBrokers config.Reader[[]string]
	KafkaTopic   config.Reader[string]
}

// InfoFromFile reads [Info] from the YAML file at path.
func InfoFromFile(path config.Reader[string]) config.Reader[Info] {
	return config.UnmarshalYAML[Info](config.File(path))
}

// MinioFromEnv reads MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY,
// MINIO_BUCKET and MINIO_SECURE. The value is unset unless MINIO_ENDPOINT is.
func MinioFromEnv() config.Reader[MinioConfig] {
	return config.Map(config.Env("MINIO_ENDPOINT"), func(ctx context.Context, endpoint string) (MinioConfig, error) {
		secure, err := config.Read(ctx, config.Default(false, config.BoolFromString(config.Env("MINIO_SECURE"))))
		if err != nil {
			return MinioConfig{}, err
		}
		return MinioConfig{
			Endpoint:  endpoint,
			AccessKey: config.MustOr(ctx, "", config.Env("MINIO_ACCESS_KEY")),
			SecretKey: config.MustOr(ctx, "", config.Env("MINIO_SECRET_KEY")),
			Bucket:    config.MustOr(ctx, "covers", config.Env("MINIO_BUCKET")),
			Secure:    secure,
		}, nil
	})
}

// ConfigFromEnv reads the service configuration from the environment,
// with the document info read from the YAML file at infoPath, if any.
func ConfigFromEnv(infoPath config.Reader[string]) Config {
	return Config{
		Info:         InfoFromFile(infoPath),
		Store:        config.Env("BOOKSHELF_STORE"),
		PostgresURL:  config.Env("POSTGRES_URL"),
		Minio:        MinioFromEnv(),
		KafkaBrokers: config.StringsFromString(config.Env("KAFKA_BROKERS")),
		KafkaTopic:   config.Env("KAFKA_TOPIC"),
	}
}

func defaultInfo(info Info) Info {
	if info.Title == "" {
		info.Title = "Bookshelf"
	}
	if info.Version == "" {
		info.Version = "v1"
	}
	return info
}

// NewApi serves svc under /api/v1 with the given readiness monitor.
func NewApi(info Info, svc *Service, ready health.Monitor) *rest.Api {
	info = defaultInfo(info)

	opts := []rest.ApiOption{rest.Readiness(ready)}
	if info.Description != "" {
		opts = append(opts, rest.Description(info.Description))
	}

	api := rest.NewApi(info.Title, info.Version, opts...)
	api.Mount("/api/v1", svc.Router())
	return api
}

// Document generates the document without connecting to any backend.
func Document(ctx context.Context, cfg Config) (*rest.Api, error) {
	info, err := config.Read(ctx, config.Default(Info{}, cfg.Info))
	if err != nil {
		return nil, err
	}
	return NewApi(info, NewService(NewMemoryStore()), health.MonitorFunc(alwaysHealthy)), nil
}

func optional[T any](ctx context.Context, r config.Reader[T]) (T, bool, error) {
	v, err := config.Read(ctx, r)
	if errors.Is(err, config.ErrValueNotSet) {
		return v, false, nil
	}
	return v, err == nil, err
}

func alwaysHealthy(context.Context) (bool, error) {
	return true, nil
}

// Open connects every configured backend and returns the api. Connections
// are closed by hooks once the runtime returns.
func Open(ctx context.Context, cfg Config, hooks *app.HookRegistry) (*rest.Api, error) {
	log := schemaroute.Logger("bookshelf")

	info, err := config.Read(ctx, config.Default(Info{}, cfg.Info))
	if err != nil {
		return nil, err
	}

	kind, err := config.Read(ctx, config.Default(StoreMemory, cfg.Store))
	if err != nil {
		return nil, err
	}

	var monitors []health.Monitor
	var opts []Option

	var store Store
	switch kind {
	case StoreMemory:
		store = NewMemoryStore()
	case StorePostgres:
		url, err := config.Read(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("POSTGRES_URL: %w", err)
		}
		pg, err := OpenPostgres(ctx, url)
		if err != nil {
			return nil, err
		}
		hooks.Close(pg)
		monitors = append(monitors, health.Named("postgres", health.Ping(pg, 2*time.Second)))
		store = pg
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
	log.InfoContext(ctx, "using book store", slog.String("store", kind))

	mc, ok, err := optional(ctx, cfg.Minio)
	if err != nil {
		return nil, err
	}
	if ok {
		covers, err := OpenMinio(ctx, mc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Covers(covers))
		log.InfoContext(ctx, "storing covers in minio", slog.String("bucket", mc.Bucket))
	}

	brokers, ok, err := optional(ctx, cfg.KafkaBrokers)
	if err != nil {
		return nil, err
	}
	if ok && len(brokers) > 0 {
		topic, err := config.Read(ctx, config.Default("books", cfg.KafkaTopic))
		if err != nil {
			return nil, err
		}
		pub, err := OpenKafka(ctx, brokers, topic)
		if err != nil {
			return nil, err
		}
		hooks.Close(pub)
		monitors = append(monitors, health.Named("kafka", health.Ping(pub, 2*time.Second)))
		opts = append(opts, Events(pub))
		log.InfoContext(ctx, "publishing events to kafka", slog.String("topic", topic))
	}

	var ready health.Monitor = health.MonitorFunc(alwaysHealthy)
	if len(monitors) > 0 {
		ready = health.And(monitors...)
	}

	return NewApi(info, NewService(store, opts...), ready), nil
}
