package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/leave"
	"ems/internal/domain/tasks"
	"ems/internal/domain/tickets"
	"ems/internal/platform/config"
	"ems/internal/platform/db"
)

// Stores holds the storage backends selected by STORAGE_BACKEND and
// SESSION_BACKEND.
type Stores struct {
	Users    auth.UserStore
	Sessions auth.SessionStore
	Tasks    tasks.StoreAPI
	Leaves   leave.StoreAPI
	Tickets  tickets.StoreAPI
	Audit    audit.StoreAPI

	Pool  *pgxpool.Pool
	Redis *redis.Client
}

func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	s := &Stores{}
	if cfg.NeedsPostgres() {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.Pool = pool
	}

	memUsers := auth.NewMemoryStore()
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		s.Users = auth.NewStore(s.Pool)
		s.Tasks = tasks.NewStore(s.Pool)
		s.Leaves = leave.NewStore(s.Pool)
		s.Tickets = tickets.NewStore(s.Pool)
		s.Audit = audit.NewStore(s.Pool)
	default:
		s.Users = memUsers
		s.Tasks = tasks.NewMemoryStore()
		s.Leaves = leave.NewMemoryStore()
		s.Tickets = tickets.NewMemoryStore()
		s.Audit = audit.NewMemoryStore()
	}

	switch cfg.SessionBackend {
	case config.BackendPostgres:
		s.Sessions = auth.NewStore(s.Pool)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.Redis = client
		s.Sessions = auth.NewRedisSessionStore(client)
	default:
		s.Sessions = memUsers
	}

	slog.Info("storage ready", "storage", cfg.StorageBackend, "sessions", cfg.SessionBackend)
	return s, nil
}

// Ping checks every network backend in use.
func (s *Stores) Ping(ctx context.Context) error {
	if s.Pool != nil {
		if err := s.Pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *Stores) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
