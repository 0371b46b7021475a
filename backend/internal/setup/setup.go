package setup

import (
	"context"
	"fmt"

	"github.com/itchan-dev/boardstore/backend/internal/handler"
	"github.com/itchan-dev/boardstore/backend/internal/service"
	"github.com/itchan-dev/boardstore/backend/internal/storage"
	"github.com/itchan-dev/boardstore/backend/internal/storage/memory"
	"github.com/itchan-dev/boardstore/backend/internal/storage/mongo"
	"github.com/itchan-dev/boardstore/backend/internal/storage/pg"
	"github.com/itchan-dev/boardstore/backend/internal/storage/redis"
	"github.com/itchan-dev/boardstore/backend/internal/utils"
	"github.com/itchan-dev/boardstore/shared/config"
	"github.com/itchan-dev/boardstore/shared/logger"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage storage.Storage
	Handler *handler.Handler
	Config  *config.Config
}

// SetupDependencies connects the configured storage driver and wires the
// services and handlers on top of it.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	store, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	validator := utils.New()
	thread := service.NewThread(store, validator, cfg.Public)
	reply := service.NewReply(store, validator)

	h := handler.New(thread, reply, cfg, store)

	return &Dependencies{
		Storage: store,
		Handler: h,
		Config:  cfg,
	}, nil
}

func NewStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	logger.Log.Info("initializing storage", "driver", cfg.Public.StorageDriver)

	switch cfg.Public.StorageDriver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverPostgres:
		s, err := pg.New(ctx, cfg.Private.Pg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := mongo.New(ctx, cfg.Private.Mongo)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		s, err := redis.New(ctx, cfg.Private.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Public.StorageDriver)
	}
}
