/*
main.go - stock transfer API server

STARTUP SEQUENCE:
 1. Load configuration from the environment (optionally a .env file)
 2. Open the transfer store (sqlite, mongo or memory)
 3. Wire stock, requisition and warehouse sources (csv or erp)
 4. Start the snapshot refresh schedule
 5. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/stocktransfer/pkg/application/services/transfer"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/config"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/events"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/logger"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/cache"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/erp"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/mongodb"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/scheduler"
	"github.com/vsinha/stocktransfer/pkg/interfaces/api"
)

// sources are the read-side collaborators of the transfer service
type sources struct {
	stock        repositories.StockRepository
	requisitions repositories.RequisitionRepository
	warehouses   repositories.WarehouseRepository
	transferred  repositories.TransferredRequisitionLister
}

func main() {
	envFile := flag.String("env", "", "Optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transfers, closeStore, err := openTransferStore(ctx, cfg.Store, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init transfer store", zap.Error(err))
	}
	defer closeStore()

	src, err := openSources(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init data sources", zap.Error(err))
	}

	stockCache := cache.NewStockRepository(src.stock, baseLogger)
	if err := stockCache.Refresh(ctx); err != nil {
		// Served lazily once the upstream answers.
		baseLogger.Warn("initial stock snapshot failed", zap.Error(err))
	}

	eventStore := events.NewInMemoryEventStoreWithLogger(baseLogger)
	if err := eventStore.Subscribe(events.AllTransferEvents,
		events.NewLoggingHandler(baseLogger.Named("events"), events.AllTransferEvents...)); err != nil {
		baseLogger.Fatal("failed to subscribe event logger", zap.Error(err))
	}

	opts := []transfer.Option{
		transfer.WithEventStore(eventStore),
		transfer.WithLogger(baseLogger),
	}
	if src.transferred != nil {
		opts = append(opts, transfer.WithTransferredLister(src.transferred))
	}
	service := transfer.NewService(stockCache, src.requisitions, src.warehouses, transfers, opts...)

	sched := scheduler.NewScheduler(cfg.Refresh.CronSchedule, stockCache, baseLogger)
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	handler := api.NewHandler(service, baseLogger)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
			zap.String("data_source", cfg.Data.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	eventStore.Wait()
}

func openTransferStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (repositories.TransferRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverMongo:
		repo, err := mongodb.NewTransferRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(context.Background()); err != nil {
				log.Error("failed to close mongodb connection", zap.Error(err))
			}
		}, nil

	case config.DriverMemory:
		return memory.NewTransferRepository(), func() {}, nil

	default:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close sqlite store", zap.Error(err))
			}
		}, nil
	}
}

func openSources(cfg *config.Config, log *zap.Logger) (*sources, error) {
	if cfg.Data.Source == config.SourceERP {
		client := erp.NewClient(cfg.ERP, log)
		return &sources{stock: client, requisitions: client, warehouses: client, transferred: client}, nil
	}

	scenario, err := csv.NewLoader().LoadScenario(cfg.Data.ScenarioDir)
	if err != nil {
		return nil, err
	}

	requisitions := memory.NewRequisitionRepository()
	if err := requisitions.LoadRequisitions(scenario.Requisitions); err != nil {
		return nil, err
	}

	return &sources{
		stock:        csv.NewStockFileRepository(filepath.Join(cfg.Data.ScenarioDir, csv.StockFile)),
		requisitions: requisitions,
		warehouses:   memory.NewWarehouseRepository(scenario.Warehouses...),
	}, nil
}
