package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xetproxy"
	"xetproxy/config"
	"xetproxy/internal/application/usecase"
	"xetproxy/internal/domain/repository/broker"
	brokerInfra "xetproxy/internal/infrastructure/broker"
	"xetproxy/internal/infrastructure/xetcli"
	"xetproxy/internal/presentation/handler"
	"xetproxy/internal/presentation/router"
	"xetproxy/pkg/logger"
)

const (
	processWaitDelay = 5 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func HandleRun(args []string) {
	path := ""
	if len(args) > 2 {
		path = args[2]
	}

	cfg, err := config.Load(path)
	if err != nil {
		ExitOnError(err)
	}

	logger.InitGlobalLogger(&cfg.Logger)

	logger.Info("running xetproxy", "version", xetproxy.StringVersion(), "tool", cfg.Xet.BinPath)

	xetClient := xetcli.New(cfg.Xet, xetcli.ExecSpawner{WaitDelay: processWaitDelay})

	var publisher broker.Publisher = brokerInfra.NopPublisher{}

	if cfg.BrokerConfig.URI != "" {
		brokerClient, err := brokerInfra.NewClient(context.Background(), cfg.BrokerConfig)
		if err != nil {
			ExitOnError(fmt.Errorf("connecting to broker: %w", err))
		}
		defer brokerClient.Close()

		publisher = brokerInfra.NewPublisher(brokerClient, cfg.PublisherConfig)
	}

	resolver := usecase.NewResolver(xetClient)
	downloader := usecase.NewDownloader(resolver, xetClient, publisher, cfg.ChunkSize)

	downloadHandler := handler.NewDownloadHandler(downloader, cfg.ChunkSize)
	e := router.New(cfg.Server, downloadHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "address", cfg.Server.Address())

		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ExitOnError(fmt.Errorf("shutting down server: %w", err))
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		ExitOnError(err)
	}
}
