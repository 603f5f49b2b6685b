package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/GoArmGo/geeklib/internal/core/ports"
	"github.com/GoArmGo/geeklib/internal/usecase"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  http.Handler
	consumer ports.LibraryEventConsumer
	archiver usecase.EventArchiver
	closers  []func() error
}

// NewApp собирает приложение; closers вызываются в Shutdown в обратном порядке.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	handler http.Handler,
	consumer ports.LibraryEventConsumer,
	archiver usecase.EventArchiver,
	closers ...func() error,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		consumer: consumer,
		archiver: archiver,
		closers:  closers,
	}
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode, "config", a.cfg.String())

	var err error
	switch mode {
	case ModeServer:
		var ln net.Listener
		ln, err = net.Listen("tcp", ":"+a.cfg.ServerPort)
		if err != nil {
			err = fmt.Errorf("не удалось открыть порт %s: %w", a.cfg.ServerPort, err)
			break
		}
		err = runServer(ctx, ln, a.handler, a.logger)
	case ModeWorker:
		err = runWorker(ctx, a.consumer, a.archiver, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with error", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
