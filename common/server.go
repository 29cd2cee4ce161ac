package common

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/farmkit/stratreg/log"
)

// Grace period given to in-flight requests once the context is done.
const shutdownTimeout = 5 * time.Second

// RunServer serves until ctx is done, then shuts the server down gracefully.
// A server that stops for any other reason returns its error.
func RunServer(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "endpoint", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server stopped", "endpoint", server.Addr, "err", err)
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "endpoint", server.Addr, "err", err)
		return err
	}
	logger.Info("server shut down", "endpoint", server.Addr)
	return nil
}
