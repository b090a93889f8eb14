// Package listener serves the HTTP surface: the town directory REST
// endpoints and the websocket upgrade that hands connections to the
// gateway.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/pixil98/go-log"
)

const shutdownTimeout = 10 * time.Second

type WebListener struct {
	port    uint16
	handler *Handler
}

func NewWebListener(port uint16, handler *Handler) *WebListener {
	return &WebListener{
		port:    port,
		handler: handler,
	}
}

func (l *WebListener) Start(ctx context.Context) error {
	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: l.handler.Routes(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := svr.Shutdown(shutCtx); err != nil {
				log.GetLogger(ctx).Errorf("shutting down web listener: %s", err)
			}
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	err := svr.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving http on port %d: %w", l.port, err)
	}

	return nil
}
