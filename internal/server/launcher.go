package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/frans1705/genieacs-mikrotik/internal/apperr"
	"github.com/frans1705/genieacs-mikrotik/internal/logger"
)

const (
	AltPortOffset   = 1000
	ShutdownTimeout = 10 * time.Second
)

// CandidatePorts is the configured port followed by the single fallback.
func CandidatePorts(p int) []int {
	return []int{p, p + AltPortOffset}
}

type Launcher struct {
	Host    string
	Port    int
	Handler http.Handler

	listen   func(network, addr string) (net.Listener, error)
	log      zerolog.Logger
	listener net.Listener
}

func NewLauncher(host string, port int, h http.Handler) *Launcher {
	return &Launcher{
		Host:    host,
		Port:    port,
		Handler: h,
		listen:  net.Listen,
		log:     logger.ComponentLogger("server"),
	}
}

// Listen binds the first free candidate port and returns it. Only
// "address in use" moves on to the next candidate.
func (l *Launcher) Listen() (int, error) {
	var lastErr error
	for i, port := range CandidatePorts(l.Port) {
		addr := net.JoinHostPort(l.Host, strconv.Itoa(port))
		ln, err := l.listen("tcp", addr)
		if err == nil {
			l.listener = ln
			bound := port
			if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
				bound = tcp.Port
			}
			if i > 0 {
				l.log.Warn().Int("configured", l.Port).Int("port", bound).Msg("configured port busy, using fallback port")
			}
			l.log.Info().Str("addr", addr).Int("port", bound).Msg("listening")
			return bound, nil
		}
		lastErr = err
		if !errors.Is(err, syscall.EADDRINUSE) {
			return 0, apperr.NewBindError("listen "+addr, err)
		}
		l.log.Warn().Err(err).Int("port", port).Msg("port in use")
	}
	return 0, apperr.NewBindError(fmt.Sprintf("ports %v all in use", CandidatePorts(l.Port)), lastErr)
}

// Serve runs the HTTP server until ctx is cancelled, then drains it.
func (l *Launcher) Serve(ctx context.Context) error {
	if l.listener == nil {
		return apperr.NewBindError("serve before listen", nil)
	}
	srv := &http.Server{
		Handler:           l.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(l.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// EnsureDirs creates every directory that does not exist yet.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return apperr.NewConfigError("create directory "+d, err)
		}
	}
	return nil
}
