// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http serves a schemaroute API, or any other [http.Handler], as
// an [app.Runtime]. Request time and size are bounded by [Limits], which
// are usually read from the environment with [FromEnv].
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/z5labs/schemaroute"
	"github.com/z5labs/schemaroute/app"
	"github.com/z5labs/schemaroute/config"

	"github.com/sourcegraph/conc/pool"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TCPListener listens on the address read from Addr.
type TCPListener struct {
	Addr config.Reader[string]
}

// TCPListenerOption is a functional option for configuring a TCPListener.
type TCPListenerOption func(*TCPListener)

// Addr is a TCPListenerOption that sets the network address for the listener.
// The address should be in the form "host:port" or ":port".
func Addr(addr config.Reader[string]) TCPListenerOption {
	return func(tcpLn *TCPListener) {
		tcpLn.Addr = addr
	}
}

// AddrFromEnv reads the listen address from HTTP_ADDR.
func AddrFromEnv() config.Reader[string] {
	return config.Env("HTTP_ADDR")
}

// NewTCPListener creates a TCPListener which defaults to ":8080".
func NewTCPListener(options ...TCPListenerOption) TCPListener {
	tcpLn := TCPListener{
		Addr: config.EmptyReader[string](),
	}

	for _, option := range options {
		option(&tcpLn)
	}

	return tcpLn
}

// Read implements the [config.Reader] interface.
func (tcpLn TCPListener) Read(ctx context.Context) (config.Value[net.Listener], error) {
	addr, err := config.Read(ctx, config.Default(":8080", tcpLn.Addr))
	if err != nil {
		return config.Value[net.Listener]{}, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return config.Value[net.Listener]{}, err
	}

	return config.ValueOf(ln), nil
}

// TLSListener wraps the listener read from ln with TLS.
func TLSListener(ln config.Reader[net.Listener], tlsConfig config.Reader[*tls.Config]) config.Reader[net.Listener] {
	return config.ReaderFunc[net.Listener](func(ctx context.Context) (_ config.Value[net.Listener], err error) {
		defer try.Recover(&err)

		baseLn := config.Must(ctx, ln)
		cfg := config.Must(ctx, tlsConfig)

		return config.ValueOf(tls.NewListener(baseLn, cfg)), nil
	})
}

// Limits bounds the time and size of each request handled by a [Server].
type Limits struct {
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// MaxBodyBytes caps request bodies. Reading past it fails and the
	// rest package answers with 413. Zero leaves bodies unbounded.
	MaxBodyBytes int64
}

// DefaultLimits are used for any limit which is not configured.
var DefaultLimits = Limits{
	ReadTimeout:       5 * time.Second,
	ReadHeaderTimeout: 2 * time.Second,
	WriteTimeout:      10 * time.Second,
	IdleTimeout:       120 * time.Second,
	MaxHeaderBytes:    1 << 20,
	MaxBodyBytes:      4 << 20,
}

// LimitsFromEnv reads each limit from its HTTP_* variable, falling back
// to [DefaultLimits] field by field:
//
//	HTTP_READ_TIMEOUT, HTTP_READ_HEADER_TIMEOUT, HTTP_WRITE_TIMEOUT,
//	HTTP_IDLE_TIMEOUT, HTTP_MAX_HEADER_BYTES, HTTP_MAX_BODY_BYTES
func LimitsFromEnv() config.Reader[Limits] {
	return config.ReaderFunc[Limits](func(ctx context.Context) (_ config.Value[Limits], err error) {
		defer try.Recover(&err)

		duration := func(name string, def time.Duration) time.Duration {
			return config.MustOr(ctx, def, config.DurationFromString(config.Env(name)))
		}

		l := Limits{
			ReadTimeout:       duration("HTTP_READ_TIMEOUT", DefaultLimits.ReadTimeout),
			ReadHeaderTimeout: duration("HTTP_READ_HEADER_TIMEOUT", DefaultLimits.ReadHeaderTimeout),
			WriteTimeout:      duration("HTTP_WRITE_TIMEOUT", DefaultLimits.WriteTimeout),
			IdleTimeout:       duration("HTTP_IDLE_TIMEOUT", DefaultLimits.IdleTimeout),
			MaxHeaderBytes:    config.MustOr(ctx, DefaultLimits.MaxHeaderBytes, config.IntFromString(config.Env("HTTP_MAX_HEADER_BYTES"))),
			MaxBodyBytes:      config.MustOr(ctx, DefaultLimits.MaxBodyBytes, config.Int64FromString(config.Env("HTTP_MAX_BODY_BYTES"))),
		}
		return config.ValueOf(l), nil
	})
}

// Server describes where and how an http.Handler is served.
type Server struct {
	Listener        config.Reader[net.Listener]
	Limits          config.Reader[Limits]
	ShutdownTimeout config.Reader[time.Duration]
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithLimits replaces [DefaultLimits].
func WithLimits(l config.Reader[Limits]) ServerOption {
	return func(srv *Server) {
		srv.Limits = l
	}
}

// ShutdownTimeout bounds how long in flight requests are given to finish
// once the server is asked to stop. The default is 15 seconds.
func ShutdownTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.ShutdownTimeout = d
	}
}

// NewServer serves on the listener read from listener with
// [DefaultLimits] unless options say otherwise.
func NewServer(listener config.Reader[net.Listener], options ...ServerOption) Server {
	srv := Server{
		Listener:        listener,
		Limits:          config.EmptyReader[Limits](),
		ShutdownTimeout: config.EmptyReader[time.Duration](),
	}

	for _, option := range options {
		option(&srv)
	}

	return srv
}

// FromEnv is the [Server] configured entirely by the environment: the
// address from HTTP_ADDR, limits from [LimitsFromEnv] and the shutdown
// timeout from HTTP_SHUTDOWN_TIMEOUT.
func FromEnv() Server {
	return NewServer(
		NewTCPListener(Addr(AddrFromEnv())),
		WithLimits(LimitsFromEnv()),
		ShutdownTimeout(config.DurationFromString(config.Env("HTTP_SHUTDOWN_TIMEOUT"))),
	)
}

// App serves HTTP requests until its context is cancelled.
type App struct {
	log             *slog.Logger
	ls              net.Listener
	srv             *http.Server
	shutdownTimeout time.Duration
}

// Addr returns the address the server is listening on.
func (a App) Addr() net.Addr {
	return a.ls.Addr()
}

// Run serves requests and blocks until ctx is cancelled or serving fails.
// Cancelling ctx shuts the server down gracefully.
func (a App) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		a.log.InfoContext(ctx, "serving http", slog.String("addr", a.ls.Addr().String()))
		return a.srv.Serve(a.ls)
	})

	p.Go(func(ctx context.Context) error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()

		a.log.InfoContext(shutdownCtx, "shutting down http server")
		return a.srv.Shutdown(shutdownCtx)
	})

	err := p.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Build creates an App serving the handler built by b. Every request is
// traced with otelhttp under the span name "http.server" and its body is
// capped at [Limits.MaxBodyBytes].
func Build(srv Server, b app.Builder[http.Handler]) app.Builder[App] {
	return app.Bind(b, func(h http.Handler) app.Builder[App] {
		return app.BuilderFunc[App](func(ctx context.Context) (_ App, err error) {
			defer try.Recover(&err)

			limits := config.MustOr(ctx, DefaultLimits, srv.Limits)
			if limits.MaxBodyBytes > 0 {
				h = http.MaxBytesHandler(h, limits.MaxBodyBytes)
			}

			ln := config.Must(ctx, srv.Listener)

			httpServer := &http.Server{
				Handler:           otelhttp.NewHandler(h, "http.server"),
				ReadTimeout:       limits.ReadTimeout,
				ReadHeaderTimeout: limits.ReadHeaderTimeout,
				WriteTimeout:      limits.WriteTimeout,
				IdleTimeout:       limits.IdleTimeout,
				MaxHeaderBytes:    limits.MaxHeaderBytes,
				ErrorLog:          slog.NewLogLogger(schemaroute.LogHandler("http"), slog.LevelError),
			}

			return App{
				log:             schemaroute.Logger("http"),
				ls:              ln,
				srv:             httpServer,
				shutdownTimeout: config.MustOr(ctx, 15*time.Second, srv.ShutdownTimeout),
			}, nil
		})
	})
}
