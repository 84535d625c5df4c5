package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/banking-core/internal/handlers/v1/account"
	"github.com/carson-networks/banking-core/internal/handlers/v1/status"
	"github.com/carson-networks/banking-core/internal/handlers/v1/transaction"
	"github.com/carson-networks/banking-core/internal/logging"
	"github.com/carson-networks/banking-core/internal/metrics"
	"github.com/carson-networks/banking-core/internal/sandbox"
	"github.com/carson-networks/banking-core/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Storage  *storage.Storage
	Bank     *sandbox.Bank
	Tokens   *sandbox.TokenIssuer
	Registry *prometheus.Registry
}

// Router builds the sandbox routes. The v1 operations sit behind bearer
// auth; /status and /metrics do not.
func (r *Rest) Router() (http.Handler, error) {
	httpMetrics := metrics.NewHTTPMetrics("sandbox")
	if err := httpMetrics.Register(r.Registry); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(httpMetrics.Middleware)

	statusHandler := status.NewHandler(r.Storage)
	router.Get("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))
	router.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{}))

	router.Group(func(group chi.Router) {
		group.Use(logging.Middleware(r.Logger))

		humaAPI := humachi.New(group, huma.DefaultConfig("Banking Sandbox", "1.0.0"))
		humaAPI.UseMiddleware(BearerAuth(humaAPI, r.Tokens))

		account.NewListAccountsHandler(r.Bank).Register(humaAPI)
		transaction.NewTransferHandler(r.Bank).Register(humaAPI)
		transaction.NewVerifyOTPHandler(r.Bank).Register(humaAPI)
		transaction.NewGetTransactionHandler(r.Bank).Register(humaAPI)
	})

	return router, nil
}

// Serve blocks until ctx is cancelled or the listener fails.
func (r *Rest) Serve(ctx context.Context) error {
	handler, err := r.Router()
	if err != nil {
		return err
	}

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           handler,
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
		return err
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
