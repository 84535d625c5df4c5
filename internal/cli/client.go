package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/metrics"
	"github.com/carson-networks/banking-core/internal/operator"
	"github.com/carson-networks/banking-core/internal/sandbox"
	"github.com/carson-networks/banking-core/internal/service"
)

const sandboxSessionTTL = time.Hour

// clientApp is the client side wiring shared by the commands that talk to
// the backend. Every call goes through the operator pool.
type clientApp struct {
	operator      *operator.OperatorDelegator
	metricsServer *http.Server
}

func newClientApp() (*clientApp, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector("banking_client")
	if err := collector.Register(registry); err != nil {
		return nil, err
	}

	var fallback backend.FallbackProvider
	if env.FallbackFile != "" {
		static, err := backend.LoadStaticFallback(env.FallbackFile)
		if err != nil {
			return nil, err
		}
		fallback = static
	}

	session, err := newSession()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(env, session, logger, collector)
	svc := service.NewService(client, fallback, env.Policy, logger, collector)

	app := &clientApp{operator: operator.NewOperatorDelegator(svc, env.OperatorWorkers, logger)}
	app.operator.Start()

	if metricsAddr != "" {
		app.metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Warn("Cli.Metrics.listen error")
			}
		}()
	}

	return app, nil
}

// newSession uses SESSION_TOKEN when set. Otherwise it mints a short-lived
// sandbox token for SESSION_OWNER_ID.
func newSession() (backend.Session, error) {
	session := backend.Session{Token: env.SessionToken, OwnerID: env.SessionOwnerID}
	if session.Token != "" || session.OwnerID == "" {
		return session, nil
	}

	token, err := sandbox.NewTokenIssuer(env.JWTSecret).Mint(session.OwnerID, sandboxSessionTTL)
	if err != nil {
		return backend.Session{}, err
	}
	session.Token = token
	logger.WithField("ownerID", session.OwnerID).Debug("Cli.Session.minted")
	return session, nil
}

func (a *clientApp) Close() {
	a.operator.Stop()
	if a.metricsServer != nil {
		_ = a.metricsServer.Close()
	}
}
