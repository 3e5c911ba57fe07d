package main

import (
	"strings"

	"go.uber.org/zap"

	"rxclaims/internal/config"
	"rxclaims/internal/logging"
	"rxclaims/internal/metrics"
	"rxclaims/internal/metrics/datadog"
	"rxclaims/internal/metrics/prompush"
)

// setupMetrics installs the backend named in p.Metrics and returns a func
// that flushes it. A backend that fails to start leaves metrics disabled.
func setupMetrics(p config.Pipeline) (flush func()) {
	nop := func() {}
	name := strings.ToLower(strings.TrimSpace(p.Metrics.Backend))

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		logging.Debug("metrics: disabled")
		return nop
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.DatadogAddr,
			Namespace: "rxclaims.",
		})
	default:
		logging.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", name))
		return nop
	}
	if err != nil {
		logging.Warn("metrics: backend init failed; metrics disabled", zap.String("backend", name), zap.Error(err))
		return nop
	}

	metrics.SetBackend(b)
	logging.Info("metrics: backend ready", zap.String("backend", name), zap.String("job", p.Job))
	return func() {
		if err := metrics.Flush(); err != nil {
			logging.Warn("metrics: flush failed", zap.String("backend", name), zap.Error(err))
		}
	}
}
