package engine

import (
	"context"
	"fmt"
	"time"

	promodel "github.com/prometheus/common/model"
	"github.com/rs/zerolog"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
	"github.com/neogan/sre-toolkit/pkg/alertmanager"
	"github.com/neogan/sre-toolkit/pkg/logging"
	"github.com/neogan/sre-toolkit/pkg/prometheus"
)

const correlationTimeout = 10 * time.Second

const defaultCorrelateQuery = "rate(http_requests_total{status=~\"5..\"}[1m])"

// correlateMetrics runs the optional post-run Prometheus correlation query
// and, if the run degraded past the Adaptive Pool Governor's threshold,
// posts a best-effort Alertmanager alert. Both steps are logged-and-ignored
// on failure: a correlation or alerting problem never fails the run itself.
func correlateMetrics(ctx context.Context, cfg model.LoadTestConfig, counters model.TestCounters, startedAt time.Time) *model.ExternalMetricResult {
	logger := logging.WithComponent("chaos-load-correlation")

	var result *model.ExternalMetricResult
	if cfg.CorrelatePrometheusURL != "" {
		result = queryCorrelation(ctx, cfg, logger)
	}

	if cfg.AlertOnDegradationURL != "" && degraded(counters) {
		postDegradationAlert(ctx, cfg, counters, startedAt, logger)
	}

	return result
}

func queryCorrelation(ctx context.Context, cfg model.LoadTestConfig, logger zerolog.Logger) *model.ExternalMetricResult {
	ctx, cancel := context.WithTimeout(ctx, correlationTimeout)
	defer cancel()

	client, err := prometheus.NewClient(&prometheus.Config{URL: cfg.CorrelatePrometheusURL}, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("building correlation prometheus client")
		return nil
	}

	query := cfg.CorrelateQuery
	if query == "" {
		query = defaultCorrelateQuery
	}

	value, err := client.Query(ctx, query, time.Now())
	if err != nil {
		logger.Error().Err(err).Str("query", query).Msg("correlation query failed")
		return nil
	}

	scalar, ok := firstSampleValue(value)
	if !ok {
		logger.Warn().Str("query", query).Msg("correlation query returned no samples")
		return nil
	}

	return &model.ExternalMetricResult{Query: query, Value: scalar}
}

func postDegradationAlert(ctx context.Context, cfg model.LoadTestConfig, counters model.TestCounters, startedAt time.Time, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, correlationTimeout)
	defer cancel()

	client, err := alertmanager.NewClient(&alertmanager.Config{URL: cfg.AlertOnDegradationURL}, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("building alertmanager client")
		return
	}

	alert := alertmanager.PostableAlert{
		Labels: map[string]string{
			"alertname": "ChaosLoadConnectionDegradation",
			"url":       cfg.URL,
			"severity":  "warning",
		},
		Annotations: map[string]string{
			"summary": fmt.Sprintf("connection error ratio crossed %d%% (%d/%d requests)",
				connectionErrorThresholdPercent, counters.ConnectionErrors, counters.Completed),
		},
		StartsAt: startedAt,
	}

	if err := client.PostAlerts(ctx, []alertmanager.PostableAlert{alert}); err != nil {
		logger.Error().Err(err).Msg("posting degradation alert")
	}
}

// firstSampleValue extracts a single float64 out of whichever Prometheus
// value type an instant query returned. Only Vector and Scalar are
// meaningful for the single-number correlation this enrichment reports.
func firstSampleValue(v promodel.Value) (float64, bool) {
	switch val := v.(type) {
	case promodel.Vector:
		if len(val) == 0 {
			return 0, false
		}
		return float64(val[0].Value), true
	case *promodel.Scalar:
		return float64(val.Value), true
	default:
		return 0, false
	}
}

func degraded(c model.TestCounters) bool {
	if c.Completed < minRequestsForAdaptive || c.ConnectionErrors == 0 {
		return false
	}
	return (c.ConnectionErrors*100)/c.Completed >= connectionErrorThresholdPercent
}
