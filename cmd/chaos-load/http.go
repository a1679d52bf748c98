// Package main provides the HTTP load testing entry point for chaos engineering.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neogan/sre-toolkit/internal/chaos-load/config"
	"github.com/neogan/sre-toolkit/internal/chaos-load/discovery"
	"github.com/neogan/sre-toolkit/internal/chaos-load/engine"
	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
	"github.com/neogan/sre-toolkit/internal/chaos-load/stats"
	"github.com/neogan/sre-toolkit/pkg/logging"
)

const k8sServiceLookupTimeout = 10 * time.Second

// consoleSink prints a progress line to stdout as the run advances, and
// reports cancellation once acknowledged.
type consoleSink struct{}

func (consoleSink) Progress(u model.ProgressUpdate) {
	fmt.Fprintf(os.Stdout, "\r%d/%d completed (%d ok, %d failed) - %.1f req/s",
		u.Completed, u.Total, u.Successful, u.Failed, u.CurrentRPS)
	if u.Completed == u.Total {
		fmt.Fprintln(os.Stdout)
	}
}

func (consoleSink) Cancelled() {
	fmt.Fprintln(os.Stdout, "\ncancelling...")
}

func newHTTPCmd() *cobra.Command {
	var (
		profilePath string
		headerFlags []string
		body        string
		k8sService  string
	)

	cfg := model.LoadTestConfig{}

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Run an HTTP load test",
		Long:  "Generates HTTP load against a target URL and reports aggregated statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.WithComponent("chaos-load-cli")

			loaded, err := config.Load(profilePath, cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			loaded.Headers = parseHeaders(headerFlags)
			loaded.Body = []byte(body)

			if k8sService != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), k8sServiceLookupTimeout)
				defer cancel()
				resolvedURL, err := discovery.ResolveServiceURL(ctx, k8sService)
				if err != nil {
					return model.InvalidConfig("resolving --k8s-service: %s", err)
				}
				loaded.URL = resolvedURL
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				engine.CancelLoadTest(consoleSink{})
			}()

			report, err := engine.RunLoadTest(ctx, *loaded, consoleSink{})
			if err != nil {
				logger.Error().Err(err).Msg("load test failed")
				return err
			}

			stats.FprintSummary(os.Stdout, *report)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.URL, "url", "", "Target URL")
	flags.Uint32Var(&cfg.NumRequests, "num-requests", 100, "Total number of requests")
	flags.Uint32Var(&cfg.Concurrency, "concurrency", 10, "Number of concurrent workers (0 = num-requests)")
	flags.StringVar(&cfg.Method, "method", "GET", "HTTP method")
	flags.BoolVar(&cfg.UseHTTP2, "use-http2", false, "Use HTTP/2 with prior knowledge")
	flags.BoolVar(&cfg.FollowRedirects, "follow-redirects", true, "Follow HTTP redirects")
	flags.Float64Var(&cfg.TimeoutSecs, "timeout-secs", 0, "Per-request timeout in seconds (0 = none)")
	flags.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Requests per second per worker (0 = unlimited)")
	flags.BoolVar(&cfg.RandomizeUserAgent, "randomize-user-agent", false, "Randomize the User-Agent header")
	flags.BoolVar(&cfg.RandomizeHeaders, "randomize-headers", false, "Randomize Accept-Language/Accept/Sec-Fetch-* headers")
	flags.BoolVar(&cfg.AddCacheBuster, "add-cache-buster", false, "Append a cache-busting query parameter")
	flags.BoolVar(&cfg.DisableKeepAlive, "disable-keep-alive", false, "Disable HTTP keep-alive (forces HTTP/1.1)")
	flags.Uint32Var(&cfg.WorkerThreads, "worker-threads", 0, "GOMAXPROCS override for the run (0 = unchanged)")
	flags.StringVar(&cfg.ProxyURL, "proxy-url", "", "HTTP/1.1 proxy URL")
	flags.StringVar(&cfg.CorrelatePrometheusURL, "correlate-prometheus-url", "", "Prometheus URL to correlate against after the run")
	flags.StringVar(&cfg.CorrelateQuery, "correlate-query", "", "PromQL instant query to run for correlation")
	flags.StringVar(&cfg.AlertOnDegradationURL, "alert-on-degradation-url", "", "Alertmanager URL to notify if the connection-error ratio latches")

	flags.StringVar(&profilePath, "profile", "", "Path to a YAML load-test profile")
	flags.StringArrayVar(&headerFlags, "header", nil, "Extra request header as Key:Value (repeatable)")
	flags.StringVar(&body, "body", "", "Request body")
	flags.StringVar(&k8sService, "k8s-service", "", "Resolve the target URL from a Kubernetes Service (namespace/name[:port])")

	cmd.MarkFlagsMutuallyExclusive("url", "k8s-service")

	return cmd
}

func parseHeaders(raw []string) []model.HeaderKV {
	headers := make([]model.HeaderKV, 0, len(raw))
	for _, h := range raw {
		key, value, found := strings.Cut(h, ":")
		if !found {
			continue
		}
		headers = append(headers, model.HeaderKV{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return headers
}
