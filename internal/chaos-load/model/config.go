// Package model holds the data types shared across the load-test engine:
// input configuration, per-request results and the final statistics report.
package model

// HeaderKV is a single ordered header entry. A plain map would lose
// duplicate keys and insertion order, both of which matter when headers are
// replayed onto an *http.Request in the order the caller supplied them.
type HeaderKV struct {
	Key   string
	Value string
}

// FormFieldConfig describes one multipart form field. File fields carry an
// optional FilePath (read once at test start) and an optional explicit
// FileName; text fields only use Value.
type FormFieldConfig struct {
	Name     string
	Value    string
	FilePath *string
	FileName *string
}

// IsFile reports whether this field should be encoded as a file part.
func (f FormFieldConfig) IsFile() bool {
	return f.FilePath != nil && *f.FilePath != ""
}

// LoadTestConfig is the input to RunLoadTest. Zero values for Concurrency,
// TimeoutSecs, RateLimit and WorkerThreads all carry defined meanings - see
// the Entry Facade and Client Factory docs.
type LoadTestConfig struct {
	URL         string     `mapstructure:"url" yaml:"url"`
	NumRequests uint32     `mapstructure:"num_requests" yaml:"num_requests"`
	Concurrency uint32     `mapstructure:"concurrency" yaml:"concurrency"`
	UseHTTP2    bool       `mapstructure:"use_http2" yaml:"use_http2"`
	Method      string     `mapstructure:"method" yaml:"method"`
	Headers     []HeaderKV `mapstructure:"-" yaml:"-"`

	FollowRedirects bool    `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	TimeoutSecs     float64 `mapstructure:"timeout_secs" yaml:"timeout_secs"`
	RateLimit       float64 `mapstructure:"rate_limit" yaml:"rate_limit"`

	RandomizeUserAgent bool `mapstructure:"randomize_user_agent" yaml:"randomize_user_agent"`
	RandomizeHeaders   bool `mapstructure:"randomize_headers" yaml:"randomize_headers"`
	AddCacheBuster     bool `mapstructure:"add_cache_buster" yaml:"add_cache_buster"`
	DisableKeepAlive   bool `mapstructure:"disable_keep_alive" yaml:"disable_keep_alive"`

	WorkerThreads uint32 `mapstructure:"worker_threads" yaml:"worker_threads"`
	ProxyURL      string `mapstructure:"proxy_url" yaml:"proxy_url"`

	// CorrelatePrometheusURL and AlertOnDegradationURL configure the optional
	// post-run Metrics Correlation enrichment; both empty means skip it.
	CorrelatePrometheusURL string `mapstructure:"correlate_prometheus_url" yaml:"correlate_prometheus_url"`
	CorrelateQuery         string `mapstructure:"correlate_query" yaml:"correlate_query"`
	AlertOnDegradationURL  string `mapstructure:"alert_on_degradation_url" yaml:"alert_on_degradation_url"`

	Body               []byte            `mapstructure:"-" yaml:"-"`
	PayloadContentType *string           `mapstructure:"-" yaml:"-"`
	FormFields         []FormFieldConfig `mapstructure:"-" yaml:"-"`
}

// ResolvedConcurrency returns the effective concurrency ceiling: 0 or a
// value greater than NumRequests both collapse to NumRequests.
func (c LoadTestConfig) ResolvedConcurrency() uint32 {
	if c.Concurrency == 0 || c.Concurrency > c.NumRequests {
		return c.NumRequests
	}
	return c.Concurrency
}

// RateLimitInterval returns the per-request sleep interval, or 0 when no
// rate limit is configured.
func (c LoadTestConfig) RateLimitInterval() float64 {
	if c.RateLimit <= 0 {
		return 0
	}
	return 1.0 / c.RateLimit
}
