// Package shaper builds one *http.Request per attempt: URL (with optional
// cache buster), method, headers (custom and optionally randomized) and
// body or multipart form.
package shaper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// AllowedMethods is the set of methods LoadTestConfig.Method may validate
// against.
var AllowedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Build constructs one *http.Request for a single attempt.
//
// forceConnectionClose is the Adaptive Pool Governor's read-only verdict for
// this attempt (§4.5); it is OR'd with cfg.DisableKeepAlive.
func Build(ctx context.Context, cfg model.LoadTestConfig, forceConnectionClose bool, files *FileCache) (*http.Request, error) {
	if !AllowedMethods[cfg.Method] {
		return nil, model.InvalidConfig("unsupported method %q", cfg.Method)
	}

	targetURL := withCacheBuster(cfg.URL, cfg.AddCacheBuster)

	hadContentType := headerPresent(cfg.Headers, "Content-Type")

	var body io.Reader
	var contentType string
	switch {
	case len(cfg.FormFields) > 0:
		b, ct, err := buildMultipart(cfg.FormFields, files)
		if err != nil {
			return nil, err
		}
		body, contentType = b, ct
	case len(cfg.Body) > 0:
		body = bytes.NewReader(cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, targetURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if cfg.DisableKeepAlive || forceConnectionClose {
		req.Header.Set("Connection", "close")
	}

	// Random headers must be chosen entirely within this synchronous call,
	// before the request is ever handed to the transport for send().
	if cfg.RandomizeUserAgent || cfg.RandomizeHeaders {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		if cfg.RandomizeUserAgent {
			req.Header.Set("User-Agent", userAgents[r.Intn(len(userAgents))])
		}
		if cfg.RandomizeHeaders {
			applyRandomizedHeaders(req, r)
		}
	}

	// Custom headers are applied last so they may override the randomized
	// ones for the same key, in the order the caller supplied them.
	for _, h := range cfg.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	switch {
	case len(cfg.FormFields) > 0:
		req.Header.Set("Content-Type", contentType)
	case len(cfg.Body) > 0:
		if !hadContentType && cfg.PayloadContentType != nil {
			req.Header.Set("Content-Type", *cfg.PayloadContentType)
		}
	}

	return req, nil
}

func applyRandomizedHeaders(req *http.Request, r *rand.Rand) {
	req.Header.Set("Accept-Language", acceptLanguages[r.Intn(len(acceptLanguages))])
	for _, h := range secFetchHeaders {
		req.Header.Set(h.Key, h.Value)
	}
	platform := `"Windows"`
	if r.Float64() < 0.5 {
		platform = `"macOS"`
	}
	req.Header.Set("Sec-Ch-Ua-Platform", platform)

	tokens := append([]string(nil), acceptMimeTokens...)
	r.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })
	req.Header.Set("Accept", strings.Join(tokens, ", "))
}

// withCacheBuster appends "_cb={nanos}_{rand_u32}" as an extra query
// parameter, preserving any existing "?".
func withCacheBuster(rawURL string, enabled bool) string {
	if !enabled {
		return rawURL
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	buster := fmt.Sprintf("_cb=%d_%d", time.Now().UnixNano(), r.Uint32())
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + buster
}

func headerPresent(headers []model.HeaderKV, key string) bool {
	for _, h := range headers {
		if strings.EqualFold(h.Key, key) {
			return true
		}
	}
	return false
}

func buildMultipart(fields []model.FormFieldConfig, files *FileCache) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for i, f := range fields {
		if f.IsFile() {
			var data []byte
			name := "file"
			if files != nil && i < len(files.entries) {
				data = files.entries[i].data
				name = files.entries[i].fileName
			}
			part, err := w.CreateFormFile(f.Name, name)
			if err != nil {
				return nil, "", model.Internal("creating multipart file part: %s", err)
			}
			if _, err := part.Write(data); err != nil {
				return nil, "", model.Internal("writing multipart file part: %s", err)
			}
			continue
		}
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", model.Internal("writing multipart field: %s", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", model.Internal("closing multipart writer: %s", err)
	}

	return buf, w.FormDataContentType(), nil
}
