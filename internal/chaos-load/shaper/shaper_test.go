package shaper

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

func strPtr(s string) *string { return &s }

func TestBuild_RejectsUnsupportedMethod(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com", Method: "TRACE"}
	_, err := Build(context.Background(), cfg, false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported method")
}

func TestBuild_CacheBusterAppendsQueryParam(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com/path?x=1", Method: "GET", AddCacheBuster: true}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Contains(t, req.URL.RawQuery, "_cb=")
	assert.Contains(t, req.URL.RawQuery, "x=1")
}

func TestBuild_NoCacheBusterLeavesURLUnchanged(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com/path", Method: "GET"}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path", req.URL.String())
}

func TestBuild_ConnectionCloseWhenDisableKeepAlive(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com", Method: "GET", DisableKeepAlive: true}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "close", req.Header.Get("Connection"))
}

func TestBuild_ConnectionCloseWhenGovernorForces(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com", Method: "GET"}
	req, err := Build(context.Background(), cfg, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "close", req.Header.Get("Connection"))
}

func TestBuild_CustomHeadersOverrideRandomized(t *testing.T) {
	cfg := model.LoadTestConfig{
		URL:                "http://example.com",
		Method:             "GET",
		RandomizeUserAgent: true,
		Headers:            []model.HeaderKV{{Key: "User-Agent", Value: "my-agent/1.0"}},
	}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-agent/1.0", req.Header.Get("User-Agent"))
}

func TestBuild_BodyContentTypeOnlyWhenAbsent(t *testing.T) {
	cfg := model.LoadTestConfig{
		URL:                "http://example.com",
		Method:             "POST",
		Body:               []byte(`{"a":1}`),
		PayloadContentType: strPtr("application/json"),
	}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	cfg.Headers = []model.HeaderKV{{Key: "Content-Type", Value: "text/plain"}}
	req, err = Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
}

func TestBuild_MultipartSetsContentTypeAndSendsFields(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "upload.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("hello"), 0o600))

	cfg := model.LoadTestConfig{
		URL:    "http://example.com/echo",
		Method: "POST",
		FormFields: []model.FormFieldConfig{
			{Name: "note", Value: "hi"},
			{Name: "upload", FilePath: &filePath},
		},
	}

	files, err := PreloadFiles(cfg.FormFields)
	require.NoError(t, err)

	req, err := Build(context.Background(), cfg, false, files)
	require.NoError(t, err)

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "note")
	assert.Contains(t, string(body), "hello")
}

func TestBuild_RandomizeHeadersSetsExpectedSet(t *testing.T) {
	cfg := model.LoadTestConfig{URL: "http://example.com", Method: "GET", RandomizeHeaders: true}
	req, err := Build(context.Background(), cfg, false, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, req.Header.Get("Accept-Language"))
	assert.NotEmpty(t, req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("Sec-Ch-Ua-Platform"))
}

func TestPreloadFiles_MissingFileReturnsInvalidConfig(t *testing.T) {
	missing := "/no/such/file"
	_, err := PreloadFiles([]model.FormFieldConfig{{Name: "f", FilePath: &missing}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
