package engine

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

func TestClassifyError_Timeout(t *testing.T) {
	errType, msg, isConn := classifyError(context.DeadlineExceeded, 1500, false)
	assert.Equal(t, model.ErrorTimeout, errType)
	assert.Contains(t, msg, "Timeout")
	assert.False(t, isConn)
}

func TestClassifyError_NetErrorTimeout(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}
	errType, _, isConn := classifyError(err, 1000, false)
	assert.Equal(t, model.ErrorTimeout, errType)
	assert.False(t, isConn)
}

func TestClassifyError_ConnectionRefused(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	errType, msg, isConn := classifyError(opErr, 5, false)
	assert.Equal(t, model.ErrorConnection, errType)
	assert.Contains(t, msg, "refused")
	assert.True(t, isConn)
}

func TestClassifyError_DNSFailure(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "nosuchhost.invalid"}
	errType, msg, isConn := classifyError(dnsErr, 5, false)
	assert.Equal(t, model.ErrorConnection, errType)
	assert.Contains(t, msg, "DNS")
	assert.True(t, isConn)
}

func TestClassifyError_ConnectionClosedVariesByKeepAlive(t *testing.T) {
	opErr := &net.OpError{Op: "read", Err: errors.New("connection closed")}

	_, msgKeepAlive, _ := classifyError(opErr, 5, false)
	assert.Contains(t, msgKeepAlive, "stale connection")

	_, msgDisabled, _ := classifyError(opErr, 5, true)
	assert.Contains(t, msgDisabled, "overloaded")
}

func TestClassifyError_RedirectError(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "http://x", Err: errors.New("stopped after too many redirects")}
	errType, _, isConn := classifyError(err, 5, false)
	assert.Equal(t, model.ErrorRedirect, errType)
	assert.False(t, isConn)
}

func TestClassifyError_RequestError(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New("unsupported protocol scheme")}
	errType, _, isConn := classifyError(err, 5, false)
	assert.Equal(t, model.ErrorRequest, errType)
	assert.False(t, isConn)
}

func TestClassifyError_Other(t *testing.T) {
	errType, _, isConn := classifyError(errors.New("something unexpected"), 5, false)
	assert.Equal(t, model.ErrorOther, errType)
	assert.False(t, isConn)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
