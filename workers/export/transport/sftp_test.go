package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeliverFailsFastWithoutHost(t *testing.T) {
	tr := NewSFTPTransporter(zap.NewNop(), Config{Username: "exporter"})

	result := tr.Deliver(map[string]string{"a.csv": "/tmp/a.csv"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
	assert.Empty(t, result.Uploaded)
}

func TestDeliverFailsFastWithoutUsername(t *testing.T) {
	tr := NewSFTPTransporter(zap.NewNop(), Config{Host: "sftp.example.com", Port: 22})

	result := tr.Deliver(map[string]string{"a.csv": "/tmp/a.csv"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
}

func TestDeliverRetriesTransientConnectionFailureOnce(t *testing.T) {
	// Port 9 (discard) is closed on loopback, so the dial fails fast
	// with a transient error rather than an auth rejection.
	tr := NewSFTPTransporter(zap.NewNop(), Config{
		Host:     "127.0.0.1",
		Port:     9,
		Username: "exporter",
		Password: "secret",
	})

	var slept []time.Duration
	tr.sleep = func(d time.Duration) { slept = append(slept, d) }

	result := tr.Deliver(map[string]string{"a.csv": "/tmp/a.csv"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "after 2 attempts")
	assert.Empty(t, result.Uploaded)
	require.Len(t, slept, 1, "exactly one retry after the first failure")
	assert.Equal(t, retryDelay, slept[0])
}

func TestIsAuthError(t *testing.T) {
	authErr := errors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]")
	assert.True(t, isAuthError(authErr))

	assert.False(t, isAuthError(errors.New("dial tcp: connection refused")))
	assert.False(t, isAuthError(errors.New("dial tcp: i/o timeout")))
	assert.False(t, isAuthError(nil))
}
