package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"lesson-template-workers/internal/common/config"
	"lesson-template-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "publish-message")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("process definition not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var se *errors.StandardError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.ErrCodeBrokerRejected, se.Code)
	assert.False(t, se.Retryable)
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	c := newTestClient(2)
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("context deadline exceeded")
	}, "complete-job")

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *errors.StandardError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, errors.ErrCodeQueryTimeout, se.Code)
	assert.Contains(t, se.Details, "after 3 attempts")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		cancel()
		return nil, stderrors.New("connection reset by peer")
	}, "activate-jobs")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		code errors.ErrorCode
	}{
		{"unavailable", "rpc error: code = Unavailable", errors.ErrCodeBrokerUnavailable},
		{"timeout", "DeadlineExceeded: deadline exceeded", errors.ErrCodeQueryTimeout},
		{"not found", "job not found", errors.ErrCodeBrokerRejected},
		{"unauthorized", "Unauthorized", errors.ErrCodeBrokerRejected},
		{"unknown", "something odd", errors.ErrCodeBrokerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "op", 0)
			var se *errors.StandardError
			require.True(t, stderrors.As(err, &se))
			assert.Equal(t, tt.code, se.Code)
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("Connection Refused")))
	assert.True(t, isRetryableZeebeError(stderrors.New("write: broken pipe")))
	assert.False(t, isRetryableZeebeError(stderrors.New("invalid argument")))
}

func TestConfigFromSettings(t *testing.T) {
	cc := ConfigFromSettings(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.Equal(t, 10*time.Second, cc.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, cc.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)

	cc = ConfigFromSettings(config.CamundaConfig{Timeout: 1500, RequestTimeout: 4000})
	assert.Equal(t, 1500*time.Millisecond, cc.ConnectionTimeout)
	assert.Equal(t, 4*time.Second, cc.RequestTimeout)
}
