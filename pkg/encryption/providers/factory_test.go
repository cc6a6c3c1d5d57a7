package providers

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guided-traffic/chatcrypt/internal/monitoring"
	"github.com/guided-traffic/chatcrypt/pkg/encryption"
)

func TestSupportedPlugins(t *testing.T) {
	assert.Equal(t, []string{PluginAESGCM, PluginRSA}, SupportedPlugins())
}

func TestRegistry_Defaults(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"aes-gcm", "rsa"}, r.Names())
	assert.Equal(t, PluginAESGCM, r.DefaultName())
	assert.Equal(t, PluginAESGCM, r.Default().Name())
}

func TestRegistry_Get(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	p, err := r.Get(" RSA ")
	require.NoError(t, err)
	assert.Equal(t, PluginRSA, p.Name())

	_, err = r.Get("des")
	assert.ErrorIs(t, err, encryption.ErrUnknownPlugin)
	assert.Contains(t, err.Error(), "aes-gcm, rsa")
}

func TestRegistry_Asymmetric(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Asymmetric(PluginRSA)
	assert.NoError(t, err)

	_, err = r.Asymmetric(PluginAESGCM)
	assert.ErrorIs(t, err, encryption.ErrInvalidArgument)
}

func TestRegistry_WithDefault(t *testing.T) {
	r, err := NewRegistry(WithDefault("rsa"))
	require.NoError(t, err)
	assert.Equal(t, PluginRSA, r.Default().Name())

	_, err = NewRegistry(WithDefault("rot13"))
	assert.ErrorIs(t, err, encryption.ErrUnknownPlugin)
}

func TestRegistry_InvalidPluginOptions(t *testing.T) {
	_, err := NewRegistry(WithPluginOptions(WithRSAKeyBits(512)))
	assert.ErrorIs(t, err, encryption.ErrInvalidArgument)
}

func TestRegistry_WithMetrics(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(WithMetrics(), WithPluginOptions(WithRSAKeyBits(2048)))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.PluginsInfo.WithLabelValues("aes-gcm", "AES-256-GCM", "1.0")))

	// Instrumented RSA plugin still supports key pairs
	_, err = r.Asymmetric(PluginRSA)
	require.NoError(t, err)

	p := r.Default()
	success := monitoring.OperationsTotal.WithLabelValues(OperationEncrypt, PluginAESGCM, monitoring.StatusSuccess)
	failure := monitoring.OperationsTotal.WithLabelValues(OperationEncrypt, PluginAESGCM, "invalid_argument")
	successBefore := testutil.ToFloat64(success)
	failureBefore := testutil.ToFloat64(failure)

	key, err := p.GenerateKey(ctx).Get()
	require.NoError(t, err)

	_, err = p.Encrypt(ctx, []byte("counted"), key).Get()
	require.NoError(t, err)
	_, err = p.Encrypt(ctx, nil, key).Get()
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(success) == successBefore+1 &&
			testutil.ToFloat64(failure) == failureBefore+1
	}, time.Second, 5*time.Millisecond)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "success", StatusOf(nil))
	assert.Equal(t, "authentication_failure", StatusOf(encryption.NewError("x", encryption.ErrAuthenticationFailure, "")))
	assert.Equal(t, "malformed_payload", StatusOf(encryption.NewError("x", encryption.ErrMalformedPayload, "")))
	assert.Equal(t, "canceled", StatusOf(context.Canceled))
}
