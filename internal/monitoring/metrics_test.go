package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("encrypt", "test-plugin", StatusSuccess))
	bytesBefore := testutil.ToFloat64(BytesProcessed.WithLabelValues("encrypt", "test-plugin"))

	RecordOperation("encrypt", "test-plugin", StatusSuccess, 5*time.Millisecond, 128)

	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("encrypt", "test-plugin", StatusSuccess)))
	assert.Equal(t, bytesBefore+128, testutil.ToFloat64(BytesProcessed.WithLabelValues("encrypt", "test-plugin")))
}

func TestRecordOperation_FailureDoesNotCountBytes(t *testing.T) {
	bytesBefore := testutil.ToFloat64(BytesProcessed.WithLabelValues("decrypt", "test-plugin"))

	RecordOperation("decrypt", "test-plugin", "authentication_failure", time.Millisecond, 64)

	assert.Equal(t, 1.0, testutil.ToFloat64(OperationsTotal.WithLabelValues("decrypt", "test-plugin", "authentication_failure")))
	assert.Equal(t, bytesBefore, testutil.ToFloat64(BytesProcessed.WithLabelValues("decrypt", "test-plugin")))
}

func TestSetPluginInfo(t *testing.T) {
	SetPluginInfo("aes-gcm", "AES-256-GCM", "1.0", true)
	SetPluginInfo("rsa", "RSA-4096-OAEP-SHA256", "1.0", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(PluginsInfo.WithLabelValues("aes-gcm", "AES-256-GCM", "1.0")))
	assert.Equal(t, 0.0, testutil.ToFloat64(PluginsInfo.WithLabelValues("rsa", "RSA-4096-OAEP-SHA256", "1.0")))
}

func TestPluginsInfo_Labels(t *testing.T) {
	SetPluginInfo("label-test", "AES-256-GCM", "1.0", true)

	families, err := Gatherer().Gather()
	require.NoError(t, err)

	var labels []string
	for _, mf := range families {
		if mf.GetName() != "chatcrypt_plugins_info" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "name" && lp.GetValue() == "label-test" {
					for _, l := range m.GetLabel() {
						labels = append(labels, l.GetName())
					}
					assert.Equal(t, 1.0, m.GetGauge().GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"name", "algorithm", "version"}, labels)
}

func TestGatherer(t *testing.T) {
	RecordOperation("generate_key", "gather-test", StatusSuccess, time.Millisecond, 0)

	families, err := Gatherer().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "chatcrypt_operations_total")
	assert.Contains(t, names, "chatcrypt_operation_duration_seconds")
}
