package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, ResultSuccess},
		{fmt.Errorf("%w: name is empty", interfaces.ErrInvalidTokenSpec), ResultInvalidInput},
		{fmt.Errorf("%w: no keypair", interfaces.ErrIdentity), ResultIdentity},
		{fmt.Errorf("%w: image: timeout", interfaces.ErrUpload), ResultUpload},
		{fmt.Errorf("%w: rpc down", interfaces.ErrAccountLookup), ResultAccountLookup},
		{fmt.Errorf("%w: blockhash expired", interfaces.ErrSubmission), ResultSubmission},
		{fmt.Errorf("%w: rent", interfaces.ErrLedgerUnavailable), ResultLedger},
		{errors.New("boom"), ResultInternal},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Result(tt.err))
		})
	}
}

func TestMetricsServer_ObserveRun(t *testing.T) {
	m, err := New("spl-token-provisioner", "127.0.0.1:0")
	require.NoError(t, err)

	m.ObserveRun(nil, 12*time.Second)
	m.ObserveRun(fmt.Errorf("%w: x", interfaces.ErrUpload), time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `spl_token_provisioner_provision_runs_total{result="success"} 1`)
	assert.Contains(t, string(body), `spl_token_provisioner_provision_runs_total{result="upload"} 1`)
	assert.Contains(t, string(body), "spl_token_provisioner_provision_duration_seconds_count 2")
}
