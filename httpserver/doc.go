/*
Package httpserver exposes the token provisioning workflow over HTTP.

# Endpoints

  - POST /api/provision: multipart form with name, symbol, description, decimals,
    amount, an optional base58 owner and the image file. Responds with the
    provisioning receipt as JSON.
  - GET /livez, /readyz: health checks.
  - GET /drain, /undrain: toggle readiness. While drained, new provisioning
    requests are rejected with 503.
  - /debug/pprof: profiling, when enabled.

# Status codes

Invalid input is rejected with 400 before any network call is made. Upload,
account lookup, submission and ledger failures map to 502. Anything else is 500.

Provisioning runs are serialized. A request waits for the run in progress to
finish before its own run starts.

Run counts and durations are exported by the metrics server on MetricsAddr.
*/
package httpserver
