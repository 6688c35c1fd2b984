// Package main (cmd/httpserver) serves the token provisioning API.
//
// The server accepts multipart provisioning requests on POST /api/provision and
// runs them one at a time against the configured cluster, signing identity and
// storage backends. It exposes health checks, drain controls, Prometheus metrics
// on --metrics-addr and optional pprof endpoints.
//
// The server shuts down gracefully on SIGINT or SIGTERM.
//
// Example usage:
//
//	provisioner-server --listen-addr=0.0.0.0:8080 \
//	    --cluster devnet \
//	    --identity vault://vault.internal:8200/secret/token-authority \
//	    --storage ipfs://127.0.0.1:5001/?gateway=https://ipfs.io \
//	    --storage s3://tokens/assets/?region=eu-west-1
package main
