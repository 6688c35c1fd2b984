package ledger

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
)

// Well-known cluster names.
const (
	Devnet   = "devnet"
	Testnet  = "testnet"
	Mainnet  = "mainnet-beta"
	Localnet = "localnet"
)

const explorerBaseURL = "https://explorer.solana.com"

var clusterEndpoints = map[string]string{
	Devnet:   rpc.DevnetRPCEndpoint,
	Testnet:  rpc.TestnetRPCEndpoint,
	Mainnet:  rpc.MainnetRPCEndpoint,
	Localnet: rpc.LocalnetRPCEndpoint,
}

// ClusterEndpoint resolves a cluster name or an http(s) URL to a JSON-RPC endpoint.
func ClusterEndpoint(cluster string) (string, error) {
	if endpoint, ok := clusterEndpoints[strings.ToLower(cluster)]; ok {
		return endpoint, nil
	}

	u, err := url.Parse(cluster)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("unknown cluster %q", cluster)
	}
	return cluster, nil
}

// HasFaucet reports whether the cluster serves airdrops.
func HasFaucet(cluster string) bool {
	switch strings.ToLower(cluster) {
	case Devnet, Testnet, Localnet:
		return true
	}
	return false
}

// ExplorerURL returns the block explorer link of a transaction on cluster.
func ExplorerURL(signature, cluster string) string {
	link := fmt.Sprintf("%s/tx/%s", explorerBaseURL, signature)

	switch name := strings.ToLower(cluster); name {
	case Mainnet, "":
		return link
	case Devnet, Testnet:
		return link + "?cluster=" + name
	case Localnet:
		return link + "?cluster=custom&customUrl=" + url.QueryEscape(rpc.LocalnetRPCEndpoint)
	default:
		return link + "?cluster=custom&customUrl=" + url.QueryEscape(cluster)
	}
}
