package flags

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/spl-token-provisioner/common"
	"github.com/ruteri/spl-token-provisioner/httpserver"
	"github.com/ruteri/spl-token-provisioner/identity"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/ruteri/spl-token-provisioner/ledger"
	"github.com/ruteri/spl-token-provisioner/provisioner"
	"github.com/ruteri/spl-token-provisioner/storage"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		// a run includes uploads and confirmation
		WriteTimeout: 5 * time.Minute,
	}
}

// BuildProvisioner wires the ledger client, signing identity and storage
// backends selected by ProvisionerFlags.
func BuildProvisioner(cCtx *cli.Context, logger *slog.Logger) (*provisioner.Provisioner, error) {
	cluster := cCtx.String(ClusterFlag.Name)
	endpoint, err := ledger.ClusterEndpoint(cluster)
	if err != nil {
		return nil, err
	}
	logger.Info("Using ledger endpoint", "cluster", cluster, "endpoint", endpoint)
	ledgerClient := ledger.New(endpoint, ledger.DefaultOptions, logger)

	var signer interfaces.IdentityProvider
	signer, err = identity.ProviderFor(cCtx.String(IdentityFlag.Name), identity.Options{
		Passphrase: []byte(cCtx.String(KeypairPassphraseFlag.Name)),
		Create:     CreateIdentity(cCtx),
	}, logger)
	if err != nil {
		return nil, err
	}

	airdrop, err := Airdrop(cCtx)
	if err != nil {
		return nil, err
	}
	if airdrop {
		signer = identity.NewFunder(signer, ledgerClient, logger)
	}

	var locations []interfaces.StorageBackendLocation
	for _, uri := range cCtx.StringSlice(StorageFlag.Name) {
		loc, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	var factory interfaces.StorageBackendFactory = storage.NewStorageBackendFactory(logger)
	backend, err := factory.CreateMultiBackend(locations)
	if err != nil {
		return nil, err
	}

	return provisioner.New(ledgerClient, backend, signer, logger, provisioner.Options{
		UploadTimeout: cCtx.Duration(UploadTimeoutFlag.Name),
		Cluster:       cluster,
	}), nil
}

// Airdrop reports whether the signer is topped up from the faucet. Unless set
// explicitly it is enabled on clusters that have a faucet.
func Airdrop(cCtx *cli.Context) (bool, error) {
	cluster := cCtx.String(ClusterFlag.Name)
	if !cCtx.IsSet(AirdropFlag.Name) {
		return ledger.HasFaucet(cluster), nil
	}
	if cCtx.Bool(AirdropFlag.Name) && !ledger.HasFaucet(cluster) {
		return false, fmt.Errorf("cluster %s has no faucet", cluster)
	}
	return cCtx.Bool(AirdropFlag.Name), nil
}

// CreateIdentity reports whether a missing keypair file is generated. Unless set
// explicitly it is enabled on clusters that have a faucet.
func CreateIdentity(cCtx *cli.Context) bool {
	if !cCtx.IsSet(CreateIdentityFlag.Name) {
		return ledger.HasFaucet(cCtx.String(ClusterFlag.Name))
	}
	return cCtx.Bool(CreateIdentityFlag.Name)
}

var ClusterFlag = &cli.StringFlag{
	Name:    "cluster",
	Value:   ledger.Devnet,
	EnvVars: []string{"PROVISIONER_CLUSTER"},
	Usage:   "cluster name (devnet, testnet, mainnet-beta, localnet) or RPC URL",
}

var IdentityFlag = &cli.StringFlag{
	Name:    "identity",
	Value:   "file://$HOME/.config/solana/id.json",
	EnvVars: []string{"PROVISIONER_IDENTITY"},
	Usage:   "signing keypair location: file://, env://, vault:// or gcpsm://",
}

var KeypairPassphraseFlag = &cli.StringFlag{
	Name:    "keypair-passphrase",
	EnvVars: []string{"PROVISIONER_KEYPAIR_PASSPHRASE"},
	Usage:   "passphrase of an encrypted keypair file",
}

var CreateIdentityFlag = &cli.BoolFlag{
	Name:    "create-identity",
	Value:   false,
	EnvVars: []string{"PROVISIONER_CREATE_IDENTITY"},
	Usage:   "generate the keypair file if it does not exist (default: on devnet, testnet and localnet)",
}

var StorageFlag = &cli.StringSliceFlag{
	Name:    "storage",
	Value:   cli.NewStringSlice("ipfs://127.0.0.1:5001/?gateway=https://ipfs.io"),
	EnvVars: []string{"PROVISIONER_STORAGE"},
	Usage:   "storage backend URI, repeat to upload to several backends",
}

var UploadTimeoutFlag = &cli.DurationFlag{
	Name:    "upload-timeout",
	Value:   provisioner.DefaultUploadTimeout,
	EnvVars: []string{"PROVISIONER_UPLOAD_TIMEOUT"},
	Usage:   "timeout of each storage upload",
}

var AirdropFlag = &cli.BoolFlag{
	Name:    "airdrop",
	Value:   false,
	EnvVars: []string{"PROVISIONER_AIRDROP"},
	Usage:   "top up the signer from the cluster faucet when its balance is low (default: on devnet, testnet and localnet)",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	EnvVars: []string{"LOG_JSON"},
	Usage:   "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	EnvVars: []string{"LOG_DEBUG"},
	Usage:   "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:    "log-uid",
	Value:   false,
	EnvVars: []string{"LOG_UID"},
	Usage:   "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:    "log-service",
	Value:   common.PackageName,
	EnvVars: []string{"LOG_SERVICE"},
	Usage:   "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	EnvVars: []string{"METRICS_ADDR"},
	Usage:   "address to listen on for Prometheus metrics",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ProvisionerFlags = []cli.Flag{
	ClusterFlag,
	IdentityFlag,
	KeypairPassphraseFlag,
	CreateIdentityFlag,
	StorageFlag,
	UploadTimeoutFlag,
	AirdropFlag,
}

var ServerFlags = []cli.Flag{
	PprofFlag,
	MetricsAddrFlag,
}
