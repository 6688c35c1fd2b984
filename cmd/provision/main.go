package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ruteri/spl-token-provisioner/cmd/flags"
	"github.com/ruteri/spl-token-provisioner/identity"
	"github.com/ruteri/spl-token-provisioner/interfaces"
	"github.com/urfave/cli/v2"
)

var flagName = &cli.StringFlag{
	Name:    "name",
	Value:   "Moldova coin",
	EnvVars: []string{"TOKEN_NAME"},
	Usage:   "token name",
}
var flagSymbol = &cli.StringFlag{
	Name:    "symbol",
	Value:   "MDLC",
	EnvVars: []string{"TOKEN_SYMBOL"},
	Usage:   "token symbol",
}
var flagDescription = &cli.StringFlag{
	Name:    "description",
	Value:   "Description",
	EnvVars: []string{"TOKEN_DESCRIPTION"},
	Usage:   "token description stored in the metadata document",
}
var flagDecimals = &cli.UintFlag{
	Name:    "decimals",
	Value:   2,
	EnvVars: []string{"TOKEN_DECIMALS"},
	Usage:   "number of decimal places",
}
var flagAmount = &cli.Uint64Flag{
	Name:    "amount",
	Value:   100,
	EnvVars: []string{"TOKEN_AMOUNT"},
	Usage:   "initial supply in whole tokens",
}
var flagOwner = &cli.StringFlag{
	Name:    "owner",
	EnvVars: []string{"TOKEN_OWNER"},
	Usage:   "address receiving the supply, defaults to the signer",
}
var flagImage = &cli.PathFlag{
	Name:    "image",
	Value:   "assets/mdlc.png",
	EnvVars: []string{"TOKEN_IMAGE"},
	Usage:   "token image file",
}

func main() {
	app := &cli.App{
		Name:  "provision",
		Usage: "Create an SPL token with metadata and mint its initial supply",
		Flags: append(append([]cli.Flag{
			flagName,
			flagSymbol,
			flagDescription,
			flagDecimals,
			flagAmount,
			flagOwner,
			flagImage,
		}, flags.ProvisionerFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			req, err := provisionRequest(cCtx)
			if err != nil {
				logger.Error("Invalid arguments", "err", err)
				return err
			}

			prov, err := flags.BuildProvisioner(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up provisioner", "err", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			receipt, err := prov.Provision(ctx, req)
			if err != nil {
				logger.Error("Provisioning failed", "err", err)
				return err
			}

			fmt.Printf("Signature: %s\n", receipt.Signature)
			fmt.Printf("Mint: %s\n", receipt.Mint)
			if receipt.ExplorerURL != "" {
				fmt.Printf("Explorer: %s\n", receipt.ExplorerURL)
			}
			return nil
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func provisionRequest(cCtx *cli.Context) (interfaces.ProvisionRequest, error) {
	var req interfaces.ProvisionRequest

	decimals := cCtx.Uint(flagDecimals.Name)
	if decimals > interfaces.MaxDecimals {
		return req, fmt.Errorf("%w: decimals must be at most %d", interfaces.ErrInvalidTokenSpec, interfaces.MaxDecimals)
	}

	req.Token = interfaces.TokenSpec{
		Name:        cCtx.String(flagName.Name),
		Symbol:      cCtx.String(flagSymbol.Name),
		Description: cCtx.String(flagDescription.Name),
		Decimals:    uint8(decimals),
		Amount:      cCtx.Uint64(flagAmount.Name),
	}
	if err := req.Token.Validate(); err != nil {
		return req, err
	}

	if owner := cCtx.String(flagOwner.Name); owner != "" {
		pk, err := identity.ParsePublicKey(owner)
		if err != nil {
			return req, fmt.Errorf("invalid owner: %w", err)
		}
		req.Owner = &pk
	}

	path := cCtx.Path(flagImage.Name)
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read image: %w", err)
	}
	req.Image = interfaces.Asset{FileName: filepath.Base(path), Data: data}

	return req, nil
}
