// Command provision creates a fungible SPL token in one transaction.
//
// It uploads the token image and a JSON metadata document to the configured
// storage backends, then submits a transaction that creates and initializes the
// mint, attaches the metadata account, creates the holder's associated token
// account when needed and mints the initial supply. The command waits for the
// transaction to be finalized and prints its signature.
//
// Example usage:
//
//	provision --cluster devnet \
//	    --identity file://$HOME/.config/solana/id.json \
//	    --storage ipfs://127.0.0.1:5001/?gateway=https://ipfs.io \
//	    --name "Moldova coin" --symbol MDLC --decimals 2 --amount 100 \
//	    --image assets/mdlc.png --airdrop
//
// Every flag can also be set through its environment variable, see --help.
package main
