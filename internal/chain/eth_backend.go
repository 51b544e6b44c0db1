// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// mintABIJSON declares the single contract method the minter calls.
const mintABIJSON = `[{
	"type": "function",
	"name": "mint",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "to", "type": "address"},
		{"name": "uri", "type": "string"}
	],
	"outputs": [{"name": "tokenId", "type": "uint256"}]
}]`

// EthBackend submits mints over JSON-RPC with go-ethereum.
type EthBackend struct {
	contractABI abi.ABI
	logger      *slog.Logger
	getenv      func(string) string
}

// NewEthBackend parses the mint ABI and returns a backend reading signing
// keys from the process environment.
func NewEthBackend(logger *slog.Logger) (*EthBackend, error) {
	parsed, err := abi.JSON(strings.NewReader(mintABIJSON))
	if err != nil {
		return nil, fmt.Errorf("chain: parse mint ABI: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EthBackend{contractABI: parsed, logger: logger, getenv: os.Getenv}, nil
}

/*
Mint signs and broadcasts mint(to, uri), then waits for the receipt.

A fresh RPC connection is dialled per mint; mints are rare and this keeps
a broken endpoint from poisoning later publishes.

Returns:
  - *types.Receipt: The mined receipt, whatever its status
  - error: ErrConfiguration for key problems, *MintError once broadcast
*/
func (b *EthBackend) Mint(ctx context.Context, request MintRequest) (*types.Receipt, error) {
	rawKey := strings.TrimSpace(b.getenv(request.Network.SignerKeyEnv))
	if rawKey == "" {
		return nil, configurationError("signing key variable %s is empty", request.Network.SignerKeyEnv)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(rawKey, "0x"))
	if err != nil {
		return nil, configurationError("signing key in %s is invalid", request.Network.SignerKeyEnv)
	}

	client, err := ethclient.DialContext(ctx, request.Network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	chainID := big.NewInt(request.Network.ChainID)
	if request.Network.ChainID == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			return nil, fmt.Errorf("read chain id: %w", err)
		}
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(request.Contract, b.contractABI, client, client, client)

	tx, err := contract.Transact(auth, "mint", request.Owner, request.TokenURI)
	if err != nil {
		return nil, fmt.Errorf("submit mint: %w", err)
	}

	txHash := tx.Hash().Hex()
	b.logger.InfoContext(ctx, "mint_submitted",
		slog.String("network", request.Network.Name),
		slog.String("tx_hash", txHash),
		slog.Uint64("nonce", tx.Nonce()),
	)

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, &MintError{Network: request.Network.Name, TxHash: txHash, Err: fmt.Errorf("wait for receipt: %w", err)}
	}

	return receipt, nil
}
