// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chain mints a token that points at a comic's published metadata.

The contract exposes mint(address to, string uri). The minted token id is
read from the Transfer(0x0, to, id) log of the mined receipt; a receipt
without that log is a hard failure, never a guessed id.
*/
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/ctxutil"
)

// TransferEventTopic is keccak256("Transfer(address,address,uint256)").
var TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// MintOptions selects where and to whom a token is minted.
type MintOptions struct {
	Network         string `json:"network,omitempty"`
	OwnerAddress    string `json:"owner_address"`
	ContractAddress string `json:"contract_address,omitempty"`
}

// MintResult identifies a minted token.
type MintResult struct {
	Network         string `json:"network"`
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	MintTxHash      string `json:"mint_tx_hash"`
	MetadataURI     string `json:"metadata_uri"`
}

// MintRequest is a fully resolved mint handed to a [ContractBackend].
type MintRequest struct {
	Network  Network
	Contract common.Address
	Owner    common.Address
	TokenURI string
}

// ContractBackend submits a mint and waits until it is mined.
type ContractBackend interface {
	Mint(ctx context.Context, request MintRequest) (*types.Receipt, error)
}

// Minter validates mint options and extracts the token id from receipts.
type Minter struct {
	networks *NetworkSet
	backend  ContractBackend
	logger   *slog.Logger
	timeout  time.Duration
}

// NewMinter wires a minter. A nil or empty network set makes every mint a
// configuration error.
func NewMinter(networks *NetworkSet, backend ContractBackend, logger *slog.Logger) *Minter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Minter{networks: networks, backend: backend, logger: logger, timeout: constants.ChainMintTimeout}
}

/*
Mint submits a mint of ipfs://<metadataCID> to the owner.

Parameters:
  - ctx: context.Context (a mint deadline is applied on top)
  - comicID: string, for logging
  - metadataCID: string
  - opts: MintOptions

Returns:
  - *MintResult: Token coordinates
  - error: ErrConfiguration for bad input or setup, *MintError for chain failures
*/
func (m *Minter) Mint(ctx context.Context, comicID, metadataCID string, opts MintOptions) (*MintResult, error) {
	logger := ctxutil.GetLogger(ctx, m.logger)

	request, err := m.resolve(metadataCID, opts)
	if err != nil {
		return nil, err
	}

	mintCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	logger.InfoContext(ctx, "mint_started",
		slog.String("comic_id", comicID),
		slog.String("network", request.Network.Name),
		slog.String("contract", request.Contract.Hex()),
		slog.String("owner", request.Owner.Hex()),
	)

	receipt, err := m.backend.Mint(mintCtx, request)
	if err != nil {
		var mintErr *MintError
		if errors.As(err, &mintErr) {
			mintErr.Network = request.Network.Name
			return nil, mintErr
		}
		if errors.Is(err, ErrConfiguration) {
			return nil, err
		}
		return nil, &MintError{Network: request.Network.Name, Err: err}
	}

	txHash := receipt.TxHash.Hex()
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &MintError{Network: request.Network.Name, TxHash: txHash, Err: ErrReverted}
	}

	tokenID, ok := TokenIDFromReceipt(receipt, request.Contract, request.Owner)
	if !ok {
		logger.ErrorContext(ctx, "mint_event_missing",
			slog.String("comic_id", comicID),
			slog.String("tx_hash", txHash),
		)
		return nil, &MintError{Network: request.Network.Name, TxHash: txHash, Err: ErrNoTransferEvent}
	}

	result := &MintResult{
		Network:         request.Network.Name,
		ContractAddress: request.Contract.Hex(),
		TokenID:         tokenID.String(),
		MintTxHash:      txHash,
		MetadataURI:     request.TokenURI,
	}

	logger.InfoContext(ctx, "mint_completed",
		slog.String("comic_id", comicID),
		slog.String("token_id", result.TokenID),
		slog.String("tx_hash", txHash),
		slog.String("explorer", request.Network.TxURL(txHash)),
	)

	return result, nil
}

func (m *Minter) resolve(metadataCID string, opts MintOptions) (MintRequest, error) {
	owner := strings.TrimSpace(opts.OwnerAddress)
	if owner == "" {
		return MintRequest{}, configurationError("owner address is required")
	}
	if !isAddress(owner) {
		return MintRequest{}, configurationError("owner address %q is not a 0x-prefixed address", owner)
	}

	if strings.TrimSpace(metadataCID) == "" {
		return MintRequest{}, configurationError("metadata CID is required")
	}

	if m.networks.Len() == 0 {
		return MintRequest{}, configurationError("no chain networks are configured")
	}

	network, ok := m.networks.Lookup(opts.Network)
	if !ok {
		return MintRequest{}, configurationError("unknown network %q (configured: %s)", opts.Network, strings.Join(m.networks.Names(), ", "))
	}

	contract := strings.TrimSpace(opts.ContractAddress)
	if contract == "" {
		contract = network.DefaultContract
	}
	if contract == "" {
		return MintRequest{}, configurationError("no contract address given and network %q has no default", network.Name)
	}
	if !isAddress(contract) {
		return MintRequest{}, configurationError("contract address %q is not a 0x-prefixed address", contract)
	}

	return MintRequest{
		Network:  network,
		Contract: common.HexToAddress(contract),
		Owner:    common.HexToAddress(owner),
		TokenURI: contentstore.IPFSURI(metadataCID),
	}, nil
}

func isAddress(value string) bool {
	return strings.HasPrefix(value, "0x") && common.IsHexAddress(value)
}

// TokenIDFromReceipt finds the Transfer(0x0, owner, id) log emitted by
// contract and returns id.
func TokenIDFromReceipt(receipt *types.Receipt, contract, owner common.Address) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}

	zeroTopic := common.Hash{}
	ownerTopic := common.BytesToHash(owner.Bytes())

	for _, entry := range receipt.Logs {
		if entry == nil || entry.Address != contract || len(entry.Topics) != 4 {
			continue
		}
		if entry.Topics[0] != TransferEventTopic || entry.Topics[1] != zeroTopic || entry.Topics[2] != ownerTopic {
			continue
		}
		return new(big.Int).SetBytes(entry.Topics[3].Bytes()), true
	}

	return nil, false
}

// String renders the options for logs and CLI output.
func (o MintOptions) String() string {
	return fmt.Sprintf("network=%q owner=%q contract=%q", o.Network, o.OwnerAddress, o.ContractAddress)
}
