// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chain_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/chain"
)

const (
	ownerHex    = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	contractHex = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	otherHex    = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
)

type fakeBackend struct {
	receipt  *types.Receipt
	err      error
	requests []chain.MintRequest
}

func (f *fakeBackend) Mint(_ context.Context, request chain.MintRequest) (*types.Receipt, error) {
	f.requests = append(f.requests, request)
	return f.receipt, f.err
}

func transferLog(contract, from, to common.Address, tokenID int64) *types.Log {
	return &types.Log{
		Address: contract,
		Topics: []common.Hash{
			chain.TransferEventTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

func receipt(status uint64, logs ...*types.Log) *types.Receipt {
	return &types.Receipt{Status: status, TxHash: common.HexToHash("0xabc1"), Logs: logs}
}

func newMinter(backend chain.ContractBackend) *chain.Minter {
	networks := chain.NewNetworkSet("amoy", chain.Network{
		Name:            "amoy",
		RPCURL:          "http://localhost:8545",
		ChainID:         80002,
		DefaultContract: contractHex,
		SignerKeyEnv:    "MINTER_KEY",
	}, chain.Network{
		Name:         "base",
		RPCURL:       "http://localhost:9545",
		SignerKeyEnv: "MINTER_KEY_BASE",
	})
	return chain.NewMinter(networks, backend, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestMinter_Mint_Success reads the token id from the Transfer log.
*/
func TestMinter_Mint_Success(t *testing.T) {
	contract := common.HexToAddress(contractHex)
	owner := common.HexToAddress(ownerHex)
	backend := &fakeBackend{receipt: receipt(types.ReceiptStatusSuccessful,
		transferLog(common.HexToAddress(otherHex), common.Address{}, owner, 99),
		transferLog(contract, common.HexToAddress(otherHex), owner, 98),
		transferLog(contract, common.Address{}, owner, 42),
	)}

	result, err := newMinter(backend).Mint(context.Background(), "c1", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex})
	require.NoError(t, err)

	assert.Equal(t, "42", result.TokenID)
	assert.Equal(t, "amoy", result.Network)
	assert.Equal(t, contract.Hex(), result.ContractAddress)
	assert.Equal(t, "ipfs://bafymeta", result.MetadataURI)
	assert.Equal(t, common.HexToHash("0xabc1").Hex(), result.MintTxHash)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, owner, backend.requests[0].Owner)
	assert.Equal(t, "ipfs://bafymeta", backend.requests[0].TokenURI)
}

/*
TestMinter_Mint_Configuration covers every precondition failure.
*/
func TestMinter_Mint_Configuration(t *testing.T) {
	tests := []struct {
		name string
		cid  string
		opts chain.MintOptions
	}{
		{"missing_owner", "bafymeta", chain.MintOptions{}},
		{"owner_without_prefix", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex[2:]}},
		{"missing_cid", "", chain.MintOptions{OwnerAddress: ownerHex}},
		{"unknown_network", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex, Network: "mainnet"}},
		{"no_contract_on_network", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex, Network: "base"}},
		{"bad_contract", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex, ContractAddress: "0x1234"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			_, err := newMinter(backend).Mint(context.Background(), "c1", tt.cid, tt.opts)

			assert.ErrorIs(t, err, chain.ErrConfiguration)
			assert.Empty(t, backend.requests, "nothing is submitted")
		})
	}
}

func TestMinter_Mint_NoNetworks(t *testing.T) {
	minter := chain.NewMinter(nil, &fakeBackend{}, nil)
	_, err := minter.Mint(context.Background(), "c1", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex})
	assert.ErrorIs(t, err, chain.ErrConfiguration)
}

/*
TestMinter_Mint_ChainFailures verifies hard failures carry the tx hash.
*/
func TestMinter_Mint_ChainFailures(t *testing.T) {
	contract := common.HexToAddress(contractHex)
	owner := common.HexToAddress(ownerHex)

	tests := []struct {
		name      string
		backend   *fakeBackend
		want      error
		broadcast bool
	}{
		{
			name:      "missing_transfer_event",
			backend:   &fakeBackend{receipt: receipt(types.ReceiptStatusSuccessful)},
			want:      chain.ErrNoTransferEvent,
			broadcast: true,
		},
		{
			name:      "transfer_to_someone_else",
			backend:   &fakeBackend{receipt: receipt(types.ReceiptStatusSuccessful, transferLog(contract, common.Address{}, common.HexToAddress(otherHex), 1))},
			want:      chain.ErrNoTransferEvent,
			broadcast: true,
		},
		{
			name:      "reverted",
			backend:   &fakeBackend{receipt: receipt(types.ReceiptStatusFailed, transferLog(contract, common.Address{}, owner, 1))},
			want:      chain.ErrReverted,
			broadcast: true,
		},
		{
			name:    "rpc_error",
			backend: &fakeBackend{err: errors.New("dial rpc: connection refused")},
		},
		{
			name:      "wait_failed_after_broadcast",
			backend:   &fakeBackend{err: &chain.MintError{TxHash: "0xfeed", Err: context.DeadlineExceeded}},
			want:      context.DeadlineExceeded,
			broadcast: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newMinter(tt.backend).Mint(context.Background(), "c1", "bafymeta", chain.MintOptions{OwnerAddress: ownerHex})

			var mintErr *chain.MintError
			require.True(t, errors.As(err, &mintErr))
			assert.Equal(t, "amoy", mintErr.Network)
			assert.Equal(t, tt.broadcast, mintErr.Broadcast())
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.NotErrorIs(t, err, chain.ErrConfiguration)
		})
	}
}

func TestTokenIDFromReceipt_LargeID(t *testing.T) {
	contract := common.HexToAddress(contractHex)
	owner := common.HexToAddress(ownerHex)
	large, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	entry := transferLog(contract, common.Address{}, owner, 0)
	entry.Topics[3] = common.BigToHash(large)

	id, ok := chain.TokenIDFromReceipt(&types.Receipt{Logs: []*types.Log{entry}}, contract, owner)
	require.True(t, ok)
	assert.Equal(t, 0, large.Cmp(id))

	_, ok = chain.TokenIDFromReceipt(nil, contract, owner)
	assert.False(t, ok)
}
