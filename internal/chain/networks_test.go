// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/chain"
)

const networksYAML = `
default_network: amoy
networks:
  amoy:
    rpc_url: https://rpc-amoy.polygon.technology
    chain_id: 80002
    default_contract: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
    signer_key_env: MINTER_KEY_AMOY
    explorer_url: https://amoy.polygonscan.com/
  base-sepolia:
    rpc_url: https://sepolia.base.org
    chain_id: 84532
    signer_key_env: MINTER_KEY_BASE
`

func TestLoadNetworks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(networksYAML), 0o600))

	set, err := chain.LoadNetworks(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"amoy", "base-sepolia"}, set.Names())

	network, ok := set.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "amoy", network.Name)
	assert.Equal(t, int64(80002), network.ChainID)
	assert.Equal(t, "MINTER_KEY_AMOY", network.SignerKeyEnv)
	assert.Equal(t, "https://amoy.polygonscan.com/tx/0x1", network.TxURL("0x1"))

	base, ok := set.Lookup("base-sepolia")
	require.True(t, ok)
	assert.Empty(t, base.DefaultContract)
	assert.Empty(t, base.TxURL("0x1"))

	_, ok = set.Lookup("mainnet")
	assert.False(t, ok)
}

func TestParseNetworks_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing_rpc", "networks:\n  a:\n    signer_key_env: K\n"},
		{"missing_signer", "networks:\n  a:\n    rpc_url: http://x\n"},
		{"bad_contract", "networks:\n  a:\n    rpc_url: http://x\n    signer_key_env: K\n    default_contract: nope\n"},
		{"unknown_default", "default_network: b\nnetworks:\n  a:\n    rpc_url: http://x\n    signer_key_env: K\n"},
		{"not_yaml", "networks: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.ParseNetworks([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
