// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chain

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Network describes one EVM network the minter can target.
type Network struct {
	Name            string `yaml:"-"`
	RPCURL          string `yaml:"rpc_url"`
	ChainID         int64  `yaml:"chain_id"`
	DefaultContract string `yaml:"default_contract"`
	// SignerKeyEnv names the environment variable holding the hex signing key.
	SignerKeyEnv string `yaml:"signer_key_env"`
	ExplorerURL  string `yaml:"explorer_url"`
}

// TxURL links a transaction on the network's block explorer, if one is configured.
func (n Network) TxURL(txHash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + txHash
}

type networksFile struct {
	DefaultNetwork string             `yaml:"default_network"`
	Networks       map[string]Network `yaml:"networks"`
}

// NetworkSet is the validated content of a networks file.
type NetworkSet struct {
	defaultName string
	networks    map[string]Network
}

// LoadNetworks reads and validates a YAML networks file.
//
// # Example
//
//	default_network: polygon-amoy
//	networks:
//	  polygon-amoy:
//	    rpc_url: https://rpc-amoy.polygon.technology
//	    chain_id: 80002
//	    default_contract: "0x..."
//	    signer_key_env: MINTER_KEY_AMOY
func LoadNetworks(path string) (*NetworkSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chain: read networks file: %w", err)
	}
	return ParseNetworks(data)
}

// ParseNetworks validates networks file content.
func ParseNetworks(data []byte) (*NetworkSet, error) {
	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("chain: parse networks file: %w", err)
	}

	set := &NetworkSet{defaultName: strings.TrimSpace(file.DefaultNetwork), networks: make(map[string]Network, len(file.Networks))}
	for name, network := range file.Networks {
		network.Name = name
		if strings.TrimSpace(network.RPCURL) == "" {
			return nil, fmt.Errorf("chain: network %q: rpc_url is required", name)
		}
		if network.SignerKeyEnv == "" {
			return nil, fmt.Errorf("chain: network %q: signer_key_env is required", name)
		}
		if network.DefaultContract != "" && !common.IsHexAddress(network.DefaultContract) {
			return nil, fmt.Errorf("chain: network %q: default_contract %q is not an address", name, network.DefaultContract)
		}
		set.networks[name] = network
	}

	if set.defaultName != "" {
		if _, ok := set.networks[set.defaultName]; !ok {
			return nil, fmt.Errorf("chain: default_network %q is not defined", set.defaultName)
		}
	}

	return set, nil
}

// NewNetworkSet builds a set from already-validated networks.
func NewNetworkSet(defaultName string, networks ...Network) *NetworkSet {
	set := &NetworkSet{defaultName: defaultName, networks: make(map[string]Network, len(networks))}
	for _, network := range networks {
		set.networks[network.Name] = network
	}
	return set
}

// Lookup resolves a network by name; an empty name selects the default.
func (s *NetworkSet) Lookup(name string) (Network, bool) {
	if s == nil {
		return Network{}, false
	}
	if name == "" {
		name = s.defaultName
	}
	network, ok := s.networks[name]
	return network, ok
}

// Names returns the configured network names, sorted.
func (s *NetworkSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.networks))
	for name := range s.networks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns how many networks are configured.
func (s *NetworkSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.networks)
}
