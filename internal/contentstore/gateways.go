// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore

import "strings"

// DefaultMirrors are the public IPFS gateways used when none are configured.
var DefaultMirrors = []string{
	"https://gateway.pinata.cloud/ipfs/",
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://dweb.link/ipfs/",
}

// Gateways resolves CIDs against an ordered list of mirror base URLs.
// It is immutable and safe for concurrent use.
type Gateways struct {
	mirrors []string
}

// NewGateways builds a resolver over mirrors, keeping their order.
// Blank entries are skipped; an empty list falls back to [DefaultMirrors].
func NewGateways(mirrors []string) Gateways {
	normalised := make([]string, 0, len(mirrors))
	for _, mirror := range mirrors {
		mirror = strings.TrimSpace(mirror)
		if mirror == "" {
			continue
		}
		if !strings.HasSuffix(mirror, "/") {
			mirror += "/"
		}
		normalised = append(normalised, mirror)
	}

	if len(normalised) == 0 {
		normalised = append(normalised, DefaultMirrors...)
	}
	return Gateways{mirrors: normalised}
}

// Mirrors returns a copy of the configured base URLs.
func (g Gateways) Mirrors() []string {
	return append([]string(nil), g.mirrors...)
}

// Resolve formats cid against the mirror at index. Out-of-range indices
// resolve against the first mirror.
func (g Gateways) Resolve(cid string, index int) string {
	if len(g.mirrors) == 0 {
		g = NewGateways(nil)
	}
	if index < 0 || index >= len(g.mirrors) {
		index = 0
	}
	return g.mirrors[index] + cid
}

// ResolveAll returns the URL of cid on every mirror, in mirror order.
func (g Gateways) ResolveAll(cid string) []string {
	if len(g.mirrors) == 0 {
		g = NewGateways(nil)
	}
	urls := make([]string, len(g.mirrors))
	for i, mirror := range g.mirrors {
		urls[i] = mirror + cid
	}
	return urls
}

// IPFSURI returns the protocol URI used inside metadata documents.
func IPFSURI(cid string) string {
	return "ipfs://" + cid
}
