// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-publish/internal/contentstore"
)

func TestGateways_Resolve(t *testing.T) {
	gateways := contentstore.NewGateways(nil)
	cid := "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first", 0, "https://gateway.pinata.cloud/ipfs/" + cid},
		{"last", 3, "https://dweb.link/ipfs/" + cid},
		{"out_of_range_wraps_to_first", 9, "https://gateway.pinata.cloud/ipfs/" + cid},
		{"negative_wraps_to_first", -1, "https://gateway.pinata.cloud/ipfs/" + cid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gateways.Resolve(cid, tt.index))
		})
	}
}

func TestGateways_ResolveAll(t *testing.T) {
	urls := contentstore.NewGateways(nil).ResolveAll("bafyx")

	assert.Len(t, urls, 4)
	assert.Equal(t, []string{
		"https://gateway.pinata.cloud/ipfs/bafyx",
		"https://ipfs.io/ipfs/bafyx",
		"https://cloudflare-ipfs.com/ipfs/bafyx",
		"https://dweb.link/ipfs/bafyx",
	}, urls)
}

func TestGateways_CustomMirrorsKeepOrder(t *testing.T) {
	gateways := contentstore.NewGateways([]string{" https://b.example/ipfs ", "", "https://a.example/ipfs/"})

	assert.Equal(t, []string{"https://b.example/ipfs/", "https://a.example/ipfs/"}, gateways.Mirrors())
	assert.Equal(t, "https://a.example/ipfs/x", gateways.Resolve("x", 1))

	var zero contentstore.Gateways
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/x", zero.Resolve("x", 0))
}
