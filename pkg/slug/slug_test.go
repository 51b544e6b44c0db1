// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-publish/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Lighthouse Keeper", "the-lighthouse-keeper"},
		{"Café  Noir!!", "cafe-noir"},
		{"  --Vol. 2: Ashes--  ", "vol-2-ashes"},
		{"Tiếng Việt", "tieng-viet"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.in))
		})
	}
}

func TestFrom_Truncates(t *testing.T) {
	long := strings.Repeat("panel ", 30)
	got := slug.From(long)

	assert.LessOrEqual(t, len(got), slug.MaxLength)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestOr(t *testing.T) {
	assert.Equal(t, "kept", slug.Or("kept", "Some Title"))
	assert.Equal(t, "some-title", slug.Or("  ", "Some Title"))
}
