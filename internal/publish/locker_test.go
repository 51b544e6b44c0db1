// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/publish"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := publish.NewLocalLocker()

	unlock, err := locker.Acquire(ctx, "c1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "c1")
	assert.ErrorIs(t, err, publish.ErrLockHeld)

	other, err := locker.Acquire(ctx, "c2")
	require.NoError(t, err, "locks are per comic")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	again, err := locker.Acquire(ctx, "c1")
	require.NoError(t, err)

	// A stale unlock must not free the new holder.
	require.NoError(t, unlock(ctx))
	_, err = locker.Acquire(ctx, "c1")
	assert.ErrorIs(t, err, publish.ErrLockHeld)

	require.NoError(t, again(ctx))
}
