package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBolt(t *testing.T) {
	ctx := context.Background()

	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	_, err = b.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)

	alice := User{ChatID: "1", Username: "alice"}
	alice.Watch("aapl")
	alice.Watch(" msft ")
	require.NoError(t, b.Put(ctx, alice))
	require.NoError(t, b.Put(ctx, User{ChatID: "2", Username: "bob", Watchlist: []string{"TSLA"}}))

	u, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, User{ChatID: "1", Username: "alice", Watchlist: []string{"AAPL", "MSFT"}}, u)

	users, err := b.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = b.List(ctx, ListRequest{WatchingSymbol: "tsla"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	require.NoError(t, b.Delete(ctx, "2"))
	assert.ErrorIs(t, b.Delete(ctx, "2"), ErrNotFound)

	users, err = b.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBolt_Update(t *testing.T) {
	ctx := context.Background()

	b, err := NewBolt(t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, b.Close()) }()

	_, err = b.Update(ctx, "1", func(*User) bool { return true })
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, User{ChatID: "1", Username: "alice"}))

	symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA", "AMZN", "GOOG", "META", "NFLX"}

	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			_, err := b.Update(ctx, "1", func(u *User) bool { return u.Watch(sym) })
			assert.NoError(t, err)
		}(sym)
	}
	wg.Wait()

	u, err := b.Get(ctx, "1")
	require.NoError(t, err)
	assert.ElementsMatch(t, symbols, u.Watchlist)

	u, err = b.Update(ctx, "1", func(u *User) bool {
		u.Username = "ignored"
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, "ignored", u.Username)

	u, err = b.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username, "unchanged user is not written")
}

func TestUser_Watchlist(t *testing.T) {
	var u User
	assert.True(t, u.Watch("aapl"))
	assert.False(t, u.Watch("AAPL"))
	assert.False(t, u.Watch("  "))
	assert.True(t, u.Watch("nvda"))
	assert.Equal(t, []string{"AAPL", "NVDA"}, u.Watchlist)

	assert.True(t, u.Watches("nvda"))
	assert.True(t, u.Unwatch("Aapl"))
	assert.False(t, u.Unwatch("AAPL"))
	assert.Equal(t, []string{"NVDA"}, u.Watchlist)
}
