// Package store contains users and their watchlists, and the storage for them.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store
type Interface interface {
	Put(ctx context.Context, u User) error
	Get(ctx context.Context, chatID string) (User, error)
	// Update loads the user and stores it back if fn reports a change,
	// atomically.
	Update(ctx context.Context, chatID string, fn func(u *User) (changed bool)) (User, error)
	List(ctx context.Context, req ListRequest) ([]User, error)
	Delete(ctx context.Context, chatID string) error
}

// ListRequest defines parameters for listing users from store.
type ListRequest struct {
	// WatchingSymbol, if set, limits the list to users watching it.
	WatchingSymbol string
}

// User is a chat user with their watchlist.
type User struct {
	ChatID    string   `json:"chat_id"`
	Username  string   `json:"username"`
	Watchlist []string `json:"watchlist"`
}

// NormalizeSymbol brings the ticker to the form finnhub uses.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Watch adds the symbol to the watchlist, reports whether it was added.
func (u *User) Watch(symbol string) bool {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" || u.Watches(symbol) {
		return false
	}
	u.Watchlist = append(u.Watchlist, symbol)
	return true
}

// Unwatch removes the symbol from the watchlist, reports whether it was there.
func (u *User) Unwatch(symbol string) bool {
	symbol = NormalizeSymbol(symbol)
	if !u.Watches(symbol) {
		return false
	}
	u.Watchlist = lo.Without(u.Watchlist, symbol)
	return true
}

// Watches checks whether the symbol is in the watchlist.
func (u User) Watches(symbol string) bool {
	return lo.Contains(u.Watchlist, NormalizeSymbol(symbol))
}
