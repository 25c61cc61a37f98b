// Copyright 2025 Tokenlens
//
// Package database provides sentinel errors for store operations.

package database

import "errors"

// Sentinel errors for store operations
var (
	// ErrNotFound is returned when a requested record is not in the store
	ErrNotFound = errors.New("record not found")

	// ErrNotInitialized is returned when the store has no redis client (a Store not built by NewStore)
	ErrNotInitialized = errors.New("store not initialized")

	// ErrInvalidScope is returned for an unknown leaderboard scope
	ErrInvalidScope = errors.New("invalid leaderboard scope")
)
