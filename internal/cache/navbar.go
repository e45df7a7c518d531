// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// navbar.go caches the assembled navbar tree in Valkey so storefront page
// loads skip the category query and tree build. Every category mutation
// drops the entry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"repairshop/internal/models"
)

const (
	// navbarKey is the Valkey key holding the JSON navbar tree.
	navbarKey = "navbar:tree"

	// DefaultNavbarTTL is how long a built tree stays cached.
	DefaultNavbarTTL = 5 * time.Minute
)

// NavbarCache stores the navbar tree in Valkey. Errors are logged and
// treated as a miss; the database stays the source of truth.
type NavbarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewNavbarCache creates a navbar cache backed by the given Valkey client.
func NewNavbarCache(client *redis.Client, ttl time.Duration) *NavbarCache {
	if ttl <= 0 {
		ttl = DefaultNavbarTTL
	}
	return &NavbarCache{client: client, ttl: ttl}
}

// Get returns the cached tree, or false on a miss.
func (nc *NavbarCache) Get(ctx context.Context) ([]models.Category, bool) {
	val, err := nc.client.Get(ctx, navbarKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("navbar cache get error", "error", err)
		return nil, false
	}

	var tree []models.Category
	if err := json.Unmarshal(val, &tree); err != nil {
		slog.Warn("navbar cache decode error", "error", err)
		return nil, false
	}
	slog.Debug("navbar cache hit", "roots", len(tree))
	return tree, true
}

// Set stores the tree with the configured TTL.
func (nc *NavbarCache) Set(ctx context.Context, tree []models.Category) {
	data, err := json.Marshal(tree)
	if err != nil {
		slog.Warn("navbar cache encode error", "error", err)
		return
	}
	if err := nc.client.Set(ctx, navbarKey, data, nc.ttl).Err(); err != nil {
		slog.Warn("navbar cache set error", "error", err)
	}
}

// Invalidate drops the cached tree.
func (nc *NavbarCache) Invalidate(ctx context.Context) {
	if err := nc.client.Del(ctx, navbarKey).Err(); err != nil {
		slog.Warn("navbar cache invalidate error", "error", err)
		return
	}
	slog.Debug("navbar cache invalidated")
}
