// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the publishing service.

It defines server timeouts, upstream deadlines for the publish pipeline, rate
limits and the header/field names shared between layers.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Upstream Timing: Deadlines for content-store, chain and search calls.
  - Rate Limiting: Burst capacities and IP tracking TTLs.

Using this package keeps magic strings and numbers out of the pipeline code.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "yomira-publish"
	AppVersion = "0.3.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is generous because page images are uploaded through the API.
	DefaultReadTimeout = 60 * time.Second

	// DefaultWriteTimeout must outlive a full publish run (pinning + chain confirmation).
	DefaultWriteTimeout = 5 * time.Minute

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout bounds plain CRUD-style requests and database statements.
	GlobalRequestTimeout = 30 * time.Second

	// PublishRequestTimeout bounds a single publish request end to end.
	PublishRequestTimeout = 4 * time.Minute

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Upstream Timing

const (
	// ContentStoreJSONTimeout bounds a single JSON pin request.
	ContentStoreJSONTimeout = 30 * time.Second

	// ContentStoreBinaryTimeout bounds a single binary pin request.
	ContentStoreBinaryTimeout = 60 * time.Second

	// ChainMintTimeout bounds submission plus receipt confirmation.
	ChainMintTimeout = 2 * time.Minute

	// SearchBackendTimeout bounds one push to one search backend.
	SearchBackendTimeout = 10 * time.Second

	// PublishLockTTL is how long a publish lock survives a crashed holder.
	PublishLockTTL = 10 * time.Minute
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim on access tokens minted by the main API.
	AuthIssuer = "yomira.app"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes

const (
	RedisPrefixPublishLock = "publish:lock:"
)
