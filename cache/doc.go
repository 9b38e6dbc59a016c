// Package cache provides the in-process response cache for the content API.
//
// It provides a TTL-based Store with a background sweep, deterministic
// key derivation from request parameters, hit/miss accounting, and a
// cache-aside Orchestrator used by the request handlers.
package cache
