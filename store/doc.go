// Package store is the PostgreSQL-backed primary store for industries and
// jargon terms. The cache layer sits in front of it; nothing here knows
// about caching.
package store
