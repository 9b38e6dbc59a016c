// Package health exposes liveness and readiness checks for the backend's
// collaborators: the primary store and the shared cache. The shared cache
// is advisory, so its failure degrades readiness rather than failing it.
package health
