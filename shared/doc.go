// Package shared provides the cross-process shared cache tier backed by
// Redis.
//
// Every operation is best-effort: transport failures are caught, logged,
// and reported as an Outcome tag rather than an error, so the service stays
// fully functional with the shared cache unreachable. A circuit breaker
// keeps a dead Redis from adding a timeout to every request.
package shared
