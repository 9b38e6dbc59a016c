// Package httpapi exposes the content endpoints and the cache management
// operations. Handlers go through the cache-aside orchestrator; the
// read-through shared cache middleware wraps the heavy list endpoints.
package httpapi
