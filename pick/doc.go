// Package pick holds a small in-memory index of term identifiers used to
// answer random-term requests without querying the database per request.
//
// The index is a best-effort cache, not a source of truth: it is loaded
// wholesale from the primary store and rebuilt from scratch when empty or
// invalidated, never reconciled entry by entry.
package pick
