package lineage

import "errors"

// Fatal conditions. Callers test for them with errors.Is; the wrapped message
// carries the offending key or the upstream cause.
var (
	// ErrNotFound means the seed identifier does not resolve to any node.
	ErrNotFound = errors.New("lineage: not found")
	// ErrInvalidArgument means the request is malformed or names the wrong kind
	// of entity for the requested operation.
	ErrInvalidArgument = errors.New("lineage: invalid argument")
	// ErrUpstreamUnavailable means the persistence layer failed mid-load. The
	// partially loaded graph is discarded.
	ErrUpstreamUnavailable = errors.New("lineage: upstream unavailable")
)
