// Package ratelimit implements the fixed-window request budget shared by every
// outbound provider call in the process.
//
// The provider quota is per API key, so a single FixedWindow must be shared by
// all callers. A burst of Limit calls is allowed back-to-back; the next call
// blocks until Window has elapsed since the most recent stamped call, then the
// count starts over.
package ratelimit
