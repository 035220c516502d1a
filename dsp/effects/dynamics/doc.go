// Package dynamics provides the gain-reduction stage used by the
// graph's Compressor node kind: a soft-knee, feed-forward compressor
// with log2-domain gain computation.
package dynamics
