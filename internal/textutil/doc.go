// Package textutil provides text processing utilities for word-set
// similarity and markdown normalization.
//
// The primary use cases are:
//   - Computing Jaccard similarity between short text fragments as a
//     near-duplicate signal
//   - Cleaning HTML artifacts out of markdown produced by rich-text editors
//   - Normalizing markdown whitespace before storage
//
// Word sets are lower-cased and split on whitespace; similarity is the ratio
// of the intersection to the union of the two sets.
package textutil
