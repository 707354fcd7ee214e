// Package tokpack is the single-call embedding surface of the compressor: one
// raw token-ID slice in, one compressed window plus its codebook table out,
// with the untouched remainder of the stream handed back for the next call.
package tokpack

import "github.com/tokpack/internal/compress"

// Options mirrors the operational parameters of the CLI. DisabledIDs defaults
// to just the EOT token when nil; the IDs listed never participate in a phrase
// and flush any phrase in progress.
type Options struct {
	InitialVocabSize int
	MaxCodebookSize  int
	MaxSubtokens     int
	MaxOutSeqLength  int
	EOTTokenID       int
	DisabledIDs      []int
}

// Compress runs one greedy merge pass over ids and returns the compressed
// sequence (at most MaxOutSeqLength IDs), the codebook table as exactly
// MaxCodebookSize rows of MaxSubtokens IDs (EOT-padded), and the leftover
// slice starting at the next document boundary past the consumed region.
// Leftover is nil when no further document remains.
//
// Substitute IDs are only meaningful against the returned table; a second
// call starts from an empty codebook again.
func Compress(ids []int, opts Options) (compressed []int, codebook [][]int, leftover []int) {
	disabled := opts.DisabledIDs
	if disabled == nil {
		disabled = []int{opts.EOTTokenID}
	}

	r := compress.Merge(ids, 0, compress.Params{
		InitialVocabSize: opts.InitialVocabSize,
		MaxCodebookSize:  opts.MaxCodebookSize,
		MaxSubtokens:     opts.MaxSubtokens,
		MaxOutSeqLength:  opts.MaxOutSeqLength,
		BoundaryID:       opts.EOTTokenID,
		Disabled:         compress.NewIDSet(disabled...),
	})

	codebook = r.Book.Rows(opts.MaxSubtokens, opts.EOTTokenID)
	if r.NextBoundary >= 0 {
		leftover = ids[r.NextBoundary:]
	}
	return r.Compressed, codebook, leftover
}
