package compress

import "fmt"

// StreamResult is the concatenation of every full window produced from one
// token stream: Compressed holds Windows*MaxOutSeqLength IDs and Codebooks
// holds Windows*MaxCodebookSize*MaxSubtokens values, window order in both.
type StreamResult struct {
	Compressed []int
	Codebooks  []int
	Windows    int
}

// CompressStream tiles ids into consecutive fixed-size output windows, running
// one Merge pass per window and advancing by the raw IDs that pass consumed.
//
// Windowing contract:
//   - every window begins with BoundaryID, inserted when the raw stream at the
//     window's offset does not already start with one;
//   - the loop only runs while more than one full window's worth of raw input
//     remains, so a short tail is dropped rather than emitted padded;
//   - a mid-stream window that comes up short of exactly MaxOutSeqLength IDs,
//     or that consumes no input, indicates broken bookkeeping and is reported
//     as an error.
//
// onWindow, when non-nil, is invoked after each window with the raw IDs it
// consumed (progress reporting).
func CompressStream(ids []int, p Params, onWindow func(consumed int)) (StreamResult, error) {
	p.ForceLeadingBoundary = true

	var res StreamResult
	offset := 0
	for len(ids)-offset > p.MaxOutSeqLength {
		r := Merge(ids, offset, p)
		if len(r.Compressed) != p.MaxOutSeqLength {
			return StreamResult{}, fmt.Errorf("compress: window %d emitted %d ids, want exactly %d",
				res.Windows, len(r.Compressed), p.MaxOutSeqLength)
		}
		if r.Consumed == 0 {
			return StreamResult{}, fmt.Errorf("compress: window %d consumed no input at offset %d",
				res.Windows, offset)
		}

		res.Compressed = append(res.Compressed, r.Compressed...)
		res.Codebooks = r.Book.AppendTable(res.Codebooks, p.MaxSubtokens, p.BoundaryID)
		res.Windows++
		offset += r.Consumed

		if onWindow != nil {
			onWindow(r.Consumed)
		}
	}
	return res, nil
}
