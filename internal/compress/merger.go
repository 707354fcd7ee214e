package compress

// IDSet is a dense membership set over small non-negative token IDs, used for
// the disabled-ID (document marker) set.
type IDSet []bool

// NewIDSet builds a set containing exactly the given IDs.
func NewIDSet(ids ...int) IDSet {
	max := -1
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	s := make(IDSet, max+1)
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Contains reports membership. IDs beyond the backing slice are not members.
func (s IDSet) Contains(id int) bool {
	return id >= 0 && id < len(s) && s[id]
}

// Params bundles the knobs of one merge pass. Disabled IDs pass through the
// output unchanged and never join a phrase; BoundaryID is the document marker
// used for codebook padding and for locating the next document.
type Params struct {
	InitialVocabSize int
	MaxCodebookSize  int
	MaxSubtokens     int
	MaxOutSeqLength  int
	BoundaryID       int
	Disabled         IDSet

	// ForceLeadingBoundary emits BoundaryID first whenever the slice at the
	// starting offset does not already begin with it, so every output window
	// starts at a document boundary.
	ForceLeadingBoundary bool
}

// Result of one merge pass over ids[offset:].
type Result struct {
	// Compressed holds at most MaxOutSeqLength substitute/raw IDs.
	Compressed []int
	// Book is the codebook learned during this pass. Substitute IDs are
	// meaningful only against this snapshot; every pass starts from empty.
	Book *Codebook
	// Consumed counts raw IDs read from ids[offset:]. A forced leading
	// boundary consumes nothing.
	Consumed int
	// NextBoundary is the absolute index of the first BoundaryID at or after
	// offset+Consumed, or -1 when no further document remains.
	NextBoundary int
}

// Merge runs the streaming greedy phrase learner over ids[offset:]: an
// LZW-style dictionary pass with bounded phrase length and a bounded,
// non-evicting dictionary, stopping once MaxOutSeqLength IDs were emitted.
//
// The candidate phrase grows one ID at a time. The first extension that is not
// yet in the codebook gets registered (capacity permitting) and the previous
// candidate - which by construction is already registered, or is a single raw
// ID - is emitted. A candidate reaching MaxSubtokens is emitted whole. Flush
// emissions past the output cap are dropped, not buffered.
func Merge(ids []int, offset int, p Params) Result {
	out := make([]int, 0, p.MaxOutSeqLength)
	book := NewCodebook(p.InitialVocabSize, p.MaxCodebookSize)
	cand := make([]int, 0, p.MaxSubtokens)

	push := func(id int) {
		if len(out) < p.MaxOutSeqLength {
			out = append(out, id)
		}
	}

	if p.ForceLeadingBoundary && offset < len(ids) && ids[offset] != p.BoundaryID {
		push(p.BoundaryID)
	}

	i := 0
	for offset+i < len(ids) && len(out) < p.MaxOutSeqLength {
		id := ids[offset+i]

		if p.Disabled.Contains(id) {
			if len(cand) > 0 {
				push(book.Lookup(cand))
				cand = cand[:0]
			}
			push(id)
			i++
			continue
		}

		cand = append(cand, id)

		if !book.Contains(cand) {
			book.TryInsert(cand)
			push(book.Lookup(cand[:len(cand)-1]))
			cand = cand[:0]
			cand = append(cand, id)
		}

		if len(cand) == p.MaxSubtokens {
			push(book.Lookup(cand))
			cand = cand[:0]
		}

		i++
	}

	// Should not happen with correct bookkeeping; split defensively rather
	// than hand Lookup an over-long phrase.
	if len(cand) > p.MaxSubtokens {
		last := cand[len(cand)-1]
		push(book.Lookup(cand[:len(cand)-1]))
		cand = cand[:0]
		cand = append(cand, last)
	}
	if len(cand) > 0 {
		push(book.Lookup(cand))
	}

	next := -1
	for j := offset + i; j < len(ids); j++ {
		if ids[j] == p.BoundaryID {
			next = j
			break
		}
	}

	return Result{Compressed: out, Book: book, Consumed: i, NextBoundary: next}
}
