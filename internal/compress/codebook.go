package compress

import "fmt"

// Codebook is a capacity-bounded registry of phrases (ordered sequences of raw
// token IDs) to substitute IDs. Substitute IDs are assigned monotonically
// starting at initialVocabSize and are never reused or overwritten. Once the
// capacity is reached the codebook refuses further insertions but keeps
// matching everything already registered; there is no eviction or reset.
//
// Single-ID phrases are never stored: a raw ID below initialVocabSize stands
// for itself.
type Codebook struct {
	initialVocabSize int
	maxSize          int

	ids     map[string]int
	phrases [][]int // in assignment order, so phrases[i] maps to initialVocabSize+i
}

// NewCodebook returns an empty codebook with room for maxSize phrases.
func NewCodebook(initialVocabSize, maxSize int) *Codebook {
	return &Codebook{
		initialVocabSize: initialVocabSize,
		maxSize:          maxSize,
		ids:              make(map[string]int, maxSize),
	}
}

// phraseKey packs a phrase into a map key. Fixed-size arrays are comparable
// but phrases vary in length, so each ID is serialized as 4 big-endian bytes.
func phraseKey(phrase []int) string {
	buf := make([]byte, 0, 4*len(phrase))
	for _, id := range phrase {
		buf = append(buf, byte(id>>24), byte(id>>16), byte(id>>8), byte(id))
	}
	return string(buf)
}

// Len reports the number of registered phrases.
func (b *Codebook) Len() int {
	return len(b.phrases)
}

// Contains reports whether the phrase already has an ID. A single-ID phrase is
// contained exactly when the ID is part of the original vocabulary; those are
// self-mapped and never occupy a slot.
func (b *Codebook) Contains(phrase []int) bool {
	if len(phrase) == 1 {
		return phrase[0] < b.initialVocabSize
	}
	_, ok := b.ids[phraseKey(phrase)]
	return ok
}

// Lookup resolves a phrase to its substitute ID (or the ID itself for a
// single-ID phrase). Calling Lookup on a phrase that was never registered is a
// bookkeeping defect, not an input error, and panics.
func (b *Codebook) Lookup(phrase []int) int {
	if len(phrase) == 1 {
		return phrase[0]
	}
	id, ok := b.ids[phraseKey(phrase)]
	if !ok {
		panic(fmt.Sprintf("compress: lookup of unregistered phrase %v", phrase))
	}
	return id
}

// TryInsert registers the phrase and returns its fresh substitute ID. When the
// codebook is at capacity the insert is silently refused and ok is false;
// callers treat that as a steady state, not an error.
func (b *Codebook) TryInsert(phrase []int) (id int, ok bool) {
	if len(b.phrases) >= b.maxSize {
		return 0, false
	}
	cp := make([]int, len(phrase))
	copy(cp, phrase)

	id = b.initialVocabSize + len(b.phrases)
	b.ids[phraseKey(cp)] = id
	b.phrases = append(b.phrases, cp)
	return id, true
}

// AppendTable appends the serialized codebook table to dst and returns it.
// Entries appear in substitute-ID order; each phrase is right-padded to
// maxSubtokens with padID and the table is right-padded with all-padID rows up
// to the full capacity, so the appended region is always exactly
// maxSize*maxSubtokens values regardless of how many phrases were learned.
func (b *Codebook) AppendTable(dst []int, maxSubtokens, padID int) []int {
	for _, phrase := range b.phrases {
		dst = append(dst, phrase...)
		for i := len(phrase); i < maxSubtokens; i++ {
			dst = append(dst, padID)
		}
	}
	for i := len(b.phrases); i < b.maxSize; i++ {
		for j := 0; j < maxSubtokens; j++ {
			dst = append(dst, padID)
		}
	}
	return dst
}

// Rows returns the serialized table as one padded row per capacity slot,
// mirroring AppendTable's layout for callers that want per-phrase access.
func (b *Codebook) Rows(maxSubtokens, padID int) [][]int {
	rows := make([][]int, b.maxSize)
	for i := range rows {
		row := make([]int, maxSubtokens)
		for j := range row {
			row[j] = padID
		}
		if i < len(b.phrases) {
			copy(row, b.phrases[i])
		}
		rows[i] = row
	}
	return rows
}
