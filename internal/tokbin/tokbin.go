// Package tokbin reads and writes the .bin token container: a fixed 1024-byte
// preamble of 256 little-endian int32 slots followed by one little-endian
// uint16 per token ID.
package tokbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	// Magic occupies header slot 0 of every valid .bin file.
	Magic = 20240520
	// Version occupies slot 1; only version 1 is supported.
	Version = 1
	// HeaderSlots is the fixed number of int32 header slots.
	HeaderSlots = 256

	headerBytes = HeaderSlots * 4
)

// Well-known header slot indices. Slots beyond these are reserved; they are
// read and written back untouched.
const (
	SlotMagic = iota
	SlotVersion
	SlotNumTokens
	SlotNumWindows
	SlotMaxCodebookSize
	SlotMaxSubtokens
)

// Header is the fixed 256-slot preamble of a .bin file.
type Header struct {
	Slots [HeaderSlots]int32
}

// NewHeader returns a header carrying the magic, the supported version and the
// given token count.
func NewHeader(numTokens int) Header {
	var h Header
	h.Slots[SlotMagic] = Magic
	h.Slots[SlotVersion] = Version
	h.Slots[SlotNumTokens] = int32(numTokens)
	return h
}

// NumTokens reports the token count recorded in the header.
func (h *Header) NumTokens() int {
	return int(h.Slots[SlotNumTokens])
}

// Validate checks magic and version. A mismatch means the file is not ours or
// not a format we speak; both are fatal for the whole run.
func (h *Header) Validate() error {
	if h.Slots[SlotMagic] != Magic {
		return fmt.Errorf("tokbin: magic number mismatch: got %d, want %d", h.Slots[SlotMagic], Magic)
	}
	if h.Slots[SlotVersion] != Version {
		return fmt.Errorf("tokbin: unsupported version %d", h.Slots[SlotVersion])
	}
	return nil
}

// ReadHeader reads and validates only the 1024-byte preamble, for callers
// that need the token count before deciding to load the body.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("tokbin: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, headerBytes)
	if _, err := io.ReadFull(f, buf); err != nil {
		return Header{}, fmt.Errorf("tokbin: %s: truncated header: %w", path, err)
	}

	var h Header
	for i := range h.Slots {
		h.Slots[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	if err := h.Validate(); err != nil {
		return Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ReadFile loads and validates a .bin file, returning its header and the
// decoded token IDs. The whole file is read up front; the merge passes
// downstream never touch the filesystem.
func ReadFile(path string) (Header, []int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("tokbin: read %s: %w", path, err)
	}
	if len(data) < headerBytes {
		return Header{}, nil, fmt.Errorf("tokbin: %s: truncated header: %d bytes", path, len(data))
	}

	var h Header
	for i := range h.Slots {
		h.Slots[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	if err := h.Validate(); err != nil {
		return Header{}, nil, fmt.Errorf("%s: %w", path, err)
	}

	n := h.NumTokens()
	body := data[headerBytes:]
	if len(body) < 2*n {
		return Header{}, nil, fmt.Errorf("tokbin: %s: body holds %d tokens, header says %d", path, len(body)/2, n)
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = int(binary.LittleEndian.Uint16(body[i*2:]))
	}
	return h, ids, nil
}

// WriteFile writes a header plus token body. Every ID must fit in 16 bits;
// larger values are outside the container's contract.
func WriteFile(path string, h Header, ids []int) error {
	buf := make([]byte, headerBytes+2*len(ids))
	for i, v := range h.Slots {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	if err := packUint16(buf[headerBytes:], ids); err != nil {
		return fmt.Errorf("tokbin: write %s: %w", path, err)
	}
	return os.WriteFile(path, buf, 0o644)
}

// WriteRaw writes a headerless stream of 16-bit values, the layout of the
// codebook-table artifact.
func WriteRaw(path string, vals []int) error {
	buf := make([]byte, 2*len(vals))
	if err := packUint16(buf, vals); err != nil {
		return fmt.Errorf("tokbin: write %s: %w", path, err)
	}
	return os.WriteFile(path, buf, 0o644)
}

func packUint16(dst []byte, vals []int) error {
	for i, v := range vals {
		if v < 0 || v > math.MaxUint16 {
			return fmt.Errorf("value %d at index %d does not fit in uint16", v, i)
		}
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	}
	return nil
}
