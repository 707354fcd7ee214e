package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tokpack/internal/tokbin"
)

// testConfig shrinks everything so a few hundred synthetic tokens produce
// several windows.
func testConfig() Config {
	return Config{
		Name:             "tinyset",
		NumChunks:        1,
		InitialVocabSize: 100,
		MaxCodebookSize:  8,
		MaxSubtokens:     3,
		MaxOutSeqLength:  16,
		EOTTokenID:       0,
		Workers:          1,
	}
}

// writeChunk synthesizes a .bin chunk of repeated short documents.
func writeChunk(t *testing.T, dir, name string, docs int) []int {
	t.Helper()

	var ids []int
	for d := 0; d < docs; d++ {
		ids = append(ids, 0) // document marker
		for i := 0; i < 9; i++ {
			ids = append(ids, 5+(d+i)%4)
		}
	}
	if err := tokbin.WriteFile(filepath.Join(dir, name), tokbin.NewHeader(len(ids)), ids); err != nil {
		t.Fatalf("write chunk %s: %v", name, err)
	}
	return ids
}

func TestCompressFileWritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	ids := writeChunk(t, dir, "fineweb_val_000000.bin", 20)

	var logBuf bytes.Buffer
	r := NewRunner(cfg, dir, NewLogger(&logBuf), io.Discard)

	stats, err := r.CompressFile("fineweb_val_000000.bin", nil)
	if err != nil {
		t.Fatalf("CompressFile: %v", err)
	}
	if stats.RawTokens != len(ids) {
		t.Fatalf("RawTokens = %d, want %d", stats.RawTokens, len(ids))
	}
	if stats.Windows == 0 {
		t.Fatalf("no windows produced from %d raw tokens", len(ids))
	}
	if stats.CompressedTokens != stats.Windows*cfg.MaxOutSeqLength {
		t.Fatalf("CompressedTokens = %d, want %d full windows of %d",
			stats.CompressedTokens, stats.Windows, cfg.MaxOutSeqLength)
	}

	header, comp, err := tokbin.ReadFile(filepath.Join(dir, "compressed_fineweb_val_000000.bin"))
	if err != nil {
		t.Fatalf("read compressed artifact: %v", err)
	}
	if header.NumTokens() != len(comp) || len(comp) != stats.CompressedTokens {
		t.Fatalf("compressed count mismatch: header %d, body %d, stats %d",
			header.NumTokens(), len(comp), stats.CompressedTokens)
	}
	if int(header.Slots[tokbin.SlotNumWindows]) != stats.Windows {
		t.Fatalf("window slot = %d, want %d", header.Slots[tokbin.SlotNumWindows], stats.Windows)
	}
	if int(header.Slots[tokbin.SlotMaxCodebookSize]) != cfg.MaxCodebookSize ||
		int(header.Slots[tokbin.SlotMaxSubtokens]) != cfg.MaxSubtokens {
		t.Fatalf("parameter slots = %d/%d, want %d/%d",
			header.Slots[tokbin.SlotMaxCodebookSize], header.Slots[tokbin.SlotMaxSubtokens],
			cfg.MaxCodebookSize, cfg.MaxSubtokens)
	}
	for i, id := range comp {
		if id >= cfg.InitialVocabSize+cfg.MaxCodebookSize {
			t.Fatalf("compressed id %d at %d outside valid range", id, i)
		}
	}

	// Codebook artifact: headerless, one full padded table per window.
	cbPath := filepath.Join(dir, "codebooks_fineweb_val_000000.bin")
	data, err := os.ReadFile(cbPath)
	if err != nil {
		t.Fatalf("read codebooks artifact: %v", err)
	}
	if want := stats.Windows * cfg.MaxCodebookSize * cfg.MaxSubtokens * 2; len(data) != want {
		t.Fatalf("codebooks artifact is %d bytes, want %d", len(data), want)
	}

	// And the logger saw a parseable event.
	var evt LogEvent
	if err := json.Unmarshal(logBuf.Bytes()[:bytes.IndexByte(logBuf.Bytes(), '\n')], &evt); err != nil {
		t.Fatalf("log line not json: %v", err)
	}
	if evt.Level != "info" {
		t.Fatalf("log level = %q, want info", evt.Level)
	}
}

func TestRunnerChunkNaming(t *testing.T) {
	cfg := testConfig()
	cfg.NumChunks = 2
	r := NewRunner(cfg, t.TempDir(), NewLogger(io.Discard), io.Discard)

	got := r.ChunkFiles()
	want := []string{"fineweb_val_000000.bin", "fineweb_train_000001.bin", "fineweb_train_000002.bin"}
	if len(got) != len(want) {
		t.Fatalf("ChunkFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ChunkFiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunnerRunParallel(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.NumChunks = 3
	cfg.Workers = 2

	r := NewRunner(cfg, dir, NewLogger(io.Discard), io.Discard)
	for _, f := range r.ChunkFiles() {
		writeChunk(t, dir, f, 15)
	}

	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range r.ChunkFiles() {
		if _, _, err := tokbin.ReadFile(filepath.Join(dir, "compressed_"+f)); err != nil {
			t.Fatalf("missing artifact for %s: %v", f, err)
		}
	}
}

func TestRunnerRunMissingChunk(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	r := NewRunner(cfg, dir, NewLogger(io.Discard), io.Discard)
	err := r.Run()
	if err == nil {
		t.Fatalf("Run succeeded with no input files")
	}
	if !strings.Contains(err.Error(), "fineweb_val_000000.bin") {
		t.Fatalf("error does not name the missing chunk: %v", err)
	}
}
