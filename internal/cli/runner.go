package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/tokpack/internal/compress"
	"github.com/tokpack/internal/tokbin"
)

// FileStats summarizes one compressed chunk file.
type FileStats struct {
	File             string
	RawTokens        int
	CompressedTokens int
	Windows          int
}

// Ratio is compressed tokens per raw token, counting only the raw IDs that
// made it into a full window.
func (s FileStats) Ratio() float64 {
	if s.RawTokens == 0 {
		return 0
	}
	return float64(s.CompressedTokens) / float64(s.RawTokens)
}

// Runner drives the whole pipeline over a dataset directory: discover chunk
// files, decode each .bin, tile it into windows, and write the compressed and
// codebook artifacts next to the input.
type Runner struct {
	Cfg Config
	Dir string    // dataset directory holding the chunk files
	Log *Logger
	Out io.Writer // human-facing progress/summary; io.Discard to silence
}

// NewRunner wires a runner with diagnostics discarded unless enabled later.
func NewRunner(cfg Config, dir string, log *Logger, out io.Writer) *Runner {
	return &Runner{Cfg: cfg, Dir: dir, Log: log, Out: out}
}

// ChunkFiles lists the chunk files of a run using the dataset naming
// convention: one validation chunk, then NumChunks training chunks.
func (r *Runner) ChunkFiles() []string {
	files := []string{fmt.Sprintf("fineweb_val_%06d.bin", 0)}
	for c := 1; c <= r.Cfg.NumChunks; c++ {
		files = append(files, fmt.Sprintf("fineweb_train_%06d.bin", c))
	}
	return files
}

func (r *Runner) params() compress.Params {
	return compress.Params{
		InitialVocabSize: r.Cfg.InitialVocabSize,
		MaxCodebookSize:  r.Cfg.MaxCodebookSize,
		MaxSubtokens:     r.Cfg.MaxSubtokens,
		MaxOutSeqLength:  r.Cfg.MaxOutSeqLength,
		BoundaryID:       r.Cfg.EOTTokenID,
		Disabled:         compress.NewIDSet(r.Cfg.EOTTokenID),
	}
}

// CompressFile compresses one chunk file and writes both artifacts. onWindow,
// when non-nil, receives the raw-ID consumption of each finished window.
func (r *Runner) CompressFile(filename string, onWindow func(consumed int)) (FileStats, error) {
	inPath := filepath.Join(r.Dir, filename)
	header, ids, err := tokbin.ReadFile(inPath)
	if err != nil {
		return FileStats{}, err
	}

	res, err := compress.CompressStream(ids, r.params(), onWindow)
	if err != nil {
		return FileStats{}, fmt.Errorf("%s: %w", filename, err)
	}

	// The input header travels along so reserved slots survive; the artifact
	// slots are overwritten with what was actually produced.
	header.Slots[tokbin.SlotNumTokens] = int32(len(res.Compressed))
	header.Slots[tokbin.SlotNumWindows] = int32(res.Windows)
	header.Slots[tokbin.SlotMaxCodebookSize] = int32(r.Cfg.MaxCodebookSize)
	header.Slots[tokbin.SlotMaxSubtokens] = int32(r.Cfg.MaxSubtokens)

	if err := tokbin.WriteFile(filepath.Join(r.Dir, "compressed_"+filename), header, res.Compressed); err != nil {
		return FileStats{}, err
	}
	if err := tokbin.WriteRaw(filepath.Join(r.Dir, "codebooks_"+filename), res.Codebooks); err != nil {
		return FileStats{}, err
	}

	stats := FileStats{
		File:             filename,
		RawTokens:        len(ids),
		CompressedTokens: len(res.Compressed),
		Windows:          res.Windows,
	}
	r.Log.Info("compressed chunk", map[string]any{
		"file":    filename,
		"raw":     stats.RawTokens,
		"out":     stats.CompressedTokens,
		"windows": stats.Windows,
	})
	return stats, nil
}

// Run compresses every chunk file. With Workers <= 1 the files are processed
// in order with a live progress bar; otherwise they fan out to independent
// goroutines (each file is a fully independent stream, so there is nothing to
// coordinate beyond collecting results).
func (r *Runner) Run() error {
	files := r.ChunkFiles()
	if r.Cfg.Workers <= 1 {
		return r.runSequential(files)
	}
	return r.runParallel(files)
}

func (r *Runner) runSequential(files []string) error {
	for _, f := range files {
		header, err := tokbin.ReadHeader(filepath.Join(r.Dir, f))
		if err != nil {
			return err
		}

		bar := NewProgressBar(r.Out, f, header.NumTokens())
		stats, err := r.CompressFile(f, bar.Add)
		if err != nil {
			return err
		}
		bar.Finish()
		r.printStats(stats)
	}
	return nil
}

func (r *Runner) runParallel(files []string) error {
	jobs := make(chan string)
	errs := make([]error, len(files))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < r.Cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				stats, err := r.CompressFile(f, nil)
				mu.Lock()
				if err != nil {
					for i, name := range files {
						if name == f {
							errs[i] = err
						}
					}
					r.Log.Error("chunk failed", map[string]any{"file": f, "error": err.Error()})
				} else {
					r.printStats(stats)
				}
				mu.Unlock()
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return errors.Join(errs...)
}

func (r *Runner) printStats(s FileStats) {
	fmt.Fprintf(r.Out, "%s: %d raw -> %d compressed ids in %d windows (ratio %.3f)\n",
		s.File, s.RawTokens, s.CompressedTokens, s.Windows, s.Ratio())
}
