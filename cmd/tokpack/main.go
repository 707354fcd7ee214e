package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokpack/internal/cli"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		dir     string
		verbose bool
		flags   = cli.DefaultConfig()
	)

	root := &cobra.Command{
		Use:   "tokpack",
		Short: "Compress pre-tokenized .bin chunk files with per-window phrase codebooks",
		Long: "tokpack streams pre-tokenized .bin chunk files through a greedy bounded-dictionary\n" +
			"merge pass, emitting fixed-length windows of compressed IDs plus one codebook table\n" +
			"per window for fixed-shape training consumers.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			// Flags the user actually set win over the config file.
			set := cmd.Flags()
			if set.Changed("name") {
				cfg.Name = flags.Name
			}
			if set.Changed("num-chunks") {
				cfg.NumChunks = flags.NumChunks
			}
			if set.Changed("initial-vocab-size") {
				cfg.InitialVocabSize = flags.InitialVocabSize
			}
			if set.Changed("max-codebook-size") {
				cfg.MaxCodebookSize = flags.MaxCodebookSize
			}
			if set.Changed("max-subtokens") {
				cfg.MaxSubtokens = flags.MaxSubtokens
			}
			if set.Changed("max-out-seq-length") {
				cfg.MaxOutSeqLength = flags.MaxOutSeqLength
			}
			if set.Changed("eot-token-id") {
				cfg.EOTTokenID = flags.EOTTokenID
			}
			if set.Changed("workers") {
				cfg.Workers = flags.Workers
			}

			if dir == "" {
				dir = cfg.Name
			}

			var logOut io.Writer = io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			runner := cli.NewRunner(cfg, dir, cli.NewLogger(logOut), cmd.OutOrStdout())
			return runner.Run()
		},
	}

	root.Flags().StringVarP(&flags.Name, "name", "n", flags.Name, "dataset name")
	root.Flags().IntVar(&flags.NumChunks, "num-chunks", flags.NumChunks, "number of training chunks to process")
	root.Flags().IntVar(&flags.InitialVocabSize, "initial-vocab-size", flags.InitialVocabSize, "size of the raw tokenizer vocabulary")
	root.Flags().IntVar(&flags.MaxCodebookSize, "max-codebook-size", flags.MaxCodebookSize, "phrase capacity of each window's codebook")
	root.Flags().IntVar(&flags.MaxSubtokens, "max-subtokens", flags.MaxSubtokens, "maximum raw IDs per learned phrase")
	root.Flags().IntVar(&flags.MaxOutSeqLength, "max-out-seq-length", flags.MaxOutSeqLength, "compressed IDs per output window")
	root.Flags().IntVar(&flags.EOTTokenID, "eot-token-id", flags.EOTTokenID, "document-boundary token ID (never merged)")
	root.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "chunk files compressed concurrently")
	root.Flags().StringVar(&dir, "dir", "", "dataset directory (defaults to the dataset name)")
	root.Flags().StringVar(&cfgPath, "config", "", "yaml config file")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit JSON diagnostics to stderr")

	return root
}
