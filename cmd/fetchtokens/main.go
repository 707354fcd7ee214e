package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const baseURL = "https://huggingface.co/datasets/kjj0/fineweb10B-gpt2/resolve/main/"

func download(url, destPath string) error {
	// 1. GET
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	// 2. create dest file
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	// 3. copy body -> file
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if n == 0 {
		return fmt.Errorf("download %s: got 0 bytes", url)
	}

	return nil
}

func main() {
	targetDir := flag.String("dir", "fineweb10B", "directory to place the chunk files in")
	numChunks := flag.Int("chunks", 1, "training chunks to fetch (the validation chunk always comes along)")
	flag.Parse()

	if err := os.MkdirAll(*targetDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir %s: %v\n", *targetDir, err)
		os.Exit(1)
	}

	files := []string{fmt.Sprintf("fineweb_val_%06d.bin", 0)}
	for c := 1; c <= *numChunks; c++ {
		files = append(files, fmt.Sprintf("fineweb_train_%06d.bin", c))
	}

	for _, name := range files {
		destPath := filepath.Join(*targetDir, name)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Printf("-> %s already present, skipping\n", name)
			continue
		}
		fmt.Printf("-> downloading %s\n", name)

		if err := download(baseURL+name, destPath); err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("done. files in %s/\n", *targetDir)
}
