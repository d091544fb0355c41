package main

import (
	"fmt"
	"io"
	"os"
)

// readInput reads the JSON input document for a one-shot decision command.
// A path of "-" (or empty) reads standard input.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}
	return data, nil
}
