package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// readInput returns the contents of path, or stdin when path is "-" or empty.
func readInput(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
