package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"flashio/internal/domain"
)

// parseAddress accepts any Go integer literal that fits in 32 bits.
func parseAddress(s string) (domain.Address, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return domain.Address(v), nil
}

// parseSize accepts a positive Go integer literal.
func parseSize(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", v)
	}
	return int(v), nil
}

// readInput reads the named file, or stdin for "" or "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
