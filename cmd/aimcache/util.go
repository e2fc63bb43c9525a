package main

import (
	"fmt"
	"io"
	"os"
)

const maxStdin = 8 << 20

func readStdin() ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdin+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxStdin {
		return nil, fmt.Errorf("stdin larger than %d bytes", maxStdin)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("expected a value argument or JSON on stdin")
	}
	return b, nil
}
