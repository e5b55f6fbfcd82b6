package ffi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"argbind/internal/funcinfo"
)

// maxRecordLen bounds a single record line. Functions with thousands of
// arguments still fit.
const maxRecordLen = 16 << 20

// ReadLines reads newline separated records from r.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxRecordLen)
	var lines []string
	for sc.Scan() {
		if len(lines)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// DecodeReader reads all records from r and decodes them.
func DecodeReader(ctx context.Context, r io.Reader, opts Options) ([]funcinfo.FunctionInfo, error) {
	lines, err := ReadLines(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read function info: %w", err)
	}
	return DecodeContext(ctx, lines, opts)
}

// DecodeFile decodes the function info file at path. Options.Source
// defaults to path.
func DecodeFile(ctx context.Context, path string, opts Options) ([]funcinfo.FunctionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve function info from %q: %w", path, err)
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return DecodeReader(ctx, f, opts)
}
