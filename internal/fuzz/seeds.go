package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

// wireSeeds cover every record type and the leniency paths of the decoder.
var wireSeeds = []string{
	"4,k,1,1,8,8,1,4294967300,432345577112469520\n4,k,100,0,1,0,0,4294967300\n",
	"4,vs,2,0,0,0,0,72057594037927968,4294967312\n4,fs,3,1,0,0,0,848840156512264\n",
	"4,k,1,0,1,1,1,0,18446744073709551615\n",
	"4,k,1,0,,,,\r\n",
	"4,s,100,0,0,0,0\n",
	"3,k,1,0,0,0,0\n",
	"4,g,4,0,0,0,0\n",
	"4,k,100,0,0,1,0\n",
	"",
}

func addWireSeeds(f *testing.F) {
	for _, s := range wireSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".ffi" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
