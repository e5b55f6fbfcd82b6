package backend

import (
	"fmt"

	"argbind/internal/funcinfo"
)

// Stage selects the encoder entry points a bind goes through.
type Stage uint8

const (
	StageCompute Stage = iota + 1
	StageVertex
	StageFragment
	// StageArgument writes into an argument buffer rather than a pipeline.
	StageArgument
)

func (s Stage) String() string {
	switch s {
	case StageCompute:
		return "compute"
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageArgument:
		return "argument"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StageFor maps an entry kind to its encoder stage.
func StageFor(kind funcinfo.FunctionKind) (Stage, error) {
	switch kind {
	case funcinfo.KindKernel:
		return StageCompute, nil
	case funcinfo.KindVertex:
		return StageVertex, nil
	case funcinfo.KindFragment:
		return StageFragment, nil
	case funcinfo.KindArgumentBufferStruct:
		return StageArgument, nil
	}
	return 0, fmt.Errorf("no encoder stage for %s entries", kind)
}
