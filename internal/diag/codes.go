package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// decoder
	DecInfo                         Code = 1000
	DecVersionMismatch              Code = 1001
	DecUnsupportedFunctionType      Code = 1002
	DecMalformedRecord              Code = 1003
	DecMissingArgumentBufferLayout  Code = 1004
	DecArgumentBufferTargetNotFound Code = 1005
	DecArgumentBufferIndexRange     Code = 1006
	DecArgumentBufferRoleMismatch   Code = 1007
	DecMalformedArgInfo             Code = 1010

	// binder
	BndInfo                  Code = 2000
	BndEntryIndexOutOfBounds Code = 2001
	BndArgumentCountMismatch Code = 2002
	BndInvalidArgument       Code = 2003
	BndArgumentKindMismatch  Code = 2004
	BndApplyFailed           Code = 2010

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// configuration
	CfgInfo         Code = 5000
	CfgInvalidValue Code = 5001
	CfgInvalidPlan  Code = 5002

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                     "Unknown error",
		DecInfo:                         "Decoder information",
		DecVersionMismatch:              "function info version mismatch",
		DecUnsupportedFunctionType:      "unsupported function type",
		DecMalformedRecord:              "malformed function info record",
		DecMissingArgumentBufferLayout:  "argument buffer has no struct layout",
		DecArgumentBufferTargetNotFound: "argument buffer struct refers to unknown function",
		DecArgumentBufferIndexRange:     "argument buffer struct index out of range",
		DecArgumentBufferRoleMismatch:   "argument buffer struct targets a non argument buffer",
		DecMalformedArgInfo:             "malformed packed argument info",
		BndInfo:                         "Binder information",
		BndEntryIndexOutOfBounds:        "entry index out of bounds",
		BndArgumentCountMismatch:        "argument count does not match the compiled signature",
		BndInvalidArgument:              "invalid argument variant",
		BndArgumentKindMismatch:         "argument kind does not match the declared parameter",
		BndApplyFailed:                  "native bind call failed",
		IOInfo:                          "I/O information",
		IOLoadFileError:                 "I/O load file error",
		IOCacheError:                    "program cache error",
		CfgInfo:                         "Configuration information",
		CfgInvalidValue:                 "invalid configuration value",
		CfgInvalidPlan:                  "invalid binding plan",
		ObsInfo:                         "Observability information",
		ObsTimings:                      "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DEC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
