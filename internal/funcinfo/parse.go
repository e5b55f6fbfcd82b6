package funcinfo

import (
	"fmt"
	"strconv"
	"strings"
)

// parseNamed maps s to the value whose String() equals it. The fallback
// form "<prefix>(N)" produced for unnamed values, and bare numbers, are
// accepted too.
func parseNamed(s, prefix string, limit uint32, name func(uint32) string) (uint32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v := uint32(0); v <= limit; v++ {
		if name(v) == s {
			return v, nil
		}
	}
	num := s
	if strings.HasPrefix(s, prefix+"(") && strings.HasSuffix(s, ")") {
		num = s[len(prefix)+1 : len(s)-1]
	}
	v, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown %s %q", prefix, s)
	}
	return uint32(v), nil
}

// ParseFunctionKind accepts the names of FunctionKind.String.
func ParseFunctionKind(s string) (FunctionKind, error) {
	v, err := parseNamed(s, "kind", uint32(KindArgumentBufferStruct), func(v uint32) string { return FunctionKind(v).String() })
	return FunctionKind(v), err
}

// ParseAddressSpace accepts the names of AddressSpace.String.
func ParseAddressSpace(s string) (AddressSpace, error) {
	v, err := parseNamed(s, "address", uint32(AddressImage), func(v uint32) string { return AddressSpace(v).String() })
	return AddressSpace(v), err
}

// ParseSpecialRole accepts the names of SpecialRole.String.
func ParseSpecialRole(s string) (SpecialRole, error) {
	v, err := parseNamed(s, "role", uint32(RoleArgumentBuffer), func(v uint32) string { return SpecialRole(v).String() })
	return SpecialRole(v), err
}

// ParseFunctionFlags accepts the "|" separated form of FunctionFlags.String.
func ParseFunctionFlags(s string) (FunctionFlags, error) {
	var fl FunctionFlags
	for _, part := range strings.Split(s, "|") {
		part = strings.ToLower(strings.TrimSpace(part))
		switch {
		case part == "" || part == "none":
		case part == "soft-printf":
			fl |= FlagUsesSoftPrintf
		default:
			v, err := strconv.ParseUint(part, 0, 32)
			if err != nil {
				return 0, fmt.Errorf("unknown function flag %q", part)
			}
			fl |= FunctionFlags(v)
		}
	}
	return fl, nil
}
