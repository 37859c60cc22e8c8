package rlimit

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Size stores number of bytes, e.g. a stack limit.
// Maximum size is bounded by 64-bit limit
type Size uint64

// Infinity renders as "unlimited" and matches RLIM_INFINITY
const Infinity = Size(^uint64(0))

// String stringer interface for print
func (s Size) String() string {
	t := uint64(s)
	switch {
	case s == Infinity:
		return "unlimited"
	case t < 1<<10:
		return fmt.Sprintf("%d B", t)
	case t < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(t)/float64(1<<10))
	case t < 1<<30:
		return fmt.Sprintf("%.1f MiB", float64(t)/float64(1<<20))
	default:
		return fmt.Sprintf("%.1f GiB", float64(t)/float64(1<<30))
	}
}

// Set parse the size value from string, e.g. 8M, 512k, 4096, unlimited
func (s *Size) Set(str string) error {
	if str == "unlimited" {
		*s = Infinity
		return nil
	}
	if str == "" {
		return fmt.Errorf("size: empty value")
	}
	switch str[len(str)-1] {
	case 'b', 'B':
		str = str[:len(str)-1]
	}
	if str == "" {
		return fmt.Errorf("size: missing number")
	}

	factor := 0
	switch str[len(str)-1] {
	case 'k', 'K':
		factor = 10
		str = str[:len(str)-1]
	case 'm', 'M':
		factor = 20
		str = str[:len(str)-1]
	case 'g', 'G':
		factor = 30
		str = str[:len(str)-1]
	}

	t, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return err
	}
	if factor > 0 && t > ^uint64(0)>>factor {
		return fmt.Errorf("size: %s overflows", str)
	}
	*s = Size(t << factor)
	return nil
}

// UnmarshalYAML accepts either a plain integer or a suffixed string
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	return s.Set(value.Value)
}

// MarshalYAML writes the byte count
func (s Size) MarshalYAML() (interface{}, error) {
	if s == Infinity {
		return "unlimited", nil
	}
	return uint64(s), nil
}

// Byte return size in bytes
func (s Size) Byte() uint64 {
	return uint64(s)
}

// KiB return size in KiB
func (s Size) KiB() uint64 {
	return uint64(s) >> 10
}

// MiB return size in MiB
func (s Size) MiB() uint64 {
	return uint64(s) >> 20
}
