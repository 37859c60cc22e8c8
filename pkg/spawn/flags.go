package spawn

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag selects which inheritance attributes a spawn applies (SPAWN_* bits)
type Flag uint32

// QNX spawn flags (spawn.h)
const (
	SetGroup      Flag = 0x00000001
	SetSigMask    Flag = 0x00000002
	SetSigDef     Flag = 0x00000004
	SetSigIgn     Flag = 0x00000008
	SetMemPart    Flag = 0x00000010
	SetSchedPart  Flag = 0x00000020
	ExplicitSched Flag = 0x00000040 | 0x00000400
	TCSetPGroup   Flag = 0x00000080
	SetND         Flag = 0x00000100
	SetSID        Flag = 0x00000200
	ExplicitCPU   Flag = 0x00000800
	SetStackMax   Flag = 0x00001000
	NoZombie      Flag = 0x00002000
	Debug         Flag = 0x00004000
	Hold          Flag = 0x00008000
	Exec          Flag = 0x00010000
	SearchPath    Flag = 0x00020000
	CheckScript   Flag = 0x00040000
	AlignFault    Flag = 0x01000000
	AlignNoFault  Flag = 0x02000000
	Paddr64Safe   Flag = 0x04000000
)

// Reserved is the set of bits that are accepted and have no effect on the
// host: partitions, scheduling, CPU affinity, network node, terminal group
// and alignment control.
const Reserved = SetMemPart | SetSchedPart | ExplicitSched | TCSetPGroup |
	SetND | ExplicitCPU | AlignFault | AlignNoFault | Paddr64Safe

var flagNames = [...]struct {
	f    Flag
	name string
}{
	{SetGroup, "SETGROUP"},
	{SetSigMask, "SETSIGMASK"},
	{SetSigDef, "SETSIGDEF"},
	{SetSigIgn, "SETSIGIGN"},
	{SetMemPart, "SETMEMPART"},
	{SetSchedPart, "SETSCHEDPART"},
	{ExplicitSched, "EXPLICIT_SCHED"},
	{TCSetPGroup, "TCSETPGROUP"},
	{SetND, "SETND"},
	{SetSID, "SETSID"},
	{ExplicitCPU, "EXPLICIT_CPU"},
	{SetStackMax, "SETSTACKMAX"},
	{NoZombie, "NOZOMBIE"},
	{Debug, "DEBUG"},
	{Hold, "HOLD"},
	{Exec, "EXEC"},
	{SearchPath, "SEARCH_PATH"},
	{CheckScript, "CHECK_SCRIPT"},
	{AlignFault, "ALIGN_FAULT"},
	{AlignNoFault, "ALIGN_NOFAULT"},
	{Paddr64Safe, "PADDR64_SAFE"},
}

func (f Flag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	rest := f
	for _, n := range flagNames {
		// ExplicitSched spans two bits, either one counts
		if f&n.f != 0 {
			names = append(names, n.name)
			rest &^= n.f
		}
	}
	if rest != 0 {
		names = append(names, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(names, "|")
}

// ParseFlag parses a "|" or "," separated list of flag names (with or
// without the SPAWN_ prefix) or numbers
func ParseFlag(s string) (Flag, error) {
	var f Flag
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.ToUpper(strings.TrimSpace(part))
		part = strings.TrimPrefix(part, "SPAWN_")
		if part == "" {
			continue
		}
		if v, err := strconv.ParseUint(part, 0, 32); err == nil {
			f |= Flag(v)
			continue
		}
		found := false
		for _, n := range flagNames {
			if n.name == part {
				f |= n.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("spawn: unknown flag %q", part)
		}
	}
	return f, nil
}
