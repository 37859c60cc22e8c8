package spawn

import (
	"github.com/criyle/go-qnxcompat/pkg/qsignal"
)

// FdClosed as a mapping source closes the target in the child
const FdClosed = -1

// Inheritance describes the attributes a spawned process receives from its
// creator (struct inheritance). Fields other than Flags are consulted only
// when their flag bit is set; nothing is validated here.
type Inheritance struct {
	Flags Flag

	// PGroup is the process group for SetGroup, 0 makes the child a group
	// leader
	PGroup int

	// SigMask is the blocked set for SetSigMask
	SigMask qsignal.Sigset
	// SigDefault is reset to SIG_DFL for SetSigDef
	SigDefault qsignal.Sigset
	// SigIgnore is set to SIG_IGN for SetSigIgn
	SigIgnore qsignal.Sigset

	// StackMax is the stack soft limit in bytes for SetStackMax
	StackMax uint64

	// Reserved: carried for completeness, never applied
	Policy  int
	ND      uint32
	RunMask uint32
	Param   [48]byte
}

// FdMapping makes Source available as Target in the child.
// A Source of FdClosed closes Target instead.
type FdMapping struct {
	Source int
	Target int
}

// FdMap builds the table of a QNX fd_map array, where element i is the
// source descriptor for child descriptor i
func FdMap(sources ...int) []FdMapping {
	ret := make([]FdMapping, len(sources))
	for i, s := range sources {
		ret[i] = FdMapping{Source: s, Target: i}
	}
	return ret
}
