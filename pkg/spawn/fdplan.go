package spawn

import (
	"syscall"
)

// fdPlan is the descriptor remap worked out before the fork, so the child
// only walks preallocated slices.
//
// Pass 1 moves every source that some entry overwrites above floor
// (close-on-exec). Pass 2 installs each target: dup3 for a move, clearing
// close-on-exec for an identity entry, close for FdClosed. Pass 3 closes the
// original sources that are not targets themselves.
type fdPlan struct {
	src   []int
	dst   []int
	reloc []bool
	// keepReloc tells whether each parent-side descriptor passed to planFds
	// sits on a target and has to be moved before pass 2
	keepReloc []bool
	closeSrc  []int
	floor     int
}

func planFds(fds []FdMapping, keep ...int) (*fdPlan, error) {
	p := &fdPlan{
		src:       make([]int, len(fds)),
		dst:       make([]int, len(fds)),
		reloc:     make([]bool, len(fds)),
		keepReloc: make([]bool, len(keep)),
	}

	overwritten := make(map[int]bool) // targets of non-identity entries
	targets := make(map[int]bool)
	for i, m := range fds {
		if m.Target < 0 || m.Source < FdClosed {
			return nil, syscall.EBADF
		}
		if targets[m.Target] {
			return nil, syscall.EINVAL
		}
		targets[m.Target] = true
		if m.Source != m.Target {
			overwritten[m.Target] = true
		}
		p.src[i], p.dst[i] = m.Source, m.Target
		p.floor = max(p.floor, m.Source+1, m.Target+1)
	}
	kept := make(map[int]bool)
	for i, k := range keep {
		p.floor = max(p.floor, k+1)
		p.keepReloc[i] = targets[k]
		kept[k] = true
	}

	closed := make(map[int]bool)
	for i, m := range fds {
		if m.Source == FdClosed || m.Source == m.Target {
			continue
		}
		p.reloc[i] = overwritten[m.Source]
		if !targets[m.Source] && !kept[m.Source] && !closed[m.Source] {
			p.closeSrc = append(p.closeSrc, m.Source)
			closed[m.Source] = true
		}
	}
	return p, nil
}
