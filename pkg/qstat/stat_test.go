package qstat

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func hostStat() unix.Stat_t {
	var st unix.Stat_t
	st.Dev = 0x0803
	st.Ino = 0x1122334455667788
	st.Nlink = 3
	st.Mode = unix.S_IFREG | 0644
	st.Uid = 1000
	st.Gid = 100
	st.Rdev = 0
	st.Size = 1 << 40
	st.Blksize = 4096
	st.Blocks = 24
	st.Atim = unix.Timespec{Sec: 1700000001, Nsec: 1}
	st.Mtim = unix.Timespec{Sec: 1700000002, Nsec: 2}
	st.Ctim = unix.Timespec{Sec: 1700000003, Nsec: 3}
	return st
}

func TestFromHost_PreservesFields(t *testing.T) {
	st := hostStat()
	q := FromHost(&st)

	assert.Equal(t, st.Ino, q.Ino)
	assert.Equal(t, st.Size, q.Size)
	assert.Equal(t, st.Uid, q.Uid)
	assert.Equal(t, st.Gid, q.Gid)
	assert.Equal(t, uint32(st.Nlink), q.Nlink)
	assert.Equal(t, st.Mode, q.Mode)
	assert.Equal(t, uint32(0x0803), q.Dev)
	assert.Equal(t, uint64(24), q.Blocks)
	assert.Equal(t, uint32(24), q.Nblocks)
	assert.Equal(t, uint32(4096), q.Blksize)
	assert.Equal(t, uint32(4096), q.Blocksize)

	assert.Equal(t, Timespec{1700000001, 1}, q.Atim)
	assert.Equal(t, Timespec{1700000002, 2}, q.Mtim)
	assert.Equal(t, Timespec{1700000003, 3}, q.Ctim)
	assert.Equal(t, uint32(1700000001), q.OldAtime)
	assert.Equal(t, uint32(1700000002), q.OldMtime)
	assert.Equal(t, uint32(1700000003), q.OldCtime)
}

func TestFromHost_ZeroHost(t *testing.T) {
	var st unix.Stat_t
	assert.Equal(t, Stat_t{}, FromHost(&st))
}

// Seconds past 2^32 do not fit the 32-bit __old_st_*time fields and keep
// only their low 32 bits, while the 64-bit timespec keeps the full value.
func TestFromHost_TimeTruncation(t *testing.T) {
	st := hostStat()
	st.Mtim.Sec = 1<<32 + 5
	st.Dev = 1<<32 | 7
	q := FromHost(&st)

	assert.Equal(t, uint32(5), q.OldMtime)
	assert.Equal(t, int64(1<<32+5), q.Mtim.Sec)
	assert.Equal(t, uint32(7), q.Dev)
}

func TestBytes_Layout(t *testing.T) {
	st := hostStat()
	q := FromHost(&st)
	b := q.Bytes()
	require.Len(t, b, Size)

	le := binary.LittleEndian
	assert.Equal(t, st.Ino, le.Uint64(b[0:]))
	assert.Equal(t, uint64(st.Size), le.Uint64(b[8:]))
	assert.Equal(t, uint32(0x0803), le.Uint32(b[16:]))
	assert.Equal(t, uint32(1000), le.Uint32(b[24:]))
	assert.Equal(t, uint32(1700000002), le.Uint32(b[32:]))
	assert.Equal(t, st.Mode, le.Uint32(b[44:]))
	assert.Equal(t, uint64(24), le.Uint64(b[64:]))
	assert.Equal(t, uint64(1700000002), le.Uint64(b[72:]))
	assert.Equal(t, uint64(3), le.Uint64(b[112:]))

	back, err := Unpack(b)
	require.NoError(t, err)
	assert.Equal(t, q, back)

	_, err = Unpack(b[:Size-1])
	assert.Error(t, err)
}

func TestStatCalls(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(p, []byte("hello qnx"), 0640))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(p, link))

	var host unix.Stat_t
	require.NoError(t, unix.Stat(p, &host))

	q, err := Stat(link)
	require.NoError(t, err)
	assert.Equal(t, FromHost(&host), q)
	assert.Equal(t, int64(9), q.Size)

	l, err := Lstat(link)
	require.NoError(t, err)
	assert.Equal(t, uint32(unix.S_IFLNK), l.Mode&unix.S_IFMT)

	fd, err := unix.Open(p, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(fd)
	f, err := Fstat(fd)
	require.NoError(t, err)
	assert.Equal(t, q.Ino, f.Ino)

	dfd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(dfd)
	a, err := Fstatat(dfd, "link", unix.AT_SYMLINK_NOFOLLOW)
	require.NoError(t, err)
	assert.Equal(t, l.Ino, a.Ino)

	_, err = Stat(filepath.Join(dir, "missing"))
	assert.Equal(t, unix.ENOENT, err)
}
