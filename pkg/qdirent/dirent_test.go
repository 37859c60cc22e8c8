package qdirent

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// hostRec builds a linux_dirent64 record padded to 8 bytes
func hostRec(ino uint64, off int64, typ uint8, name string) []byte {
	n := align8(HostHeaderSize + len(name) + 1)
	b := make([]byte, n)
	binary.LittleEndian.PutUint64(b[0:], ino)
	binary.LittleEndian.PutUint64(b[8:], uint64(off))
	binary.LittleEndian.PutUint16(b[16:], uint16(n))
	b[18] = typ
	copy(b[HostHeaderSize:], name)
	return b
}

func TestTranscode(t *testing.T) {
	tests := []struct {
		name    string
		wantLen int
	}{
		{"a", 24},            // host 24, foreign needs 22
		{"file.txt", 32},     // host 32, foreign needs 29
		{"abcd", 32},         // host 24, foreign needs 25
		{"abcdefghijkl", 40}, // host 32, foreign needs 33
	}
	for _, tt := range tests {
		src := hostRec(42, 7, unix.DT_REG, tt.name)
		dst := make([]byte, 64)
		for i := range dst {
			dst[i] = 0xff
		}
		n, err := Transcode(dst, src)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.wantLen, n, tt.name)

		assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(dst[0:]))
		assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(dst[8:]))
		assert.Equal(t, uint16(n), binary.LittleEndian.Uint16(dst[16:]))
		assert.Equal(t, uint16(len(tt.name)), binary.LittleEndian.Uint16(dst[18:]))
		assert.Equal(t, tt.name, string(dst[HeaderSize:HeaderSize+len(tt.name)]))
		for _, c := range dst[HeaderSize+len(tt.name) : n] {
			assert.Zero(t, c, tt.name)
		}
		assert.Equal(t, byte(0xff), dst[n], "wrote past the record")
	}
}

func TestTranscode_InPlace(t *testing.T) {
	src := hostRec(0x1122334455667788, 99, unix.DT_DIR, "directory-name")
	n, err := Transcode(src, src)
	require.NoError(t, err)
	require.Equal(t, len(src), n)

	e, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), e.Ino)
	assert.Equal(t, uint64(99), e.Offset)
	assert.Equal(t, "directory-name", e.Name)
	assert.Equal(t, int16(len("directory-name")), e.Namelen)
}

func TestTranscode_Errors(t *testing.T) {
	good := hostRec(1, 1, unix.DT_REG, "abcd")

	_, err := Transcode(make([]byte, 64), good[:10])
	assert.Equal(t, ErrMalformed, err)

	// reclen larger than the buffer
	_, err = Transcode(make([]byte, 64), good[:20])
	assert.Equal(t, ErrMalformed, err)

	// name without terminator
	bad := append([]byte(nil), good...)
	for i := HostHeaderSize; i < len(bad); i++ {
		bad[i] = 'x'
	}
	_, err = Transcode(make([]byte, 64), bad)
	assert.Equal(t, ErrMalformed, err)

	// foreign record needs 32 bytes, the host one is 24
	_, err = Transcode(good, good)
	assert.Equal(t, ErrShortBuffer, err)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(make([]byte, HeaderSize-1))
	assert.Equal(t, ErrShortBuffer, err)

	b := make([]byte, 32)
	binary.LittleEndian.PutUint16(b[16:], 32)
	binary.LittleEndian.PutUint16(b[18:], 20)
	_, err = Parse(b)
	assert.Equal(t, ErrMalformed, err)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	want := []string{".", ".."}
	for _, name := range []string{"a", "abcd", "file.txt", strings.Repeat("n", 200)} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
		want = append(want, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0700))
	want = append(want, "sub")

	d, err := OpenDir(dir)
	require.NoError(t, err)
	defer d.Close()

	var got []string
	for {
		e, err := d.Read()
		require.NoError(t, err)
		if e == nil {
			break
		}
		assert.Equal(t, int(e.Reclen), len(e.Raw()))
		assert.Equal(t, int(e.Namelen), len(e.Name))
		assert.Zero(t, e.Reclen%8)

		if e.Name != "." && e.Name != ".." {
			var st unix.Stat_t
			require.NoError(t, unix.Lstat(filepath.Join(dir, e.Name), &st))
			assert.Equal(t, st.Ino, e.Ino, e.Name)
		}
		got = append(got, e.Name)
	}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)

	e, err := d.Read()
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestFdOpenDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(p, nil, 0600))

	fd, err := unix.Open(p, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	_, err = FdOpenDir(fd)
	assert.Equal(t, unix.ENOTDIR, err)
	unix.Close(fd)

	fd, err = unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	require.NoError(t, err)
	d, err := FdOpenDir(fd)
	require.NoError(t, err)
	assert.Equal(t, fd, d.Fd())
	assert.NoError(t, d.Close())
	assert.Equal(t, unix.EBADF, d.Close())
}

func TestDircntl(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	v, err := d.Dircntl(D_GETFLAG, 0)
	assert.NoError(t, err)
	assert.Zero(t, v)

	v, err = d.Dircntl(D_SETFLAG, D_FLAG_STAT)
	assert.NoError(t, err)
	assert.Zero(t, v)

	v, err = d.Dircntl(D_GETFLAG, 0)
	assert.NoError(t, err)
	assert.Equal(t, D_FLAG_STAT, v)

	_, err = d.Dircntl(99, 0)
	assert.Equal(t, unix.EINVAL, err)
}
