package spawn

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// pathFromEnv returns the PATH entry of envp, or the host PATH when envp has
// none
func pathFromEnv(envp []string) string {
	for i := len(envp) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(envp[i], "PATH="); ok {
			return v
		}
	}
	return os.Getenv("PATH")
}

// lookPath resolves file against the PATH list. A name containing a slash
// is used as is. The first executable regular file wins; when none is
// found the last meaningful error is returned (EACCES over ENOENT).
func lookPath(file, path string) (string, error) {
	if file == "" {
		return "", unix.ENOENT
	}
	if strings.Contains(file, "/") {
		return file, nil
	}
	var err error = unix.ENOENT
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		p := dir + "/" + file
		e := checkExec(p)
		if e == nil {
			return p, nil
		}
		if e == unix.EACCES {
			err = e
		}
	}
	return "", err
}

func checkExec(p string) error {
	var st unix.Stat_t
	if err := unix.Stat(p, &st); err != nil {
		return err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return unix.EACCES
	}
	return unix.Access(p, unix.X_OK)
}
