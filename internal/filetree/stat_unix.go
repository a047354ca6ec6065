//go:build unix

package filetree

import "syscall"

// diskUsage reports free and total bytes for the filesystem containing path.
func diskUsage(path string) (free int64, total int64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := int64(st.Bsize)
	return int64(st.Bavail) * bsize, int64(st.Blocks) * bsize, nil
}
