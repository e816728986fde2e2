package orchestrator

import (
	"syscall"

	groveerrors "github.com/glide-cli/grove/pkg/errors"
)

// checkDiskSpace rejects with InsufficientDiskSpace when the filesystem
// backing path reports fewer than minMB megabytes free. No example in the
// pack depends on a disk-usage library (gopsutil et al. never appear in
// go.mod anywhere in _examples/); statfs is the standard, portable way to
// ask the kernel this question directly.
func checkDiskSpace(path string, minMB int64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return groveerrors.New(groveerrors.TypeIO, "failed to stat filesystem for "+path, groveerrors.WithCause(err))
	}

	availableMB := int64(stat.Bavail) * int64(stat.Bsize) / (1024 * 1024)
	if availableMB < minMB {
		return groveerrors.NewInsufficientDiskSpace(availableMB, minMB)
	}
	return nil
}
