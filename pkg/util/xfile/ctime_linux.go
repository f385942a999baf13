//go:build linux

package xfile

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// statx 支持测试中替换以覆盖不支持 birth time 的分支。
// 替换该变量的测试不可使用 t.Parallel()。
var statx = unix.Statx

// CreationTime 返回 path 的创建时间。
//
// 优先使用 statx(2) 的 STATX_BTIME；内核或文件系统不提供 birth time 时
// 回退为 info 的修改时间。info 为 nil 时会自行 Stat。
func CreationTime(path string, info os.FileInfo) (time.Time, error) {
	var stx unix.Statx_t
	if err := statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx); err == nil &&
		stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}
	return modTime(path, info)
}

func modTime(path string, info os.FileInfo) (time.Time, error) {
	if info == nil {
		var err error
		if info, err = os.Lstat(path); err != nil {
			return time.Time{}, err
		}
	}
	return info.ModTime(), nil
}
