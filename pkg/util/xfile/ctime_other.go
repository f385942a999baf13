//go:build !linux

package xfile

import (
	"os"
	"time"
)

// CreationTime 返回 path 的创建时间。
//
// 非 Linux 平台上标准库不暴露 birth time，统一回退为修改时间。
// info 为 nil 时会自行 Stat。
func CreationTime(path string, info os.FileInfo) (time.Time, error) {
	if info == nil {
		var err error
		if info, err = os.Lstat(path); err != nil {
			return time.Time{}, err
		}
	}
	return info.ModTime(), nil
}
