package xrotate

import (
	"io"
	"os"
)

//go:generate mockgen -source=fs.go -destination=mock_fs_test.go -package=xrotate

// file Roller 持有的文件句柄
type file interface {
	io.ReadWriteCloser
	Sync() error
}

// fileSystem Roller 与流水线使用的文件系统操作
type fileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (file, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
	ReadDir(name string) ([]os.DirEntry, error)
}

type osFS struct{}

func (osFS) OpenFile(name string, flag int, perm os.FileMode) (file, error) {
	//#nosec G304 -- 路径由 Policy 拼接并经过 xfile.SafeJoin 校验
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (osFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (osFS) Remove(name string) error { return os.Remove(name) }

func (osFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (osFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
