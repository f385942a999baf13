package xrotate

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync/atomic"
	"time"
)

// state 轮转簿记，与活动文件句柄受同一把锁保护。
// size 使用原子计数，SharedWriter 在读锁下也会累加。
type state struct {
	size       atomic.Int64 // 当前文件自创建以来写入的字节数
	nextSuffix int          // ModeSize：下一个历史文件后缀，只增不减
	deadline   time.Time    // ModeAge：下一次轮转时间点
	path       string       // 当前文件路径
}

// recoverState 在构造时扫描目录，恢复初始状态。
//
// ModeSize：nextSuffix = 已有最大后缀 + 1（filename.N 与 filename.N.gz 都计入），
// size 取自已存在的固定文件，支持重启后续写。
// ModeAge：deadline 由 now 计算，当前文件为 now 所在时间段的文件。
func recoverState(p *Policy, fsys fileSystem, now time.Time) (*state, error) {
	st := &state{}

	switch p.Mode {
	case ModeSize:
		next, err := recoverSuffix(p, fsys)
		if err != nil {
			return nil, err
		}
		st.nextSuffix = next
	default:
		deadline, err := p.nextDeadline(now)
		if err != nil {
			return nil, err
		}
		st.deadline = deadline
	}
	st.path = p.ActivePath(now)

	size, err := existingSize(fsys, st.path)
	if err != nil {
		return nil, err
	}
	st.size.Store(size)
	return st, nil
}

func recoverSuffix(p *Policy, fsys fileSystem) (int, error) {
	entries, err := fsys.ReadDir(p.Directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 1, nil
		}
		return 0, fmt.Errorf("xrotate: scan %s: %w", p.Directory, err)
	}

	maxSuffix := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := p.numbered.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// 超出 int 范围的后缀无法参与编号
			continue
		}
		maxSuffix = max(maxSuffix, n)
	}
	return maxSuffix + 1, nil
}

func existingSize(fsys fileSystem, path string) (int64, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("xrotate: stat %s: %w", path, err)
	}
	return info.Size(), nil
}
