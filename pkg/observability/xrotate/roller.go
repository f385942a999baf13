package xrotate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xroller/pkg/observability/xmetrics"
	"github.com/omeyang/xroller/pkg/util/xfile"
)

var _ Rotator = (*Roller)(nil)

// Roller 滚动文件写入器。
//
// 每次 Write 前检查是否需要轮转；轮转后在后台压缩旧文件并按保留数清理。
// 文件句柄与轮转状态由同一把读写锁保护：Write/Rotate/Flush 取写锁，
// SharedWriter 取读锁。所有方法并发安全。
type Roller struct {
	policy   Policy
	fs       fileSystem
	clock    clockwork.Clock
	dispatch Dispatcher
	observer xmetrics.Observer
	onError  func(error)
	pipe     *pipeline

	mu     sync.RWMutex
	file   file
	st     *state
	closed bool
}

// New 创建 Roller。
//
// dir 不存在时以 0750 创建；filename 必须是单一路径段。
// 构造时扫描目录恢复状态：ModeSize 续写已有的固定文件并从最大后缀 + 1 开始编号；
// ModeAge 打开当前时间段的文件。
func New(dir, filename string, opts ...Option) (*Roller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	policy, err := o.buildPolicy(dir, filename)
	if err != nil {
		return nil, err
	}
	if err := xfile.EnsureDir(policy.Directory); err != nil {
		return nil, fmt.Errorf("xrotate: create directory %s: %w", policy.Directory, err)
	}

	st, err := recoverState(&policy, o.fs, o.clock.Now())
	if err != nil {
		return nil, err
	}

	r := &Roller{
		policy:   policy,
		fs:       o.fs,
		clock:    o.clock,
		dispatch: o.dispatcher,
		observer: o.observer,
		onError:  o.onError,
		st:       st,
	}
	r.pipe = newPipeline(policy, o.fs, o.observer, r.reportError)

	f, err := r.openSegment(st.path)
	if err != nil {
		return nil, fmt.Errorf("xrotate: open %s: %w", st.path, err)
	}
	r.file = f
	return r, nil
}

func (r *Roller) openSegment(path string) (file, error) {
	return r.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, r.policy.FileMode)
}

// Write 实现 io.Writer。
//
// 轮转失败不影响本次写入：错误经 OnError 上报，数据继续写入旧文件，下次写入时重试。
// 轮转成功但无法计算下一个时间点时，数据照常写入新文件，随后返回 n 与 ErrTimeComputation。
func (r *Roller) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrClosed
	}
	rotErr := r.maybeRotateLocked()

	n, err := r.file.Write(p)
	r.st.size.Add(int64(n))
	if err != nil {
		return n, errors.Join(err, rotErr)
	}
	return n, rotErr
}

// maybeRotateLocked 必须持有写锁
func (r *Roller) maybeRotateLocked() error {
	now := r.clock.Now()
	target, ok := shouldRotate(&r.policy, r.st, now)
	if !ok {
		return nil
	}
	err := r.rotateLocked(target, now)
	if errors.Is(err, ErrTimeComputation) {
		return err
	}
	r.reportError(err)
	return nil
}

// rotateLocked 执行路径切换并重置状态，必须持有写锁。
// 失败时旧句柄和状态保持不变。
func (r *Roller) rotateLocked(target string, now time.Time) (err error) {
	id := uuid.New()
	_, span := xmetrics.Start(context.Background(), r.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "rotate",
		Attrs: []xmetrics.Attr{
			xmetrics.String("rotation_id", id.String()),
			xmetrics.String("mode", r.policy.Mode.String()),
			xmetrics.String("target", target),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if r.policy.Mode == ModeAge && target == r.st.path {
		// 时钟回拨等导致新旧文件同名，只推进时间点
		return r.advanceDeadline(now)
	}

	if err := r.file.Sync(); err != nil {
		r.reportError(fmt.Errorf("xrotate: flush %s before rotation: %w", r.st.path, err))
	}

	closed, active, f, err := r.transition(target)
	if err != nil {
		return err
	}

	old := r.file
	r.file = f
	r.st.path = active
	r.st.size.Store(0)
	if err := old.Close(); err != nil {
		r.reportError(fmt.Errorf("xrotate: close %s: %w", closed, err))
	}

	pipe := r.pipe
	r.dispatch.Dispatch(func() { pipe.run(id, closed, active) })

	if r.policy.Mode == ModeSize {
		r.st.nextSuffix++
		return nil
	}
	return r.advanceDeadline(now)
}

// transition 切换到新文件，返回被关闭文件的路径、新的当前路径和新句柄。
//
// ModeSize：filename 重命名为 target 后重建 filename，重建失败时回滚重命名。
// ModeAge：不重命名，直接打开 target。
func (r *Roller) transition(target string) (closed, active string, f file, err error) {
	if r.policy.Mode == ModeAge {
		f, err = r.openSegment(target)
		if err != nil {
			return "", "", nil, fmt.Errorf("%w: create %s: %w", ErrRotation, target, err)
		}
		return r.st.path, target, f, nil
	}

	canonical := r.st.path
	if err := r.fs.Rename(canonical, target); err != nil {
		return "", "", nil, fmt.Errorf("%w: rename %s: %w", ErrRotation, canonical, err)
	}
	f, err = r.openSegment(canonical)
	if err != nil {
		if rbErr := r.fs.Rename(target, canonical); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return "", "", nil, fmt.Errorf("%w: create %s: %w", ErrRotation, canonical, err)
	}
	return target, canonical, f, nil
}

func (r *Roller) advanceDeadline(now time.Time) error {
	deadline, err := r.policy.nextDeadline(now)
	if err != nil {
		return err
	}
	r.st.deadline = deadline
	return nil
}

// Rotate 手动触发轮转。
//
// ModeSize：当前文件为空时不做任何事，否则立即轮转。
// ModeAge：未到轮转时间点返回 ErrNotDue，文件名由时间段决定，无法提前切换。
func (r *Roller) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	now := r.clock.Now()
	if r.policy.Mode == ModeSize {
		if r.st.size.Load() == 0 {
			return nil
		}
		return r.rotateLocked(r.policy.numberedPath(r.st.nextSuffix), now)
	}

	target, ok := shouldRotate(&r.policy, r.st, now)
	if !ok {
		return fmt.Errorf("%w: next rotation at %s", ErrNotDue, r.st.deadline.Format(time.RFC3339))
	}
	return r.rotateLocked(target, now)
}

// Flush 将当前文件同步到磁盘
func (r *Roller) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	return r.file.Sync()
}

// Close 同步并关闭当前文件。
//
// 已调度的压缩/清理任务不会被等待。重复调用返回 ErrClosed。
func (r *Roller) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.closed = true
	return errors.Join(r.file.Sync(), r.file.Close())
}

// Path 返回当前写入文件的路径
func (r *Roller) Path() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.path
}

// Policy 返回轮转策略
func (r *Roller) Policy() Policy {
	return r.policy
}

// reportError 通过回调上报内部错误
//
// 设计决策: 不使用 slog 等日志库，避免 Roller 作为日志输出目标时产生递归写入。
// 回调 panic 被 recover 隔离，防止错误通知反向中断写入路径。
func (r *Roller) reportError(err error) {
	if err != nil && r.onError != nil {
		defer func() { recover() }() //nolint:errcheck // recover 返回值无需检查
		r.onError(err)
	}
}

func defaultOnError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
