package xrotate

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xroller/pkg/observability/xmetrics"
	"github.com/omeyang/xroller/pkg/resilience/xbreaker"
)

var errDisk = errors.New("disk error")

func TestRotationFailure_RenameKeepsOldHandle(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "app.log")
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Rename(canonical, canonical+".1").Return(errDisk).Times(1)
	})
	var sink errorSink
	r, err := New(dir, "app.log", WithSizeRotation(2), sink.option(), withFileSystem(fsys), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	mustWrite(t, r, "ab")
	// 轮转失败：上报 ErrRotation，数据写入旧文件
	mustWrite(t, r, "cd")

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrRotation)
	assert.ErrorIs(t, errs[0], errDisk)
	assert.Equal(t, "abcd", readFile(t, canonical))
	assert.Equal(t, 1, r.st.nextSuffix)

	// 下次写入重试，仍使用后缀 1
	mustWrite(t, r, "e")
	assert.Equal(t, "abcd", readFile(t, canonical+".1"))
	assert.Equal(t, "e", readFile(t, canonical))
	assert.Equal(t, 2, r.st.nextSuffix)
}

func TestRotationFailure_CreateRollsBackRename(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "app.log")
	opened := 0
	fsys := newMockFS(t, func(m *MockfileSystem) {
		// 第一次打开固定文件是构造，第二次是轮转后的重建
		m.EXPECT().OpenFile(canonical, gomock.Any(), gomock.Any()).
			DoAndReturn(func(name string, flag int, perm os.FileMode) (file, error) {
				opened++
				if opened == 2 {
					return nil, errDisk
				}
				return osFS{}.OpenFile(name, flag, perm)
			}).Times(3)
	})
	var sink errorSink
	r, err := New(dir, "app.log", WithSizeRotation(1), sink.option(), withFileSystem(fsys), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	mustWrite(t, r, "a")
	mustWrite(t, r, "b")

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrRotation)
	assert.Equal(t, []string{"app.log"}, listNames(t, dir))
	assert.Equal(t, "ab", readFile(t, canonical))

	mustWrite(t, r, "c")
	assert.Equal(t, "ab", readFile(t, canonical+".1"))
	assert.Equal(t, "c", readFile(t, canonical))
}

func TestRotationFailure_AgeCreateKeepsDeadline(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))
	next := filepath.Join(dir, "app.log.2024-03-11")
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().OpenFile(next, gomock.Any(), gomock.Any()).Return(nil, errDisk).Times(1)
	})
	var sink errorSink
	r, err := New(dir, "app.log", WithClock(clock), sink.option(), withFileSystem(fsys), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	deadline := r.st.deadline
	clock.Advance(time.Hour)
	mustWrite(t, r, "a")

	require.Len(t, sink.all(), 1)
	assert.Equal(t, deadline, r.st.deadline)
	assert.Equal(t, "a", readFile(t, filepath.Join(dir, "app.log.2024-03-10")))

	mustWrite(t, r, "b")
	assert.Equal(t, next, r.Path())
	assert.Equal(t, "b", readFile(t, next))
}

func TestRotationFailure_RotateReturnsError(t *testing.T) {
	dir := t.TempDir()
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Rename(gomock.Any(), gomock.Any()).Return(errDisk).Times(1)
	})
	r, err := New(dir, "app.log", WithSizeRotation(100), withFileSystem(fsys), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	mustWrite(t, r, "a")
	err = r.Rotate()
	assert.ErrorIs(t, err, ErrRotation)
	assert.ErrorIs(t, err, errDisk)
}

func TestRotationFailure_FlushErrorReported(t *testing.T) {
	dir := t.TempDir()
	var sink errorSink
	r, err := New(dir, "app.log", WithSizeRotation(1), sink.option(), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	ctrl := gomock.NewController(t)
	f := NewMockfile(ctrl)
	f.EXPECT().Write(gomock.Any()).DoAndReturn(func(p []byte) (int, error) { return len(p), nil })
	f.EXPECT().Sync().Return(errDisk)
	f.EXPECT().Close().Return(nil)
	orig := r.file
	defer orig.Close()
	r.file = f

	mustWrite(t, r, "a")
	// 同步失败只上报，轮转继续
	mustWrite(t, r, "b")

	errs := sink.all()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errDisk)
	assert.Equal(t, "b", readFile(t, filepath.Join(dir, "app.log")))
}

func TestWrite_IOErrorReturned(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, "app.log", WithSizeRotation(100))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	f := NewMockfile(ctrl)
	f.EXPECT().Write(gomock.Any()).Return(0, errDisk)
	f.EXPECT().Sync().Return(nil)
	f.EXPECT().Close().Return(nil)
	orig := r.file
	defer orig.Close()
	r.file = f

	_, err = r.Write([]byte("a"))
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, int64(0), r.st.size.Load())
	require.NoError(t, r.Close())
}

// zeroSchedule 模拟无法计算下一个时间点
type zeroSchedule struct{}

func (zeroSchedule) Next(time.Time) time.Time { return time.Time{} }

var _ cron.Schedule = zeroSchedule{}

func TestTimeComputationFailure(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	r, err := New(dir, "app.log", WithClock(clock), syncDispatch())
	require.NoError(t, err)
	defer r.Close()

	r.policy.schedule = zeroSchedule{}
	clock.Advance(24 * time.Hour)

	n, err := r.Write([]byte("a"))
	assert.ErrorIs(t, err, ErrTimeComputation)
	assert.Equal(t, 1, n)
	// 文件已切换，但调度已损坏
	active := filepath.Join(dir, "app.log.2024-03-11")
	assert.Equal(t, active, r.Path())

	n, err = r.Write([]byte("b"))
	assert.ErrorIs(t, err, ErrTimeComputation)
	assert.Equal(t, 1, n)

	// 报错不丢数据
	assert.Equal(t, "ab", readFile(t, active))
}

func TestRecoverState_TimeComputationFatal(t *testing.T) {
	p, err := NewPolicy(t.TempDir(), "app.log")
	require.NoError(t, err)
	p.schedule = zeroSchedule{}

	_, err = recoverState(&p, osFS{}, time.Now())
	assert.ErrorIs(t, err, ErrTimeComputation)
}

func TestRecoverState_ScanError(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPolicy(dir, "app.log", WithSizeRotation(10))
	require.NoError(t, err)

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().ReadDir(dir).Return(nil, fs.ErrPermission)
	})
	_, err = recoverState(&p, fsys, time.Now())
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestNew_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().OpenFile(filepath.Join(dir, "app.log"), gomock.Any(), gomock.Any()).Return(nil, errDisk)
	})
	_, err := New(dir, "app.log", WithSizeRotation(10), withFileSystem(fsys))
	assert.ErrorIs(t, err, errDisk)
}

// =============================================================================
// 流水线故障
// =============================================================================

func newTestPipeline(t *testing.T, dir string, fsys fileSystem, opts ...Option) *pipeline {
	t.Helper()
	p, err := NewPolicy(dir, "app.log", opts...)
	require.NoError(t, err)
	return newPipeline(p, fsys, xmetrics.NoopObserver{}, func(error) {})
}

func TestCompressFailure_KeepsPlainFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "app.log.1")
	writeFile(t, dir, "app.log.1", "payload")

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().OpenFile(plain+".gz", gomock.Any(), gomock.Any()).Return(nil, errDisk)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithCompression(CompressionGzip))

	err := pipe.compress(t.Context(), uuid.New(), plain)
	assert.ErrorIs(t, err, ErrCompression)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, []string{"app.log.1"}, listNames(t, dir))
	assert.Equal(t, "payload", readFile(t, plain))
}

func TestCompressFailure_RemoveOriginalUndoesGzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "app.log.1")
	writeFile(t, dir, "app.log.1", "payload")

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Remove(plain).Return(fs.ErrPermission)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithCompression(CompressionGzip))

	err := pipe.compress(t.Context(), uuid.New(), plain)
	assert.ErrorIs(t, err, ErrCompression)
	assert.Equal(t, []string{"app.log.1"}, listNames(t, dir))
}

func TestCompress_MissingFileIsNoop(t *testing.T) {
	dir := t.TempDir()
	pipe := newTestPipeline(t, dir, osFS{}, WithSizeRotation(1), WithCompression(CompressionGzip))

	assert.NoError(t, pipe.compress(t.Context(), uuid.New(), filepath.Join(dir, "app.log.9")))
}

func TestCompress_BreakerOpensAfterFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.log.1", "payload")
	plain := filepath.Join(dir, "app.log.1")

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().OpenFile(plain+".gz", gomock.Any(), gomock.Any()).Return(nil, errDisk).Times(breakerTrips)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithCompression(CompressionGzip))

	for range breakerTrips {
		assert.ErrorIs(t, pipe.compress(t.Context(), uuid.New(), plain), errDisk)
	}
	// 熔断打开后不再触碰文件系统
	err := pipe.compress(t.Context(), uuid.New(), plain)
	assert.ErrorIs(t, err, ErrCompression)
	assert.ErrorIs(t, err, xbreaker.ErrOpenState)
	assert.NotErrorIs(t, err, errDisk)
	assert.Equal(t, "payload", readFile(t, plain))

	// 冷却期内关闭的段保持未压缩，可由 Policy.Compress 补做
	require.NoError(t, pipe.policy.Compress(plain))
	assert.Equal(t, []string{"app.log.1.gz"}, listNames(t, dir))
	assert.Equal(t, "payload", gunzip(t, plain+".gz"))
}

func TestCompress_OriginalPrunedMidway(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "app.log.1")
	writeFile(t, dir, "app.log.1", "payload")

	// 清理在 .gz 写完后删掉了原文件
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Remove(plain).DoAndReturn(func(name string) error {
			require.NoError(t, os.Remove(name))
			return fs.ErrNotExist
		})
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithCompression(CompressionGzip))

	require.NoError(t, pipe.compress(t.Context(), uuid.New(), plain))
	assert.Empty(t, listNames(t, dir))
}

func TestPruneFailure_ContinuesWithOtherFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"app.log.1", "app.log.2", "app.log.3", "app.log"} {
		writeFile(t, dir, name, "x")
	}
	stubCreationOrder(t, base, "app.log.1", "app.log.2", "app.log.3", "app.log")

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Remove(filepath.Join(dir, "app.log.1")).Return(fs.ErrPermission).Times(1)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithMaxKeepFiles(2))

	err := pipe.prune(t.Context(), uuid.New(), filepath.Join(dir, "app.log"))
	assert.ErrorIs(t, err, ErrPrune)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, []string{"app.log", "app.log.1", "app.log.3"}, listNames(t, dir))
}

func TestPrune_RetriesTransientDelete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.log.1", "x")
	writeFile(t, dir, "app.log", "x")
	stubCreationOrder(t, time.Now(), "app.log.1", "app.log")
	victim := filepath.Join(dir, "app.log.1")

	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().Remove(victim).Return(errDisk).Times(removeAttempts - 1)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithMaxKeepFiles(1))

	require.NoError(t, pipe.prune(t.Context(), uuid.New(), filepath.Join(dir, "app.log")))
	assert.Equal(t, []string{"app.log"}, listNames(t, dir))
}

func TestPrune_ListError(t *testing.T) {
	dir := t.TempDir()
	fsys := newMockFS(t, func(m *MockfileSystem) {
		m.EXPECT().ReadDir(dir).Return(nil, fs.ErrPermission)
	})
	pipe := newTestPipeline(t, dir, fsys, WithSizeRotation(1), WithMaxKeepFiles(1))

	err := pipe.prune(t.Context(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrPrune)
}
