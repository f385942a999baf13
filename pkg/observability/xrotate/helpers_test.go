package xrotate

import (
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// syncDispatch 在轮转的调用方 goroutine 上执行流水线，测试断言无需等待
func syncDispatch() Option {
	return WithDispatcher(DispatcherFunc(func(task func()) { task() }))
}

// errorSink 收集 OnError 上报的错误
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) add(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *errorSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.errs)
}

func (s *errorSink) option() Option { return WithOnError(s.add) }

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// listNames 返回目录中的文件名（已排序）
func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func mustWrite(t *testing.T, r *Roller, s string) {
	t.Helper()
	n, err := r.Write([]byte(s))
	require.NoError(t, err)
	require.Equal(t, len(s), n)
}

// newMockFS 创建透传到真实文件系统的 mock。
// setup 中声明的期望先于透传期望匹配，用于注入故障。
func newMockFS(t *testing.T, setup func(m *MockfileSystem)) *MockfileSystem {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := NewMockfileSystem(ctrl)
	if setup != nil {
		setup(m)
	}
	host := osFS{}
	m.EXPECT().OpenFile(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(host.OpenFile).AnyTimes()
	m.EXPECT().Rename(gomock.Any(), gomock.Any()).DoAndReturn(host.Rename).AnyTimes()
	m.EXPECT().Remove(gomock.Any()).DoAndReturn(host.Remove).AnyTimes()
	m.EXPECT().Stat(gomock.Any()).DoAndReturn(host.Stat).AnyTimes()
	m.EXPECT().ReadDir(gomock.Any()).DoAndReturn(host.ReadDir).AnyTimes()
	return m
}
