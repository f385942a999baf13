package xrotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/omeyang/xroller/pkg/observability/xmetrics"
	"github.com/omeyang/xroller/pkg/resilience/xbreaker"
	"github.com/omeyang/xroller/pkg/resilience/xretry"
	"github.com/omeyang/xroller/pkg/util/xfile"
)

const (
	component = "xrotate"

	// 压缩熔断：连续失败 breakerTrips 次后暂停 breakerCooldown
	breakerTrips    = 5
	breakerCooldown = 30 * time.Second

	removeAttempts = 3
	removeDelay    = 10 * time.Millisecond
)

// creationTime 获取文件创建时间，测试可替换
var creationTime = xfile.CreationTime

// Segment 目录中属于某个 Policy 的文件。
// 压缩进行中时 name 与 name.gz 同时存在，二者合并为一个 Segment，Path 指向未压缩文件。
type Segment struct {
	Path       string
	Name       string
	Size       int64
	Created    time.Time
	Compressed bool

	gzPath string // 同时存在的 .gz，删除 Segment 时一并删除
}

// pipeline 轮转后的压缩 + 清理流程。
// 同一 Roller 的多次运行共享熔断器；压缩可并发，清理串行执行。
type pipeline struct {
	policy   Policy
	fs       fileSystem
	breaker  *xbreaker.Breaker
	retryer  *xretry.Retryer
	observer xmetrics.Observer
	report   func(error)

	pruneMu sync.Mutex
}

func newPipeline(p Policy, fsys fileSystem, obs xmetrics.Observer, report func(error)) *pipeline {
	return &pipeline{
		policy:   p,
		fs:       fsys,
		observer: obs,
		report:   report,
		breaker: xbreaker.NewBreaker("xrotate-compress:"+p.Filename,
			xbreaker.WithTripPolicy(xbreaker.NewConsecutiveFailures(breakerTrips)),
			xbreaker.WithTimeout(breakerCooldown),
		),
		retryer: xretry.NewRetryer(
			xretry.WithRetryPolicy(xretry.NewFixedRetry(removeAttempts)),
			xretry.WithBackoffPolicy(xretry.NewFixedBackoff(removeDelay)),
		),
	}
}

// run 先压缩 closed，再按保留数清理，active 不会被删除。
func (p *pipeline) run(id uuid.UUID, closed, active string) {
	ctx := context.Background()
	if err := p.compress(ctx, id, closed); err != nil {
		p.report(fmt.Errorf("rotation %s: %w", id, err))
	}
	if err := p.prune(ctx, id, active); err != nil {
		p.report(fmt.Errorf("rotation %s: %w", id, err))
	}
}

// compress 将 path 压缩为 path.gz 并删除原文件。
// 失败时删除不完整的 .gz 并保留原文件，任一时刻二者只保留其一。
// 非 gzip 算法不做任何处理。
func (p *pipeline) compress(ctx context.Context, id uuid.UUID, path string) (err error) {
	if p.policy.Compression != CompressionGzip {
		return nil
	}

	_, span := xmetrics.Start(ctx, p.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "compress",
		Attrs:     []xmetrics.Attr{xmetrics.String("rotation_id", id.String()), xmetrics.String("path", path)},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	err = p.breaker.Do(ctx, func() error {
		return p.gzipFile(path)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCompression, path, err)
	}
	return nil
}

func (p *pipeline) gzipFile(path string) error {
	src, err := p.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// 已被并发的清理删除
			return nil
		}
		return err
	}
	defer src.Close()

	gzPath := path + ".gz"
	if err := p.writeGzip(src, gzPath, filepath.Base(path)); err != nil {
		if rmErr := p.fs.Remove(gzPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
		return err
	}

	if err := p.fs.Remove(path); err != nil {
		// 原文件删不掉时撤销 .gz，保持二者只存其一；
		// 原文件已被并发的清理删除时，该段整体作废
		rmErr := p.fs.Remove(gzPath)
		if errors.Is(err, fs.ErrNotExist) {
			if rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				return rmErr
			}
			return nil
		}
		if rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return err
	}
	return nil
}

func (p *pipeline) writeGzip(src io.Reader, gzPath, name string) (err error) {
	dst, err := p.fs.OpenFile(gzPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, p.policy.FileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := gzip.NewWriter(dst)
	zw.Name = name
	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return dst.Sync()
}

// prune 保留最新的 MaxKeepFiles 个文件。
// 按创建时间升序排序，active 视为最新；单个文件删除失败不影响其余文件。
func (p *pipeline) prune(ctx context.Context, id uuid.UUID, active string) (err error) {
	keep := p.policy.MaxKeepFiles
	if keep <= 0 {
		return nil
	}
	// 多次运行的清理互斥，避免基于各自的目录快照重复删除
	p.pruneMu.Lock()
	defer p.pruneMu.Unlock()

	_, span := xmetrics.Start(ctx, p.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "prune",
		Attrs:     []xmetrics.Attr{xmetrics.String("rotation_id", id.String()), xmetrics.Int("keep", keep)},
	})
	removed := 0
	defer func() {
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.Int("removed", removed)}})
	}()

	segs, err := listSegments(&p.policy, p.fs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrune, err)
	}
	segs = moveActiveLast(segs, active)
	if len(segs) < keep {
		return nil
	}

	var errs []error
	for _, s := range segs[:len(segs)-keep] {
		if err := p.removeSegment(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPrune, s.Path, err))
			continue
		}
		removed++
	}
	return errors.Join(errs...)
}

// removeSegment 先删未压缩文件再删 .gz，正在进行的压缩发现原文件消失后会自行放弃
func (p *pipeline) removeSegment(ctx context.Context, s Segment) error {
	if err := p.remove(ctx, s.Path); err != nil {
		return err
	}
	if s.gzPath == "" {
		return nil
	}
	return p.remove(ctx, s.gzPath)
}

// remove 重试删除，文件已不存在视为成功，权限错误不重试
func (p *pipeline) remove(ctx context.Context, path string) error {
	return p.retryer.Do(ctx, func(context.Context) error {
		err := p.fs.Remove(path)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
			return nil
		case errors.Is(err, fs.ErrPermission):
			return xretry.NewPermanentError(err)
		default:
			return err
		}
	})
}

// listSegments 列出匹配 Policy 命名规则的文件，按创建时间升序
func listSegments(p *Policy, fsys fileSystem) ([]Segment, error) {
	entries, err := fsys.ReadDir(p.Directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	matched := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() && p.segment.MatchString(e.Name()) {
			matched[e.Name()] = true
		}
	}

	segs := make([]Segment, 0, len(matched))
	for _, e := range entries {
		if !matched[e.Name()] {
			continue
		}
		plain, isGz := strings.CutSuffix(e.Name(), ".gz")
		if isGz && matched[plain] {
			// 压缩进行中，计入未压缩的那一份
			continue
		}
		info, err := e.Info()
		if err != nil {
			// 列目录与 Stat 之间被删除
			continue
		}
		path := filepath.Join(p.Directory, e.Name())
		created, err := creationTime(path, info)
		if err != nil {
			created = info.ModTime()
		}
		seg := Segment{
			Path:       path,
			Name:       e.Name(),
			Size:       info.Size(),
			Created:    created,
			Compressed: isGz,
		}
		if !isGz && matched[e.Name()+".gz"] {
			seg.gzPath = path + ".gz"
		}
		segs = append(segs, seg)
	}

	sort.SliceStable(segs, func(i, j int) bool {
		if !segs[i].Created.Equal(segs[j].Created) {
			return segs[i].Created.Before(segs[j].Created)
		}
		return segs[i].Name < segs[j].Name
	})
	return segs, nil
}

// moveActiveLast 将当前文件排到末尾，使其总在保留范围内。
// 压缩后的 .gz 创建时间可能晚于当前文件。
func moveActiveLast(segs []Segment, active string) []Segment {
	for i, s := range segs {
		if s.Path == active {
			a := segs[i]
			copy(segs[i:], segs[i+1:])
			segs[len(segs)-1] = a
			break
		}
	}
	return segs
}

// Segments 列出目录中属于该策略的文件，按创建时间升序。
func (p Policy) Segments() ([]Segment, error) {
	p, err := p.ready()
	if err != nil {
		return nil, err
	}
	return listSegments(&p, osFS{})
}

// Compress 按策略的压缩算法压缩一个已关闭的文件。
func (p Policy) Compress(path string) error {
	p, err := p.ready()
	if err != nil {
		return err
	}
	pipe := newPipeline(p, osFS{}, xmetrics.NoopObserver{}, func(error) {})
	return pipe.compress(context.Background(), uuid.New(), path)
}

// Prune 执行一次清理，active 为当前写入的文件（为空表示不保护任何文件）。
func (p Policy) Prune(active string) error {
	p, err := p.ready()
	if err != nil {
		return err
	}
	pipe := newPipeline(p, osFS{}, xmetrics.NoopObserver{}, func(error) {})
	return pipe.prune(context.Background(), uuid.New(), active)
}
