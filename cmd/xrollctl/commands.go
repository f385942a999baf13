package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/xroller/pkg/config/xconf"
	"github.com/omeyang/xroller/pkg/observability/xlog"
	"github.com/omeyang/xroller/pkg/observability/xrotate"
	"github.com/omeyang/xroller/pkg/util/xpool"
)

const (
	defaultSection  = "rotation"
	defaultWorkers  = 2
	defaultQueue    = 64
	shutdownTimeout = 30 * time.Second
)

// usageError 参数错误，退出码 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// rotationFlags 全局选项，子命令可在自身参数之后使用
func rotationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML/JSON 配置文件", Sources: cli.EnvVars("XROLLCTL_CONFIG")},
		&cli.StringFlag{Name: "section", Usage: "配置文件中轮转配置所在的键", Value: defaultSection},
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "输出目录"},
		&cli.StringFlag{Name: "filename", Aliases: []string{"f"}, Usage: "基础文件名"},
		&cli.StringFlag{Name: "rotation", Aliases: []string{"r"}, Usage: "size | minutely | hourly | daily"},
		&cli.StringFlag{Name: "max-size", Usage: "rotation=size 时的阈值，如 100MB"},
		&cli.StringFlag{Name: "timezone", Usage: "utc | local | ±HH:MM"},
		&cli.StringFlag{Name: "compression", Usage: "none | gzip | bzip2 | lz4 | zstd | xz | snappy"},
		&cli.IntFlag{Name: "keep", Aliases: []string{"k"}, Usage: "保留的文件数，0 表示不清理"},
		&cli.StringFlag{Name: "file-mode", Usage: "新文件权限，八进制，如 0640"},
		&cli.StringFlag{Name: "log-level", Usage: "诊断日志级别", Value: "info"},
		&cli.StringFlag{Name: "log-format", Usage: "诊断日志格式 text | json", Value: "text"},
	}
}

// =============================================================================
// 配置
// =============================================================================

// loadConfig 读取配置文件（若有）并以命令行选项覆盖，返回的 xconf.Config 在无配置文件时为 nil
func loadConfig(cmd *cli.Command) (xrotate.Config, xconf.Config, error) {
	var rc xrotate.Config
	var src xconf.Config
	if path := cmd.String("config"); path != "" {
		var err error
		src, err = xconf.New(path)
		if err != nil {
			return rc, nil, err
		}
		if rc, err = decodeSection(src, cmd.String("section")); err != nil {
			return rc, nil, err
		}
	}
	applyFlags(cmd, &rc)
	if rc.Directory == "" || rc.Filename == "" {
		return rc, nil, &usageError{msg: "需要 --dir 和 --filename（或配置文件中的 directory/filename）"}
	}
	return rc, src, nil
}

func decodeSection(src xconf.Config, section string) (xrotate.Config, error) {
	var rc xrotate.Config
	err := src.Unmarshal(section, &rc)
	return rc, err
}

func applyFlags(cmd *cli.Command, rc *xrotate.Config) {
	str := map[string]*string{
		"dir":         &rc.Directory,
		"filename":    &rc.Filename,
		"rotation":    &rc.Rotation,
		"max-size":    &rc.MaxSize,
		"timezone":    &rc.TimeZone,
		"compression": &rc.Compression,
		"file-mode":   &rc.FileMode,
	}
	for name, dst := range str {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	if cmd.IsSet("keep") {
		rc.MaxKeepFiles = cmd.Int("keep")
	}
}

// policyFor 将配置错误视为参数错误
func policyFor(rc xrotate.Config) (xrotate.Policy, error) {
	p, err := rc.Policy()
	if err != nil {
		return p, &usageError{msg: err.Error()}
	}
	return p, nil
}

func buildLogger(cmd *cli.Command) (xlog.LoggerWithLevel, func() error, error) {
	logger, cleanup, err := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format")).
		Build()
	if err != nil {
		return nil, nil, &usageError{msg: err.Error()}
	}
	return logger, cleanup, nil
}

// =============================================================================
// pipe
// =============================================================================

func createPipeCommand() *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "逐行读取标准输入并写入滚动文件",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "配置文件变更后按新配置重新打开"},
			&cli.IntFlag{Name: "workers", Usage: "压缩/清理的后台 worker 数", Value: defaultWorkers},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rc, src, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("watch") && src == nil {
				return &usageError{msg: "--watch 需要 --config"}
			}
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := openSink(rc, cmd.Int("workers"), logger)
			if err != nil {
				return err
			}
			if cmd.Bool("watch") {
				w, err := xconf.Watch(src, func(c xconf.Config, err error) {
					if err == nil {
						err = s.reload(c, cmd)
					}
					if err != nil {
						logger.Error(ctx, "config reload failed", xlog.Err(err), xlog.Path(c.Path()))
						return
					}
					logger.Info(ctx, "config reloaded", xlog.Path(c.Path()))
				})
				if err != nil {
					return errors.Join(err, s.Close())
				}
				defer w.Stop()
			}

			logger.Debug(ctx, "pipe started", xlog.Path(s.path()))
			n, copyErr := copyLines(ctx, cmd.Root().Reader, s)
			logger.Debug(ctx, "pipe finished", xlog.Count(n))
			return errors.Join(copyErr, s.Close())
		},
	}
}

// sink 持有当前 Roller，--watch 时可被替换
type sink struct {
	mu       sync.Mutex
	r        *xrotate.Roller
	dispatch *xrotate.PoolDispatcher
	opts     []xrotate.Option
}

func openSink(rc xrotate.Config, workers int, logger xlog.Logger) (*sink, error) {
	// 诊断日志输出到 stderr，不会写回滚动文件
	onError := func(err error) {
		logger.Error(context.Background(), "rotation pipeline", xlog.Component("xrotate"), xlog.Err(err))
	}
	d, err := xrotate.NewPoolDispatcher(workers, defaultQueue, xpool.WithOnPanic(onError))
	if err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	s := &sink{dispatch: d, opts: []xrotate.Option{xrotate.WithDispatcher(d), xrotate.WithOnError(onError)}}
	if _, err := policyFor(rc); err != nil {
		return nil, errors.Join(err, d.Close())
	}
	if s.r, err = rc.Open(s.opts...); err != nil {
		return nil, errors.Join(err, d.Close())
	}
	return s, nil
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Write(p)
}

func (s *sink) path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Path()
}

// reload 打开新 Roller 后再关闭旧的，失败时保留旧 Roller
func (s *sink) reload(src xconf.Config, cmd *cli.Command) error {
	rc, err := decodeSection(src, cmd.String("section"))
	if err != nil {
		return err
	}
	applyFlags(cmd, &rc)
	r, err := rc.Open(s.opts...)
	if err != nil {
		return err
	}
	s.mu.Lock()
	old := s.r
	s.r = r
	s.mu.Unlock()
	return old.Close()
}

// Close 关闭 Roller 并等待已投递的压缩/清理完成
func (s *sink) Close() error {
	s.mu.Lock()
	err := s.r.Close()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(err, s.dispatch.Shutdown(ctx))
}

// copyLines 按行转发，ctx 取消后在下一行边界停止
func copyLines(ctx context.Context, in io.Reader, w io.Writer) (int64, error) {
	br := bufio.NewReader(in)
	var n int64
	for ctx.Err() == nil {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return n, werr
			}
			n++
		}
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read stdin: %w", err)
		}
	}
	return n, nil
}

// =============================================================================
// list / compress / prune
// =============================================================================

func createListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "列出轮转文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rc, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := policyFor(rc)
			if err != nil {
				return err
			}
			segs, err := p.Segments()
			if err != nil {
				return err
			}
			return printSegments(cmd.Root().Writer, segs)
		},
	}
}

func printSegments(w io.Writer, segs []xrotate.Segment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tCREATED")
	for _, s := range segs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, humanize.IBytes(uint64(s.Size)), s.Created.Format(time.RFC3339))
	}
	return tw.Flush()
}

func createCompressCommand() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Usage:     "按策略压缩一个已关闭的文件",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return &usageError{msg: "compress 需要一个文件参数"}
			}
			rc, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := policyFor(rc)
			if err != nil {
				return err
			}

			target := cmd.Args().First()
			if !filepath.IsAbs(target) && filepath.Base(target) == target {
				target = filepath.Join(p.Directory, target)
			}
			if target == p.ActivePath(time.Now()) {
				return &usageError{msg: fmt.Sprintf("%s 是当前写入的文件", target)}
			}
			if _, err := os.Stat(target); err != nil {
				return err
			}
			if err := p.Compress(target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, target)
			return nil
		},
	}
}

func createPruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "按保留数删除最旧的文件",
		Action: func(_ context.Context, cmd *cli.Command) error {
			rc, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := policyFor(rc)
			if err != nil {
				return err
			}
			if p.MaxKeepFiles == 0 {
				return &usageError{msg: "prune 需要 --keep 或配置中的 max_keep_files"}
			}
			return p.Prune(p.ActivePath(time.Now()))
		},
	}
}
