// xrollctl 把标准输入写入滚动文件，并提供对轮转目录的维护命令。
//
// 用法:
//
//	xrollctl [全局选项] <命令> [命令参数]
//
// 轮转参数既可来自 --config 指定的 YAML/JSON 文件（--section 下的 xrotate.Config），
// 也可由命令行选项给出；两者同时存在时命令行优先。
//
// 命令:
//
//	pipe             逐行读取 stdin 写入滚动文件，--watch 时配置变更后重新打开
//	list             列出目录中的轮转文件（名称、大小、创建时间）
//	compress <path>  按策略压缩一个已关闭的文件
//	prune            执行一次保留数清理
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误（缺少必需参数、未知命令、无效选项等）
//
// 示例:
//
//	app | xrollctl pipe --dir /var/log/app --filename app.log --rotation size --max-size 100MB --keep 10
//	app | xrollctl pipe --config /etc/xroller/app.yaml --watch
//	xrollctl list --config /etc/xroller/app.yaml
//	xrollctl compress --dir /var/log/app --filename app.log --compression gzip app.log.3
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run 执行命令并映射退出码
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := createApp(stdin, stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}

func createApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xrollctl",
		Usage:     "滚动文件写入与维护工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     rotationFlags(),
		Commands: []*cli.Command{
			createPipeCommand(),
			createListCommand(),
			createCompressCommand(),
			createPruneCommand(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return &usageError{msg: fmt.Sprintf("未知命令 %q", cmd.Args().First())}
			}
			return cli.ShowAppHelp(cmd)
		},
		// flag 解析错误统一映射为退出码 2
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{msg: err.Error()}
		},
		// 由 run 统一决定退出码，禁止框架直接 os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// setupSignalHandler 第一次 SIGINT/SIGTERM 取消 context，第二次强制退出
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
