// Package xlog 基于 log/slog 的结构化日志。
//
// 使用 Builder 配置输出、级别、格式和文件轮转，Build 返回 Logger 与 cleanup：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/app", "app.log", xrotate.WithSizeRotation(100<<20)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// Builder 遵循 first-error-wins：第一个配置错误之后的 Set 调用被跳过，错误由 Build 返回。
//
// 所有日志方法都接收 context.Context 和 slog.Attr；级别可在运行时通过 [Leveler] 调整，
// With/WithGroup 派生的 logger 共享同一个级别。
//
// Handler 写入失败（磁盘满、权限变化）不会返回给调用方，
// 通过 [Builder.SetOnError] 注册的回调得到通知，回调中再次写日志不会递归。
package xlog
