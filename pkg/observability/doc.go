// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，可直接输出到滚动文件
//   - xmetrics: 统一观测接口（追踪 + 指标），提供 OpenTelemetry 实现
//   - xrotate: 滚动文件写入，按大小或时间段切分，后台压缩与清理
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 观测失败不影响业务写入
package observability
