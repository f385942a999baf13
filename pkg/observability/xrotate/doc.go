// Package xrotate 提供滚动文件写入器。
//
// Roller 将连续的字节流写入一组有界的分段文件，大小或时间达到阈值时切换到新文件，
// 之后在后台压缩已关闭的文件并按保留数清理旧文件。所有方法并发安全。
//
// # 轮转方式
//
//   - [WithSizeRotation]: 当前文件累计写入达到阈值后，下一次写入前轮转。
//     固定文件 filename 始终是当前文件，历史文件为 filename.1、filename.2 ...，
//     编号只增不减，重启后从目录中已有最大编号 + 1 继续，不回填空缺。
//   - [WithAgeRotation]: 按分钟/小时/天轮转，文件名为 filename.2006-01-02[-15[-04]]，
//     轮转时间点为下一个粒度边界（由 robfig/cron 计算），首个周期可能不足一个单位。
//
// 轮转只在写入时检查，没有后台定时器。
//
// # 轮转后流水线
//
// 每次轮转后通过 [Dispatcher] 调度一次后台任务：先压缩（仅 gzip 生效），
// 再按 MaxKeepFiles 删除最旧的文件。任务不被等待，失败经 OnError 上报，
// 不影响写入。
//
// # 错误回调
//
// OnError 默认输出到 os.Stderr。回调不得写回同一个 Roller。
//
// # 共享写入
//
// [Roller.Acquire] 返回持有读锁的 [SharedWriter]，多个 SharedWriter 可并发写入；
// 轮转取写锁，等待全部 SharedWriter 释放。
//
// # 配置
//
// [Config] 带 koanf 标签，可由 xconf 从 YAML/JSON 加载后通过 Config.Open 创建 Roller。
package xrotate
