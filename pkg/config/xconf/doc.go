// Package xconf 加载 YAML/JSON 配置文件并在文件变更时热重载。
//
// 底层为 koanf，Client 暴露 koanf 实例供直接读取；Unmarshal 按 koanf 标签解码到结构体。
//
//	cfg, err := xconf.New("/etc/xroller/rotate.yaml")
//	if err != nil {
//		return err
//	}
//	var rc xrotate.Config
//	if err := cfg.Unmarshal("rotation", &rc); err != nil {
//		return err
//	}
//
// Watch 监视配置文件所在目录，编辑器的"写临时文件再 rename"也能触发重载。
// 连续变更在 debounce 窗口内合并为一次 Reload。
package xconf
