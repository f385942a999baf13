// Package xfile 提供段文件目录相关的文件系统工具。
//
// # 路径函数
//
//   - SanitizePath: 规范化文件路径，拒绝空路径、空字节、相对路径穿越和目录路径
//   - SafeJoin: 将文件名拼接到目录下，保证结果不逃逸出该目录
//
// 路径穿越按路径段精确匹配，只有 ".." 作为独立路径段时才被拒绝，
// "app..2024.log" 这类文件名是合法的。
//
// # 目录
//
// EnsureDir 以 0750 创建目录（已存在时不修改权限）。
//
// # 创建时间
//
// CreationTime 返回文件的创建时间。Linux 上通过 statx(2) 读取 birth time，
// 文件系统不支持或其他平台上回退为修改时间。保留策略依赖它对段文件排序。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SafeJoin("/var/log", "../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
