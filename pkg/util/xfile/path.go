package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// '/' 和 '\' 都视为分隔符，Linux 上也能拦截 Windows 风格的穿越。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对文件路径做格式检查并规范化。
//
// 拒绝空路径、空字节、以分隔符结尾的目录路径以及相对路径穿越。
// 绝对路径中的 ".." 由 filepath.Clean 正常解析，不视为穿越。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// 必须在 Clean 之前检查，Clean 会去掉尾部分隔符
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}

// SafeJoin 将 name 拼接到目录 dir 下，并保证结果仍位于 dir 内。
//
// dir 可以是相对路径，会先转换为绝对路径；name 必须是相对路径且不含 ".." 段。
//
//	SafeJoin("/var/log", "app.log")       // -> "/var/log/app.log", nil
//	SafeJoin("/var/log", "../etc/passwd") // -> "", ErrPathTraversal
//	SafeJoin("/var/log", "/etc/passwd")   // -> "", ErrInvalidPath
//
// 不解析符号链接，检查与实际打开文件之间存在 TOCTOU 窗口，
// 适用于可信环境下的日志目录。
func SafeJoin(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("base directory is required: %w", ErrEmptyPath)
	}
	if name == "" {
		return "", fmt.Errorf("path is required: %w", ErrEmptyPath)
	}
	if containsNullByte(dir) || containsNullByte(name) {
		return "", ErrNullByte
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "\\") {
		return "", fmt.Errorf("path must be relative: %w", ErrInvalidPath)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w: %w", ErrInvalidPath, err)
	}

	cleanName := filepath.Clean(name)
	if hasDotDotSegment(cleanName) {
		return "", fmt.Errorf("path traversal in path: %w", ErrPathTraversal)
	}

	joined := filepath.Join(absDir, cleanName)
	rel, err := filepath.Rel(absDir, joined)
	if err != nil || rel == "." || hasDotDotSegment(rel) {
		return "", ErrPathEscaped
	}
	return joined, nil
}
