package xrotate

import "time"

// shouldRotate 在每次写入前判断是否需要轮转，返回新文件的目标路径。
//
// ModeSize：size（仅统计之前的写入）>= Threshold 时轮转，目标为 filename.{nextSuffix}，
// 即当前固定文件被重命名后的路径。
// ModeAge：now >= deadline 时轮转，目标为以 deadline 命名的新时间段文件。
func shouldRotate(p *Policy, st *state, now time.Time) (string, bool) {
	if p.Mode == ModeSize {
		if st.size.Load() < p.Threshold {
			return "", false
		}
		return p.numberedPath(st.nextSuffix), true
	}

	if now.Before(st.deadline) {
		return "", false
	}
	return p.stampedPath(st.deadline), true
}
