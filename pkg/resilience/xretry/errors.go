package xretry

import "errors"

// 参数错误
var (
	ErrNilRetryer = errors.New("xretry: retryer cannot be nil")
	ErrNilContext = errors.New("xretry: context cannot be nil")
	ErrNilFunc    = errors.New("xretry: function cannot be nil")
)

// RetryableError 实现此接口的错误由 Retryable() 决定是否重试
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 不应重试的错误
type PermanentError struct {
	Err error
}

// NewPermanentError 将 err 标记为不可重试，errors.Is/As 仍可匹配 err
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }

func (e *PermanentError) Retryable() bool { return false }

// IsRetryable nil 返回 false；实现 RetryableError 的按其结果；其余视为可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}
