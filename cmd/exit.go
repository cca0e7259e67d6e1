package cmd

import (
	"context"
	"errors"

	"luastrip/internal/verify"
)

// 进程退出码。
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitForbidden   = 2
	ExitInterrupted = 130
)

// ExitCode 把命令返回的错误映射为退出码：
// 发现残留内容为 2，被信号中断为 130，其余错误为 1。
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, verify.ErrForbiddenContent):
		return ExitForbidden
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
