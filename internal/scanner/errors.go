package scanner

import (
	"errors"
	"fmt"
)

// ErrWritesFailed 表示 strip 运行中至少有一个文件写回失败。
// 此时 Run 仍返回完整结果，失败文件记录在 Errors 中。
var ErrWritesFailed = errors.New("one or more files could not be written")

// FileReadError 表示文件无法读取或解码，该文件被跳过。
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// WriteError 表示改写后的内容无法写回，只影响该文件。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
