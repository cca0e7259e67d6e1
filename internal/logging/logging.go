// Package logging 构造 luastrip 使用的 zerolog 日志器。
// 日志器总是显式传递，不修改 zerolog 的全局状态。
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// 输出格式。
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options 对应配置文件中的 logging 节。
type Options struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DefaultOptions 返回默认日志配置。
func DefaultOptions() Options {
	return Options{Level: "info", Format: FormatConsole}
}

// Validate 检查级别与格式是否合法。
func (o Options) Validate() error {
	if _, err := parseLevel(o.Level); err != nil {
		return err
	}
	switch normalizeFormat(o.Format) {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported log format %q, allowed values: console, json", o.Format)
	}
}

// New 创建写往 out 的日志器。console 格式只在 out 是终端时着色。
func New(options Options, out io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(options.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var writer io.Writer
	switch normalizeFormat(options.Format) {
	case FormatConsole:
		writer = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !isTerminal(out),
			TimeFormat: time.TimeOnly,
		}
	case FormatJSON:
		writer = out
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format %q", options.Format)
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

func parseLevel(value string) (zerolog.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(trimmed)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}

func normalizeFormat(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return FormatConsole
	}
	return trimmed
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
