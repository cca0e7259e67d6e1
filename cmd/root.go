// Package cmd 提供 luastrip 的命令行入口与子命令编排。
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"luastrip/internal/classify"
	"luastrip/internal/config"
	"luastrip/internal/dialect"
	"luastrip/internal/logging"
	"luastrip/internal/selector"
	"luastrip/internal/textcodec"
)

// rootOptions 存放全局参数。
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// app 是一次命令执行所需的运行环境，由配置构造。
type app struct {
	cfg      *config.Config
	registry *dialect.Registry
	rules    *classify.Rules
	decoder  *textcodec.Decoder
	logger   zerolog.Logger
}

// Execute 组装根命令并执行。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
// 收到中断信号后停止分发新文件，正在处理的文件会完成。
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := dialect.NewRegistry()
	rootCmd := newRootCmd(version, registry)
	return rootCmd.ExecuteContext(ctx)
}

// newRootCmd 创建根命令并注册全部子命令。
func newRootCmd(version string, registry *dialect.Registry) *cobra.Command {
	options := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "luastrip",
		Short: "Lua 源码注释清理与度量工具",
		Long: "luastrip 按行对 Lua 源码分类，统计代码与注解行数，\n" +
			"并可删除注释和调试调用，保留许可证头、类型注解和带 URL 的注释。",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.configPath, "config", "", "配置文件路径，默认读取当前目录下的 "+config.DefaultFileName)
	flags.StringVar(&options.logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	flags.StringVar(&options.logFormat, "log-format", "", "日志格式: console 或 json")

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(newDialectCmd(registry))
	rootCmd.AddCommand(newAnalyzeCmd(options, registry))
	rootCmd.AddCommand(newStripCmd(options, registry))
	rootCmd.AddCommand(newVerifyCmd(options, registry))
	rootCmd.AddCommand(newConfigCmd(options))

	return rootCmd
}

// loadConfig 读取配置并应用全局参数覆盖。
func loadConfig(options *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(options.configPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(options.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(options.logFormat); format != "" {
		cfg.Logging.Format = format
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp 构造命令运行环境。日志写往 stderr，报告写往 stdout。
func newApp(cmd *cobra.Command, options *rootOptions, registry *dialect.Registry) (*app, error) {
	cfg, err := loadConfig(options)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	rules, err := cfg.CompileRules(registry)
	if err != nil {
		return nil, err
	}

	decoder, err := textcodec.NewDecoder(cfg.Encodings)
	if err != nil {
		return nil, err
	}

	if cfg.Source != "" {
		logger.Debug().Str("config", cfg.Source).Msg("config loaded")
	}

	return &app{
		cfg:      cfg,
		registry: registry,
		rules:    rules,
		decoder:  decoder,
		logger:   logger,
	}, nil
}

// selection 把配置与命令行参数合并为文件选择参数。
func (a *app) selection(options *runOptions) selector.Options {
	return selector.Options{
		Registry:     a.registry,
		Dialect:      a.cfg.Dialect,
		Exclude:      append(append([]string(nil), a.cfg.Scan.Exclude...), options.exclude...),
		Include:      append(append([]string(nil), a.cfg.Scan.Include...), options.include...),
		ExcludeTests: a.cfg.Scan.ExcludeTests && !options.includeTests,
		UseGitignore: a.cfg.Scan.UseGitignore,
	}
}

// normalizeFormat 校验输出格式。
func normalizeFormat(value string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(value))
	if format != "table" && format != "json" {
		return "", fmt.Errorf("unsupported format %q, allowed values: table, json", value)
	}
	return format, nil
}
