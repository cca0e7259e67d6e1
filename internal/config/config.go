// Package config 负责加载 luastrip 的配置。
//
// 优先级从低到高：内置默认值、配置文件、LUASTRIP_ 前缀的环境变量，
// 命令行参数由 cmd 层在加载之后覆盖。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"luastrip/internal/classify"
	"luastrip/internal/dialect"
	"luastrip/internal/logging"
	"luastrip/internal/textcodec"
	"luastrip/internal/verify"
)

// DefaultFileName 是未指定 --config 时在当前目录查找的文件名。
const DefaultFileName = ".luastrip.yaml"

// EnvPrefix 是环境变量前缀，例如 LUASTRIP_LOGGING_LEVEL=debug。
const EnvPrefix = "LUASTRIP"

// ErrConfigExists 表示 init 的目标文件已存在。
var ErrConfigExists = errors.New("config file already exists")

// Config 是完整配置。
type Config struct {
	Workers   int               `mapstructure:"workers" yaml:"workers" json:"workers"`
	Encodings []string          `mapstructure:"encodings" yaml:"encodings" json:"encodings"`
	Dialect   string            `mapstructure:"dialect" yaml:"dialect" json:"dialect"`
	Rules     classify.RuleSpec `mapstructure:"rules" yaml:"rules" json:"rules"`
	Scan      ScanConfig        `mapstructure:"scan" yaml:"scan" json:"scan"`
	Verify    VerifyConfig      `mapstructure:"verify" yaml:"verify" json:"verify"`
	Logging   logging.Options   `mapstructure:"logging" yaml:"logging" json:"logging"`

	// Source 是实际读取的配置文件路径，未读取文件时为空。
	Source string `mapstructure:"-" yaml:"-" json:"-"`
}

// ScanConfig 控制文件选择。
type ScanConfig struct {
	Exclude      []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	Include      []string `mapstructure:"include" yaml:"include" json:"include"`
	ExcludeTests bool     `mapstructure:"exclude_tests" yaml:"exclude_tests" json:"exclude_tests"`
	UseGitignore bool     `mapstructure:"use_gitignore" yaml:"use_gitignore" json:"use_gitignore"`
}

// VerifyConfig 控制 verify 子命令。
type VerifyConfig struct {
	Patterns   []string `mapstructure:"patterns" yaml:"patterns" json:"patterns"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions" json:"extensions"`
}

// Default 返回内置默认配置。Workers 为 0 表示使用 CPU 核数。
func Default() *Config {
	return &Config{
		Workers:   0,
		Encodings: append([]string(nil), textcodec.DefaultEncodings...),
		Dialect:   dialect.Lua().Name,
		Rules:     classify.SpecForDialect(dialect.Lua()),
		Scan: ScanConfig{
			Exclude:      []string{},
			Include:      []string{},
			ExcludeTests: true,
			UseGitignore: true,
		},
		Verify: VerifyConfig{
			Patterns:   append([]string(nil), verify.DefaultPatterns...),
			Extensions: append([]string(nil), verify.DefaultExtensions...),
		},
		Logging: logging.DefaultOptions(),
	}
}

// Load 读取配置。path 为空时尝试当前目录下的 DefaultFileName，不存在则只用默认值；
// path 非空但文件不存在视为错误。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source, err := resolveSource(path)
	if err != nil {
		return nil, err
	}
	if source != "" {
		v.SetConfigFile(source)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", source, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveSource(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		if _, err := os.Stat(trimmed); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return trimmed, nil
	}

	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("config file: %w", err)
	}
	return "", nil
}

// setDefaults 逐个登记键，AutomaticEnv 只对已知键生效。
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("encodings", cfg.Encodings)
	v.SetDefault("dialect", cfg.Dialect)

	v.SetDefault("rules.line_comment", cfg.Rules.LineComment)
	v.SetDefault("rules.block_open", cfg.Rules.BlockOpen)
	v.SetDefault("rules.block_close", cfg.Rules.BlockClose)
	v.SetDefault("rules.annotation_sigil", cfg.Rules.AnnotationSigil)
	v.SetDefault("rules.license_pattern", cfg.Rules.LicensePattern)
	v.SetDefault("rules.url_pattern", cfg.Rules.URLPattern)
	v.SetDefault("rules.forbidden_calls", cfg.Rules.ForbiddenCalls)

	v.SetDefault("scan.exclude", cfg.Scan.Exclude)
	v.SetDefault("scan.include", cfg.Scan.Include)
	v.SetDefault("scan.exclude_tests", cfg.Scan.ExcludeTests)
	v.SetDefault("scan.use_gitignore", cfg.Scan.UseGitignore)

	v.SetDefault("verify.patterns", cfg.Verify.Patterns)
	v.SetDefault("verify.extensions", cfg.Verify.Extensions)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

// Validate 检查配置能否构造出可用的运行环境。
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if len(c.Encodings) == 0 {
		return errors.New("encodings must not be empty")
	}
	if _, err := textcodec.NewDecoder(c.Encodings); err != nil {
		return err
	}
	if _, err := c.CompileRules(dialect.NewRegistry()); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// WorkerCount 返回实际并发数。
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// CompileRules 以方言标记为基础，叠加 rules 节中的覆盖项，编译出分类规则。
func (c *Config) CompileRules(registry *dialect.Registry) (*classify.Rules, error) {
	d, ok := registry.Lookup(c.Dialect)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q", c.Dialect)
	}
	rules, err := classify.NewRules(classify.SpecForDialect(d).Merge(c.Rules))
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return rules, nil
}

// Marshal 把配置编码为 YAML。
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// Write 把配置写入 path。force 为 false 时不覆盖已有文件。
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
