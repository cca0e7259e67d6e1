package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"luastrip/internal/dialect"
	"luastrip/internal/model"
	"luastrip/internal/report"
	"luastrip/internal/scanner"
)

// runOptions 存放 analyze / strip 共用的参数。
type runOptions struct {
	format       string
	output       string
	workers      int
	includeTests bool
	include      []string
	exclude      []string
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", o.format, "输出格式: table 或 json")
	cmd.Flags().StringVar(&o.output, "output", o.output, "json 导出文件路径，为空则不导出")
	cmd.Flags().IntVar(&o.workers, "workers", o.workers, "并发 worker 数量，默认取配置或 CPU 核数")
	o.bindSelection(cmd)
}

// bindSelection 只注册影响文件选择的参数。
func (o *runOptions) bindSelection(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.includeTests, "include-tests", o.includeTests, "同时处理测试目录和测试文件")
	cmd.Flags().StringSliceVar(&o.include, "include", o.include, "只处理匹配的文件（doublestar glob，可重复）")
	cmd.Flags().StringSliceVar(&o.exclude, "exclude", o.exclude, "额外排除规则（.gitignore 语法，可重复）")
}

// validate 校验输出参数。
func (o *runOptions) validate(cmd *cobra.Command) error {
	if _, err := normalizeFormat(o.format); err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") && o.workers <= 0 {
		return errors.New("workers must be greater than 0")
	}
	return nil
}

// newAnalyzeCmd 创建 analyze 子命令。
// 示例：
//
//	luastrip analyze .
//	luastrip analyze ./game --format json --output result.json
func newAnalyzeCmd(root *rootOptions, registry *dialect.Registry) *cobra.Command {
	options := &runOptions{format: "table"}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "统计目录或文件的代码、注解和调试调用行数",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.validate(cmd); err != nil {
				return err
			}
			application, err := newApp(cmd, root, registry)
			if err != nil {
				return err
			}
			result, err := application.run(cmd, options, args[0], scanner.ModeAnalyze)
			if err != nil {
				return err
			}
			return printResult(cmd, options, result)
		},
	}

	options.bind(analyzeCmd)
	return analyzeCmd
}

// run 执行一次批处理。
// 写回失败时结果仍然有效，由调用方先输出报告再返回错误。
func (a *app) run(cmd *cobra.Command, options *runOptions, target string, mode scanner.Mode) (model.ScanResult, error) {
	workers := a.cfg.WorkerCount()
	if cmd.Flags().Changed("workers") {
		workers = options.workers
	}

	service := scanner.NewService(a.rules, scanner.Options{
		Workers:  workers,
		Decoder:  a.decoder,
		Selector: a.selection(options),
	}, a.logger)

	return service.Run(cmd.Context(), target, mode)
}

// printResult 按格式输出结果，并在指定 --output 时导出 JSON 文件。
func printResult(cmd *cobra.Command, options *runOptions, result model.ScanResult) error {
	format, err := normalizeFormat(options.format)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if err := report.PrintJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	default:
		if err := report.PrintTable(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}

	outputPath := strings.TrimSpace(options.output)
	if outputPath == "" {
		return nil
	}
	if err := report.WriteJSONFile(outputPath, result); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "JSON exported to %s\n", outputPath)
	return nil
}
