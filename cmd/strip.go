package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"luastrip/internal/dialect"
	"luastrip/internal/report"
	"luastrip/internal/scanner"
	"luastrip/internal/verify"
)

// newStripCmd 创建 strip 子命令，原地改写文件。
// 示例：
//
//	luastrip strip ./game --dry-run
//	luastrip strip ./game --verify
func newStripCmd(root *rootOptions, registry *dialect.Registry) *cobra.Command {
	options := &runOptions{format: "table"}
	var dryRun, verifyAfter bool

	stripCmd := &cobra.Command{
		Use:   "strip [path]",
		Short: "删除注释与调试调用并写回文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := options.validate(cmd); err != nil {
				return err
			}
			application, err := newApp(cmd, root, registry)
			if err != nil {
				return err
			}

			mode := scanner.ModeStrip
			if dryRun {
				mode = scanner.ModeDryRun
			}

			result, runErr := application.run(cmd, options, args[0], mode)
			if runErr != nil && !errors.Is(runErr, scanner.ErrWritesFailed) {
				return runErr
			}
			if err := printResult(cmd, options, result); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}

			if !verifyAfter || dryRun {
				return nil
			}
			return application.verify(cmd, options, args[0])
		},
	}

	options.bind(stripCmd)
	stripCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只计算改写结果，不写回文件")
	stripCmd.Flags().BoolVar(&verifyAfter, "verify", false, "改写后检查残留的调试标记")

	return stripCmd
}

// verify 按与改写相同的文件选择规则检查残留内容，并输出命中结果。
func (a *app) verify(cmd *cobra.Command, options *runOptions, target string) error {
	findings, err := verify.Check(target, verify.Options{
		Patterns:   a.cfg.Verify.Patterns,
		Extensions: a.cfg.Verify.Extensions,
		Selection:  a.selection(options),
	})
	if printErr := report.PrintFindings(cmd.OutOrStdout(), findings); printErr != nil {
		return printErr
	}
	if err != nil {
		return fmt.Errorf("verify %s: %w", target, err)
	}
	return nil
}
