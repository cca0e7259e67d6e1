package cmd

import (
	"github.com/spf13/cobra"

	"luastrip/internal/dialect"
)

// newVerifyCmd 创建 verify 子命令，发现残留标记时以非零状态退出。
// 文件选择规则与 strip 相同。
func newVerifyCmd(root *rootOptions, registry *dialect.Registry) *cobra.Command {
	options := &runOptions{}

	verifyCmd := &cobra.Command{
		Use:   "verify [path]",
		Short: "检查文件中残留的调试开关与调试调用",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, root, registry)
			if err != nil {
				return err
			}
			return application.verify(cmd, options, args[0])
		},
	}

	options.bindSelection(verifyCmd)
	return verifyCmd
}
