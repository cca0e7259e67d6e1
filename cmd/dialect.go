package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"luastrip/internal/dialect"
)

// newDialectCmd 创建 dialect 子命令。
// 命令用于展示已注册的方言、后缀以及注释标记。
func newDialectCmd(registry *dialect.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "dialect",
		Short: "展示已支持的方言及注释标记",
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if _, err := fmt.Fprintln(writer, "DIALECT\tEXTENSIONS\tLINE\tBLOCK\tANNOTATION"); err != nil {
				return err
			}

			for _, item := range registry.Dialects() {
				if _, err := fmt.Fprintf(
					writer,
					"%s\t%s\t%s\t%s %s\t%s\n",
					item.Name,
					strings.Join(item.Extensions, ", "),
					item.LineComment,
					item.BlockOpen,
					item.BlockClose,
					item.AnnotationSigil,
				); err != nil {
					return err
				}
			}

			return writer.Flush()
		},
	}
}
