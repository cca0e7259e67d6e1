// luastrip 命令行入口：注入版本号，执行根命令，把错误映射为退出码。
package main

import (
	"fmt"
	"os"

	"luastrip/cmd"
)

// version 通过 -ldflags "-X main.version=vX.Y.Z" 注入。
var version = "dev"

func main() {
	err := cmd.Execute(version)
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "luastrip: %v\n", err)
	os.Exit(cmd.ExitCode(err))
}
