// Command aliendex はエイリアン図鑑のAPIサーバー、ワーカー、管理コマンドを起動する。
//
// 使い方:
//
//	aliendex [serve|worker|migrate|seed|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/aliendex/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "aliendex: %v\n", err)
		os.Exit(1)
	}
}
