// membershipはメンバーシップ管理APIサーバーのエントリーポイント。
//
// サブコマンド:
//
//	serve       APIサーバーを起動する（デフォルト）
//	migrate     データベースマイグレーションを実行する
//	healthcheck 起動中のサーバーにヘルスチェックを送る
package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/membership/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
