package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":               "パイプラインを開始します",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Muxing %d stills from %s":        "%[2]s から %[1]d 枚の静止画を多重化中",
		"Capturing %s":                    "%s をキャプチャ中",
		"Captured %d frames":              "%d フレームをキャプチャしました",
		"Encoding %d frames":              "%d フレームをエンコード中",
		"Committed %d/%d frames":          "%d/%d フレームを確定しました",
		"Video written: %s (%d bytes)":    "動画を書き込みました: %s (%d バイト)",
		"Poster written: %s":              "ポスターを書き込みました: %s",
		"Output saved to %s":              "出力を %s に保存しました",
		"Poster saved to %s":              "ポスターを %s に保存しました",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",

		// Capture stage
		"Launching browser": "ブラウザを起動中",
		"Navigating to %s":  "%s へ移動中",
		"Browser closed":    "ブラウザを閉じました",

		// Encode stage
		"Encoding %d frames with concurrency %d": "%d フレームを並列数 %d でエンコード中",
		"Video encoded: %d frames, %d bytes":     "動画エンコード完了: %d フレーム, %d バイト",

		// Poster stage
		"Poster generated: %dx%d": "ポスター生成完了: %dx%d",

		// Warnings
		"Capture timeout, using %d collected frames": "キャプチャがタイムアウトしました。収集した %d フレームを使用します",
		"Failed to save debug output: %s":            "デバッグ出力の保存に失敗しました: %s",
		"Failed to generate poster: %s":              "ポスターの生成に失敗しました: %s",
		"Failed to write summary: %s":                "サマリーの書き込みに失敗しました: %s",
		"Failed to write metrics: %s":                "メトリクスの書き込みに失敗しました: %s",

		// Errors
		"Failed to capture page: %s": "ページのキャプチャに失敗しました: %s",
		"Failed to encode video: %s": "動画のエンコードに失敗しました: %s",
		"Failed to write output: %s": "出力の書き込みに失敗しました: %s",
	})
}
