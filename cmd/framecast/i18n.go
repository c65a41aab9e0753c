// Package main provides localization for the framecast CLI.
package main

import (
	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"
)

// helpText maps kong help variables to their English text.
var helpText = map[string]string{
	"mux_help":     "Mux a directory or manifest of WebP stills into a WebM video",
	"capture_help": "Capture a web page as WebP screenshots and mux them into a WebM video",
	"inspect_help": "Decode a WebM file and check its cue index",
	"version_help": "Show version information",

	"output_help":   "Output WebM file path (required)",
	"config_help":   "YAML configuration file",
	"env_file_help": "Dotenv file with FRAMECAST_ variables (repeatable)",

	"concurrency_help": "Stills extracted in parallel (0 = one per CPU)",
	"cluster_max_help": "Maximum cluster duration in milliseconds (default: 30000)",
	"verify_help":      "Fully decode each still before muxing",

	"poster_help":         "Write a poster PNG from the first frame",
	"poster_caption_help": "Caption drawn on the poster",
	"font_path_help":      "TrueType font for the poster caption",
	"summary_help":        "Write a Markdown summary",
	"metrics_file_help":   "Write Prometheus metrics in textfile format",

	"debug_help":     "Save intermediate stills and posters",
	"debug_dir_help": "Directory for debug output (default: ./debug)",
	"log_level_help": "Log level (debug, info, warn, error)",
	"quiet_help":     "Suppress all log output",

	"input_help":    "Directory or glob of .webp stills",
	"manifest_help": "YAML manifest listing stills and their durations",
	"fps_help":      "Frame rate for stills without their own duration",
	"duration_help": "Display time per still in milliseconds (default: 100)",

	"url_help":            "URL of the page to capture",
	"preset_help":         "Device preset (desktop, mobile)",
	"frames_help":         "Number of screenshots (default: 30)",
	"interval_help":       "Delay between screenshots in milliseconds (default: 200)",
	"width_help":          "Viewport width",
	"height_help":         "Viewport height",
	"quality_help":        "WebP screenshot quality (0-100, overrides quality preset)",
	"quality_preset_help": "Quality preset (low, medium, high)",
	"timeout_help":        "Capture timeout in seconds (default: 30)",
	"header_help":         "Extra HTTP header as 'Name: value' (repeatable)",

	"no_headless_help":  "Show the browser window",
	"chrome_path_help":  "Path to the Chrome executable",
	"ignore_https_help": "Ignore HTTPS certificate errors",
	"proxy_help":        "HTTP proxy server (e.g., http://proxy:8080)",
	"no_incognito_help": "Use a regular browser profile",
	"auto_install_help": "Download Chromium when none is installed",

	"file_help": "WebM file to inspect",
	"json_help": "Print the report as JSON",
}

func helpVars() kong.Vars {
	vars := kong.Vars{}
	for k, v := range helpText {
		vars[k] = l10n.T(v)
	}
	return vars
}

func flagGroups() []kong.Group {
	return []kong.Group{
		{Key: "output", Title: l10n.T("Output")},
		{Key: "encoding", Title: l10n.T("Encoding")},
		{Key: "capture", Title: l10n.T("Capture")},
		{Key: "browser", Title: l10n.T("Browser")},
		{Key: "reports", Title: l10n.T("Reports")},
		{Key: "debug", Title: l10n.T("Debug")},
		{Key: "logging", Title: l10n.T("Logging")},
	}
}

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Flag groups
		"Output":   "出力先",
		"Encoding": "エンコード",
		"Capture":  "キャプチャ",
		"Browser":  "ブラウザ設定",
		"Reports":  "レポート",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Commands
		"Turn WebP stills into WebM videos.":                                     "WebP静止画をWebM動画に変換します。",
		"Mux a directory or manifest of WebP stills into a WebM video":           "ディレクトリまたはマニフェストのWebP静止画をWebM動画に多重化",
		"Capture a web page as WebP screenshots and mux them into a WebM video":  "WebページをWebPでキャプチャしWebM動画に多重化",
		"Decode a WebM file and check its cue index":                             "WebMファイルをデコードしキューインデックスを検証",
		"Show version information":                                               "バージョン情報を表示",
		"framecast version %s":                                                   "framecast バージョン %s",
		"an input directory or --manifest is required":                           "入力ディレクトリまたは --manifest が必要です",
		"unknown quality preset %q":                                              "不明な品質プリセット %q",

		// Output flags
		"Output WebM file path (required)":                  "出力WebMファイルパス（必須）",
		"YAML configuration file":                           "YAML設定ファイル",
		"Dotenv file with FRAMECAST_ variables (repeatable)": "FRAMECAST_ 変数を含む dotenv ファイル（複数指定可）",

		// Encoding flags
		"Stills extracted in parallel (0 = one per CPU)":           "並列に展開する静止画の数（0 = CPU数）",
		"Maximum cluster duration in milliseconds (default: 30000)": "クラスタの最大長（ミリ秒、デフォルト: 30000）",
		"Fully decode each still before muxing":                    "多重化前に各静止画を完全にデコード",

		// Report flags
		"Write a poster PNG from the first frame":    "先頭フレームからポスターPNGを出力",
		"Caption drawn on the poster":                "ポスターに描画するキャプション",
		"TrueType font for the poster caption":       "ポスターキャプション用のTrueTypeフォント",
		"Write a Markdown summary":                   "Markdownサマリーを出力",
		"Write Prometheus metrics in textfile format": "Prometheusメトリクスをtextfile形式で出力",

		// Debug and logging flags
		"Save intermediate stills and posters":          "中間の静止画とポスターを保存",
		"Directory for debug output (default: ./debug)": "デバッグ出力先ディレクトリ（デフォルト: ./debug）",
		"Log level (debug, info, warn, error)":          "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                       "ログ出力をすべて抑制",

		// Mux flags
		"Directory or glob of .webp stills":                     ".webp 静止画のディレクトリまたはglob",
		"YAML manifest listing stills and their durations":      "静止画と表示時間を列挙したYAMLマニフェスト",
		"Frame rate for stills without their own duration":      "表示時間の指定がない静止画のフレームレート",
		"Display time per still in milliseconds (default: 100)": "静止画1枚あたりの表示時間（ミリ秒、デフォルト: 100）",

		// Capture flags
		"URL of the page to capture":                                "キャプチャするページのURL",
		"Device preset (desktop, mobile)":                           "デバイスプリセット（desktop, mobile）",
		"Number of screenshots (default: 30)":                       "スクリーンショット枚数（デフォルト: 30）",
		"Delay between screenshots in milliseconds (default: 200)":  "スクリーンショット間隔（ミリ秒、デフォルト: 200）",
		"Viewport width":                                            "ビューポート幅",
		"Viewport height":                                           "ビューポート高さ",
		"WebP screenshot quality (0-100, overrides quality preset)": "WebPスクリーンショット品質（0-100、品質プリセットを上書き）",
		"Quality preset (low, medium, high)":                        "品質プリセット（low, medium, high）",
		"Capture timeout in seconds (default: 30)":                  "キャプチャのタイムアウト（秒、デフォルト: 30）",
		"Extra HTTP header as 'Name: value' (repeatable)":           "追加HTTPヘッダー 'Name: value'（複数指定可）",

		// Browser flags
		"Show the browser window":                    "ブラウザウィンドウを表示",
		"Path to the Chrome executable":              "Chrome実行ファイルのパス",
		"Ignore HTTPS certificate errors":            "HTTPS証明書エラーを無視",
		"HTTP proxy server (e.g., http://proxy:8080)": "HTTPプロキシサーバー（例: http://proxy:8080）",
		"Use a regular browser profile":              "通常のブラウザプロファイルを使用",
		"Download Chromium when none is installed":   "Chromiumが無い場合にダウンロード",

		// Inspect flags
		"WebM file to inspect":     "検査するWebMファイル",
		"Print the report as JSON": "レポートをJSONで出力",

		// Summary labels
		"Encoding Summary": "エンコードサマリー",
		"Source":           "入力",
		"Item":             "項目",
		"Value":            "値",
		"Kind":             "種類",
		"Location":         "場所",
		"Page Title":       "ページタイトル",
		"Frames":           "フレーム数",
		"Video":            "動画",
		"Frame Count":      "フレーム数",
		"Duration":         "長さ",
		"Frame Size":       "フレームサイズ",
		"File Size":        "ファイルサイズ",
		"Poster":           "ポスター",
		"Settings":         "設定",
		"Concurrency":      "並列数",
		"Cluster Cap":      "クラスタ上限",
		"Verify Stills":    "静止画の検証",
		"On":               "有効",
		"Off":              "無効",
		"Clusters":         "クラスタ",
		"Timecode":         "タイムコード",
		"Blocks":           "ブロック数",
		"Size":             "サイズ",
		"Generated":        "生成日時",
		"elapsed":          "所要時間",
		"files":            "ファイル",
		"capture":          "キャプチャ",
	})
}
