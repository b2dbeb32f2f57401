// Package main provides localization for the av1rtc CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":       "出力先",
		"Capture":      "キャプチャ",
		"Encoding":     "エンコード",
		"Verification": "検証",
		"Debug":        "デバッグ",
		"Logging":      "ログ",

		// Root command
		"Real-time AV1 screen encoder": "リアルタイム AV1 画面エンコーダ",
		"YAML configuration file":      "YAML 設定ファイル",

		// Commands
		"Capture synthetic screen frames and encode them to AV1 MP4": "合成した画面フレームをキャプチャし AV1 MP4 にエンコード",
		"Decode an AV1 MP4 file and verify every frame":              "AV1 MP4 ファイルをデコードし全フレームを検証",
		"Print the derived encoder configuration as YAML":            "導出したエンコーダ設定を YAML で表示",
		"Show version information":                                   "バージョン情報を表示",
		"av1rtc version %s (%s)":                                     "av1rtc バージョン %s (%s)",
		"%dx%d, %d samples, %d keyframes, %d decoded":                "%dx%d, %d サンプル, キーフレーム %d, デコード %d",

		// Output flags
		"Output MP4 file path":                  "出力 MP4 ファイルパス",
		"Write a Markdown summary to this path": "Markdown サマリーの出力先",

		// Capture flags
		"Frame width in pixels":                       "フレームの幅（ピクセル）",
		"Frame height in pixels":                      "フレームの高さ（ピクセル）",
		"Frames per second":                           "フレームレート",
		"Number of frames to capture":                 "キャプチャするフレーム数",
		"Frame rendering workers (0 = number of CPUs)": "フレーム描画ワーカー数（0 = CPU 数）",

		// Encoding flags
		"Quality (best, balanced, low or 0-200)":          "品質（best, balanced, low または 0-200）",
		"Maximum frames between keyframes (0 = disabled)": "キーフレーム間の最大フレーム数（0 = 無効）",
		"Encoder threads":                                 "エンコーダのスレッド数",
		"Decoder threads":                                 "デコーダのスレッド数",
		"Row alignment of input planes":                   "入力プレーンの行アラインメント",
		"Change quality at a frame, as FRAME:QUALITY":     "指定フレームで品質を変更（FRAME:QUALITY 形式）",

		// Verification flags
		"Skip decoding the output":                    "出力のデコード検証を省略",
		"Save every Nth decoded frame as a thumbnail": "N フレームごとにサムネイルを保存",
		"Thumbnail width in pixels":                   "サムネイルの幅（ピクセル）",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力先ディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, text, json)":     "ログ形式（console, text, json）",
		"Suppress all log output":              "すべてのログ出力を抑制",
	})
}
