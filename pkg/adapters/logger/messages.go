package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting pipeline":               "パイプラインを開始します",
		"Pipeline completed successfully": "パイプラインが正常に完了しました",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",
		"Output saved to %s":              "出力を %s に保存しました",
		"Summary saved to %s":             "サマリーを %s に保存しました",
		"Wrote %s (%d bytes)":             "%s を書き込みました (%d バイト)",

		// Renderer
		"Cannot load font %s, using the built-in face: %v": "フォント %s を読み込めないため組み込みフォントを使用します: %v",

		// Capture stage
		"Capturing %d frames at %dx%d":         "%d フレームを %dx%d でキャプチャ中",
		"Capturing %d frames with %d workers":  "%d フレームを %d ワーカーでキャプチャ中",
		"Capture completed":                    "キャプチャが完了しました",
		"Failed to save source frame %d: %v":   "ソースフレーム %d の保存に失敗しました: %v",
		"Failed to capture frames: %s":         "フレームのキャプチャに失敗しました: %s",

		// Encoder session and encode stage
		"Encoder created: %dx%d, %d threads, q %d-%d, %d kbps": "エンコーダを作成しました: %dx%d, %d スレッド, q %d-%d, %d kbps",
		"Control %s=%d not applied: %v":                       "コントロール %s=%d を適用できませんでした: %v",
		"Quality set to %s: q %d-%d, %d kbps":                 "品質を %s に設定しました: q %d-%d, %d kbps",
		"Encoding with quality %s":                            "品質 %s でエンコード中",
		"Encoding %d frames at %.2f fps":                      "%d フレームを %.2f fps でエンコード中",
		"Quality changed to %s at frame %d":                   "フレーム %[2]d で品質を %[1]s に変更しました",
		"Encoded %d frames, %d bytes":                         "%d フレームをエンコードしました (%d バイト)",
		"Encoded %d frames, %d keyframes, %d bytes":           "%d フレームをエンコードしました (キーフレーム %d, %d バイト)",
		"%d frames produced no output":                        "%d フレームで出力がありませんでした",
		"Failed to save encoder config: %v":                   "エンコーダ設定の保存に失敗しました: %v",
		"Failed to save packet %d: %v":                        "パケット %d の保存に失敗しました: %v",
		"Failed to encode frames: %s":                         "エンコードに失敗しました: %s",
		"Failed to build MP4: %s":                             "MP4 の生成に失敗しました: %s",
		"Failed to write output: %s":                          "出力の書き込みに失敗しました: %s",

		// Decoder session and decode stage
		"Decoder created: %d threads":                 "デコーダを作成しました: %d スレッド",
		"Decoding %d samples":                         "%d サンプルをデコード中",
		"Decoding %d samples (%dx%d)":                 "%d サンプルをデコード中 (%dx%d)",
		"Decoded %d images":                           "%d 枚の画像をデコードしました",
		"%d decoded images differ from %dx%d":         "%d 枚のデコード画像が %dx%d と異なります",
		"Decoded %d of %d frames, %d with wrong size": "%[2]d フレーム中 %[1]d フレームをデコード (サイズ不一致 %[3]d)",
		"Failed to save thumbnail %d: %v":             "サムネイル %d の保存に失敗しました: %v",
		"Verification failed: %s":                     "検証に失敗しました: %s",
	})
}
