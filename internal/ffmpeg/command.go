// Package ffmpeg decodes video frames by streaming rawvideo RGB24 out of an
// ffmpeg subprocess.
package ffmpeg

import (
	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// DefaultBinary is used when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// BuildDecodeArgs returns the ffmpeg arguments that write the first video
// stream of inputPath to stdout as packed 8-bit RGB.
func BuildDecodeArgs(inputPath string) []string {
	stream := ffmpeggo.Input(inputPath).
		Output("pipe:", ffmpeggo.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
			"map":     "0:v:0",
		})

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	return append(args, stream.GetArgs()...)
}
