// Package ffprobe provides functions for extracting stream information using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"

	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/util"
)

// StreamInfo describes the first video stream of a file.
type StreamInfo struct {
	// Width and Height are the displayed dimensions, after rotation.
	Width     int
	Height    int
	FPS       float64
	Duration  float64
	Frames    uint64
	Rotation  int
	CodecName string
	PixFmt    string
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string            `json:"codec_type"`
	CodecName    string            `json:"codec_name"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	PixFmt       string            `json:"pix_fmt"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	RFrameRate   string            `json:"r_frame_rate"`
	Duration     string            `json:"duration"`
	NbFrames     string            `json:"nb_frames"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
	Disposition  map[string]int    `json:"disposition"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// Prober runs ffprobe.
type Prober struct {
	// Path is the ffprobe binary. Empty means "ffprobe" on PATH.
	Path string
}

// NewProber returns a Prober for the given binary path.
func NewProber(path string) *Prober {
	return &Prober{Path: path}
}

func (p *Prober) binary() string {
	if p == nil || p.Path == "" {
		return "ffprobe"
	}
	return p.Path
}

// runFFprobe executes ffprobe and returns the raw JSON output.
func (p *Prober) runFFprobe(ctx context.Context, inputPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}
		return nil, errors.WrapExecError("ffprobe", err, string(bytes.TrimSpace(stderr.Bytes())))
	}
	return output, nil
}

// parseFFprobeOutput decodes ffprobe's JSON document.
func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.NewJSONParseError("failed to parse ffprobe output", err)
	}
	return &result, nil
}

// Probe returns information about the first video stream in inputPath.
func (p *Prober) Probe(ctx context.Context, inputPath string) (*StreamInfo, error) {
	data, err := p.runFFprobe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	probe, err := parseFFprobeOutput(data)
	if err != nil {
		return nil, err
	}

	return extractStreamInfo(probe, inputPath)
}

// extractStreamInfo selects the first non-cover-art video stream.
func extractStreamInfo(probe *ffprobeOutput, inputPath string) (*StreamInfo, error) {
	var video *ffprobeStream
	for i := range probe.Streams {
		s := &probe.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		video = s
		break
	}

	if video == nil {
		return nil, errors.NewVideoInfoError("no video stream found in " + inputPath)
	}

	if video.Width <= 0 || video.Height <= 0 {
		return nil, errors.NewVideoInfoError("invalid dimensions in " + inputPath + ": " +
			strconv.Itoa(video.Width) + "x" + strconv.Itoa(video.Height))
	}

	fps, ok := util.ParseRational(video.AvgFrameRate)
	if !ok || fps <= 0 {
		fps, ok = util.ParseRational(video.RFrameRate)
	}
	if !ok || fps <= 0 || math.IsInf(fps, 0) {
		return nil, errors.NewFFprobeParseError("no usable frame rate in " + inputPath)
	}

	duration, ok := parseDuration(probe.Format.Duration)
	if !ok {
		duration, ok = parseDuration(video.Duration)
	}
	if !ok {
		return nil, errors.NewFFprobeParseError("no usable duration in " + inputPath)
	}

	info := &StreamInfo{
		Width:     video.Width,
		Height:    video.Height,
		FPS:       fps,
		Duration:  duration,
		Rotation:  rotation(video),
		CodecName: video.CodecName,
		PixFmt:    video.PixFmt,
	}

	if video.NbFrames != "" {
		if frames, err := strconv.ParseUint(video.NbFrames, 10, 64); err == nil {
			info.Frames = frames
		}
	}

	// ffmpeg autorotates on decode, so quarter turns swap the output dimensions.
	if info.Rotation%180 != 0 {
		info.Width, info.Height = info.Height, info.Width
	}

	return info, nil
}

func parseDuration(s string) (float64, bool) {
	if s == "" || s == "N/A" {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d < 0 || math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

// rotation returns the display rotation in degrees, normalized to [0, 360).
func rotation(s *ffprobeStream) int {
	deg := 0
	if r, ok := s.Tags["rotate"]; ok {
		if v, err := strconv.Atoi(r); err == nil {
			deg = v
		}
	}
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" && sd.Rotation != 0 {
			deg = int(math.Round(sd.Rotation))
		}
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
