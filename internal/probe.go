package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/mediaspec"
)

// FFProbe extracts video stream metadata by shelling out to ffprobe.
// Requires ffprobe in $PATH.
type FFProbe struct{}

// ffprobeOutput is the subset of the ffprobe JSON document the validator
// cares about.
type ffprobeOutput struct {
	Streams []struct {
		CodecType     string `json:"codec_type"`
		CodecName     string `json:"codec_name"`
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		RealFrameRate string `json:"r_frame_rate"`
		PixFmt        string `json:"pix_fmt"`
		FieldOrder    string `json:"field_order"`
		Channels      int    `json:"channels"`
		SampleRate    string `json:"sample_rate"`
		BitRate       string `json:"bit_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// Probe runs ffprobe over a local file and maps its output to a VideoProbe.
func (FFProbe) Probe(ctx context.Context, path string) (*mediaspec.VideoProbe, error) {
	var (
		raw string
		err error
	)
	if deadline, ok := ctx.Deadline(); ok {
		raw, err = ffmpeg.ProbeWithTimeout(path, time.Until(deadline), nil)
	} else {
		raw, err = ffmpeg.Probe(path)
	}
	if err != nil {
		return nil, &pkgerrs.MediaError{Reason: pkgerrs.ReasonSpecViolation, Message: fmt.Sprintf("probe %s", path), Err: err}
	}
	return parseProbeOutput(raw)
}

func parseProbeOutput(raw string) (*mediaspec.VideoProbe, error) {
	var out ffprobeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &pkgerrs.MediaError{Reason: pkgerrs.ReasonSpecViolation, Message: "decode probe output", Err: err}
	}

	probe := &mediaspec.VideoProbe{}
	probe.Duration = parseSecondsDuration(out.Format.Duration)
	probe.SizeBytes, _ = strconv.ParseInt(out.Format.Size, 10, 64)

	sawVideo := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if sawVideo {
				continue
			}
			sawVideo = true
			probe.Width = s.Width
			probe.Height = s.Height
			probe.VideoCodec = s.CodecName
			probe.PixelFormat = s.PixFmt
			probe.FieldOrder = s.FieldOrder
			probe.AvgFrameRate = s.AvgFrameRate
			probe.RealFrameRate = s.RealFrameRate
			probe.FPS = parseFrameRate(s.AvgFrameRate)
		case "audio":
			if probe.AudioCodec != "" {
				continue
			}
			probe.AudioCodec = s.CodecName
			probe.AudioChannels = s.Channels
			probe.AudioSampleRate, _ = strconv.Atoi(s.SampleRate)
			probe.AudioBitrate, _ = strconv.Atoi(s.BitRate)
		}
	}
	if !sawVideo {
		return nil, &pkgerrs.MediaError{Reason: pkgerrs.ReasonSpecViolation, Message: "file has no video stream"}
	}
	return probe, nil
}

// parseFrameRate reduces ffprobe's fractional "num/den" frame rate to a
// float. Malformed input and zero denominators yield 0.
func parseFrameRate(raw string) float64 {
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSecondsDuration(raw string) time.Duration {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// ProbeBytes writes fetched media to a temporary file so a Prober can run
// over it, and cleans the file up afterwards.
func ProbeBytes(ctx context.Context, prober mediaspec.Prober, data []byte, ext string) (*mediaspec.VideoProbe, error) {
	f, err := os.CreateTemp("", "gmaw-*."+ext)
	if err != nil {
		return nil, &pkgerrs.ClientError{Operation: "create temp file", Err: err}
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, &pkgerrs.ClientError{Operation: "write temp file", Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &pkgerrs.ClientError{Operation: "close temp file", Err: err}
	}
	return prober.Probe(ctx, f.Name())
}
