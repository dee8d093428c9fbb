// Package mediaspec holds the authoritative media constraint tables for each
// publishing surface and the pure validator that applies them.
//
// The Graph API documents (and enforces) slightly different limits per
// surface; the call sites of the upstream API disagree in places about
// units. Every limit here is centralized and carries its unit in the name:
// durations are seconds, sizes are bytes.
package mediaspec

import (
	"context"
	"time"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// AccountKind separates page surfaces from business-account surfaces, which
// carry different ceilings for the same target.
type AccountKind string

const (
	AccountPage     AccountKind = "page"
	AccountBusiness AccountKind = "business"
)

// Check identifies a single validation rule.
type Check string

const (
	CheckFileType      Check = "file-type"
	CheckFileSize      Check = "file-size"
	CheckDuration      Check = "duration"
	CheckResolution    Check = "resolution"
	CheckFrameRate     Check = "frame-rate"
	CheckAspectRatio   Check = "aspect-ratio"
	CheckVideoCodec    Check = "video-codec"
	CheckAudioCodec    Check = "audio-codec"
	CheckAudioBitrate  Check = "audio-bitrate"
	CheckAudioChannels Check = "audio-channels"
	CheckSampleRate    Check = "sample-rate"
	CheckPixelFormat   Check = "pixel-format"
	CheckScanType      Check = "scan-type"
	CheckFixedRate     Check = "fixed-frame-rate"
)

// Severity says whether a failed check aborts the publish or is only
// reported through the logger.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarn {
		return "warn"
	}
	return "error"
}

// VideoProbe is the stream metadata extracted from a video file. The
// validator is a pure function over this struct, so callers that cannot run
// ffprobe can construct it directly.
type VideoProbe struct {
	Width  int
	Height int
	// FPS is the average frame rate, already reduced from the probe's
	// fractional "num/den" representation.
	FPS float64
	// AvgFrameRate and RealFrameRate keep the raw fractions so the
	// fixed-frame-rate check can compare them.
	AvgFrameRate  string
	RealFrameRate string
	Duration      time.Duration
	SizeBytes     int64
	VideoCodec    string
	AudioCodec    string
	PixelFormat   string
	// FieldOrder is "progressive" for non-interlaced content.
	FieldOrder      string
	AudioChannels   int
	AudioSampleRate int
	AudioBitrate    int
}

// Prober extracts a VideoProbe from a local file.
type Prober interface {
	Probe(ctx context.Context, path string) (*VideoProbe, error)
}

// PhotoSpec is the constraint table for a photo surface.
type PhotoSpec struct {
	AllowedTypes []string
	MaxBytes     int64
}

// VideoSpec is the constraint table for a video surface. Zero values disable
// the corresponding check. Checks listed in WarnOnly produce warnings
// instead of hard failures.
type VideoSpec struct {
	AllowedTypes []string
	MaxBytes     int64
	// MaxDurationSeconds is always seconds (60 for stories and reels, 900
	// for business feed video, 14400 for page video).
	MaxDurationSeconds int
	MinWidth           int
	MinHeight          int
	MaxWidth           int
	MaxHeight          int
	MinFPS             float64
	MaxFPS             float64
	// MaxAspectRatio is width/height; 0.5625 (9:16) for vertical surfaces.
	MaxAspectRatio     float64
	VideoCodecs        []string
	AudioCodec         string
	AudioSampleRate    int
	AudioChannels      int
	MinAudioBitrate    int
	PixelFormat        string
	RequireProgressive bool

	WarnOnly map[Check]bool
}

const (
	mb = 1 << 20
	gb = 1 << 30
)

var (
	photoTypes = []string{"jpeg", "jpg", "png", "gif", "bmp", "tiff", "webp"}
	videoTypes = []string{"mp4", "avi", "flv", "mkv", "mov", "mpeg", "wmv"}

	businessCodecs = []string{"h264", "hevc"}
	pageCodecs     = []string{"h264", "hevc", "vp9", "av1"}
)

// advisoryChecks is the set of checks the business surfaces report as
// warnings rather than rejections.
var advisoryChecks = map[Check]bool{
	CheckPixelFormat:   true,
	CheckFixedRate:     true,
	CheckScanType:      true,
	CheckAspectRatio:   true,
	CheckAudioBitrate:  true,
	CheckAudioChannels: true,
	CheckSampleRate:    true,
}

// PhotoSpecFor returns the photo constraint table for an account kind. Page
// photos cap at 4MB, business-account photos at 8MB; the type allow-list is
// shared.
func PhotoSpecFor(account AccountKind, _ types.PublishTarget) PhotoSpec {
	max := int64(4 * mb)
	if account == AccountBusiness {
		max = 8 * mb
	}
	return PhotoSpec{AllowedTypes: photoTypes, MaxBytes: max}
}

// VideoSpecFor returns the video constraint table for an account kind and
// target surface.
func VideoSpecFor(account AccountKind, target types.PublishTarget) VideoSpec {
	if account == AccountBusiness {
		spec := VideoSpec{
			AllowedTypes:       videoTypes,
			MaxBytes:           1 * gb,
			MaxDurationSeconds: 900,
			MinFPS:             23,
			MaxFPS:             60,
			MaxAspectRatio:     0.5625,
			VideoCodecs:        businessCodecs,
			AudioCodec:         "aac",
			AudioSampleRate:    48000,
			AudioChannels:      2,
			MinAudioBitrate:    128000,
			PixelFormat:        "yuv420p",
			RequireProgressive: true,
			WarnOnly:           advisoryChecks,
		}
		if target == types.TargetStory {
			spec.MaxDurationSeconds = 60
		}
		return spec
	}

	// Page surfaces enforce the vertical-format checks strictly.
	spec := VideoSpec{
		AllowedTypes:       videoTypes,
		MaxBytes:           10 * gb,
		MinFPS:             24,
		MaxFPS:             60,
		VideoCodecs:        pageCodecs,
		AudioCodec:         "aac",
		AudioSampleRate:    48000,
		AudioChannels:      2,
		MinAudioBitrate:    128000,
		PixelFormat:        "yuv420p",
		RequireProgressive: true,
	}
	switch target {
	case types.TargetStory, types.TargetReel:
		spec.MaxDurationSeconds = 60
		spec.MinWidth = 540
		spec.MinHeight = 960
		spec.MaxAspectRatio = 0.5625
	default:
		spec.MaxDurationSeconds = 14400
		spec.MaxWidth = 1920
		spec.MaxHeight = 1080
		spec.WarnOnly = map[Check]bool{CheckResolution: true}
	}
	return spec
}
