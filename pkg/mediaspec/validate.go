package mediaspec

import (
	"fmt"
	"strings"
)

// Finding is the outcome of a single failed check.
type Finding struct {
	Check    Check
	Severity Severity
	Message  string
}

// Result collects the findings of one validation pass. Validation is a pure
// function of its inputs: running it twice over the same media yields the
// same findings.
type Result struct {
	Findings []Finding
}

// OK reports whether the media passed every hard check. Warnings do not
// affect the outcome.
func (r Result) OK() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Failures returns the error-severity findings.
func (r Result) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warn-severity findings.
func (r Result) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarn {
			out = append(out, f)
		}
	}
	return out
}

// Summary joins the failure messages into one string for error reporting.
func (r Result) Summary() string {
	var msgs []string
	for _, f := range r.Failures() {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) add(check Check, sev Severity, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Check:    check,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (s VideoSpec) severity(check Check) Severity {
	if s.WarnOnly[check] {
		return SeverityWarn
	}
	return SeverityError
}

func typeAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, t := range allowed {
		if ext == t {
			return true
		}
	}
	return false
}

// ValidatePhoto checks a photo's detected type and byte size against a
// surface spec.
func ValidatePhoto(ext string, size int64, spec PhotoSpec) Result {
	var r Result
	if !typeAllowed(ext, spec.AllowedTypes) {
		r.add(CheckFileType, SeverityError,
			"photo type %q not allowed (supported: %s)", ext, strings.Join(spec.AllowedTypes, ", "))
	}
	if spec.MaxBytes > 0 && size > spec.MaxBytes {
		r.add(CheckFileSize, SeverityError,
			"photo is %d bytes, limit is %d", size, spec.MaxBytes)
	}
	return r
}

// ValidateVideo checks a video's detected type, byte size, and probed stream
// metadata against a surface spec. A nil probe skips the stream checks, which
// matches running without a configured Prober.
func ValidateVideo(ext string, size int64, probe *VideoProbe, spec VideoSpec) Result {
	var r Result
	if !typeAllowed(ext, spec.AllowedTypes) {
		r.add(CheckFileType, SeverityError,
			"video type %q not allowed (supported: %s)", ext, strings.Join(spec.AllowedTypes, ", "))
	}
	if spec.MaxBytes > 0 && size > spec.MaxBytes {
		r.add(CheckFileSize, SeverityError,
			"video is %d bytes, limit is %d", size, spec.MaxBytes)
	}
	if probe == nil {
		return r
	}

	if spec.MaxDurationSeconds > 0 && probe.Duration.Seconds() > float64(spec.MaxDurationSeconds) {
		r.add(CheckDuration, spec.severity(CheckDuration),
			"video is %.1fs long, limit is %ds", probe.Duration.Seconds(), spec.MaxDurationSeconds)
	}
	if spec.MinWidth > 0 && (probe.Width < spec.MinWidth || probe.Height < spec.MinHeight) {
		r.add(CheckResolution, spec.severity(CheckResolution),
			"resolution %dx%d is below the %dx%d minimum", probe.Width, probe.Height, spec.MinWidth, spec.MinHeight)
	}
	if spec.MaxWidth > 0 && (probe.Width > spec.MaxWidth || probe.Height > spec.MaxHeight) {
		r.add(CheckResolution, spec.severity(CheckResolution),
			"resolution %dx%d exceeds the %dx%d maximum", probe.Width, probe.Height, spec.MaxWidth, spec.MaxHeight)
	}
	if spec.MinFPS > 0 && (probe.FPS < spec.MinFPS || probe.FPS > spec.MaxFPS) {
		r.add(CheckFrameRate, spec.severity(CheckFrameRate),
			"frame rate %.2f outside the %.0f-%.0f range", probe.FPS, spec.MinFPS, spec.MaxFPS)
	}
	if spec.MaxAspectRatio > 0 && probe.Height > 0 {
		ratio := float64(probe.Width) / float64(probe.Height)
		if ratio > spec.MaxAspectRatio {
			r.add(CheckAspectRatio, spec.severity(CheckAspectRatio),
				"aspect ratio %.4f exceeds %.4f (9:16)", ratio, spec.MaxAspectRatio)
		}
	}
	if len(spec.VideoCodecs) > 0 && !typeAllowed(probe.VideoCodec, spec.VideoCodecs) {
		r.add(CheckVideoCodec, spec.severity(CheckVideoCodec),
			"video codec %q not supported (want one of %s)", probe.VideoCodec, strings.Join(spec.VideoCodecs, ", "))
	}
	if spec.AudioCodec != "" && probe.AudioCodec != "" && probe.AudioCodec != spec.AudioCodec {
		r.add(CheckAudioCodec, spec.severity(CheckAudioCodec),
			"audio codec %q not supported (want %s)", probe.AudioCodec, spec.AudioCodec)
	}
	if spec.MinAudioBitrate > 0 && probe.AudioBitrate > 0 && probe.AudioBitrate < spec.MinAudioBitrate {
		r.add(CheckAudioBitrate, spec.severity(CheckAudioBitrate),
			"audio bitrate %d below the %d minimum", probe.AudioBitrate, spec.MinAudioBitrate)
	}
	if spec.AudioChannels > 0 && probe.AudioChannels > 0 && probe.AudioChannels != spec.AudioChannels {
		r.add(CheckAudioChannels, spec.severity(CheckAudioChannels),
			"audio has %d channels, want %d", probe.AudioChannels, spec.AudioChannels)
	}
	if spec.AudioSampleRate > 0 && probe.AudioSampleRate > 0 && probe.AudioSampleRate != spec.AudioSampleRate {
		r.add(CheckSampleRate, spec.severity(CheckSampleRate),
			"audio sample rate %dHz, want %dHz", probe.AudioSampleRate, spec.AudioSampleRate)
	}
	if spec.PixelFormat != "" && probe.PixelFormat != "" && probe.PixelFormat != spec.PixelFormat {
		r.add(CheckPixelFormat, spec.severity(CheckPixelFormat),
			"pixel format %q, want %s", probe.PixelFormat, spec.PixelFormat)
	}
	if spec.RequireProgressive && probe.FieldOrder != "" && probe.FieldOrder != "progressive" {
		r.add(CheckScanType, spec.severity(CheckScanType),
			"scan type %q, want progressive", probe.FieldOrder)
	}
	if probe.AvgFrameRate != "" && probe.RealFrameRate != "" && probe.AvgFrameRate != probe.RealFrameRate {
		r.add(CheckFixedRate, spec.severity(CheckFixedRate),
			"variable frame rate (avg %s, real %s)", probe.AvgFrameRate, probe.RealFrameRate)
	}
	return r
}
