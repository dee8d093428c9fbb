// Package gmaw provides a Go wrapper for the Meta Graph API.
//
// # Overview
//
// This package enables Go applications to publish to Facebook pages and
// Instagram business accounts through a clean, type-safe interface. It
// implements the full media publication pipeline: media is fetched and
// validated locally, uploaded by reference or through a resumable session,
// tracked through the platform's container states, and committed once
// processing finishes.
//
// # Features
//
//   - Page posts (text, multi-photo, video), stories, and reels
//   - Business-account posts, carousels, and stories via media containers
//   - Local media validation against per-surface constraint tables
//   - Optional ffprobe-backed deep video checks
//   - OAuth helpers: code exchange, token extension, token introspection
//   - Comment moderation and insights queries
//   - Built-in rate limiting and Retry-After handling
//   - Structured logging support via Go's slog package
//
// # Quick Start
//
//	client, err := gmaw.NewClient(&gmaw.Config{
//		AccessToken: "your-access-token",
//		PageID:      "your-page-id",
//		BusinessID:  "your-ig-business-id",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	id, err := client.Pages().CreatePost(ctx, &types.PagePostRequest{
//		Message:  "hello world",
//		Schedule: types.Schedule{Now: true},
//	})
//
// # Error Handling
//
// Failures are typed: configuration and request problems surface as
// *errors.ConfigError and *errors.ValidationError before any network call,
// media problems as *errors.MediaError with a stable reason code, upload
// failures as *errors.UploadError, pipeline failures as *errors.PublishError,
// and platform rejections as *errors.APIError carrying the Graph error code,
// subcode, and fbtrace id. Match them with errors.As.
//
// # Rate Limiting
//
// Requests pass through a token-bucket limiter before reaching the platform,
// and a Retry-After header on any response defers subsequent requests.
// Tune the limiter with Config.RequestsPerMinute and Config.Burst.
package gmaw
