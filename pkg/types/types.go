// Package types defines the request and response shapes shared by the Meta
// Graph API wrapper. The wire-level structs mirror the JSON the Graph API
// emits; the request structs are what callers hand to the publishing,
// comments, and insights clients.
package types

import (
	"time"
)

// MediaSource tells the pipeline how to resolve a media reference.
type MediaSource string

const (
	// MediaSourceURL references media by a public URL. The platform (or the
	// fetcher, depending on the upload strategy) downloads it.
	MediaSourceURL MediaSource = "url"
	// MediaSourcePath references media by a local filesystem path.
	MediaSourcePath MediaSource = "path"
)

// MediaReference points at a single piece of media to publish. It is a tagged
// union: Source selects how Value is interpreted. References are immutable
// and consumed once per publish attempt.
type MediaReference struct {
	Source MediaSource
	Value  string
}

// MediaURL builds a by-URL media reference.
func MediaURL(url string) MediaReference {
	return MediaReference{Source: MediaSourceURL, Value: url}
}

// MediaPath builds a local-file media reference.
func MediaPath(path string) MediaReference {
	return MediaReference{Source: MediaSourcePath, Value: path}
}

// MediaKind distinguishes photos from videos. It determines which validation
// rules and which Graph parameter names (image_url vs video_url) apply.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// PublishTarget is the destination surface for published content.
type PublishTarget string

const (
	TargetFeed     PublishTarget = "feed"
	TargetStory    PublishTarget = "story"
	TargetReel     PublishTarget = "reel"
	TargetCarousel PublishTarget = "carousel"
)

// ContainerStatus is the server-side state of a media container.
//
// A container starts in IN_PROGRESS immediately after creation and moves to
// exactly one terminal state:
//
//	IN_PROGRESS -> FINISHED   (ready to publish)
//	IN_PROGRESS -> ERROR      (platform rejected the media)
//	IN_PROGRESS -> EXPIRED    (server-side timeout)
//
// PUBLISHED is reported for containers that have already been committed.
type ContainerStatus string

const (
	ContainerInProgress ContainerStatus = "IN_PROGRESS"
	ContainerFinished   ContainerStatus = "FINISHED"
	ContainerError      ContainerStatus = "ERROR"
	ContainerExpired    ContainerStatus = "EXPIRED"
	ContainerPublished  ContainerStatus = "PUBLISHED"
)

// Terminal reports whether the status ends the polling loop.
func (s ContainerStatus) Terminal() bool {
	switch s {
	case ContainerFinished, ContainerError, ContainerExpired, ContainerPublished:
		return true
	}
	return false
}

// MediaItem pairs a reference with its kind. Kind cannot be derived from the
// reference alone (a URL's extension is never trusted), so the caller states
// it up front and the fetcher verifies it against the sniffed content.
type MediaItem struct {
	Kind MediaKind
	Ref  MediaReference
}

// UserTag marks a user on a business-account photo. X and Y are normalized
// coordinates in [0, 1].
type UserTag struct {
	Username string  `json:"username"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
}

// Schedule captures the publish-now-or-later choice shared by page post
// requests. When Now is false, At must fall more than 10 minutes and less
// than 6 months from the time of the call.
type Schedule struct {
	Now bool
	At  time.Time
}

// PagePostRequest describes a post on a page feed: text-only, one or more
// photos, or a single video.
type PagePostRequest struct {
	Message string
	// Photos attach via the page photo storage (no container pipeline).
	Photos []MediaReference
	// Video posts go through the dedicated video host.
	Video *MediaReference
	Schedule
}

// PageStoryRequest describes an ephemeral page story backed by a single
// photo or video.
type PageStoryRequest struct {
	Kind  MediaKind
	Media MediaReference
}

// ReelRequest describes a page reel. Thumbnail, when set, is applied after
// the reel is published.
type ReelRequest struct {
	Media       MediaReference
	Title       string
	Description string
	Thumbnail   *MediaReference
}

// ReelResult carries both identifiers the reel flow produces: the feed post
// and the underlying video (needed for thumbnail updates).
type ReelResult struct {
	PostID  string
	VideoID string
}

// PostRequest describes a business-account (Instagram) post. One media item
// publishes as a single post; 2-10 items publish as a carousel.
type PostRequest struct {
	Medias  []MediaItem
	Caption string

	// Optional per-post metadata, forwarded to the container creation call.
	CoverURL      string
	ThumbOffset   int
	UserTags      []UserTag
	Collaborators []string
}

// StoryRequest describes a business-account story.
type StoryRequest struct {
	Kind     MediaKind
	Ref      MediaReference
	UserTags []UserTag
}

// Account is a page or business account the authorized user manages.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token,omitempty"`
	Category    string `json:"category,omitempty"`
}

// PagePost is one entry of a page feed listing.
type PagePost struct {
	ID          string `json:"id"`
	Message     string `json:"message,omitempty"`
	Story       string `json:"story,omitempty"`
	CreatedTime string `json:"created_time,omitempty"`
}

// Paging is the Graph API cursor block attached to listing responses.
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// PostsPage is one page of a feed listing.
type PostsPage struct {
	Data   []PagePost `json:"data"`
	Paging *Paging    `json:"paging,omitempty"`
}

// Comment is a comment on a published post.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Username  string `json:"username,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	LikeCount int    `json:"like_count,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
}

// CommentsPage is one page of a comment listing.
type CommentsPage struct {
	Data   []Comment `json:"data"`
	Paging *Paging   `json:"paging,omitempty"`
}

// InsightValue is a single datapoint of a metric time series.
type InsightValue struct {
	Value   int64  `json:"value"`
	EndTime string `json:"end_time,omitempty"`
}

// Insight is one metric returned by an /insights query.
type Insight struct {
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Values []InsightValue `json:"values"`
}

// InsightsResponse is the envelope of an /insights query.
type InsightsResponse struct {
	Data   []Insight `json:"data"`
	Paging *Paging   `json:"paging,omitempty"`
}

// TokenInfo is the debug_token introspection payload.
type TokenInfo struct {
	AppID     string `json:"app_id"`
	Type      string `json:"type"`
	ExpiresAt int64  `json:"expires_at"`
	IsValid   bool   `json:"is_valid"`
	UserID    string `json:"user_id,omitempty"`
}

// BusinessProfile is the business-discovery projection of a public profile.
type BusinessProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username,omitempty"`
	FollowersCount int64  `json:"followers_count"`
	MediaCount     int64  `json:"media_count"`
	PictureURL     string `json:"picture,omitempty"`
}
