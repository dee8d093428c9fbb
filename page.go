package gmaw

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/metapub/go-meta-api-wrapper/internal"
	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/mediaspec"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// PageService publishes to a Facebook page. Page photos skip the container
// pipeline entirely; page videos, stories, and reels use the dedicated video
// host and two-phase upload sessions.
type PageService struct {
	client *Client
}

const (
	// MinScheduleLead and MaxScheduleAhead bound scheduled publish times:
	// more than 10 minutes out, less than 6 months.
	MinScheduleLead  = 10 * time.Minute
	MaxScheduleAhead = 6 * 30 * 24 * time.Hour
)

// validateSchedule enforces the platform's scheduling window before any
// network call.
func validateSchedule(s types.Schedule) error {
	if s.Now {
		return nil
	}
	if s.At.IsZero() {
		return &pkgerrs.ValidationError{Field: "At", Message: "a publish time is required when not publishing now"}
	}
	lead := time.Until(s.At)
	if lead < MinScheduleLead {
		return &pkgerrs.ValidationError{
			Field:   "At",
			Message: fmt.Sprintf("scheduled time must be more than %s from now", MinScheduleLead),
		}
	}
	if lead > MaxScheduleAhead {
		return &pkgerrs.ValidationError{
			Field:   "At",
			Message: "scheduled time must be less than 6 months from now",
		}
	}
	return nil
}

func applySchedule(params url.Values, s types.Schedule) {
	if s.Now {
		params.Set("published", "true")
		return
	}
	params.Set("published", "false")
	params.Set("scheduled_publish_time", strconv.FormatInt(s.At.Unix(), 10))
}

type idResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (r idResponse) best() string {
	if r.PostID != "" {
		return r.PostID
	}
	return r.ID
}

// CreatePost publishes a page post: text-only, one or more photos, or a
// single video. It returns the post id.
func (s *PageService) CreatePost(ctx context.Context, req *types.PagePostRequest) (string, error) {
	pageID, err := s.client.requirePage()
	if err != nil {
		return "", err
	}
	if req == nil || (req.Message == "" && len(req.Photos) == 0 && req.Video == nil) {
		return "", &pkgerrs.ValidationError{Message: "a post needs a message, photos, or a video"}
	}
	if len(req.Photos) > 0 && req.Video != nil {
		return "", &pkgerrs.ValidationError{Message: "photos and a video cannot be mixed in one post"}
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return "", err
	}

	if req.Video != nil {
		return s.publishVideo(ctx, pageID, req)
	}
	if len(req.Photos) > 0 {
		return s.publishPhotos(ctx, pageID, req)
	}

	params := url.Values{"message": {req.Message}}
	applySchedule(params, req.Schedule)
	var resp idResponse
	if err := s.client.graph.PostForm(ctx, pageID+"/feed", params, &resp); err != nil {
		return "", err
	}
	return resp.best(), nil
}

// publishPhotos uploads every photo unpublished, then attaches them to one
// feed post.
func (s *PageService) publishPhotos(ctx context.Context, pageID string, req *types.PagePostRequest) (string, error) {
	ids := make([]string, 0, len(req.Photos))
	for _, ref := range req.Photos {
		id, err := s.uploadPhoto(ctx, pageID, ref, false)
		if err != nil {
			return "", err
		}
		ids = append(ids, id)
	}

	params := url.Values{}
	if req.Message != "" {
		params.Set("message", req.Message)
	}
	for i, id := range ids {
		params.Set(fmt.Sprintf("attached_media[%d]", i), fmt.Sprintf(`{"media_fbid":"%s"}`, id))
	}
	applySchedule(params, req.Schedule)

	var resp idResponse
	if err := s.client.graph.PostForm(ctx, pageID+"/feed", params, &resp); err != nil {
		return "", err
	}
	return resp.best(), nil
}

// uploadPhoto stores a photo on the page, optionally published on its own.
// Unpublished uploads are the building blocks of multi-photo posts and photo
// stories.
func (s *PageService) uploadPhoto(ctx context.Context, pageID string, ref types.MediaReference, published bool) (string, error) {
	payload, err := s.client.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := s.checkMedia(ctx, types.MediaItem{Kind: types.MediaPhoto, Ref: ref}, payload, types.TargetFeed); err != nil {
		return "", err
	}

	var resp idResponse
	switch ref.Source {
	case types.MediaSourceURL:
		params := url.Values{
			"url":       {ref.Value},
			"published": {strconv.FormatBool(published)},
		}
		err = s.client.graph.PostForm(ctx, pageID+"/photos", params, &resp)
	default:
		fields := map[string]string{"published": strconv.FormatBool(published)}
		err = s.client.graph.PostMultipart(ctx, pageID+"/photos", fields, "source", "photo."+payload.Ext, payload.Bytes, &resp)
	}
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// publishVideo sends a single video through the dedicated video host.
func (s *PageService) publishVideo(ctx context.Context, pageID string, req *types.PagePostRequest) (string, error) {
	ref := *req.Video
	payload, err := s.client.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := s.checkMedia(ctx, types.MediaItem{Kind: types.MediaVideo, Ref: ref}, payload, types.TargetFeed); err != nil {
		return "", err
	}

	var resp idResponse
	switch ref.Source {
	case types.MediaSourceURL:
		params := url.Values{"file_url": {ref.Value}}
		if req.Message != "" {
			params.Set("description", req.Message)
		}
		applySchedule(params, req.Schedule)
		err = s.client.graph.PostForm(ctx, pageID+"/videos", params, &resp)
	default:
		fields := map[string]string{}
		if req.Message != "" {
			fields["description"] = req.Message
		}
		if !req.Schedule.Now {
			fields["published"] = "false"
			fields["scheduled_publish_time"] = strconv.FormatInt(req.Schedule.At.Unix(), 10)
		}
		err = s.client.graph.PostMultipartVideo(ctx, pageID+"/videos", fields, "source", "video."+payload.Ext, payload.Bytes, &resp)
	}
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

type uploadSession struct {
	VideoID   string `json:"video_id"`
	UploadURL string `json:"upload_url"`
}

type finishResponse struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id"`
}

// CreateStory publishes an ephemeral page story from a photo or a video.
// Photo stories reuse an unpublished photo upload; video stories go through
// a two-phase upload session.
func (s *PageService) CreateStory(ctx context.Context, req *types.PageStoryRequest) (string, error) {
	pageID, err := s.client.requirePage()
	if err != nil {
		return "", err
	}
	if req == nil || req.Media.Value == "" {
		return "", &pkgerrs.ValidationError{Field: "Media", Message: "a media reference is required"}
	}

	if req.Kind == types.MediaPhoto {
		photoID, err := s.uploadPhoto(ctx, pageID, req.Media, false)
		if err != nil {
			return "", err
		}
		params := url.Values{"photo_id": {photoID}}
		var resp finishResponse
		if err := s.client.graph.PostForm(ctx, pageID+"/photo_stories", params, &resp); err != nil {
			return "", err
		}
		return resp.PostID, nil
	}

	return s.twoPhaseVideo(ctx, pageID, "video_stories", req.Media, types.TargetStory, nil)
}

// CreateReel publishes a page reel and returns both the post and video ids.
func (s *PageService) CreateReel(ctx context.Context, req *types.ReelRequest) (*types.ReelResult, error) {
	pageID, err := s.client.requirePage()
	if err != nil {
		return nil, err
	}
	if req == nil || req.Media.Value == "" {
		return nil, &pkgerrs.ValidationError{Field: "Media", Message: "a media reference is required"}
	}

	finish := url.Values{"video_state": {"PUBLISHED"}}
	if req.Title != "" {
		finish.Set("title", req.Title)
	}
	if req.Description != "" {
		finish.Set("description", req.Description)
	}

	result := &types.ReelResult{}
	postID, err := s.twoPhaseVideoSession(ctx, pageID, "video_reels", req.Media, types.TargetReel, finish, &result.VideoID)
	if err != nil {
		return nil, err
	}
	result.PostID = postID

	if req.Thumbnail != nil {
		if err := s.SetReelThumbnail(ctx, result.VideoID, *req.Thumbnail); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SetReelThumbnail replaces the thumbnail of a published reel's video.
func (s *PageService) SetReelThumbnail(ctx context.Context, videoID string, ref types.MediaReference) error {
	payload, err := s.client.fetcher.Fetch(ctx, ref)
	if err != nil {
		return err
	}
	var resp struct {
		Success bool `json:"success"`
	}
	fields := map[string]string{"is_preferred": "true"}
	return s.client.graph.PostMultipart(ctx, videoID+"/thumbnails", fields, "source", "thumb."+payload.Ext, payload.Bytes, &resp)
}

func (s *PageService) twoPhaseVideo(ctx context.Context, pageID, surface string, ref types.MediaReference, target types.PublishTarget, finish url.Values) (string, error) {
	var videoID string
	return s.twoPhaseVideoSession(ctx, pageID, surface, ref, target, finish, &videoID)
}

// twoPhaseVideoSession runs the start/transfer/finish flow shared by video
// stories and reels. The video id of the session is written to videoID.
func (s *PageService) twoPhaseVideoSession(ctx context.Context, pageID, surface string, ref types.MediaReference, target types.PublishTarget, finish url.Values, videoID *string) (string, error) {
	payload, err := s.client.fetcher.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if err := s.checkMedia(ctx, types.MediaItem{Kind: types.MediaVideo, Ref: ref}, payload, target); err != nil {
		return "", err
	}

	var session uploadSession
	start := url.Values{"upload_phase": {"start"}}
	if err := s.client.graph.PostForm(ctx, pageID+"/"+surface, start, &session); err != nil {
		return "", err
	}
	if session.VideoID == "" || session.UploadURL == "" {
		return "", &pkgerrs.UploadError{Message: "upload session response missing video_id or upload_url"}
	}
	*videoID = session.VideoID

	headers := map[string]string{}
	var transferErr error
	if ref.Source == types.MediaSourceURL {
		headers["file_url"] = ref.Value
		transferErr = s.client.graph.Transfer(ctx, session.UploadURL, headers, nil, 0, nil)
	} else {
		headers["offset"] = "0"
		headers["file_size"] = strconv.Itoa(len(payload.Bytes))
		transferErr = s.client.graph.Transfer(ctx, session.UploadURL, headers, bytes.NewReader(payload.Bytes), int64(len(payload.Bytes)), nil)
	}
	if transferErr != nil {
		return "", &pkgerrs.UploadError{Message: "video byte transfer failed", Err: transferErr}
	}

	params := url.Values{
		"upload_phase": {"finish"},
		"video_id":     {session.VideoID},
	}
	for k, vals := range finish {
		params[k] = vals
	}
	var resp finishResponse
	if err := s.client.graph.PostForm(ctx, pageID+"/"+surface, params, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &pkgerrs.PublishError{Reason: pkgerrs.ReasonContainerFailed, Message: surface + " finish phase reported failure"}
	}
	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return session.VideoID, nil
}

// checkMedia validates page media against the target surface, logging
// advisory findings and failing on hard ones.
func (s *PageService) checkMedia(ctx context.Context, item types.MediaItem, payload *internal.Payload, target types.PublishTarget) error {
	var result mediaspec.Result
	switch item.Kind {
	case types.MediaPhoto:
		result = mediaspec.ValidatePhoto(payload.Ext, payload.Size(), mediaspec.PhotoSpecFor(mediaspec.AccountPage, target))
	case types.MediaVideo:
		spec := mediaspec.VideoSpecFor(mediaspec.AccountPage, target)
		var probe *mediaspec.VideoProbe
		if s.client.config.Prober != nil {
			var err error
			probe, err = internal.ProbeBytes(ctx, s.client.config.Prober, payload.Bytes, payload.Ext)
			if err != nil {
				return err
			}
		}
		result = mediaspec.ValidateVideo(payload.Ext, payload.Size(), probe, spec)
	}

	for _, finding := range result.Warnings() {
		s.client.logger.WarnContext(ctx, "media validation warning",
			"media", item.Ref.Value, "check", string(finding.Check), "detail", finding.Message)
	}
	if !result.OK() {
		first := result.Failures()[0]
		reason := pkgerrs.ReasonSpecViolation
		switch first.Check {
		case mediaspec.CheckFileType:
			reason = pkgerrs.ReasonDisallowedType
		case mediaspec.CheckFileSize:
			reason = pkgerrs.ReasonOversized
		}
		return &pkgerrs.MediaError{Reason: reason, Message: result.Summary()}
	}
	return nil
}

// UpdatePost edits the message of a published post.
func (s *PageService) UpdatePost(ctx context.Context, postID, message string) (bool, error) {
	params := url.Values{"message": {message}}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := s.client.graph.PostForm(ctx, postID, params, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// DeletePost removes a post from the page.
func (s *PageService) DeletePost(ctx context.Context, postID string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := s.client.graph.Delete(ctx, postID, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// GetPosts returns one page of the page's feed. The after cursor comes from
// a previous page's paging block; pass "" for the first page.
func (s *PageService) GetPosts(ctx context.Context, after string) (*types.PostsPage, error) {
	pageID, err := s.client.requirePage()
	if err != nil {
		return nil, err
	}
	params := url.Values{"fields": {"id,message,story,created_time"}}
	if after != "" {
		params.Set("after", after)
	}
	var page types.PostsPage
	if err := s.client.graph.Get(ctx, pageID+"/posts", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAllPosts walks the feed's cursors and returns every post.
func (s *PageService) GetAllPosts(ctx context.Context) ([]types.PagePost, error) {
	return s.Posts(ctx).Collect(0)
}

// PostURL returns the public URL of a post. Purely string work, no API call.
func (s *PageService) PostURL(postID string) string {
	return "https://www.facebook.com/" + postID
}
