package gmaw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/metapub/go-meta-api-wrapper/internal"
	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/mediaspec"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
	"github.com/metapub/go-meta-api-wrapper/pkg/validation"
)

// BusinessService publishes to an Instagram business account through the
// container pipeline: every media becomes a server-side container that is
// polled until processed and then committed.
type BusinessService struct {
	client *Client
}

const (
	// MinCarouselItems and MaxCarouselItems bound the media list of a post.
	// A single item publishes as a plain post, 2 to 10 as a carousel.
	MinCarouselItems = 2
	MaxCarouselItems = 10
)

// CreatePost publishes one or more medias to the business account's feed and
// returns the published media id. A single media goes through the plain
// container path; 2 to 10 medias publish as a carousel with photos uploaded
// before videos. Requests with no media or more than 10 are rejected before
// any network call.
func (s *BusinessService) CreatePost(ctx context.Context, req *types.PostRequest) (string, error) {
	accountID, err := s.client.requireBusiness()
	if err != nil {
		return "", err
	}
	if req == nil || len(req.Medias) == 0 {
		return "", &pkgerrs.ValidationError{Field: "Medias", Message: "at least one media is required"}
	}
	if len(req.Medias) > MaxCarouselItems {
		return "", &pkgerrs.ValidationError{
			Field:   "Medias",
			Message: fmt.Sprintf("a post holds at most %d medias, got %d", MaxCarouselItems, len(req.Medias)),
		}
	}
	if err := validation.ValidateUserTags(req.UserTags); err != nil {
		return "", &pkgerrs.ValidationError{Field: "UserTags", Message: err.Error()}
	}

	if len(req.Medias) == 1 {
		return s.publishSingle(ctx, accountID, req)
	}
	return s.publishCarousel(ctx, accountID, req)
}

func (s *BusinessService) publishSingle(ctx context.Context, accountID string, req *types.PostRequest) (string, error) {
	item := req.Medias[0]
	target := types.TargetFeed

	payload, err := s.prepare(ctx, item, target)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	if req.Caption != "" {
		params.Set("caption", req.Caption)
	}
	// Feed videos publish through the reels surface; plain VIDEO containers
	// are no longer accepted there.
	if item.Kind == types.MediaVideo {
		params.Set("media_type", "REELS")
	}
	s.applyMetadata(params, item.Kind, req)

	containerID, err := s.createContainer(ctx, accountID, item, payload, params)
	if err != nil {
		return "", err
	}
	if err := s.client.containers.AwaitReady(ctx, containerID); err != nil {
		return "", err
	}
	return s.client.containers.Publish(ctx, accountID, containerID)
}

// publishCarousel uploads every item as a carousel child, photos first and
// videos after, then builds the aggregate container over the children.
func (s *BusinessService) publishCarousel(ctx context.Context, accountID string, req *types.PostRequest) (string, error) {
	var ordered []types.MediaItem
	for _, item := range req.Medias {
		if item.Kind == types.MediaPhoto {
			ordered = append(ordered, item)
		}
	}
	for _, item := range req.Medias {
		if item.Kind == types.MediaVideo {
			ordered = append(ordered, item)
		}
	}

	children := make([]string, 0, len(ordered))
	for _, item := range ordered {
		payload, err := s.prepare(ctx, item, types.TargetCarousel)
		if err != nil {
			return "", err
		}

		params := url.Values{"is_carousel_item": {"true"}}
		childID, err := s.createContainer(ctx, accountID, item, payload, params)
		if err != nil {
			return "", err
		}
		if err := s.client.containers.AwaitReady(ctx, childID); err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	params := url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
	}
	if req.Caption != "" {
		params.Set("caption", req.Caption)
	}
	if len(req.Collaborators) > 0 {
		params.Set("collaborators", joinJSON(req.Collaborators))
	}

	carouselID, err := s.client.containers.Create(ctx, accountID, params)
	if err != nil {
		return "", err
	}
	if err := s.client.containers.AwaitReady(ctx, carouselID); err != nil {
		return "", err
	}
	return s.client.containers.Publish(ctx, accountID, carouselID)
}

// CreateStory publishes an ephemeral story backed by a single photo or video.
func (s *BusinessService) CreateStory(ctx context.Context, req *types.StoryRequest) (string, error) {
	accountID, err := s.client.requireBusiness()
	if err != nil {
		return "", err
	}
	if req == nil || req.Ref.Value == "" {
		return "", &pkgerrs.ValidationError{Field: "Ref", Message: "a media reference is required"}
	}
	if err := validation.ValidateUserTags(req.UserTags); err != nil {
		return "", &pkgerrs.ValidationError{Field: "UserTags", Message: err.Error()}
	}

	item := types.MediaItem{Kind: req.Kind, Ref: req.Ref}
	payload, err := s.prepare(ctx, item, types.TargetStory)
	if err != nil {
		return "", err
	}

	params := url.Values{"media_type": {"STORIES"}}
	if len(req.UserTags) > 0 && req.Kind == types.MediaPhoto {
		params.Set("user_tags", tagsJSON(req.UserTags))
	}

	containerID, err := s.createContainer(ctx, accountID, item, payload, params)
	if err != nil {
		return "", err
	}
	if err := s.client.containers.AwaitReady(ctx, containerID); err != nil {
		return "", err
	}
	return s.client.containers.Publish(ctx, accountID, containerID)
}

// GetPostLink returns the permalink of a published media.
func (s *BusinessService) GetPostLink(ctx context.Context, mediaID string) (string, error) {
	var resp struct {
		Permalink string `json:"permalink"`
	}
	params := url.Values{"fields": {"permalink"}}
	if err := s.client.graph.Get(ctx, mediaID, params, &resp); err != nil {
		return "", err
	}
	return resp.Permalink, nil
}

// GetProfile looks up a public business profile through business discovery.
func (s *BusinessService) GetProfile(ctx context.Context, username string) (*types.BusinessProfile, error) {
	accountID, err := s.client.requireBusiness()
	if err != nil {
		return nil, err
	}
	if !validation.IsValidUsername(username) {
		return nil, &pkgerrs.ValidationError{Field: "username", Message: fmt.Sprintf("invalid username %q", username)}
	}
	var resp struct {
		BusinessDiscovery types.BusinessProfile `json:"business_discovery"`
	}
	field := fmt.Sprintf("business_discovery.username(%s){id,username,followers_count,media_count}", username)
	params := url.Values{"fields": {field}}
	if err := s.client.graph.Get(ctx, accountID, params, &resp); err != nil {
		return nil, err
	}
	return &resp.BusinessDiscovery, nil
}

// VerifyMedia runs the fetch and validation stages without publishing
// anything, returning every finding. Useful for checking media ahead of a
// scheduled publish.
func (s *BusinessService) VerifyMedia(ctx context.Context, item types.MediaItem, target types.PublishTarget) (mediaspec.Result, error) {
	payload, err := s.client.fetcher.Fetch(ctx, item.Ref)
	if err != nil {
		return mediaspec.Result{}, err
	}
	return s.validate(ctx, item, payload, target)
}

// prepare fetches the media, validates it against the target surface, and
// fails the publish on any hard finding.
func (s *BusinessService) prepare(ctx context.Context, item types.MediaItem, target types.PublishTarget) (*internal.Payload, error) {
	payload, err := s.client.fetcher.Fetch(ctx, item.Ref)
	if err != nil {
		return nil, err
	}
	result, err := s.validate(ctx, item, payload, target)
	if err != nil {
		return nil, err
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
		return nil, &pkgerrs.MediaError{Reason: reason, Message: result.Summary()}
	}
	return payload, nil
}

func (s *BusinessService) validate(ctx context.Context, item types.MediaItem, payload *internal.Payload, target types.PublishTarget) (mediaspec.Result, error) {
	switch item.Kind {
	case types.MediaPhoto:
		spec := mediaspec.PhotoSpecFor(mediaspec.AccountBusiness, target)
		return mediaspec.ValidatePhoto(payload.Ext, payload.Size(), spec), nil
	case types.MediaVideo:
		spec := mediaspec.VideoSpecFor(mediaspec.AccountBusiness, target)
		var probe *mediaspec.VideoProbe
		if s.client.config.Prober != nil {
			var err error
			probe, err = internal.ProbeBytes(ctx, s.client.config.Prober, payload.Bytes, payload.Ext)
			if err != nil {
				return mediaspec.Result{}, err
			}
		}
		return mediaspec.ValidateVideo(payload.Ext, payload.Size(), probe, spec), nil
	}
	return mediaspec.Result{}, &pkgerrs.ValidationError{Field: "Kind", Message: fmt.Sprintf("unknown media kind %q", item.Kind)}
}

// createContainer opens the container for one media. URL references publish
// by reference (the platform downloads them); local files go through a
// resumable upload session.
func (s *BusinessService) createContainer(ctx context.Context, accountID string, item types.MediaItem, payload *internal.Payload, params url.Values) (string, error) {
	switch item.Ref.Source {
	case types.MediaSourceURL:
		key := "image_url"
		if item.Kind == types.MediaVideo {
			key = "video_url"
		}
		params.Set(key, item.Ref.Value)
		return s.client.containers.Create(ctx, accountID, params)

	case types.MediaSourcePath:
		id, uploadURI, err := s.client.containers.CreateResumable(ctx, accountID, params)
		if err != nil {
			return "", err
		}
		if err := s.client.containers.Upload(ctx, uploadURI, payload.Bytes); err != nil {
			return "", err
		}
		return id, nil
	}
	return "", &pkgerrs.ValidationError{Field: "Source", Message: fmt.Sprintf("unknown media source %q", item.Ref.Source)}
}

// applyMetadata forwards the optional per-post fields to the container call.
func (s *BusinessService) applyMetadata(params url.Values, kind types.MediaKind, req *types.PostRequest) {
	if kind == types.MediaVideo {
		if req.CoverURL != "" {
			params.Set("cover_url", req.CoverURL)
		}
		if req.ThumbOffset > 0 {
			params.Set("thumb_offset", strconv.Itoa(req.ThumbOffset))
		}
	}
	if kind == types.MediaPhoto && len(req.UserTags) > 0 {
		params.Set("user_tags", tagsJSON(req.UserTags))
	}
	if len(req.Collaborators) > 0 {
		params.Set("collaborators", joinJSON(req.Collaborators))
	}
}

func tagsJSON(tags []types.UserTag) string {
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func joinJSON(values []string) string {
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}
