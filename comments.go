package gmaw

import (
	"context"
	"net/url"
	"strconv"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// CommentService moderates comments on published media. All methods are thin
// calls over the shared Graph transport.
type CommentService struct {
	client *Client
}

// Get returns one page of the comments on a media. Pass "" as after for the
// first page.
func (s *CommentService) Get(ctx context.Context, mediaID, after string) (*types.CommentsPage, error) {
	params := url.Values{"fields": {"id,text,message,username,timestamp,like_count,hidden"}}
	if after != "" {
		params.Set("after", after)
	}
	var page types.CommentsPage
	if err := s.client.graph.Get(ctx, mediaID+"/comments", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetReplies returns the replies to a comment.
func (s *CommentService) GetReplies(ctx context.Context, commentID string) (*types.CommentsPage, error) {
	params := url.Values{"fields": {"id,text,message,username,timestamp"}}
	var page types.CommentsPage
	if err := s.client.graph.Get(ctx, commentID+"/replies", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create posts a comment on a media and returns the comment id.
func (s *CommentService) Create(ctx context.Context, mediaID, message string) (string, error) {
	params := url.Values{"message": {message}}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.client.graph.PostForm(ctx, mediaID+"/comments", params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Reply answers an existing comment and returns the reply's id.
func (s *CommentService) Reply(ctx context.Context, commentID, message string) (string, error) {
	params := url.Values{"message": {message}}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.client.graph.PostForm(ctx, commentID+"/replies", params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, commentID string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := s.client.graph.Delete(ctx, commentID, nil, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}

// SetHidden hides or unhides a comment without deleting it.
func (s *CommentService) SetHidden(ctx context.Context, commentID string, hidden bool) (bool, error) {
	params := url.Values{"hide": {strconv.FormatBool(hidden)}}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := s.client.graph.PostForm(ctx, commentID, params, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
