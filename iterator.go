package gmaw

import (
	"context"
	"errors"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

// ErrNoMorePosts is returned by Next once the feed is exhausted.
var ErrNoMorePosts = errors.New("no more posts available")

// PostIterator provides an iterator for paginating through a page's feed.
// It fetches one cursor page at a time and buffers the results.
type PostIterator struct {
	service *PageService
	buffer  []types.PagePost
	idx     int
	after   string
	hasMore bool
	err     error
	ctx     context.Context
}

// Posts creates an iterator over the page's feed, newest first.
func (s *PageService) Posts(ctx context.Context) *PostIterator {
	return &PostIterator{
		service: s,
		hasMore: true,
		ctx:     ctx,
	}
}

// HasNext returns true if there are more posts to iterate through.
func (it *PostIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.idx < len(it.buffer) || it.hasMore
}

// Next returns the next post in the iteration.
func (it *PostIterator) Next() (*types.PagePost, error) {
	if it.err != nil {
		return nil, it.err
	}

	if it.idx >= len(it.buffer) {
		if !it.hasMore {
			return nil, ErrNoMorePosts
		}

		page, err := it.service.GetPosts(it.ctx, it.after)
		if err != nil {
			it.err = err
			return nil, err
		}

		it.buffer = page.Data
		it.idx = 0
		it.after = ""
		if page.Paging != nil {
			it.after = page.Paging.Cursors.After
		}

		// No next cursor or an empty page means we reached the end.
		if len(it.buffer) == 0 || it.after == "" || page.Paging == nil || page.Paging.Next == "" {
			it.hasMore = false
			if len(it.buffer) == 0 {
				return nil, ErrNoMorePosts
			}
		}
	}

	post := it.buffer[it.idx]
	it.idx++
	return &post, nil
}

// Error returns any error encountered during iteration.
func (it *PostIterator) Error() error {
	return it.err
}

// Reset resets the iterator to start from the beginning.
func (it *PostIterator) Reset() {
	it.buffer = nil
	it.idx = 0
	it.after = ""
	it.hasMore = true
	it.err = nil
}

// Collect fetches all remaining posts up to a maximum limit. A limit of 0
// collects everything.
func (it *PostIterator) Collect(maxPosts int) ([]types.PagePost, error) {
	var posts []types.PagePost
	for it.HasNext() && (maxPosts <= 0 || len(posts) < maxPosts) {
		post, err := it.Next()
		if errors.Is(err, ErrNoMorePosts) {
			break
		}
		if err != nil {
			return posts, err
		}
		posts = append(posts, *post)
	}
	return posts, nil
}
