package gmaw_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
	"github.com/metapub/go-meta-api-wrapper/test_helpers"
)

func TestPageTextPost(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/page1/feed", test_helpers.JSON(`{"id":"12345"}`))

	id, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{
		Message:  "Hello from the test suite",
		Schedule: types.Schedule{Now: true},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "12345" {
		t.Errorf("id = %q, want 12345", id)
	}

	req, ok := fg.LastRequest("/page1/feed")
	if !ok {
		t.Fatal("no feed request recorded")
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if got := req.Form.Get("message"); got != "Hello from the test suite" {
		t.Errorf("message = %q", got)
	}
	if got := req.Form.Get("published"); got != "true" {
		t.Errorf("published = %q, want true", got)
	}
}

func TestPagePostRequiresContent(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	var valErr *pkgerrs.ValidationError
	_, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{Schedule: types.Schedule{Now: true}})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(fg.Requests()) != 0 {
		t.Errorf("empty post must fail before any network call, saw %d requests", len(fg.Requests()))
	}
}

func TestScheduleWindow(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"too soon", time.Now().Add(5 * time.Minute)},
		{"in the past", time.Now().Add(-time.Hour)},
		{"too far out", time.Now().Add(7 * 30 * 24 * time.Hour)},
		{"zero time", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var valErr *pkgerrs.ValidationError
			_, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{
				Message:  "scheduled",
				Schedule: types.Schedule{At: tt.at},
			})
			if !errors.As(err, &valErr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
		})
	}
	if len(fg.Requests()) != 0 {
		t.Errorf("schedule violations must fail before any network call, saw %d requests", len(fg.Requests()))
	}
}

func TestScheduledPostCarriesPublishTime(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/page1/feed", test_helpers.JSON(`{"id":"sched1"}`))

	at := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	_, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{
		Message:  "later",
		Schedule: types.Schedule{At: at},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	req, _ := fg.LastRequest("/page1/feed")
	if got := req.Form.Get("published"); got != "false" {
		t.Errorf("published = %q, want false for scheduled posts", got)
	}
	if got := req.Form.Get("scheduled_publish_time"); got == "" {
		t.Error("scheduled_publish_time missing")
	}
}

func TestPagePhotoPostAttachesUploads(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	a := photoURL(fg, "/media/a")
	b := photoURL(fg, "/media/b")
	fg.Stub("/page1/photos",
		test_helpers.JSON(`{"id":"p1"}`),
		test_helpers.JSON(`{"id":"p2"}`),
	)
	fg.Stub("/page1/feed", test_helpers.JSON(`{"id":"post7"}`))

	id, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{
		Message:  "two photos",
		Photos:   []types.MediaReference{a.Ref, b.Ref},
		Schedule: types.Schedule{Now: true},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "post7" {
		t.Errorf("id = %q, want post7", id)
	}

	// Photos upload unpublished, then attach to the feed post.
	uploads := 0
	for _, req := range fg.Requests() {
		if req.Path == "/page1/photos" {
			uploads++
			if got := req.Form.Get("published"); got != "false" {
				t.Errorf("photo upload published = %q, want false", got)
			}
		}
	}
	if uploads != 2 {
		t.Errorf("photo uploads = %d, want 2", uploads)
	}

	feed, _ := fg.LastRequest("/page1/feed")
	if got := feed.Form.Get("attached_media[0]"); got != `{"media_fbid":"p1"}` {
		t.Errorf("attached_media[0] = %q", got)
	}
	if got := feed.Form.Get("attached_media[1]"); got != `{"media_fbid":"p2"}` {
		t.Errorf("attached_media[1] = %q", got)
	}
}

func TestPageVideoPostUsesVideoHost(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	v := videoURL(fg, "/media/vid")
	fg.Stub("/page1/videos", test_helpers.JSON(`{"id":"vid1"}`))

	id, err := client.Pages().CreatePost(context.Background(), &types.PagePostRequest{
		Message:  "watch this",
		Video:    &v.Ref,
		Schedule: types.Schedule{Now: true},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "vid1" {
		t.Errorf("id = %q, want vid1", id)
	}

	req, _ := fg.LastRequest("/page1/videos")
	if got := req.Form.Get("file_url"); got != v.Ref.Value {
		t.Errorf("file_url = %q, want %q", got, v.Ref.Value)
	}
	if got := req.Form.Get("description"); got != "watch this" {
		t.Errorf("description = %q", got)
	}
}

func TestPageVideoStoryTwoPhase(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	v := videoURL(fg, "/media/storyvid")
	fg.Stub("/page1/video_stories",
		test_helpers.JSON(`{"video_id":"v5","upload_url":"`+fg.URL()+`/rupload/v5"}`),
		test_helpers.JSON(`{"success":true,"post_id":"story5"}`),
	)
	fg.Stub("/rupload/v5", test_helpers.JSON(`{"success":true}`))

	id, err := client.Pages().CreateStory(context.Background(), &types.PageStoryRequest{
		Kind:  types.MediaVideo,
		Media: v.Ref,
	})
	if err != nil {
		t.Fatalf("CreateStory returned error: %v", err)
	}
	if id != "story5" {
		t.Errorf("id = %q, want story5", id)
	}

	upload, ok := fg.LastRequest("/rupload/v5")
	if !ok {
		t.Fatal("no transfer to the upload URL recorded")
	}
	if got := upload.Header.Get("file_url"); got != v.Ref.Value {
		t.Errorf("file_url header = %q, want %q", got, v.Ref.Value)
	}

	finish, _ := fg.LastRequest("/page1/video_stories")
	if got := finish.Form.Get("upload_phase"); got != "finish" {
		t.Errorf("upload_phase = %q, want finish", got)
	}
	if got := finish.Form.Get("video_id"); got != "v5" {
		t.Errorf("video_id = %q, want v5", got)
	}
}

func TestPageReelPublishesWithState(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	v := videoURL(fg, "/media/reel")
	fg.Stub("/page1/video_reels",
		test_helpers.JSON(`{"video_id":"v9","upload_url":"`+fg.URL()+`/rupload/v9"}`),
		test_helpers.JSON(`{"success":true,"post_id":"reel9"}`),
	)
	fg.Stub("/rupload/v9", test_helpers.JSON(`{"success":true}`))

	result, err := client.Pages().CreateReel(context.Background(), &types.ReelRequest{
		Media: v.Ref,
		Title: "my reel",
	})
	if err != nil {
		t.Fatalf("CreateReel returned error: %v", err)
	}
	if result.PostID != "reel9" || result.VideoID != "v9" {
		t.Errorf("result = %+v, want PostID=reel9 VideoID=v9", result)
	}

	finish, _ := fg.LastRequest("/page1/video_reels")
	if got := finish.Form.Get("video_state"); got != "PUBLISHED" {
		t.Errorf("video_state = %q, want PUBLISHED", got)
	}
	if got := finish.Form.Get("title"); got != "my reel" {
		t.Errorf("title = %q, want my reel", got)
	}
}

func TestDeletePost(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/12345", test_helpers.JSON(`{"success":true}`))

	ok, err := client.Pages().DeletePost(context.Background(), "12345")
	if err != nil {
		t.Fatalf("DeletePost returned error: %v", err)
	}
	if !ok {
		t.Error("DeletePost = false, want true")
	}

	req, _ := fg.LastRequest("/12345")
	if req.Method != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", req.Method)
	}
}

func TestUpdatePost(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/post7", test_helpers.JSON(`{"success":true}`))

	ok, err := client.Pages().UpdatePost(context.Background(), "post7", "edited")
	if err != nil {
		t.Fatalf("UpdatePost returned error: %v", err)
	}
	if !ok {
		t.Error("UpdatePost = false, want true")
	}
	req, _ := fg.LastRequest("/post7")
	if got := req.Form.Get("message"); got != "edited" {
		t.Errorf("message = %q, want edited", got)
	}
}

func TestGetAllPostsFollowsCursors(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/page1/posts",
		test_helpers.JSON(`{"data":[{"id":"p1","message":"one"},{"id":"p2","message":"two"}],"paging":{"cursors":{"after":"cur2"},"next":"https://next"}}`),
		test_helpers.JSON(`{"data":[{"id":"p3","message":"three"}],"paging":{"cursors":{"after":"cur3"}}}`),
	)

	posts, err := client.Pages().GetAllPosts(context.Background())
	if err != nil {
		t.Fatalf("GetAllPosts returned error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("posts = %d, want 3", len(posts))
	}
	if posts[0].ID != "p1" || posts[2].ID != "p3" {
		t.Errorf("unexpected post order: %+v", posts)
	}

	reqs := 0
	var secondAfter string
	for _, req := range fg.Requests() {
		if req.Path == "/page1/posts" {
			reqs++
			if reqs == 2 {
				secondAfter = req.Query.Get("after")
			}
		}
	}
	if reqs != 2 {
		t.Errorf("feed requests = %d, want 2", reqs)
	}
	if secondAfter != "cur2" {
		t.Errorf("second request after = %q, want cur2", secondAfter)
	}
}

func TestPostURL(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	got := client.Pages().PostURL("page1_post7")
	if got != "https://www.facebook.com/page1_post7" {
		t.Errorf("PostURL = %q", got)
	}
	if len(fg.Requests()) != 0 {
		t.Error("PostURL must not call the API")
	}
}
