package gmaw_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
	"github.com/metapub/go-meta-api-wrapper/test_helpers"
)

func photoURL(fg *test_helpers.FakeGraph, path string) types.MediaItem {
	fg.Stub(path, &test_helpers.MockResponse{Status: 200, Body: string(pngBytes)})
	return types.MediaItem{Kind: types.MediaPhoto, Ref: types.MediaURL(fg.URL() + path)}
}

func videoURL(fg *test_helpers.FakeGraph, path string) types.MediaItem {
	fg.Stub(path, &test_helpers.MockResponse{Status: 200, Body: string(mp4Bytes)})
	return types.MediaItem{Kind: types.MediaVideo, Ref: types.MediaURL(fg.URL() + path)}
}

func TestCreatePostRejectsEmptyMediaList(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	var valErr *pkgerrs.ValidationError
	_, err := client.Business().CreatePost(context.Background(), &types.PostRequest{})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(fg.Requests()) != 0 {
		t.Errorf("empty media list must be rejected before any network call, saw %d requests", len(fg.Requests()))
	}
}

func TestCreatePostRejectsTooManyMedias(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	medias := make([]types.MediaItem, 11)
	for i := range medias {
		medias[i] = types.MediaItem{Kind: types.MediaPhoto, Ref: types.MediaURL("https://example.com/a.jpg")}
	}

	var valErr *pkgerrs.ValidationError
	_, err := client.Business().CreatePost(context.Background(), &types.PostRequest{Medias: medias})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(fg.Requests()) != 0 {
		t.Errorf("oversized media list must be rejected before any network call, saw %d requests", len(fg.Requests()))
	}
}

func TestCreatePostSinglePhoto(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	item := photoURL(fg, "/media/pic")
	fg.SetupContainerFlow("ig1", "c1", "media9", "FINISHED")

	id, err := client.Business().CreatePost(context.Background(), &types.PostRequest{
		Medias:  []types.MediaItem{item},
		Caption: "hello world",
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "media9" {
		t.Errorf("id = %q, want media9 (the platform id, unchanged)", id)
	}

	create, ok := fg.LastRequest("/ig1/media")
	if !ok {
		t.Fatal("no container creation request recorded")
	}
	if got := create.Form.Get("image_url"); got != item.Ref.Value {
		t.Errorf("image_url = %q, want %q", got, item.Ref.Value)
	}
	if got := create.Form.Get("caption"); got != "hello world" {
		t.Errorf("caption = %q, want hello world", got)
	}

	if got := fg.CallCount("/c1"); got != 1 {
		t.Errorf("status polls = %d, want 1 (FINISHED on first poll)", got)
	}
	publish, ok := fg.LastRequest("/ig1/media_publish")
	if !ok {
		t.Fatal("no publish request recorded")
	}
	if got := publish.Form.Get("creation_id"); got != "c1" {
		t.Errorf("creation_id = %q, want c1", got)
	}
}

func TestCreatePostPollsUntilFinished(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	item := photoURL(fg, "/media/pic")
	fg.SetupContainerFlow("ig1", "c1", "media9", "IN_PROGRESS", "IN_PROGRESS", "FINISHED")

	id, err := client.Business().CreatePost(context.Background(), &types.PostRequest{Medias: []types.MediaItem{item}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "media9" {
		t.Errorf("id = %q, want media9", id)
	}
	if got := fg.CallCount("/c1"); got != 3 {
		t.Errorf("status polls = %d, want 3", got)
	}
	if got := fg.CallCount("/ig1/media_publish"); got != 1 {
		t.Errorf("publish calls = %d, want exactly 1", got)
	}
}

func TestCreatePostContainerErrorSkipsCommit(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	item := photoURL(fg, "/media/pic")
	fg.SetupContainerFlow("ig1", "c1", "media9", "IN_PROGRESS", "ERROR")

	_, err := client.Business().CreatePost(context.Background(), &types.PostRequest{Medias: []types.MediaItem{item}})
	var mediaErr *pkgerrs.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T: %v", err, err)
	}
	if mediaErr.Reason != pkgerrs.ReasonContainerFailed {
		t.Errorf("Reason = %q, want %q", mediaErr.Reason, pkgerrs.ReasonContainerFailed)
	}
	if got := fg.CallCount("/ig1/media_publish"); got != 0 {
		t.Errorf("publish calls = %d, want 0 after a failed container", got)
	}
}

func TestCreatePostRejectsUnsupportedMediaType(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/media/doc", test_helpers.JSON("just some text, not an image"))
	item := types.MediaItem{Kind: types.MediaPhoto, Ref: types.MediaURL(fg.URL() + "/media/doc")}

	_, err := client.Business().CreatePost(context.Background(), &types.PostRequest{Medias: []types.MediaItem{item}})
	var mediaErr *pkgerrs.MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T: %v", err, err)
	}
	if mediaErr.Reason != pkgerrs.ReasonDisallowedType {
		t.Errorf("Reason = %q, want %q", mediaErr.Reason, pkgerrs.ReasonDisallowedType)
	}
	if got := fg.CallCount("/ig1/media"); got != 0 {
		t.Errorf("container calls = %d, want 0 for rejected media", got)
	}
}

func TestCreatePostCarouselUploadsPhotosBeforeVideos(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	video := videoURL(fg, "/media/vid")
	photoA := photoURL(fg, "/media/a")
	photoB := photoURL(fg, "/media/b")

	// Containers are handed out in creation order.
	fg.Stub("/ig1/media",
		test_helpers.JSON(`{"id":"child1"}`),
		test_helpers.JSON(`{"id":"child2"}`),
		test_helpers.JSON(`{"id":"child3"}`),
		test_helpers.JSON(`{"id":"carousel1"}`),
	)
	for _, id := range []string{"child1", "child2", "child3", "carousel1"} {
		fg.Stub("/"+id, test_helpers.JSON(fmt.Sprintf(`{"id":%q,"status_code":"FINISHED"}`, id)))
	}
	fg.Stub("/ig1/media_publish", test_helpers.JSON(`{"id":"media42"}`))

	id, err := client.Business().CreatePost(context.Background(), &types.PostRequest{
		Medias:  []types.MediaItem{video, photoA, photoB},
		Caption: "mixed",
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "media42" {
		t.Errorf("id = %q, want media42", id)
	}

	// The first two container calls must carry the photos, the third the
	// video, regardless of request order.
	var creations []url.Values
	for _, req := range fg.Requests() {
		if req.Path == "/ig1/media" {
			creations = append(creations, req.Form)
		}
	}
	if len(creations) != 4 {
		t.Fatalf("container creations = %d, want 4 (3 children + aggregate)", len(creations))
	}
	if creations[0].Get("image_url") == "" || creations[1].Get("image_url") == "" {
		t.Error("first two child containers should be the photos")
	}
	if creations[2].Get("video_url") == "" {
		t.Error("third child container should be the video")
	}
	for i := 0; i < 3; i++ {
		if creations[i].Get("is_carousel_item") != "true" {
			t.Errorf("child %d missing is_carousel_item=true", i)
		}
	}

	aggregate := creations[3]
	if got := aggregate.Get("media_type"); got != "CAROUSEL" {
		t.Errorf("aggregate media_type = %q, want CAROUSEL", got)
	}
	if got := aggregate.Get("children"); got != "child1,child2,child3" {
		t.Errorf("children = %q, want child1,child2,child3", got)
	}
	if got := aggregate.Get("caption"); got != "mixed" {
		t.Errorf("caption = %q, want mixed", got)
	}
}

func TestCreateStorySetsStoriesMediaType(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	item := photoURL(fg, "/media/story")
	fg.SetupContainerFlow("ig1", "c5", "story1", "FINISHED")

	id, err := client.Business().CreateStory(context.Background(), &types.StoryRequest{
		Kind: types.MediaPhoto,
		Ref:  item.Ref,
	})
	if err != nil {
		t.Fatalf("CreateStory returned error: %v", err)
	}
	if id != "story1" {
		t.Errorf("id = %q, want story1", id)
	}

	create, _ := fg.LastRequest("/ig1/media")
	if got := create.Form.Get("media_type"); got != "STORIES" {
		t.Errorf("media_type = %q, want STORIES", got)
	}
}

func TestCreatePostLocalFileUsesResumableUpload(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	path := writeTempMedia(t, "clip.dat", mp4Bytes)
	item := types.MediaItem{Kind: types.MediaVideo, Ref: types.MediaPath(path)}

	fg.Stub("/ig1/media", test_helpers.JSON(fmt.Sprintf(`{"id":"c8","uri":%q}`, fg.URL()+"/rupload/c8")))
	fg.Stub("/rupload/c8", test_helpers.JSON(`{"success":true}`))
	fg.Stub("/c8", test_helpers.JSON(`{"id":"c8","status_code":"FINISHED"}`))
	fg.Stub("/ig1/media_publish", test_helpers.JSON(`{"id":"media77"}`))

	id, err := client.Business().CreatePost(context.Background(), &types.PostRequest{Medias: []types.MediaItem{item}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if id != "media77" {
		t.Errorf("id = %q, want media77", id)
	}

	create, _ := fg.LastRequest("/ig1/media")
	if got := create.Form.Get("upload_type"); got != "resumable" {
		t.Errorf("upload_type = %q, want resumable", got)
	}

	upload, ok := fg.LastRequest("/rupload/c8")
	if !ok {
		t.Fatal("no byte transfer recorded")
	}
	if got := upload.Header.Get("Authorization"); got != "OAuth test-token" {
		t.Errorf("Authorization = %q, want OAuth test-token", got)
	}
	if got := upload.Header.Get("offset"); got != "0" {
		t.Errorf("offset header = %q, want 0", got)
	}
	if got := upload.Header.Get("file_size"); got != fmt.Sprint(len(mp4Bytes)) {
		t.Errorf("file_size header = %q, want %d", got, len(mp4Bytes))
	}
}

func TestVerifyMediaIsReadOnly(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	item := photoURL(fg, "/media/pic")
	result, err := client.Business().VerifyMedia(context.Background(), item, types.TargetFeed)
	if err != nil {
		t.Fatalf("VerifyMedia returned error: %v", err)
	}
	if !result.OK() {
		t.Errorf("expected a clean result, findings: %+v", result.Findings)
	}
	if got := fg.CallCount("/ig1/media"); got != 0 {
		t.Errorf("VerifyMedia must not create containers, saw %d", got)
	}
}

func TestGetPostLink(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/media9", test_helpers.JSON(`{"id":"media9","permalink":"https://www.instagram.com/p/abc/"}`))

	link, err := client.Business().GetPostLink(context.Background(), "media9")
	if err != nil {
		t.Fatalf("GetPostLink returned error: %v", err)
	}
	if link != "https://www.instagram.com/p/abc/" {
		t.Errorf("link = %q", link)
	}
}
