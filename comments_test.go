package gmaw_test

import (
	"context"
	"testing"

	"github.com/metapub/go-meta-api-wrapper/test_helpers"
)

func TestGetComments(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/media9/comments", test_helpers.JSON(`{"data":[{"id":"cm1","text":"nice","username":"alex","like_count":3}]}`))

	page, err := client.Comments().Get(context.Background(), "media9", "")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "cm1" {
		t.Errorf("page = %+v", page)
	}
}

func TestCreateAndReplyToComment(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/media9/comments", test_helpers.JSON(`{"id":"cm2"}`))
	fg.Stub("/cm2/replies", test_helpers.JSON(`{"id":"cm3"}`))

	id, err := client.Comments().Create(context.Background(), "media9", "great shot")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != "cm2" {
		t.Errorf("id = %q, want cm2", id)
	}

	replyID, err := client.Comments().Reply(context.Background(), "cm2", "thanks")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if replyID != "cm3" {
		t.Errorf("replyID = %q, want cm3", replyID)
	}

	req, _ := fg.LastRequest("/cm2/replies")
	if got := req.Form.Get("message"); got != "thanks" {
		t.Errorf("message = %q, want thanks", got)
	}
}

func TestHideComment(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/cm1", test_helpers.JSON(`{"success":true}`))

	ok, err := client.Comments().SetHidden(context.Background(), "cm1", true)
	if err != nil {
		t.Fatalf("SetHidden returned error: %v", err)
	}
	if !ok {
		t.Error("SetHidden = false, want true")
	}
	req, _ := fg.LastRequest("/cm1")
	if got := req.Form.Get("hide"); got != "true" {
		t.Errorf("hide = %q, want true", got)
	}
}

func TestDeleteComment(t *testing.T) {
	fg := test_helpers.NewFakeGraph()
	defer fg.Close()
	client := newTestClient(t, fg)

	fg.Stub("/cm1", test_helpers.JSON(`{"success":true}`))

	ok, err := client.Comments().Delete(context.Background(), "cm1")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !ok {
		t.Error("Delete = false, want true")
	}
}
