package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"readshelf/internal/models"
)

func TestNotificationSettings(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")

	body := expectStatus(t, e.do(request{method: http.MethodGet, path: "/api/notification-settings", cookies: alice}), http.StatusOK)
	settings := body["settings"].(map[string]any)
	if settings["notify_replies"] != true || settings["notify_votes"] != false || settings["email_replies"] != false {
		t.Errorf("defaults = %v", settings)
	}

	body = expectStatus(t, e.do(request{method: http.MethodPut, path: "/api/notification-settings", cookies: alice, body: map[string]bool{
		"notify_votes": true,
	}}), http.StatusOK)
	settings = body["settings"].(map[string]any)
	if settings["notify_replies"] != true || settings["notify_votes"] != true {
		t.Errorf("updated = %v", settings)
	}

	w := e.do(request{method: http.MethodPut, path: "/api/notification-settings", cookies: alice, body: map[string]bool{"notify_everything": true}})
	expectStatus(t, w, http.StatusBadRequest)
	w = e.do(request{method: http.MethodPut, path: "/api/notification-settings", cookies: alice, body: `{"notify_votes": "yes"}`})
	expectStatus(t, w, http.StatusBadRequest)
	w = e.do(request{method: http.MethodPut, path: "/api/notification-settings", cookies: alice, body: ""})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestNotificationLifecycle(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")
	bob := e.register("bob")
	book := e.createBook("Dune", "d1", "")

	root := commentID(addComment(t, e, alice, map[string]any{"book_id": book.ID, "text": "root"}, http.StatusOK))
	for i := 0; i < 3; i++ {
		addComment(t, e, bob, map[string]any{"book_id": book.ID, "text": fmt.Sprintf("reply %d", i), "parent_id": root}, http.StatusOK)
	}
	// Replying to yourself does not notify.
	addComment(t, e, alice, map[string]any{"book_id": book.ID, "text": "self", "parent_id": root}, http.StatusOK)

	list := func(query string) map[string]any {
		t.Helper()
		return expectStatus(t, e.do(request{method: http.MethodGet, path: "/api/notifications" + query, cookies: alice}), http.StatusOK)
	}

	body := list("")
	items := body["notifications"].([]any)
	if len(items) != 3 || body["unread_count"].(float64) != 3 {
		t.Fatalf("notifications = %v", body)
	}
	first := items[0].(map[string]any)
	if first["type"] != string(models.NotificationTypeReplyComment) || first["actor"].(map[string]any)["username"] != "bob" {
		t.Errorf("notification = %v", first)
	}
	id := uint(first["id"].(float64))

	expectStatus(t, e.do(request{method: http.MethodPost, path: fmt.Sprintf("/api/notifications/%d/read", id), cookies: alice}), http.StatusOK)
	body = list("?unread=true")
	if len(body["notifications"].([]any)) != 2 || body["unread_count"].(float64) != 2 {
		t.Errorf("after read = %v", body)
	}

	// Bob cannot touch Alice's notifications.
	expectStatus(t, e.do(request{method: http.MethodDelete, path: fmt.Sprintf("/api/notifications/%d", id), cookies: bob}), http.StatusNotFound)
	expectStatus(t, e.do(request{method: http.MethodPost, path: fmt.Sprintf("/api/notifications/%d/read", id), cookies: bob}), http.StatusNotFound)

	body = expectStatus(t, e.do(request{method: http.MethodPost, path: "/api/notifications/read-all", cookies: alice}), http.StatusOK)
	if body["updated"].(float64) != 2 {
		t.Errorf("read-all updated = %v", body["updated"])
	}
	if body = list(""); body["unread_count"].(float64) != 0 {
		t.Errorf("unread after read-all = %v", body["unread_count"])
	}

	expectStatus(t, e.do(request{method: http.MethodDelete, path: fmt.Sprintf("/api/notifications/%d", id), cookies: alice}), http.StatusOK)
	if body = list(""); len(body["notifications"].([]any)) != 2 {
		t.Errorf("after delete = %v", body["notifications"])
	}
}

func TestVoteNotificationFollowsSettings(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register("alice")
	bob := e.register("bob")
	book := e.createBook("Dune", "d1", "")
	id := commentID(addComment(t, e, alice, map[string]any{"book_id": book.ID, "text": "vote"}, http.StatusOK))
	path := fmt.Sprintf("/api/vote-comment/%d", id)

	count := func() int64 {
		var n int64
		e.db.Model(&models.Notification{}).Where("type = ?", models.NotificationTypeCommentVote).Count(&n)
		return n
	}

	expectStatus(t, e.do(request{method: http.MethodPost, path: path, cookies: bob, body: map[string]int{"value": 1}}), http.StatusOK)
	if n := count(); n != 0 {
		t.Fatalf("vote notifications with default settings = %d", n)
	}

	expectStatus(t, e.do(request{method: http.MethodPut, path: "/api/notification-settings", cookies: alice, body: map[string]bool{"notify_votes": true}}), http.StatusOK)
	// Toggle off then on again.
	expectStatus(t, e.do(request{method: http.MethodPost, path: path, cookies: bob, body: map[string]int{"value": 1}}), http.StatusOK)
	expectStatus(t, e.do(request{method: http.MethodPost, path: path, cookies: bob, body: map[string]int{"value": 1}}), http.StatusOK)
	if n := count(); n != 1 {
		t.Errorf("vote notifications = %d, want 1", n)
	}
}
