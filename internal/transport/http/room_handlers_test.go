package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestRoomEndpointsReflectMembership(t *testing.T) {
	ts, room := startTestServer(t)

	var overview RoomResponse
	getJSON(t, ts.URL+"/api/room", &overview)
	if overview.Name != "10001" || overview.Members != 0 || overview.History != 0 {
		t.Errorf("empty room overview = %+v", overview)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(ctx, t, ts, "alice")
	waitFor(t, func() bool { return room.MemberCount() == 1 }, "alice joined")

	if err := alice.Write(ctx, websocket.MessageBinary, []byte("hello")); err != nil {
		t.Fatalf("send message: %v", err)
	}
	waitFor(t, func() bool { return len(room.History()) == 1 }, "history")

	getJSON(t, ts.URL+"/api/room", &overview)
	if overview.Members != 1 || overview.History != 1 {
		t.Errorf("overview after join = %+v", overview)
	}

	var members MembersResponse
	getJSON(t, ts.URL+"/api/room/members", &members)
	if len(members.Members) != 1 || members.Members[0] != "alice" {
		t.Errorf("members = %+v", members.Members)
	}
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
