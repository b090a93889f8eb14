package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-town/internal/directory"
	"github.com/pixil98/go-town/internal/gateway"
	"github.com/pixil98/go-town/internal/protocol"
)

type nullPublisher struct{}

func (nullPublisher) PublishToPlayer(string, string, []byte) error { return nil }
func (nullPublisher) PublishPetStats(string, []byte) error         { return nil }

type nullStore struct{}

func (nullStore) GetOrCreatePlayer(_ context.Context, userID, userName string, loc protocol.PlayerLocation) (*protocol.Player, error) {
	return &protocol.Player{ID: userID, UserName: userName, Location: loc}, nil
}
func (nullStore) SetLocation(context.Context, string, protocol.PlayerLocation) error { return nil }
func (nullStore) SetLoginTime(context.Context, string, time.Time) error              { return nil }
func (nullStore) SetLogoutTime(context.Context, string, time.Time) error             { return nil }
func (nullStore) GetLogoutTime(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}
func (nullStore) GetPet(context.Context, string) (*protocol.Pet, error)               { return nil, nil }
func (nullStore) CreatePet(context.Context, protocol.Pet) (bool, error)               { return true, nil }
func (nullStore) SetMeter(context.Context, string, string, protocol.Meter, int) error { return nil }
func (nullStore) SetHospitalStatus(context.Context, string, string, bool) error       { return nil }
func (nullStore) SetSickStatus(context.Context, string, string, bool) error           { return nil }
func (nullStore) DeletePet(context.Context, string, string) error                     { return nil }
func (nullStore) TransferPet(context.Context, string, string, string) error           { return nil }

type nullVideo struct{}

func (nullVideo) GetToken(context.Context, string, string) (string, error) {
	return "video-token", nil
}

type nullSubscriber struct{}

func (nullSubscriber) Subscribe(string, func([]byte)) (func(), error) {
	return func() {}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *directory.TownDirectory) {
	t.Helper()

	mapPath := filepath.Join(t.TempDir(), "town.json")
	data := `{
		"entry": {"x": 50, "y": 50},
		"objects": [
			{"id": "chat", "type": "ConversationArea", "x": 0, "y": 0, "width": 10, "height": 10},
			{"id": "cinema", "type": "ViewingArea", "x": 20, "y": 0, "width": 10, "height": 10}
		]
	}`
	if err := os.WriteFile(mapPath, []byte(data), 0o644); err != nil {
		t.Fatalf("writing map file: %v", err)
	}

	d := directory.New(nullPublisher{}, nullStore{}, nullVideo{}, mapPath)
	cm := gateway.NewConnectionManager(d, nullStore{}, nullSubscriber{})
	svr := httptest.NewServer(NewHandler(d, cm).Routes())
	t.Cleanup(svr.Close)
	return svr, d
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, out.Bytes()
}

func TestTownLifecycle(t *testing.T) {
	svr, d := newTestServer(t)

	// Create.
	resp, body := doJSON(t, http.MethodPost, svr.URL+"/towns", createTownRequest{
		FriendlyName:     "My Town",
		IsPubliclyListed: true,
	}, nil)
	testutil.AssertEqual(t, "create status", resp.StatusCode, http.StatusCreated)

	var created createTownResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.TownID == "" || created.TownUpdatePassword == "" {
		t.Fatal("expected an id and a password")
	}

	// List.
	resp, body = doJSON(t, http.MethodGet, svr.URL+"/towns", nil, nil)
	testutil.AssertEqual(t, "list status", resp.StatusCode, http.StatusOK)
	var listed []protocol.TownSummary
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	testutil.AssertEqual(t, "listed count", len(listed), 1)
	testutil.AssertEqual(t, "listed id", listed[0].TownID, created.TownID)

	// Update with the wrong password.
	name := "Renamed"
	resp, _ = doJSON(t, http.MethodPatch, svr.URL+"/towns/"+created.TownID,
		protocol.TownSettingsUpdate{FriendlyName: &name},
		map[string]string{headerTownPassword: "guess"})
	testutil.AssertEqual(t, "bad password status", resp.StatusCode, http.StatusUnauthorized)

	// Update with the right password.
	resp, _ = doJSON(t, http.MethodPatch, svr.URL+"/towns/"+created.TownID,
		protocol.TownSettingsUpdate{FriendlyName: &name},
		map[string]string{headerTownPassword: created.TownUpdatePassword})
	testutil.AssertEqual(t, "update status", resp.StatusCode, http.StatusOK)
	testutil.AssertEqual(t, "name applied", d.GetTown(created.TownID).FriendlyName(), "Renamed")

	// Delete.
	resp, _ = doJSON(t, http.MethodDelete, svr.URL+"/towns/"+created.TownID, nil,
		map[string]string{headerTownPassword: created.TownUpdatePassword})
	testutil.AssertEqual(t, "delete status", resp.StatusCode, http.StatusNoContent)
	if d.GetTown(created.TownID) != nil {
		t.Fatal("town should be gone")
	}
}

func TestCreateTownRejectsBadInput(t *testing.T) {
	svr, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, svr.URL+"/towns", createTownRequest{}, nil)
	testutil.AssertEqual(t, "status", resp.StatusCode, http.StatusBadRequest)
}

func TestSessionScopedEndpoints(t *testing.T) {
	svr, d := newTestServer(t)

	id, _, err := d.CreateTown("My Town", true, "")
	if err != nil {
		t.Fatalf("creating town: %v", err)
	}
	tn := d.GetTown(id)
	player, err := tn.AddPlayer(context.Background(), "alice", "alice", nil, nil)
	if err != nil {
		t.Fatalf("joining: %v", err)
	}
	auth := map[string]string{headerSessionToken: player.SessionToken()}

	// No token.
	resp, _ := doJSON(t, http.MethodGet, svr.URL+"/towns/"+id+"/chatMessages", nil, nil)
	testutil.AssertEqual(t, "unauthenticated", resp.StatusCode, http.StatusUnauthorized)

	// Unknown town.
	resp, _ = doJSON(t, http.MethodGet, svr.URL+"/towns/nope/chatMessages", nil, auth)
	testutil.AssertEqual(t, "unknown town", resp.StatusCode, http.StatusNotFound)

	// Configure the conversation area.
	resp, _ = doJSON(t, http.MethodPost, svr.URL+"/towns/"+id+"/conversationArea",
		protocol.Interactable{ID: "chat", Topic: "books"}, auth)
	testutil.AssertEqual(t, "conversation created", resp.StatusCode, http.StatusOK)

	resp, _ = doJSON(t, http.MethodPost, svr.URL+"/towns/"+id+"/conversationArea",
		protocol.Interactable{ID: "chat", Topic: "movies"}, auth)
	testutil.AssertEqual(t, "reconfigure rejected", resp.StatusCode, http.StatusBadRequest)

	// Configure the viewing area.
	resp, _ = doJSON(t, http.MethodPost, svr.URL+"/towns/"+id+"/viewingArea",
		protocol.Interactable{ID: "cinema", Video: "movie.mp4"}, auth)
	testutil.AssertEqual(t, "viewing created", resp.StatusCode, http.StatusOK)

	// Chat history, scoped and unscoped.
	tn.AddChatMessage(protocol.ChatMessage{Author: "alice", Body: "hello"})
	tn.AddChatMessage(protocol.ChatMessage{Author: "alice", Body: "in chat", InteractableID: "chat"})

	resp, body := doJSON(t, http.MethodGet, svr.URL+"/towns/"+id+"/chatMessages", nil, auth)
	testutil.AssertEqual(t, "chat status", resp.StatusCode, http.StatusOK)
	var msgs []protocol.ChatMessage
	if err := json.Unmarshal(body, &msgs); err != nil {
		t.Fatalf("decoding chat: %v", err)
	}
	testutil.AssertEqual(t, "all messages", len(msgs), 2)

	resp, body = doJSON(t, http.MethodGet, svr.URL+"/towns/"+id+"/chatMessages?interactableID=chat", nil, auth)
	testutil.AssertEqual(t, "scoped status", resp.StatusCode, http.StatusOK)
	if err := json.Unmarshal(body, &msgs); err != nil {
		t.Fatalf("decoding chat: %v", err)
	}
	testutil.AssertEqual(t, "scoped messages", len(msgs), 1)
	testutil.AssertEqual(t, "scoped body", msgs[0].Body, "in chat")
}

func TestConnectValidation(t *testing.T) {
	svr, d := newTestServer(t)

	id, _, err := d.CreateTown("My Town", true, "")
	if err != nil {
		t.Fatalf("creating town: %v", err)
	}

	resp, _ := doJSON(t, http.MethodGet, svr.URL+"/town/"+id+"/ws", nil, nil)
	testutil.AssertEqual(t, "missing identity", resp.StatusCode, http.StatusBadRequest)

	resp, _ = doJSON(t, http.MethodGet, svr.URL+"/town/nope/ws?userID=alice&userName=alice", nil, nil)
	testutil.AssertEqual(t, "unknown town", resp.StatusCode, http.StatusNotFound)
}
