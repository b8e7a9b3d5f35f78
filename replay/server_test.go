package replay

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/SvenDH/go-card-client/client"
	"github.com/SvenDH/go-card-client/journal"
	"github.com/SvenDH/go-card-client/logging"
	"github.com/SvenDH/go-card-client/protocol"
)

var recorded = []string{
	`{"type":"players","action_number":1,"players":[{"id":0,"name":"alice","level":1,"bonus":0,"total":1,"hand":[],"carried":[]}]}`,
	`{"type":"draw","action_number":2,"player":0,"card":{"id":3,"name":"Sword","image":"sword.png"}}`,
	`INVALID MOVE`,
}

func setup(t *testing.T, opts Options) (*journal.Repository, *httptest.Server) {
	t.Helper()
	repo, err := journal.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	source, err := repo.StartSession("alice", "g1")
	if err != nil {
		t.Fatal(err)
	}
	for i, frame := range recorded {
		repo.Record(source.Id, client.Inbound, []byte(frame))
		if i == 0 {
			repo.Record(source.Id, client.Outbound, []byte(`{"type":"ACTION"}`))
		}
	}
	opts.Source = source.Id
	srv, err := NewServer(repo, opts)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewRouter("", srv).Handler())
	t.Cleanup(ts.Close)
	return repo, ts
}

func endpoint(ts *httptest.Server) client.Endpoint {
	return client.Endpoint{Host: strings.TrimPrefix(ts.URL, "http://"), Username: "bob", Game: "g1"}
}

func TestReplayStreamsInboundFrames(t *testing.T) {
	repo, ts := setup(t, Options{Interval: time.Millisecond})
	s, err := client.Dial(context.Background(), endpoint(ts))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i, want := range recorded {
		select {
		case frame := <-s.Incoming():
			if string(frame) != want {
				t.Fatalf("frame %d = %s, want %s", i, frame, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}

	action := protocol.NewAction(protocol.Action{MoveType: protocol.MoveCarry, Card: 3})
	if err := s.Send(action); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sessions, err := repo.Sessions()
		if err != nil {
			t.Fatal(err)
		}
		for _, sess := range sessions {
			if sess.User != "bob" || sess.Frames == 0 {
				continue
			}
			frames, err := repo.Frames(sess.Id, client.Outbound)
			if err != nil {
				t.Fatal(err)
			}
			if len(frames) != 1 || string(frames[0].Body) != string(action.Encode()) {
				t.Fatalf("unexpected journaled actions: %+v", frames)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("action was not journaled")
}

func TestReplayGamePassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	_, ts := setup(t, Options{PasswordHash: hash})

	ep := endpoint(ts)
	for _, pw := range []string{"", "wrong"} {
		ep.Password = pw
		if _, err := client.Dial(context.Background(), ep); err == nil || !strings.Contains(err.Error(), "403") {
			t.Fatalf("password %q: expected 403, got %v", pw, err)
		}
	}
	ep.Password = "secret"
	s, err := client.Dial(context.Background(), ep)
	if err != nil {
		t.Fatalf("expected connection with right password: %v", err)
	}
	s.Close()
}

func TestReplayToken(t *testing.T) {
	_, ts := setup(t, Options{TokenSecret: "k"})
	ep := endpoint(ts)

	if _, err := client.Dial(context.Background(), ep); err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected 400 without token, got %v", err)
	}
	other, _ := CreateToken("mallory", "k", time.Hour)
	ep.Token = other
	if _, err := client.Dial(context.Background(), ep); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 for another user's token, got %v", err)
	}
	forged, _ := CreateToken("bob", "not-k", time.Hour)
	ep.Token = forged
	if _, err := client.Dial(context.Background(), ep); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 for forged token, got %v", err)
	}
	ep.Token, _ = CreateToken("bob", "k", time.Hour)
	s, err := client.Dial(context.Background(), ep)
	if err != nil {
		t.Fatalf("expected connection with valid token: %v", err)
	}
	s.Close()
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := ValidatePassword("pw", hash); !ok || err != nil {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	if ok, _ := ValidatePassword("other", hash); ok {
		t.Fatal("expected mismatch")
	}

	// hashes made with other cost settings keep verifying
	cheap := argonParams{memory: 8 * 1024, time: 2, threads: 1, keyLen: 16}
	salt := []byte("0123456789abcdef")
	encoded := cheap.encode(salt, cheap.key("pw", salt))
	if !strings.Contains(encoded, "$m=8192,t=2,p=1$") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	p, gotSalt, _, err := parseHash(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if p != cheap || string(gotSalt) != string(salt) {
		t.Fatalf("parseHash = %+v %q, want %+v %q", p, gotSalt, cheap, salt)
	}
	if ok, err := ValidatePassword("pw", encoded); !ok || err != nil {
		t.Fatalf("expected match with custom params, got %v %v", ok, err)
	}

	malformed := []string{
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=lots,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	}
	for _, h := range malformed {
		if _, err := ValidatePassword("pw", h); !errors.Is(err, errMalformedHash) {
			t.Errorf("ValidatePassword(%q) error = %v, want errMalformedHash", h, err)
		}
	}
}

func TestReplayLogsTokenUser(t *testing.T) {
	hook := test.NewLocal(logging.Log)
	defer hook.Reset()

	_, ts := setup(t, Options{TokenSecret: "k"})
	ep := endpoint(ts)
	ep.Token, _ = CreateToken("bob", "k", time.Hour)
	s, err := client.Dial(context.Background(), ep)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range hook.AllEntries() {
			if e.Message != "viewer connected" {
				continue
			}
			if e.Level != logrus.InfoLevel || e.Data["token_user"] != "bob" {
				t.Fatalf("unexpected entry: %v %v", e.Level, e.Data)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("viewer connection was not logged")
}

func TestNewServerUnknownSession(t *testing.T) {
	repo, err := journal.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	if _, err := NewServer(repo, Options{Source: "nope"}); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
