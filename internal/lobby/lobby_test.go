package lobby

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"speedwurdz/internal/codec"
	"speedwurdz/internal/table"
)

type frameRecorder struct {
	mu     sync.Mutex
	frames map[string][]codec.ServerEnvelope
}

func newFrameRecorder() *frameRecorder {
	return &frameRecorder{frames: make(map[string][]codec.ServerEnvelope)}
}

func (r *frameRecorder) send(username string, data []byte) {
	var env codec.ServerEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}
	r.mu.Lock()
	r.frames[username] = append(r.frames[username], env)
	r.mu.Unlock()
}

func (r *frameRecorder) last(username, event string) (codec.ServerEnvelope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frames := r.frames[username]
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].Event == event {
			return frames[i], true
		}
	}
	return codec.ServerEnvelope{}, false
}

func (r *frameRecorder) count(username, event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, env := range r.frames[username] {
		if env.Event == event {
			n++
		}
	}
	return n
}

type acceptAll struct{}

func (acceptAll) IsValidWord(word string) bool { return len(word) >= 2 }

func newTestLobby() (*Lobby, *frameRecorder) {
	rec := newFrameRecorder()
	l := New(acceptAll{}, nil)
	l.BindSender(rec.send)
	return l, rec
}

func TestJoin_ValidatesAndAnnounces(t *testing.T) {
	l, rec := newTestLobby()

	if err := l.Join(""); err == nil {
		t.Fatalf("expected empty username to fail")
	}
	if err := l.Join("ann"); err != nil {
		t.Fatalf("Join ann err: %v", err)
	}
	if err := l.Join("ann"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}
	if err := l.Join("bob"); err != nil {
		t.Fatalf("Join bob err: %v", err)
	}

	env, ok := rec.last("bob", codec.EventLobbyJoined)
	if !ok {
		t.Fatalf("expected lobby-joined for bob")
	}
	var welcome struct {
		Username string   `json:"username"`
		Users    []string `json:"users"`
	}
	if err := json.Unmarshal(env.Data, &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Username != "bob" || len(welcome.Users) != 2 {
		t.Fatalf("unexpected welcome payload: %+v", welcome)
	}

	// ann sees bob arrive but not her own welcome twice.
	if rec.count("ann", codec.EventUserJoined) != 1 {
		t.Fatalf("expected one user-joined for ann")
	}
	if rec.count("bob", codec.EventUserJoined) != 0 {
		t.Fatalf("user-joined echoed back to joiner")
	}

	if !l.IsJoined("ann") || l.IsJoined("carl") {
		t.Fatalf("IsJoined gave wrong answer")
	}
}

func TestCreateTable_RequiresJoinAndAppliesDefaults(t *testing.T) {
	l, rec := newTestLobby()

	if _, err := l.CreateTable("ghost", codec.CreateTableRequest{}); err == nil {
		t.Fatalf("expected create by unjoined user to fail")
	}

	if err := l.Join("ann"); err != nil {
		t.Fatalf("Join err: %v", err)
	}
	tbl, err := l.CreateTable("ann", codec.CreateTableRequest{})
	if err != nil {
		t.Fatalf("CreateTable err: %v", err)
	}
	if tbl.Config.Name != "ann's Game" || tbl.Config.MaxPlayers != 4 {
		t.Fatalf("unexpected table defaults: %+v", tbl.Config)
	}

	if got := l.GetTable(tbl.ID); got != tbl {
		t.Fatalf("GetTable did not return the created table")
	}
	if l.GetTable("nope") != nil {
		t.Fatalf("expected nil for unknown table id")
	}

	summaries := l.Tables()
	if len(summaries) != 1 || summaries[0].ID != tbl.ID || summaries[0].Host != "ann" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}

	if _, ok := rec.last("ann", codec.EventTableJoined); !ok {
		t.Fatalf("expected table-joined for creator")
	}
	if _, ok := rec.last("ann", codec.EventTableCreated); !ok {
		t.Fatalf("expected table-created broadcast")
	}
}

func TestLeave_PullsUserOutOfTheirTable(t *testing.T) {
	l, rec := newTestLobby()
	if err := l.Join("ann"); err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if err := l.Join("bob"); err != nil {
		t.Fatalf("Join err: %v", err)
	}

	tbl, err := l.CreateTable("ann", codec.CreateTableRequest{Name: "Leavers"})
	if err != nil {
		t.Fatalf("CreateTable err: %v", err)
	}
	if err := tbl.Do(table.Event{Type: table.EventJoin, Username: "bob"}); err != nil {
		t.Fatalf("table join err: %v", err)
	}

	// ann disconnects. The table actor reassigns the host to bob.
	l.Leave("ann")
	waitFor(t, func() bool {
		s := l.Tables()
		return len(s) == 1 && s[0].Host == "bob" && len(s[0].Players) == 1
	})
	if l.IsJoined("ann") {
		t.Fatalf("ann still registered after leave")
	}
	if rec.count("bob", codec.EventUserLeft) == 0 {
		t.Fatalf("expected user-left broadcast")
	}

	// bob goes too and the empty table disappears from the listing.
	l.Leave("bob")
	waitFor(t, func() bool { return len(l.Tables()) == 0 })
}

func TestTableDeleted_AnnouncedToLobby(t *testing.T) {
	l, rec := newTestLobby()
	if err := l.Join("ann"); err != nil {
		t.Fatalf("Join err: %v", err)
	}
	if err := l.Join("bob"); err != nil {
		t.Fatalf("Join err: %v", err)
	}

	tbl, err := l.CreateTable("ann", codec.CreateTableRequest{})
	if err != nil {
		t.Fatalf("CreateTable err: %v", err)
	}
	if err := tbl.Do(table.Event{Type: table.EventLeave, Username: "ann"}); err != nil {
		t.Fatalf("table leave err: %v", err)
	}

	waitFor(t, func() bool { return len(l.Tables()) == 0 })
	waitFor(t, func() bool { return rec.count("bob", codec.EventTableDeleted) > 0 })
}

// waitFor polls until cond holds, failing after a short deadline. Table hooks
// arrive from actor goroutines.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
