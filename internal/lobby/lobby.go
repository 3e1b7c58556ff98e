// Package lobby tracks connected users and the tables they can join. Table
// listings come from a summary cache fed by table hooks, so the lobby never
// reaches into a table actor's state.
package lobby

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"speedwurdz/internal/codec"
	"speedwurdz/internal/ledger"
	"speedwurdz/internal/table"
	"speedwurdz/wurdz"

	"github.com/google/uuid"
)

type Lobby struct {
	mu        sync.RWMutex
	users     map[string]bool
	tables    map[string]*table.Table
	summaries map[string]table.Summary
	serverSeq uint64

	dict   wurdz.Dictionary
	ledger ledger.Service
	send   func(username string, data []byte)
}

func New(dict wurdz.Dictionary, ledgerService ledger.Service) *Lobby {
	return &Lobby{
		users:     make(map[string]bool),
		tables:    make(map[string]*table.Table),
		summaries: make(map[string]table.Summary),
		dict:      dict,
		ledger:    ledgerService,
	}
}

// BindSender wires the per-user outbound path. The gateway calls this once
// before serving connections.
func (l *Lobby) BindSender(send func(username string, data []byte)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.send = send
}

// Join registers a display name and announces it. Names must be non-empty and
// unique among connected users.
func (l *Lobby) Join(username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if username == "" {
		return fmt.Errorf("username is required")
	}
	if l.users[username] {
		return fmt.Errorf("username already taken")
	}
	l.users[username] = true
	log.Printf("[Lobby] %s joined the lobby (%d online)", username, len(l.users))

	l.sendToLocked(username, codec.EventLobbyJoined, map[string]any{
		"username": username,
		"users":    l.usernamesLocked(),
		"tables":   l.tablesLocked(),
	})
	l.broadcastLocked(username, codec.EventUserJoined, map[string]any{
		"username": username,
		"users":    l.usernamesLocked(),
	})
	return nil
}

// Leave removes a user, pulling them out of any table they were in. Called on
// explicit leave and on disconnect.
func (l *Lobby) Leave(username string) {
	l.mu.Lock()
	if !l.users[username] {
		l.mu.Unlock()
		return
	}
	delete(l.users, username)
	log.Printf("[Lobby] %s left the lobby (%d online)", username, len(l.users))

	all := make([]*table.Table, 0, len(l.tables))
	for _, t := range l.tables {
		all = append(all, t)
	}
	l.broadcastLocked("", codec.EventUserLeft, map[string]any{
		"username": username,
		"users":    l.usernamesLocked(),
	})
	l.mu.Unlock()

	// Outside the lock: table actors take the lobby lock in their hooks.
	for _, t := range all {
		if !t.HasPlayer(username) {
			continue
		}
		if err := t.SubmitEvent(table.Event{Type: table.EventLeave, Username: username}); err != nil {
			log.Printf("[Lobby] Leave event for %s on table %s failed: %v", username, t.ID, err)
		}
	}
}

// IsJoined reports whether the display name is registered.
func (l *Lobby) IsJoined(username string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.users[username]
}

// CreateTable creates a table hosted by username and announces it.
func (l *Lobby) CreateTable(username string, req codec.CreateTableRequest) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.users[username] {
		return nil, fmt.Errorf("you must join the lobby first")
	}

	tableID := uuid.NewString()
	t := table.New(tableID, table.Config{
		Name:          req.Name,
		MaxPlayers:    req.MaxPlayers,
		StartingTiles: req.StartingTiles,
	}, username, l.dict, l.sendRaw, l.ledger, table.Hooks{
		OnTableUpdated: l.onTableUpdated,
		OnTableDeleted: l.onTableDeleted,
	})

	l.tables[tableID] = t
	l.summaries[tableID] = t.Summary()

	l.sendToLocked(username, codec.EventTableJoined, l.summaries[tableID])
	l.broadcastLocked("", codec.EventTableCreated, map[string]any{
		"table":  l.summaries[tableID],
		"tables": l.tablesLocked(),
	})
	return t, nil
}

// GetTable returns a table by ID, nil if unknown.
func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// Tables lists current table summaries, oldest first.
func (l *Lobby) Tables() []table.Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tablesLocked()
}

// onTableUpdated refreshes the summary cache and fans the change out to the
// lobby. Runs on a table actor goroutine.
func (l *Lobby) onTableUpdated(s table.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tables[s.ID]; !ok {
		return
	}
	l.summaries[s.ID] = s
	l.broadcastLocked("", codec.EventTableUpdated, map[string]any{
		"table":  s,
		"tables": l.tablesLocked(),
	})
}

// onTableDeleted forgets a closed table. Runs on a table actor goroutine.
func (l *Lobby) onTableDeleted(tableID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.tables[tableID]; !ok {
		return
	}
	delete(l.tables, tableID)
	delete(l.summaries, tableID)
	log.Printf("[Lobby] Table %s deleted (%d remaining)", tableID, len(l.tables))
	l.broadcastLocked("", codec.EventTableDeleted, map[string]any{
		"tableId": tableID,
		"tables":  l.tablesLocked(),
	})
}

func (l *Lobby) usernamesLocked() []string {
	names := make([]string, 0, len(l.users))
	for name := range l.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Lobby) tablesLocked() []table.Summary {
	out := make([]table.Summary, 0, len(l.summaries))
	for _, s := range l.summaries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// sendRaw is handed to tables for their own broadcasts.
func (l *Lobby) sendRaw(username string, data []byte) {
	l.mu.RLock()
	send := l.send
	l.mu.RUnlock()
	if send != nil {
		send(username, data)
	}
}

// sendToLocked sends one enveloped event to one user. Caller holds l.mu.
func (l *Lobby) sendToLocked(username, event string, payload any) {
	if l.send == nil {
		return
	}
	l.serverSeq++
	data, err := codec.Encode(event, "", l.serverSeq, payload)
	if err != nil {
		log.Printf("[Lobby] Encode %s failed: %v", event, err)
		return
	}
	l.send(username, data)
}

// broadcastLocked sends an event to every lobby user except skip.
// Caller holds l.mu.
func (l *Lobby) broadcastLocked(skip, event string, payload any) {
	if l.send == nil {
		return
	}
	l.serverSeq++
	data, err := codec.Encode(event, "", l.serverSeq, payload)
	if err != nil {
		log.Printf("[Lobby] Encode %s failed: %v", event, err)
		return
	}
	for name := range l.users {
		if name != skip {
			l.send(name, data)
		}
	}
}
