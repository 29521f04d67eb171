package chat

import "sync"

// Room is one named chat channel: a membership set, a broadcast channel for
// chat/control events, and the last shared content value. Each concern has
// its own lock so one room's traffic never blocks another's.
type Room struct {
	id string

	membersMu sync.Mutex
	members   map[string]struct{}

	bc *broadcaster

	contentMu      sync.Mutex
	content        string
	contentVersion uint64
	contentChanged chan struct{}
}

func newRoom(id string) *Room {
	return &Room{
		id:             id,
		members:        make(map[string]struct{}),
		bc:             newBroadcaster(),
		contentChanged: make(chan struct{}),
	}
}

func (r *Room) ID() string { return r.id }

// AddMember records username in the room. Rejoining with the same name is a
// no-op; two connections may share a display name.
func (r *Room) AddMember(username string) {
	r.membersMu.Lock()
	r.members[username] = struct{}{}
	r.membersMu.Unlock()
}

func (r *Room) RemoveMember(username string) {
	r.membersMu.Lock()
	delete(r.members, username)
	r.membersMu.Unlock()
}

func (r *Room) Members() []string {
	r.membersMu.Lock()
	defer r.membersMu.Unlock()
	out := make([]string, 0, len(r.members))
	for name := range r.members {
		out = append(out, name)
	}
	return out
}

func (r *Room) memberCount() int {
	r.membersMu.Lock()
	defer r.membersMu.Unlock()
	return len(r.members)
}

// Publish sends ev to every current subscriber of the room, best-effort.
func (r *Room) Publish(ev Event) { r.bc.Publish(ev) }

// Subscribe returns a handle that observes events published after this call.
func (r *Room) Subscribe() *Subscription { return r.bc.Subscribe() }

// SetContent overwrites the shared content and wakes every change waiter.
// The value and its notification are updated under one lock so no waiter can
// observe a new value without being woken.
func (r *Room) SetContent(value string) {
	r.contentMu.Lock()
	r.content = value
	r.contentVersion++
	close(r.contentChanged)
	r.contentChanged = make(chan struct{})
	r.contentMu.Unlock()
}

// Content returns the current content and its version. The version advances
// by one on every SetContent, letting pollers detect changes without
// comparing values.
func (r *Room) Content() (string, uint64) {
	r.contentMu.Lock()
	defer r.contentMu.Unlock()
	return r.content, r.contentVersion
}

// Changed returns a channel closed on the next content change. Re-check the
// version after waking: the channel is replaced on every change, so a waiter
// holding a stale channel wakes at most once spuriously.
func (r *Room) Changed() <-chan struct{} {
	r.contentMu.Lock()
	defer r.contentMu.Unlock()
	return r.contentChanged
}

// restoreContent seeds content loaded from the store without waking waiters
// or bumping the version; used only before the room is visible to sessions.
func (r *Room) restoreContent(value string) {
	r.contentMu.Lock()
	r.content = value
	r.contentMu.Unlock()
}
