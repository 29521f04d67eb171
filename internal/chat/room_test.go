package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

func TestMembershipIsIdempotent(t *testing.T) {
	r := newRoom("general")

	r.AddMember("alice")
	r.AddMember("alice")
	r.AddMember("bob")

	assert.ElementsMatch(t, []string{"alice", "bob"}, r.Members())

	r.RemoveMember("alice")
	assert.ElementsMatch(t, []string{"bob"}, r.Members())

	// Removing a name that is not present is a no-op.
	r.RemoveMember("carol")
	assert.Equal(t, 1, r.memberCount())
}

func TestContentVersionAdvances(t *testing.T) {
	r := newRoom("general")

	value, version := r.Content()
	assert.Equal(t, "", value)
	assert.Equal(t, uint64(0), version)

	r.SetContent("X")
	r.SetContent("Y")

	value, version = r.Content()
	assert.Equal(t, "Y", value)
	assert.Equal(t, uint64(2), version)
}

func TestContentChangeWakesWaiter(t *testing.T) {
	r := newRoom("general")
	changed := r.Changed()

	go r.SetContent("new")

	select {
	case <-changed:
	case <-timeout(t):
		t.Fatal("content change never signalled")
	}

	value, _ := r.Content()
	require.Equal(t, "new", value)

	// A fresh Changed channel only fires on the next change.
	select {
	case <-r.Changed():
		t.Fatal("woke without a change")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRestoreContentDoesNotBumpVersion(t *testing.T) {
	r := newRoom("general")
	r.restoreContent("from-store")

	value, version := r.Content()
	assert.Equal(t, "from-store", value)
	assert.Equal(t, uint64(0), version, "restored content must not look dirty to the persister")
}
