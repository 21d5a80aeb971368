package back

import (
	"testing"

	"inhouse/internal/util"
)

func TestQueueJoinIsIdempotent(t *testing.T) {
	q := newQueue()
	player := NewPlayer("Zoe")

	if !q.join("chan", RoleMid, player) {
		t.Error("first join should report an insertion")
	}
	if q.join("chan", RoleMid, player) {
		t.Error("second join should be a no-op")
	}

	if got := len(q.snapshot("chan")[RoleMid]); got != 1 {
		t.Errorf("expected 1 queued player, got %d", got)
	}

	// The same player may wait on several roles at once.
	if !q.join("chan", RoleTop, player) {
		t.Error("joining another role should report an insertion")
	}
}

func TestQueueSnapshotKeepsJoinOrder(t *testing.T) {
	q := newQueue()
	names := []string{"Ahri", "Bard", "Corki"}
	for _, name := range names {
		q.join("chan", RoleSupport, NewPlayer(name))
	}

	snapshot := q.snapshot("chan")[RoleSupport]
	for k, name := range names {
		if snapshot[k].Name != name {
			t.Fatalf("expected %s at position %d, got %s", name, k, snapshot[k].Name)
		}
	}
}

func TestQueueSnapshotIsACopy(t *testing.T) {
	q := newQueue()
	q.join("chan", RoleBot, NewPlayer("Jinx"))

	snapshot := q.snapshot("chan")
	snapshot[RoleBot][0].Name = "mutated"
	snapshot[RoleTop] = append(snapshot[RoleTop], NewPlayer("stowaway"))

	fresh := q.snapshot("chan")
	if fresh[RoleBot][0].Name != "Jinx" {
		t.Error("mutating a snapshot should not affect the queue")
	}
	if len(fresh[RoleTop]) != 0 {
		t.Error("appending to a snapshot should not affect the queue")
	}
}

func TestQueueLeaveScoping(t *testing.T) {
	q := newQueue()
	player := NewPlayer("Quinn")
	q.join("a", RoleTop, player)
	q.join("a", RoleJungle, player)
	q.join("b", RoleTop, player)

	q.leave("a", RoleTop, player.ID)
	if len(q.snapshot("a")[RoleTop]) != 0 {
		t.Error("leave should remove the player from the role queue")
	}
	if len(q.snapshot("a")[RoleJungle]) != 1 || len(q.snapshot("b")[RoleTop]) != 1 {
		t.Error("leave should not touch other queues")
	}

	q.join("a", RoleTop, player)
	q.leaveAll(player.ID, "a")
	if len(q.snapshot("a")[RoleTop]) != 0 || len(q.snapshot("a")[RoleJungle]) != 0 {
		t.Error("leaveAll with a channel should clear that channel")
	}
	if len(q.snapshot("b")[RoleTop]) != 1 {
		t.Error("leaveAll with a channel should not touch other channels")
	}

	q.leaveAll(player.ID)
	if len(q.snapshot("b")[RoleTop]) != 0 {
		t.Error("leaveAll without a channel should clear every channel")
	}
}

func TestQueueRemovePlayersEverywhere(t *testing.T) {
	q := newQueue()
	drafted := NewPlayer("Taric")
	bystander := NewPlayer("Udyr")

	q.join("a", RoleTop, drafted)
	q.join("a", RoleTop, bystander)
	q.join("a", RoleMid, drafted)
	q.join("b", RoleSupport, drafted)

	q.removePlayers([]util.UUIDAsBlob{drafted.ID})
	if len(q.snapshot("a")[RoleMid]) != 0 || len(q.snapshot("b")[RoleSupport]) != 0 {
		t.Error("removePlayers should sweep every channel and role")
	}
	if len(q.snapshot("a")[RoleTop]) != 1 || q.snapshot("a")[RoleTop][0].ID != bystander.ID {
		t.Error("removePlayers should leave other players in place")
	}
}
