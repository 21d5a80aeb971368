package back

import (
	"sync"
	"time"

	"inhouse/internal/util"
)

type queueEntry struct {
	Player   Player
	JoinedAt time.Time
}

// queue is the in-memory store of waiting players, keyed by channel then
// role. It holds no matchmaking logic. Entries keep their join order so the
// matchmaker enumerates candidates deterministically and earlier joiners get
// considered first when a role is capped.
// Every access goes through the single lock and the maps are never handed
// out, snapshots are copies.
type queue struct {
	mu       sync.Mutex
	channels map[string]map[Role][]queueEntry
}

func newQueue() *queue {
	return &queue{
		channels: map[string]map[Role][]queueEntry{},
	}
}

// join adds the player to queue[channel][role] and returns false if they
// already waited there (re-joining the same role is a no-op).
func (q *queue) join(channelID string, role Role, player Player) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	roles, ok := q.channels[channelID]
	if !ok {
		roles = map[Role][]queueEntry{}
		q.channels[channelID] = roles
	}

	for k := range roles[role] {
		if roles[role][k].Player.ID == player.ID {
			return false
		}
	}

	roles[role] = append(roles[role], queueEntry{
		Player:   player,
		JoinedAt: time.Now(),
	})

	return true
}

// leave removes the player from queue[channel][role], a no-op if absent.
func (q *queue) leave(channelID string, role Role, playerID util.UUIDAsBlob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(channelID, role, playerID)
}

// leaveAll removes the player from every role of the given channels, or of
// every channel when none is given.
func (q *queue) leaveAll(playerID util.UUIDAsBlob, channelIDs ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(channelIDs) == 0 {
		for channelID := range q.channels {
			channelIDs = append(channelIDs, channelID)
		}
	}

	for _, channelID := range channelIDs {
		for role := range q.channels[channelID] {
			q.removeLocked(channelID, role, playerID)
		}
	}
}

// removePlayers removes the given players from every role queue of every
// channel in one step, so a drafted player cannot linger in another queue.
func (q *queue) removePlayers(ids []util.UUIDAsBlob) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range ids {
		for channelID := range q.channels {
			for role := range q.channels[channelID] {
				q.removeLocked(channelID, role, id)
			}
		}
	}
}

func (q *queue) removeLocked(channelID string, role Role, playerID util.UUIDAsBlob) {
	entries := q.channels[channelID][role]
	for k := range entries {
		if entries[k].Player.ID == playerID {
			q.channels[channelID][role] = append(entries[:k:k], entries[k+1:]...)
			return
		}
	}
}

// snapshot returns a point-in-time copy of a channel's queues, players per
// role in join order.
func (q *queue) snapshot(channelID string) map[Role][]Player {
	q.mu.Lock()
	defer q.mu.Unlock()

	ret := make(map[Role][]Player, len(Roles))
	for _, role := range Roles {
		entries := q.channels[channelID][role]
		players := make([]Player, 0, len(entries))
		for k := range entries {
			players = append(players, entries[k].Player)
		}

		ret[role] = players
	}

	return ret
}
