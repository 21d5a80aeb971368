package back

import (
	"database/sql"
	"errors"
	"log"

	"inhouse/internal/util"

	"github.com/jmoiron/sqlx"
)

// JoinQueue puts a player in the given role queues of a channel and
// immediately attempts to form a game out of the new queue state. It returns
// the proposed game, if any.
// The whole join + matchmaking attempt runs in the channel's critical
// section so two near-simultaneous joins cannot draft overlapping proposals.
func (b *Back) JoinQueue(channelID string, player Player, roles []Role) (*Game, error) {
	for _, role := range roles {
		if !role.IsValid() {
			return nil, util.ErrPublic("invalid role")
		}
	}

	defer b.channelLocks.lock(channelID)()

	ratings := make([]PlayerRating, len(roles))
	if err := b.transaction(func(tx *sqlx.Tx) error {
		if err := ensurePlayerHasNoUnresolvedGame(tx, player.ID); err != nil {
			return err
		}

		for k, role := range roles {
			rating, err := getOrCreatePlayerRating(tx, player, role)
			if err != nil {
				return err
			}

			ratings[k] = rating
		}

		return nil
	}); err != nil {
		return nil, err
	}

	// The in-memory queues are only touched once the transaction committed,
	// a rollback must not leave queue entries behind.
	for k, role := range roles {
		queued := player
		queued.Rating = ratings[k]
		if b.queue.join(channelID, role, queued) {
			log.Printf(
				"info: player <%s> has been added to the <%s> queue of channel %s",
				player.Name, role.Name(), channelID,
			)
		}
	}

	b.sendQueueStateNotification(channelID, b.queue.snapshot(channelID))

	return b.matchMake(channelID)
}

// matchMake searches the channel's current queues for the best composition
// and proposes it when it qualifies. Called with the channel lock held.
func (b *Back) matchMake(channelID string) (*Game, error) {
	result, ok := b.findBestComposition(b.queue.snapshot(channelID))
	if !ok {
		return nil, nil
	}

	game, err := b.proposeGame(channelID, result)
	if err != nil {
		return nil, err
	}

	return game, nil
}

// ensurePlayerHasNoUnresolvedGame returns ErrAlreadyInGame if a prior game
// of the player still awaits confirmation or a result.
func ensurePlayerHasNoUnresolvedGame(tx *sqlx.Tx, playerID util.UUIDAsBlob) error {
	_, err := getUnresolvedGameByPlayerID(tx, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	return ErrAlreadyInGame
}

// LeaveQueue removes the player from every role queue of the channel, or of
// every channel when everywhere is set.
func (b *Back) LeaveQueue(channelID string, player Player, everywhere bool) {
	if everywhere {
		b.queue.leaveAll(player.ID)
		log.Printf("info: player <%s> has been removed from all queues", player.Name)
	} else {
		defer b.channelLocks.lock(channelID)()
		b.queue.leaveAll(player.ID, channelID)
		log.Printf(
			"info: player <%s> has been removed from the queues of channel %s",
			player.Name, channelID,
		)
	}

	b.sendQueueStateNotification(channelID, b.queue.snapshot(channelID))
}

// LeaveQueueRole removes the player from a single role queue of the channel.
func (b *Back) LeaveQueueRole(channelID string, player Player, role Role) {
	defer b.channelLocks.lock(channelID)()
	b.queue.leave(channelID, role, player.ID)

	b.sendQueueStateNotification(channelID, b.queue.snapshot(channelID))
}

// QueueSnapshot returns a consistent point-in-time view of a channel's
// queues for display.
func (b *Back) QueueSnapshot(channelID string) map[Role][]Player {
	return b.queue.snapshot(channelID)
}
