package back

import (
	"errors"
	"fmt"
	"log"
	"time"

	"inhouse/internal/util"

	"github.com/jmoiron/sqlx"
)

// applyGameRatings records the pre-game rating of every participant and
// persists the post-game ratings for the freshly completed game. Players
// whose rating is frozen keep their stored rating untouched.
func (b *Back) applyGameRatings(tx *sqlx.Tx, game *Game) error {
	players, err := getPlayersByIDs(tx, participantPlayerIDs(game.Participants))
	if err != nil {
		return err
	}

	var composition Composition
	for k := range game.Participants {
		participant := &game.Participants[k]

		rating, err := getPlayerRating(tx, participant.PlayerID, participant.Role)
		if err != nil {
			return err
		}

		// The snapshot is what a later replay of any other participant will
		// see as this player's strength going into the game.
		participant.RatingMu = rating.Mu
		participant.RatingSigma = rating.Sigma
		if err := participant.update(tx); err != nil {
			return err
		}

		composition.setSeat(
			participant.Role, participant.Team,
			players[participant.PlayerID], rating,
		)
	}

	updated := UpdateRatings(composition, game.Winner)
	for k := range composition {
		player := composition[k].Player
		if player.RatingFrozen {
			log.Printf("warning: skipping rating update for frozen player <%s>", player.Name)
			continue
		}

		if err := updated[k].upsert(tx); err != nil {
			return err
		}
	}

	return nil
}

// replayHistories recomputes the rating histories of the given players in a
// single chronological pass over the union of every completed game any of
// them took part in. Replaying the histories together keeps players who
// share a later game consistent with each other: their seats in that game
// are read from the running replay state, never from a stored snapshot that
// predates the correction. The per-participant snapshots of replayed players
// are refreshed along the way and the final ratings persisted per role.
// Frozen players are left out entirely: their seats keep their stored
// snapshots and their stored ratings stay untouched.
// A broken game makes the pass return the inconsistencies it found instead
// of writing anything, the caller rolls the transaction back.
func replayHistories(tx *sqlx.Tx, players map[util.UUIDAsBlob]Player) ([]ReplayInconsistencyError, error) {
	running := map[util.UUIDAsBlob]map[Role]PlayerRating{}
	ids := make([]util.UUIDAsBlob, 0, len(players))
	for id := range players {
		if players[id].RatingFrozen {
			continue
		}

		running[id] = map[Role]PlayerRating{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	games, err := getCompletedGamesByPlayersChronological(tx, ids)
	if err != nil {
		return nil, err
	}

	for k := range games {
		game := &games[k]

		if game.Winner == WinnerUnset {
			return replayInconsistencies(game, running, fmt.Sprintf(
				"completed game %s has no recorded winner", game.ID,
			)), nil
		}
		if len(game.Participants) != 10 {
			return replayInconsistencies(game, running, fmt.Sprintf(
				"game %s has %d participants instead of 10",
				game.ID, len(game.Participants),
			)), nil
		}

		var composition Composition
		for j := range game.Participants {
			participant := &game.Participants[j]

			seatRating := participant.snapshotRating()
			if ratings, ok := running[participant.PlayerID]; ok {
				rating, ok := ratings[participant.Role]
				if !ok {
					rating = NewPlayerRating(participant.PlayerID, participant.Role)
				}
				seatRating = rating

				participant.RatingMu = rating.Mu
				participant.RatingSigma = rating.Sigma
				if err := participant.update(tx); err != nil {
					return nil, err
				}
			}

			composition.setSeat(
				participant.Role, participant.Team,
				Player{ID: participant.PlayerID}, seatRating,
			)
		}

		updated := UpdateRatings(composition, game.Winner)
		for j := range game.Participants {
			participant := game.Participants[j]
			if ratings, ok := running[participant.PlayerID]; ok {
				ratings[participant.Role] = updated[seatIndex(participant.Role, participant.Team)]
			}
		}
	}

	for _, ratings := range running {
		for role := range ratings {
			rating := ratings[role]
			if err := rating.upsert(tx); err != nil {
				return nil, err
			}
		}
	}

	return nil, nil
}

// replayInconsistencies blames every replayed player seated in the broken
// game, all their histories walk through it.
func replayInconsistencies(
	game *Game,
	running map[util.UUIDAsBlob]map[Role]PlayerRating,
	reason string,
) []ReplayInconsistencyError {
	var ret []ReplayInconsistencyError
	for k := range game.Participants {
		id := game.Participants[k].PlayerID
		if _, ok := running[id]; !ok {
			continue
		}

		ret = append(ret, ReplayInconsistencyError{PlayerID: id, Reason: reason})
	}

	return ret
}

// replayParticipantHistories recomputes the rating histories of every
// participant of a corrected game.
func (b *Back) replayParticipantHistories(participants []GameParticipant) error {
	return b.replayPlayerHistories(participantPlayerIDs(participants))
}

// replayPlayerHistories runs the joint replay, freezing the rating of every
// player whose history turns out broken and retrying without them, so one
// broken history does not prevent the others from being recomputed.
func (b *Back) replayPlayerHistories(ids []util.UUIDAsBlob) error {
	var errs []error

	for {
		var inconsistencies []ReplayInconsistencyError
		err := b.transaction(func(tx *sqlx.Tx) error {
			players, err := getPlayersByIDs(tx, ids)
			if err != nil {
				return err
			}

			inconsistencies, err = replayHistories(tx, players)
			if err != nil {
				return err
			}
			if len(inconsistencies) > 0 {
				return errors.New("broken history, rolling the replay back")
			}

			return nil
		})
		if len(inconsistencies) == 0 {
			if err != nil {
				return err
			}

			break
		}

		// Commit the freezes apart from the rolled back replay, the next
		// attempt skips the frozen players.
		if err := b.freezePlayers(inconsistencies); err != nil {
			return err
		}
		for _, inconsistency := range inconsistencies {
			log.Printf("error: %s", inconsistency)
			errs = append(errs, inconsistency)
		}
	}

	return util.ConcatErrors(errs)
}

func (b *Back) freezePlayers(inconsistencies []ReplayInconsistencyError) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		for _, inconsistency := range inconsistencies {
			player, err := getPlayerByID(tx, inconsistency.PlayerID)
			if err != nil {
				return err
			}

			player.RatingFrozen = true
			if err := player.update(tx); err != nil {
				return err
			}
		}

		return nil
	})
}

// Rerank recomputes every player's ratings from scratch. This doubles as
// the repair path after a replay inconsistency: every frozen flag is lifted
// before replaying, and raised again where the history is still broken.
func (b *Back) Rerank() error {
	start := time.Now()

	var players []Player
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		players, err = getAllPlayers(tx)
		return err
	}); err != nil {
		return err
	}

	ids := make([]util.UUIDAsBlob, 0, len(players))
	keys := make([]string, 0, len(players))
	for k := range players {
		ids = append(ids, players[k].ID)
		keys = append(keys, players[k].ID.String())
	}
	defer b.playerLocks.lockAll(keys)()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		for k := range players {
			if !players[k].RatingFrozen {
				continue
			}

			players[k].RatingFrozen = false
			if err := players[k].update(tx); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return err
	}

	err := b.replayPlayerHistories(ids)

	log.Printf("info: recomputed ratings for %d players in %s", len(players), time.Since(start))

	return err
}

func participantPlayerIDs(participants []GameParticipant) []util.UUIDAsBlob {
	ids := make([]util.UUIDAsBlob, 0, len(participants))
	for k := range participants {
		ids = append(ids, participants[k].PlayerID)
	}

	return ids
}
