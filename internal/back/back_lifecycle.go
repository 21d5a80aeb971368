package back

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"inhouse/internal/util"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// proposeGame persists the composition as a Game in its proposed state and
// notifies the channel. Players are NOT removed from the queues yet, that
// only happens at confirmation, so a declined proposal leaves every queue
// intact.
func (b *Back) proposeGame(channelID string, result matchmakingResult) (*Game, error) {
	game := NewGame(channelID, result.composition, result.score, result.mismatch)

	if err := b.transaction(func(tx *sqlx.Tx) error {
		// The queues can still hold players whose previous proposal is
		// pending, never draft those into a second game.
		for _, id := range result.composition.PlayerIDs() {
			if err := ensurePlayerHasNoUnresolvedGame(tx, id); err != nil {
				return err
			}
		}

		return game.insert(tx)
	}); err != nil {
		if errors.Is(err, ErrAlreadyInGame) {
			log.Printf("debug: skipping proposal, a drafted player is already in a game")
			return nil, nil
		}
		return nil, err
	}

	log.Printf(
		"info: proposed game %s on channel %s (score %f, mismatch: %t)",
		game.ID, channelID, result.score, result.mismatch,
	)
	b.sendProposalNotification(&game, result.composition)

	return &game, nil
}

// ConfirmGame transitions a proposed game to ongoing and removes its ten
// players from every role queue of every channel in one step.
func (b *Back) ConfirmGame(gameID util.UUIDAsBlob) (Game, error) {
	var game Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getGameByID(tx, gameID)
		if err != nil {
			return err
		}

		if game.Status != GameStatusProposed {
			return ErrNotCancellable
		}

		game.Status = GameStatusOngoing
		return game.update(tx)
	}); err != nil {
		return Game{}, err
	}

	ids := make([]util.UUIDAsBlob, 0, len(game.Participants))
	for k := range game.Participants {
		ids = append(ids, game.Participants[k].PlayerID)
	}
	b.queue.removePlayers(ids)

	log.Printf("info: confirmed game %s, removed its players from all queues", game.ID)
	b.sendQueueStateNotification(game.ChannelID, b.queue.snapshot(game.ChannelID))

	return game, nil
}

// DeclineGame voids a proposed game, the drafted players stay in their
// queues as if the proposal never happened.
func (b *Back) DeclineGame(gameID util.UUIDAsBlob) (Game, error) {
	var game Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getGameByID(tx, gameID)
		if err != nil {
			return err
		}

		if game.Status != GameStatusProposed {
			return ErrNotCancellable
		}

		game.Status = GameStatusCancelled
		return game.update(tx)
	}); err != nil {
		return Game{}, err
	}

	log.Printf("info: declined game %s", game.ID)
	b.sendProposalDeclinedNotification(&game, "the proposal was declined")

	return game, nil
}

// CancelGame administratively voids a proposed or ongoing game. No rating
// was ever applied to it (ratings only move once a winner is recorded) so
// there is nothing to undo beyond the state change.
func (b *Back) CancelGame(gameID util.UUIDAsBlob) (Game, error) {
	var game Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getGameByID(tx, gameID)
		if err != nil {
			return err
		}

		if err := game.canCancel(); err != nil {
			return err
		}

		game.Status = GameStatusCancelled
		return game.update(tx)
	}); err != nil {
		return Game{}, err
	}

	log.Printf("info: cancelled game %s", game.ID)

	return game, nil
}

// ReportResult scores the most recent ongoing or completed game of the
// player as a win or loss for their team. Reporting a different result on an
// already completed game is a correction: the winner is overwritten and the
// rating history of all ten participants is replayed from scratch.
func (b *Back) ReportResult(player Player, claimedWin bool) (Game, error) {
	var game Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getScoreableGameByPlayerID(tx, player.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoActiveGame
			}
			return err
		}
		return nil
	}); err != nil {
		return Game{}, err
	}

	participant, ok := game.participant(player.ID)
	if !ok {
		return Game{}, ErrNoActiveGame
	}

	team := participant.Team
	if !claimedWin {
		team = team.Opponent()
	}
	winner := winnerOfTeam(team)

	// Serialize on every participant, a concurrent report or correction
	// touching any of these ten histories must wait.
	defer b.playerLocks.lockAll(playerLockKeys(game.Participants))()

	var correction bool
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getGameByID(tx, game.ID)
		if err != nil {
			return err
		}

		switch {
		case game.Winner == WinnerUnset:
			if game.Status != GameStatusOngoing {
				return ErrNoActiveGame
			}

			game.Winner = winner
			game.Status = GameStatusCompleted
			game.CompletedAt = util.NewNullTimeAsTimestamp(time.Now())
			if err := game.update(tx); err != nil {
				return err
			}

			return b.applyGameRatings(tx, &game)
		case game.Winner == winner:
			// Same result reported twice, nothing to do.
			return nil
		default:
			correction = true
			game.Winner = winner
			return game.update(tx)
		}
	}); err != nil {
		return Game{}, err
	}

	if correction {
		log.Printf(
			"info: game %s result changed to a %s side victory, replaying histories",
			game.ID, game.Winner.Name(),
		)
		b.sendCorrectionNotification(&game)

		if err := b.replayParticipantHistories(game.Participants); err != nil {
			return game, err
		}

		return game, nil
	}

	b.sendResultNotification(&game)

	return game, nil
}

// SetChampion annotates the champion a player used in their most recent
// scoreable game, or in the given game.
func (b *Back) SetChampion(player Player, champion string, gameID *util.UUIDAsBlob) (Game, error) {
	var game Game
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		if gameID != nil {
			game, err = getGameByID(tx, *gameID)
		} else {
			game, err = getScoreableGameByPlayerID(tx, player.ID)
		}
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoActiveGame
			}
			return err
		}

		for k := range game.Participants {
			if game.Participants[k].PlayerID == player.ID {
				game.Participants[k].Champion = null.StringFrom(champion)
				return game.Participants[k].update(tx)
			}
		}

		return ErrNoActiveGame
	}); err != nil {
		return Game{}, err
	}

	return game, nil
}

// GetUnresolvedGames lists every proposed and ongoing game for display.
func (b *Back) GetUnresolvedGames() (games []Game, players map[util.UUIDAsBlob]Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		games, err = getUnresolvedGames(tx)
		if err != nil {
			return err
		}

		ids := make([]util.UUIDAsBlob, 0, len(games)*10)
		for k := range games {
			for _, participant := range games[k].Participants {
				ids = append(ids, participant.PlayerID)
			}
		}

		players, err = getPlayersByIDs(tx, ids)
		return err
	}); err != nil {
		return nil, nil, err
	}

	return games, players, nil
}

// expireStaleProposals declines every proposed game that outlived the
// confirmation timeout, releasing its players back to matchmaking. No queue
// entry was removed at proposal time so there is nothing to restore.
func (b *Back) expireStaleProposals() error {
	var expired []Game
	if err := b.transaction(func(tx *sqlx.Tx) error {
		games, err := getStaleProposedGames(tx, time.Now().Add(-b.proposalTimeout))
		if err != nil {
			return err
		}

		for k := range games {
			games[k].Status = GameStatusCancelled
			if err := games[k].update(tx); err != nil {
				return err
			}
		}

		expired = games
		return nil
	}); err != nil {
		return err
	}

	for k := range expired {
		log.Printf("info: proposal %s expired", expired[k].ID)
		b.sendProposalDeclinedNotification(&expired[k], "nobody confirmed in time")
	}

	return nil
}

func playerLockKeys(participants []GameParticipant) []string {
	keys := make([]string, 0, len(participants))
	for k := range participants {
		keys = append(keys, participants[k].PlayerID.String())
	}

	return keys
}
