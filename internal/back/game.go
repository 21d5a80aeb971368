package back

import (
	"time"

	"inhouse/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type GameStatus int

const ( // this is stored in DB, don't change values
	GameStatusProposed  GameStatus = 0 // waiting for the players to accept
	GameStatusOngoing   GameStatus = 1 // accepted, being played
	GameStatusCompleted GameStatus = 2 // winner recorded
	GameStatusCancelled GameStatus = 3 // declined proposal or administrative void
)

func (s GameStatus) Name() string {
	switch s {
	case GameStatusProposed:
		return "proposed"
	case GameStatusOngoing:
		return "ongoing"
	case GameStatusCompleted:
		return "completed"
	case GameStatusCancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}

type Winner int

const ( // this is stored in DB, don't change values
	WinnerUnset Winner = 0
	WinnerBlue  Winner = 1
	WinnerRed   Winner = 2
)

func winnerOfTeam(team Team) Winner {
	if team == TeamBlue {
		return WinnerBlue
	}

	return WinnerRed
}

// Team panics on WinnerUnset, callers check for a recorded winner first.
func (w Winner) Team() Team {
	switch w {
	case WinnerBlue:
		return TeamBlue
	case WinnerRed:
		return TeamRed
	default:
		panic("no team for an unset winner")
	}
}

func (w Winner) Name() string {
	switch w {
	case WinnerBlue:
		return "blue"
	case WinnerRed:
		return "red"
	default:
		return "unset"
	}
}

// A Game is one 5v5 assignment of ten distinct players moving through the
// proposed → ongoing → completed lifecycle, with cancellation as the
// alternate exit.
type Game struct {
	ID          util.UUIDAsBlob
	CreatedAt   util.TimeAsTimestamp
	CompletedAt util.NullTimeAsTimestamp
	ChannelID   string
	Status      GameStatus
	Winner      Winner

	// Matchmaking verdict at proposal time.
	Score    float64
	Mismatch bool

	Participants []GameParticipant `db:"-"`
}

func NewGame(channelID string, composition Composition, score float64, mismatch bool) Game {
	game := Game{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		ChannelID: channelID,
		Status:    GameStatusProposed,
		Winner:    WinnerUnset,
		Score:     score,
		Mismatch:  mismatch,
	}

	game.Participants = make([]GameParticipant, 0, len(composition))
	for k := range composition {
		game.Participants = append(
			game.Participants,
			NewGameParticipant(game.ID, composition[k]),
		)
	}

	return game
}

// IsResolved is true once the game reached a terminal state.
func (g *Game) IsResolved() bool {
	return g.Status == GameStatusCompleted || g.Status == GameStatusCancelled
}

func (g *Game) canCancel() error {
	switch g.Status {
	case GameStatusProposed, GameStatusOngoing:
		return nil
	case GameStatusCompleted:
		return ErrAlreadyScored
	default:
		return ErrNotCancellable
	}
}

// participant returns the entry of the given player, the second return
// value is false if the player holds no seat in the game.
func (g *Game) participant(playerID util.UUIDAsBlob) (GameParticipant, bool) {
	for k := range g.Participants {
		if g.Participants[k].PlayerID == playerID {
			return g.Participants[k], true
		}
	}

	return GameParticipant{}, false
}

func (g *Game) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Game").SetMap(squirrel.Eq{
		"ID":          g.ID,
		"CreatedAt":   g.CreatedAt,
		"CompletedAt": g.CompletedAt,
		"ChannelID":   g.ChannelID,
		"Status":      g.Status,
		"Winner":      g.Winner,
		"Score":       g.Score,
		"Mismatch":    g.Mismatch,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	for k := range g.Participants {
		if err := g.Participants[k].insert(tx); err != nil {
			return err
		}
	}

	return nil
}

func (g *Game) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Game").SetMap(squirrel.Eq{
		"CompletedAt": g.CompletedAt,
		"Status":      g.Status,
		"Winner":      g.Winner,
	}).Where("Game.ID = ?", g.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (g *Game) loadParticipants(tx *sqlx.Tx) error {
	participants, err := getParticipantsByGameID(tx, g.ID)
	if err != nil {
		return err
	}

	g.Participants = participants
	return nil
}

func getGameByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Game, error) {
	var ret Game
	query := `SELECT * FROM Game WHERE Game.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Game{}, err
	}

	if err := ret.loadParticipants(tx); err != nil {
		return Game{}, err
	}

	return ret, nil
}

// getUnresolvedGameByPlayerID returns the game blocking the player from
// queueing again, ie. their proposed or ongoing game if any.
func getUnresolvedGameByPlayerID(tx *sqlx.Tx, playerID util.UUIDAsBlob) (Game, error) {
	return getLastGameByPlayerAndStatuses(
		tx, playerID,
		GameStatusProposed, GameStatusOngoing,
	)
}

// getScoreableGameByPlayerID returns the game a result report of the player
// applies to: their most recent ongoing or completed game. Reporting on a
// completed game is how corrections happen.
func getScoreableGameByPlayerID(tx *sqlx.Tx, playerID util.UUIDAsBlob) (Game, error) {
	return getLastGameByPlayerAndStatuses(
		tx, playerID,
		GameStatusOngoing, GameStatusCompleted,
	)
}

func getLastGameByPlayerAndStatuses(
	tx *sqlx.Tx,
	playerID util.UUIDAsBlob,
	statuses ...GameStatus,
) (Game, error) {
	query, args, err := sqlx.In(`
        SELECT Game.* FROM Game
        INNER JOIN GameParticipant ON(GameParticipant.GameID = Game.ID)
        WHERE GameParticipant.PlayerID = ? AND Game.Status IN(?)
        ORDER BY Game.CreatedAt DESC, Game.ID DESC
        LIMIT 1`,
		playerID, statuses,
	)
	if err != nil {
		return Game{}, err
	}

	var ret Game
	if err := tx.Get(&ret, tx.Rebind(query), args...); err != nil {
		return Game{}, err
	}

	if err := ret.loadParticipants(tx); err != nil {
		return Game{}, err
	}

	return ret, nil
}

// getCompletedGamesByPlayersChronological returns the union of the players'
// completed games, each game once, ordered by creation time. This is the
// order rating replays walk.
func getCompletedGamesByPlayersChronological(tx *sqlx.Tx, playerIDs []util.UUIDAsBlob) ([]Game, error) {
	query, args, err := sqlx.In(`
        SELECT DISTINCT Game.* FROM Game
        INNER JOIN GameParticipant ON(GameParticipant.GameID = Game.ID)
        WHERE GameParticipant.PlayerID IN(?) AND Game.Status = ?
        ORDER BY Game.CreatedAt ASC, Game.ID ASC`,
		playerIDs, GameStatusCompleted,
	)
	if err != nil {
		return nil, err
	}

	var ret []Game
	if err := tx.Select(&ret, tx.Rebind(query), args...); err != nil {
		return nil, err
	}

	for k := range ret {
		if err := ret[k].loadParticipants(tx); err != nil {
			return nil, err
		}
	}

	return ret, nil
}

func getUnresolvedGames(tx *sqlx.Tx) ([]Game, error) {
	var ret []Game
	query := `
        SELECT * FROM Game
        WHERE Game.Status IN(?, ?)
        ORDER BY Game.CreatedAt ASC`

	if err := tx.Select(&ret, query, GameStatusProposed, GameStatusOngoing); err != nil {
		return nil, err
	}

	for k := range ret {
		if err := ret[k].loadParticipants(tx); err != nil {
			return nil, err
		}
	}

	return ret, nil
}

func getStaleProposedGames(tx *sqlx.Tx, olderThan time.Time) ([]Game, error) {
	var ret []Game
	query := `
        SELECT * FROM Game
        WHERE Game.Status = ? AND Game.CreatedAt < ?
        ORDER BY Game.CreatedAt ASC`

	if err := tx.Select(
		&ret, query,
		GameStatusProposed, util.TimeAsTimestamp(olderThan),
	); err != nil {
		return nil, err
	}

	return ret, nil
}
