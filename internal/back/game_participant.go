package back

import (
	"time"

	"inhouse/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A GameParticipant binds one player to one (team, role) seat of a game.
// Immutable once the game is confirmed, except for the champion annotation
// and the pre-game rating snapshot which a correction replay refreshes.
type GameParticipant struct {
	GameID    util.UUIDAsBlob
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	Team     Team
	Role     Role
	Champion null.String

	// Rating the player entered the game with, written when the result is
	// recorded and refreshed when a replay walks through this game. This is
	// what gives another player's replay a well-defined view of this one.
	RatingMu    float64
	RatingSigma float64
}

func NewGameParticipant(gameID util.UUIDAsBlob, seat Seat) GameParticipant {
	return GameParticipant{
		GameID:    gameID,
		PlayerID:  seat.Player.ID,
		CreatedAt: util.TimeAsTimestamp(time.Now()),

		Team: seat.Team,
		Role: seat.Role,

		RatingMu:    seat.Rating.Mu,
		RatingSigma: seat.Rating.Sigma,
	}
}

// snapshotRating returns the pre-game rating recorded on the entry.
func (p *GameParticipant) snapshotRating() PlayerRating {
	return PlayerRating{
		PlayerID: p.PlayerID,
		Role:     p.Role,
		Mu:       p.RatingMu,
		Sigma:    p.RatingSigma,
	}
}

func (p *GameParticipant) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("GameParticipant").SetMap(squirrel.Eq{
		"GameID":      p.GameID,
		"PlayerID":    p.PlayerID,
		"CreatedAt":   p.CreatedAt,
		"Team":        p.Team,
		"Role":        p.Role,
		"Champion":    p.Champion,
		"RatingMu":    p.RatingMu,
		"RatingSigma": p.RatingSigma,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *GameParticipant) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("GameParticipant").SetMap(squirrel.Eq{
		"Champion":    p.Champion,
		"RatingMu":    p.RatingMu,
		"RatingSigma": p.RatingSigma,
	}).
		Where("GameParticipant.GameID = ?", p.GameID).
		Where("GameParticipant.PlayerID = ?", p.PlayerID).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getParticipantsByGameID(tx *sqlx.Tx, gameID util.UUIDAsBlob) ([]GameParticipant, error) {
	var ret []GameParticipant
	query := `
        SELECT * FROM GameParticipant
        WHERE GameParticipant.GameID = ?
        ORDER BY GameParticipant.Role ASC, GameParticipant.Team ASC`

	if err := tx.Select(&ret, query, gameID); err != nil {
		return nil, err
	}

	return ret, nil
}
