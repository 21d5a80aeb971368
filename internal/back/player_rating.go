package back

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"inhouse/internal/util"

	"github.com/jmoiron/sqlx"
)

// Base of the skill Gaussian a player starts a role with.
const (
	RatingBaseMu    = 25.0
	RatingBaseSigma = RatingBaseMu / 3.0
)

// PlayerRating is the skill estimate of one player for one role, a Gaussian
// with mean Mu and uncertainty Sigma. It is created the first time a player
// queues for the role and only ever mutated by the rating update rule,
// applied in chronological game order.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	Role      Role
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp

	Mu    float64
	Sigma float64
}

func NewPlayerRating(playerID util.UUIDAsBlob, role Role) PlayerRating {
	return PlayerRating{
		PlayerID:  playerID,
		Role:      role,
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		UpdatedAt: util.TimeAsTimestamp(time.Now()),

		Mu:    RatingBaseMu,
		Sigma: RatingBaseSigma,
	}
}

// Conservative is the displayable skill estimate, the lower end of the
// Gaussian so that uncertain ratings don't rank above established ones.
func (r PlayerRating) Conservative() float64 {
	return r.Mu - 3.0*r.Sigma
}

// getPlayerRating gets the current rating of a player for a role or returns
// a default rating on the fly.
func getPlayerRating(tx *sqlx.Tx, playerID util.UUIDAsBlob, role Role) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? AND Role = ? LIMIT 1`
	err := tx.Get(&ret, query, playerID, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewPlayerRating(playerID, role), nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

// getOrCreatePlayerRating persists the default rating the first time a
// player queues for a role so the role shows up in rankings right away.
func getOrCreatePlayerRating(tx *sqlx.Tx, player Player, role Role) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? AND Role = ? LIMIT 1`
	err := tx.Get(&ret, query, player.ID, role)
	if err == nil {
		return ret, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return PlayerRating{}, err
	}

	log.Printf("info: creating a new PlayerRating for <%s> <%s>", player.Name, role.Name())
	ret = NewPlayerRating(player.ID, role)
	if err := ret.upsert(tx); err != nil {
		return PlayerRating{}, err
	}

	return ret, nil
}

func getPlayerRatings(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]PlayerRating, error) {
	var ret []PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? ORDER BY Role ASC`
	if err := tx.Select(&ret, query, playerID); err != nil {
		return nil, err
	}

	return ret, nil
}

func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	r.UpdatedAt = util.TimeAsTimestamp(time.Now())

	if _, err := tx.Exec(`
        INSERT INTO PlayerRating (PlayerID, Role, CreatedAt, UpdatedAt, Mu, Sigma)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (PlayerID, Role)
        DO UPDATE SET UpdatedAt = excluded.UpdatedAt,
                      Mu = excluded.Mu,
                      Sigma = excluded.Sigma`,
		r.PlayerID, r.Role, r.CreatedAt, r.UpdatedAt, r.Mu, r.Sigma,
	); err != nil {
		return err
	}

	return nil
}

// GetPlayerRatings returns the stored per-role ratings of a player, roles the
// player never queued for are absent.
func (b *Back) GetPlayerRatings(playerID util.UUIDAsBlob) (ratings []PlayerRating, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		ratings, err = getPlayerRatings(tx, playerID)
		return err
	}); err != nil {
		return nil, err
	}

	return ratings, nil
}
