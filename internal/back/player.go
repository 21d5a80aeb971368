package back

import (
	"database/sql"
	"errors"
	"time"

	"inhouse/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a competitor that can wait in role queues and hold seats in
// games. A player is created the first time they issue a command and is
// never deleted, only their display name moves.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	DiscordID null.String

	// RatingFrozen blocks every automatic rating update for this player, it
	// is raised when their game history could not be replayed and cleared by
	// a successful rerank.
	RatingFrozen bool

	// Rating for the one role being considered, not always loaded.
	Rating PlayerRating `db:"-"`
}

func NewPlayer(name string) Player {
	return Player{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":           p.ID,
		"CreatedAt":    p.CreatedAt,
		"Name":         p.Name,
		"DiscordID":    p.DiscordID,
		"RatingFrozen": p.RatingFrozen,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":         p.Name,
		"DiscordID":    p.DiscordID,
		"RatingFrozen": p.RatingFrozen,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByDiscordID(tx *sqlx.Tx, discordID string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.DiscordID = ? LIMIT 1`
	if err := tx.Get(&ret, query, discordID); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayersByIDs(tx *sqlx.Tx, ids []util.UUIDAsBlob) (map[util.UUIDAsBlob]Player, error) {
	if len(ids) == 0 {
		return map[util.UUIDAsBlob]Player{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM Player WHERE ID IN(?)`, ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	players := make([]Player, 0, len(ids))
	if err := tx.Select(&players, query, args...); err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]Player, len(players))
	for k := range players {
		ret[players[k].ID] = players[k]
	}

	return ret, nil
}

func getAllPlayers(tx *sqlx.Tx) ([]Player, error) {
	var ret []Player
	if err := tx.Select(&ret, `SELECT * FROM Player ORDER BY Player.CreatedAt ASC`); err != nil {
		return nil, err
	}

	return ret, nil
}

// RegisterOrUpdateDiscordPlayer creates a Player on their very first command
// and refreshes their display name on every subsequent one, so a Discord
// rename is picked up without any explicit command.
func (b *Back) RegisterOrUpdateDiscordPlayer(discordID, name string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		var err error
		player, err = getPlayerByDiscordID(tx, discordID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}

			player = NewPlayer(name)
			player.DiscordID = null.StringFrom(discordID)
			return player.insert(tx)
		}

		if player.Name == name {
			return nil
		}

		player.Name = name
		return player.update(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}
