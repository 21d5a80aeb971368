package back

import (
	"fmt"
	"strings"

	"inhouse/internal/util"
)

// Team is one of the two sides of a game.
type Team int

const ( // this is stored in DB, don't change values
	TeamBlue Team = 0
	TeamRed  Team = 1
)

func (t Team) Name() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	default:
		return "invalid"
	}
}

func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamRed
	}

	return TeamBlue
}

// A Seat assigns one player to one (team, role) slot.
type Seat struct {
	Team   Team
	Role   Role
	Player Player
	Rating PlayerRating
}

// A Composition is a full 10-seat assignment, one seat per (team, role)
// pair. Seats are ordered by role then team so that two compositions built
// from the same assignments are identical.
type Composition [10]Seat

func seatIndex(role Role, team Team) int {
	return int(role)*2 + int(team)
}

func (c *Composition) setSeat(role Role, team Team, player Player, rating PlayerRating) {
	c[seatIndex(role, team)] = Seat{
		Team:   team,
		Role:   role,
		Player: player,
		Rating: rating,
	}
}

func (c Composition) Seat(role Role, team Team) Seat {
	return c[seatIndex(role, team)]
}

func (c Composition) PlayerIDs() []util.UUIDAsBlob {
	ids := make([]util.UUIDAsBlob, 0, len(c))
	for k := range c {
		ids = append(ids, c[k].Player.ID)
	}

	return ids
}

// HasDistinctPlayers returns false if one player holds more than one seat,
// which happens when the same player was drafted out of two role queues.
func (c Composition) HasDistinctPlayers() bool {
	seen := make(map[util.UUIDAsBlob]struct{}, len(c))
	for k := range c {
		if _, ok := seen[c[k].Player.ID]; ok {
			return false
		}
		seen[c[k].Player.ID] = struct{}{}
	}

	return true
}

// String renders the composition as a plain text table fit for a code block.
func (c Composition) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s%-20s%-20s\n", "", "blue", "red")
	for _, role := range Roles {
		fmt.Fprintf(
			&sb, "%-10s%-20s%-20s\n",
			role.Name(),
			c.Seat(role, TeamBlue).Player.Name,
			c.Seat(role, TeamRed).Player.Name,
		)
	}

	return sb.String()
}
