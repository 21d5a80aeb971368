package back

import (
	"errors"
	"fmt"

	"inhouse/internal/util"
)

// Typed outcomes of the queue and lifecycle operations. The chat layer maps
// them to user-facing wording, the core never crashes on them.
var (
	// ErrAlreadyInGame rejects a queue join while a prior game of the
	// player still awaits its result.
	ErrAlreadyInGame = errors.New("player has an unresolved game")

	// ErrNoActiveGame rejects a result report when the player has nothing
	// to score.
	ErrNoActiveGame = errors.New("player has no game to score")

	// ErrAlreadyScored rejects cancelling a game whose result was recorded.
	ErrAlreadyScored = errors.New("game already has a recorded result")

	// ErrNotCancellable rejects any other invalid lifecycle transition.
	ErrNotCancellable = errors.New("game is not in a cancellable state")
)

// ReplayInconsistencyError means a player's chronological game history could
// not be replayed (eg. a completed game without a winner). It freezes the
// player's rating: no automatic update or correction may touch it until the
// history is repaired and a rerank clears the freeze.
type ReplayInconsistencyError struct {
	PlayerID util.UUIDAsBlob
	Reason   string
}

func (e ReplayInconsistencyError) Error() string {
	return fmt.Sprintf("cannot replay rating history of player %s: %s", e.PlayerID, e.Reason)
}
