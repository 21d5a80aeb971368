package back

import (
	"log"
	"math"
)

const (
	// A composition scoring above the balanced threshold is proposed as-is,
	// one between the two thresholds is proposed with a mismatch warning,
	// anything below keeps the queue open.
	matchmakingBalancedThreshold   = -0.1
	matchmakingAcceptableThreshold = -0.2
)

type matchmakingResult struct {
	composition Composition
	score       float64
	mismatch    bool
}

type matchmakingVerdict int

const (
	verdictRejected matchmakingVerdict = iota
	verdictMismatch
	verdictBalanced
)

// scoreVerdict classifies a composition score against the acceptance
// thresholds. Both thresholds are inclusive on their lower side: a score of
// exactly -0.1 is still a mismatch proposal and a score of exactly -0.2 is
// already rejected.
func scoreVerdict(score float64) matchmakingVerdict {
	switch {
	case score <= matchmakingAcceptableThreshold:
		return verdictRejected
	case score <= matchmakingBalancedThreshold:
		return verdictMismatch
	default:
		return verdictBalanced
	}
}

// findBestComposition searches a queue snapshot for the 10-player
// composition whose predicted blue win probability is closest to 0.5.
// For every role it enumerates each ordered pair of distinct waiting players
// (first on blue, second on red) and walks the Cartesian product of the five
// pair lists, skipping assignments that would seat one player twice.
// The search is O(∏ n·(n−1)) over the per-role queue sizes, fine for the
// tens of players an inhouse channel sees. maxCandidatesPerRole caps each
// role at the earliest joiners so cost stays bounded if queues ever grow.
// Ties keep the first composition found, the enumeration order is fixed.
func (b *Back) findBestComposition(snapshot map[Role][]Player) (matchmakingResult, bool) {
	for _, role := range Roles {
		if len(snapshot[role]) < 2 {
			log.Printf("debug: not enough players in <%s> queue to start matchmaking", role.Name())
			return matchmakingResult{}, false
		}
	}

	var pairs [len(Roles)][][2]Player
	for k, role := range Roles {
		players := snapshot[role]
		if len(players) > b.maxCandidatesPerRole {
			players = players[:b.maxCandidatesPerRole]
		}

		for i := range players {
			for j := range players {
				if i == j {
					continue
				}

				pairs[k] = append(pairs[k], [2]Player{players[i], players[j]})
			}
		}
	}

	best := matchmakingResult{score: math.Inf(-1)}
	found := false

	var indices [len(Roles)]int
	for {
		var composition Composition
		for k, role := range Roles {
			pair := pairs[k][indices[k]]
			composition.setSeat(role, TeamBlue, pair[0], pair[0].Rating)
			composition.setSeat(role, TeamRed, pair[1], pair[1].Rating)
		}

		if composition.HasDistinctPlayers() {
			score := -math.Abs(0.5 - WinProbability(composition))
			if score > best.score {
				best = matchmakingResult{composition: composition, score: score}
				found = true
			}
		}

		if !advanceIndices(&indices, &pairs) {
			break
		}
	}

	if !found {
		log.Print("debug: no composition with 10 distinct players")
		return matchmakingResult{}, false
	}

	log.Printf("info: the best composition found had a score of %f", best.score)

	switch scoreVerdict(best.score) {
	case verdictRejected:
		return matchmakingResult{}, false
	case verdictMismatch:
		best.mismatch = true
	}

	return best, true
}

// advanceIndices moves the product cursor to the next combination, odometer
// style, and returns false once every combination has been visited.
func advanceIndices(indices *[len(Roles)]int, pairs *[len(Roles)][][2]Player) bool {
	for k := len(indices) - 1; k >= 0; k-- {
		indices[k]++
		if indices[k] < len(pairs[k]) {
			return true
		}

		indices[k] = 0
	}

	return false
}
