package back

import (
	"math"
	"testing"
)

func matchmakingTestBack() *Back {
	return &Back{maxCandidatesPerRole: DefaultMaxCandidatesPerRole}
}

// queuedPlayer builds a waiting player carrying the rating the matchmaker
// reads, the way JoinQueue attaches it.
func queuedPlayer(name string, mu float64) Player {
	player := NewPlayer(name)
	rating := NewPlayerRating(player.ID, RoleTop)
	rating.Mu = mu
	player.Rating = rating

	return player
}

// evenSnapshot queues two default-rated players per role.
func evenSnapshot() map[Role][]Player {
	snapshot := map[Role][]Player{}
	for _, role := range Roles {
		snapshot[role] = []Player{
			queuedPlayer("a-"+role.Name(), RatingBaseMu),
			queuedPlayer("b-"+role.Name(), RatingBaseMu),
		}
	}

	return snapshot
}

func TestScoreVerdictExactBoundaries(t *testing.T) {
	cases := []struct {
		score    float64
		expected matchmakingVerdict
	}{
		{0.0, verdictBalanced},
		{-0.05, verdictBalanced},
		{matchmakingBalancedThreshold, verdictMismatch}, // exactly -0.1 still plays
		{-0.15, verdictMismatch},
		{matchmakingAcceptableThreshold, verdictRejected}, // exactly -0.2 does not
		{-0.3, verdictRejected},
	}

	for _, c := range cases {
		if got := scoreVerdict(c.score); got != c.expected {
			t.Errorf("score %f: expected verdict %d, got %d", c.score, c.expected, got)
		}
	}
}

func TestFindBestCompositionNeedsTwoPerRole(t *testing.T) {
	back := matchmakingTestBack()

	snapshot := evenSnapshot()
	snapshot[RoleJungle] = snapshot[RoleJungle][:1]

	if _, ok := back.findBestComposition(snapshot); ok {
		t.Error("a role with a single waiting player cannot be filled twice")
	}
}

func TestFindBestCompositionBalanced(t *testing.T) {
	back := matchmakingTestBack()

	result, ok := back.findBestComposition(evenSnapshot())
	if !ok {
		t.Fatal("ten equal players should always match")
	}

	if result.mismatch {
		t.Error("ten equal players should not be a mismatch")
	}
	if math.Abs(result.score) > 1e-9 {
		t.Errorf("ten equal players should score 0, got %f", result.score)
	}
	if !result.composition.HasDistinctPlayers() {
		t.Error("the proposed composition must seat ten distinct players")
	}
}

func TestFindBestCompositionMismatchWarning(t *testing.T) {
	back := matchmakingTestBack()

	// A 10 mu gap on one role lands between the two thresholds: playable,
	// but flagged.
	snapshot := evenSnapshot()
	snapshot[RoleMid] = []Player{
		queuedPlayer("strong-mid", RatingBaseMu+10.0),
		queuedPlayer("weak-mid", RatingBaseMu),
	}

	result, ok := back.findBestComposition(snapshot)
	if !ok {
		t.Fatal("a slight mismatch should still be proposed")
	}
	if !result.mismatch {
		t.Errorf("a 10 mu gap should be flagged as a mismatch (score %f)", result.score)
	}
}

func TestFindBestCompositionRejectsLopsidedGames(t *testing.T) {
	back := matchmakingTestBack()

	snapshot := evenSnapshot()
	snapshot[RoleMid] = []Player{
		queuedPlayer("smurf", RatingBaseMu+25.0),
		queuedPlayer("weak-mid", RatingBaseMu),
	}

	if _, ok := back.findBestComposition(snapshot); ok {
		t.Error("a 25 mu gap cannot be balanced with 2 players and should not match")
	}
}

func TestFindBestCompositionPrefersTheClosestGame(t *testing.T) {
	back := matchmakingTestBack()

	// With a third mid of equal strength the smurf can be left out.
	snapshot := evenSnapshot()
	smurf := queuedPlayer("smurf", RatingBaseMu+25.0)
	snapshot[RoleMid] = []Player{
		smurf,
		queuedPlayer("mid-1", RatingBaseMu),
		queuedPlayer("mid-2", RatingBaseMu),
	}

	result, ok := back.findBestComposition(snapshot)
	if !ok {
		t.Fatal("a perfectly balanced assignment exists and should be found")
	}
	if math.Abs(result.score) > 1e-9 {
		t.Errorf("expected a perfectly even game, got score %f", result.score)
	}

	for _, team := range []Team{TeamBlue, TeamRed} {
		if result.composition.Seat(RoleMid, team).Player.ID == smurf.ID {
			t.Error("the best composition should bench the smurf")
		}
	}
}

func TestFindBestCompositionRequiresDistinctPlayers(t *testing.T) {
	back := matchmakingTestBack()

	// The only jungle candidates both also wait in top, every assignment
	// would seat someone twice.
	snapshot := evenSnapshot()
	snapshot[RoleJungle] = []Player{
		snapshot[RoleTop][0],
		snapshot[RoleTop][1],
	}

	if _, ok := back.findBestComposition(snapshot); ok {
		t.Error("no valid composition exists when every candidate would be seated twice")
	}
}

func TestFindBestCompositionHonorsCandidateCap(t *testing.T) {
	back := &Back{maxCandidatesPerRole: 2}

	// The only player able to balance the strong first joiner is third in
	// line and must be ignored under the cap.
	snapshot := evenSnapshot()
	snapshot[RoleMid] = []Player{
		queuedPlayer("strong-early", RatingBaseMu+25.0),
		queuedPlayer("weak-early", RatingBaseMu),
		queuedPlayer("strong-late", RatingBaseMu+25.0),
	}

	if _, ok := back.findBestComposition(snapshot); ok {
		t.Error("the candidate cap should exclude the late joiner that would balance the game")
	}

	back.maxCandidatesPerRole = 3
	result, ok := back.findBestComposition(snapshot)
	if !ok {
		t.Fatal("without the cap the two strong mids should face each other")
	}
	if math.Abs(result.score) > 1e-9 {
		t.Errorf("expected an even strong-vs-strong game, got score %f", result.score)
	}
}

func TestAdvanceIndicesEnumeratesTheFullProduct(t *testing.T) {
	var pairs [len(Roles)][][2]Player
	sizes := []int{2, 3, 1, 2, 2}
	for k, n := range sizes {
		pairs[k] = make([][2]Player, n)
	}

	var indices [len(Roles)]int
	count := 1
	for advanceIndices(&indices, &pairs) {
		count++
	}

	if count != 2*3*1*2*2 {
		t.Errorf("expected 24 combinations, got %d", count)
	}
}
