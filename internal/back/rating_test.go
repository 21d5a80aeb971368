package back

import (
	"math"
	"testing"

	"inhouse/internal/util"
)

// evenComposition seats ten distinct players with identical default ratings.
func evenComposition() Composition {
	var c Composition
	for _, role := range Roles {
		for _, team := range []Team{TeamBlue, TeamRed} {
			player := NewPlayer("test")
			c.setSeat(role, team, player, NewPlayerRating(player.ID, role))
		}
	}

	return c
}

func TestWinProbabilityIsEvenForIdenticalTeams(t *testing.T) {
	if p := WinProbability(evenComposition()); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("expected P(blue) = 0.5 for identical teams, got %f", p)
	}
}

func TestWinProbabilityFavorsHigherMu(t *testing.T) {
	c := evenComposition()
	seat := c.Seat(RoleMid, TeamBlue)
	seat.Rating.Mu += 10.0
	c[seatIndex(RoleMid, TeamBlue)] = seat

	p := WinProbability(c)
	if p <= 0.5 {
		t.Errorf("expected P(blue) > 0.5 with a stronger blue mid, got %f", p)
	}

	// Mirroring the strength to the other side mirrors the probability.
	c = evenComposition()
	seat = c.Seat(RoleMid, TeamRed)
	seat.Rating.Mu += 10.0
	c[seatIndex(RoleMid, TeamRed)] = seat

	if q := WinProbability(c); math.Abs(p+q-1.0) > 1e-9 {
		t.Errorf("expected P to mirror (%f + %f != 1)", p, q)
	}
}

func TestUpdateRatingsMovesTeamsApart(t *testing.T) {
	c := evenComposition()
	updated := UpdateRatings(c, WinnerBlue)

	for k := range c {
		before, after := c[k].Rating, updated[k]

		if c[k].Team == TeamBlue && after.Mu <= before.Mu {
			t.Errorf("winner %d should gain mu (%f -> %f)", k, before.Mu, after.Mu)
		}
		if c[k].Team == TeamRed && after.Mu >= before.Mu {
			t.Errorf("loser %d should lose mu (%f -> %f)", k, before.Mu, after.Mu)
		}

		if after.Sigma >= before.Sigma {
			t.Errorf("sigma of %d should shrink (%f -> %f)", k, before.Sigma, after.Sigma)
		}
		if after.Sigma <= 0 {
			t.Errorf("sigma of %d should stay positive, got %f", k, after.Sigma)
		}
	}
}

func TestUpdateRatingsTeammatesMoveTogether(t *testing.T) {
	updated := UpdateRatings(evenComposition(), WinnerRed)

	ref := updated[seatIndex(RoleTop, TeamRed)]
	for _, role := range Roles {
		winner := updated[seatIndex(role, TeamRed)]
		if math.Abs(winner.Mu-ref.Mu) > 1e-9 || math.Abs(winner.Sigma-ref.Sigma) > 1e-9 {
			t.Errorf(
				"equal-rated teammates should move identically, got (%f, %f) vs (%f, %f)",
				winner.Mu, winner.Sigma, ref.Mu, ref.Sigma,
			)
		}
	}
}

func TestUpdateRatingsIsDeterministic(t *testing.T) {
	c := evenComposition()
	seat := c.Seat(RoleBot, TeamBlue)
	seat.Rating.Mu = 42.0
	seat.Rating.Sigma = 2.5
	c[seatIndex(RoleBot, TeamBlue)] = seat

	a := UpdateRatings(c, WinnerBlue)
	b := UpdateRatings(c, WinnerBlue)

	for k := range a {
		if a[k].Mu != b[k].Mu || a[k].Sigma != b[k].Sigma {
			t.Fatalf("same input should yield the same output at seat %d", k)
		}
	}
}

func TestUpdateRatingsUpsetMovesMore(t *testing.T) {
	expected := evenComposition()
	expectedDelta := UpdateRatings(expected, WinnerBlue)[seatIndex(RoleTop, TeamBlue)].Mu -
		RatingBaseMu

	upset := evenComposition()
	for _, role := range Roles {
		seat := upset.Seat(role, TeamRed)
		seat.Rating.Mu += 5.0
		upset[seatIndex(role, TeamRed)] = seat
	}
	upsetDelta := UpdateRatings(upset, WinnerBlue)[seatIndex(RoleTop, TeamBlue)].Mu -
		RatingBaseMu

	if upsetDelta <= expectedDelta {
		t.Errorf(
			"an upset should move ratings more than an expected win (%f <= %f)",
			upsetDelta, expectedDelta,
		)
	}
}

func TestUpdateRatingsExtremeUpsetStaysFinite(t *testing.T) {
	// A mu gap this large pushes the surprise factor into the region where
	// the normal CDF underflows to zero.
	c := evenComposition()
	for _, role := range Roles {
		seat := c.Seat(role, TeamRed)
		seat.Rating.Mu += 10000.0
		c[seatIndex(role, TeamRed)] = seat
	}

	updated := UpdateRatings(c, WinnerBlue)
	for k := range updated {
		if math.IsNaN(updated[k].Mu) || math.IsInf(updated[k].Mu, 0) {
			t.Fatalf("mu of seat %d should stay finite, got %f", k, updated[k].Mu)
		}
		if math.IsNaN(updated[k].Sigma) || updated[k].Sigma <= 0 {
			t.Fatalf("sigma of seat %d should stay positive and finite, got %f", k, updated[k].Sigma)
		}
	}

	winner := updated[seatIndex(RoleTop, TeamBlue)]
	if winner.Mu <= RatingBaseMu {
		t.Errorf("the winning underdog should still gain mu, got %f", winner.Mu)
	}
}

func TestCompositionHasDistinctPlayers(t *testing.T) {
	c := evenComposition()
	if !c.HasDistinctPlayers() {
		t.Error("ten distinct players should be distinct")
	}

	dup := c.Seat(RoleTop, TeamBlue)
	c.setSeat(RoleSupport, TeamRed, dup.Player, dup.Rating)
	if c.HasDistinctPlayers() {
		t.Error("a player seated twice should not be distinct")
	}
}

func TestSeatIndexCoversEverySeat(t *testing.T) {
	seen := map[int]bool{}
	for _, role := range Roles {
		for _, team := range []Team{TeamBlue, TeamRed} {
			k := seatIndex(role, team)
			if k < 0 || k >= 10 || seen[k] {
				t.Fatalf("seat index collision or overflow for (%s, %s): %d", role.Name(), team.Name(), k)
			}
			seen[k] = true
		}
	}
}

func TestConservativeRating(t *testing.T) {
	rating := NewPlayerRating(util.NewUUIDAsBlob(), RoleMid)
	if c := rating.Conservative(); math.Abs(c-(RatingBaseMu-3*RatingBaseSigma)) > 1e-9 {
		t.Errorf("unexpected conservative default: %f", c)
	}
}
