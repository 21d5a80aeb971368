package back

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ratingBeta is the per-player performance variance of the skill model, one
// sixth of the base mean per the usual TrueSkill parametrization.
const ratingBeta = RatingBaseMu / 6.0

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1} // nolint:gochecknoglobals

// WinProbability returns the probability that the blue side of the
// composition wins: the difference of the team skill means passed through
// the normal CDF scaled by the joint uncertainty of all ten players.
func WinProbability(c Composition) float64 {
	var deltaMu, sigma2 float64
	for k := range c {
		if c[k].Team == TeamBlue {
			deltaMu += c[k].Rating.Mu
		} else {
			deltaMu -= c[k].Rating.Mu
		}

		sigma2 += c[k].Rating.Sigma * c[k].Rating.Sigma
	}

	denom := math.Sqrt(float64(len(c))*ratingBeta*ratingBeta + sigma2)

	return stdNormal.CDF(deltaMu / denom)
}

// UpdateRatings returns the post-game rating of every seat of the
// composition given the recorded winner. The update is the two-team
// TrueSkill rule: both teams move by an amount proportional to how
// surprising the outcome was, teammates move together, and every sigma
// shrinks. There is no dynamics term so sigma never increases.
// The result is indexed like the composition and is a pure function of
// (composition, winner).
func UpdateRatings(c Composition, winner Winner) [10]PlayerRating {
	winningTeam := winner.Team()

	var muWinner, muLoser, sigma2 float64
	for k := range c {
		if c[k].Team == winningTeam {
			muWinner += c[k].Rating.Mu
		} else {
			muLoser += c[k].Rating.Mu
		}

		sigma2 += c[k].Rating.Sigma * c[k].Rating.Sigma
	}

	denom := math.Sqrt(float64(len(c))*ratingBeta*ratingBeta + sigma2)
	t := (muWinner - muLoser) / denom

	// The normal CDF underflows to zero below t ≈ -38, which would make v
	// infinite. Capping how surprising an upset can get keeps every output
	// finite for arbitrarily lopsided compositions.
	if t < -30.0 {
		t = -30.0
	}

	// Mean shift and variance shrink factors, w is always in (0, 1).
	v := stdNormal.Prob(t) / stdNormal.CDF(t)
	w := v * (v + t)

	var ret [10]PlayerRating
	for k := range c {
		rating := c[k].Rating
		shift := (rating.Sigma * rating.Sigma / denom) * v

		if c[k].Team == winningTeam {
			rating.Mu += shift
		} else {
			rating.Mu -= shift
		}

		rating.Sigma *= math.Sqrt(1.0 - (rating.Sigma*rating.Sigma/(denom*denom))*w)

		ret[k] = rating
	}

	return ret
}
