package trainer

import (
	"github.com/Dosada05/league-simulator/models"
	"github.com/Dosada05/league-simulator/sorters"
)

// MatchView is the read-only slice of a running match the trainer needs.
type MatchView interface {
	Fixture() *models.Fixture
	IsHomeTeam(teamID int) bool
	CurrentScore() models.Score
	Squad(teamID int) *models.SquadRecord
	SubsLeft(teamID int) int
}

// Substitution is a decision to take Out off and bring In on.
type Substitution struct {
	Out *models.Player `json:"out"`
	In  *models.Player `json:"in"`
}

type matchState int

const (
	losing matchState = iota - 1
	drawing
	winning
)

// Trainer decides substitutions for one side of one match.
type Trainer struct {
	view   MatchView
	teamID int
}

func New(view MatchView, teamID int) *Trainer {
	return &Trainer{view: view, teamID: teamID}
}

func (t *Trainer) TeamID() int {
	return t.teamID
}

func (t *Trainer) state() matchState {
	score := t.view.CurrentScore()
	own, other := score.Home, score.Away
	if !t.view.IsHomeTeam(t.teamID) {
		own, other = other, own
	}
	switch {
	case own > other:
		return winning
	case own < other:
		return losing
	}
	return drawing
}

func (t *Trainer) canSubstitute() bool {
	return t.view.SubsLeft(t.teamID) > 0
}

var (
	goalkeeperFallback = []models.Position{models.PositionDefender, models.PositionMidfielder, models.PositionAttacker}
	winningFallback    = []models.Position{models.PositionDefender, models.PositionMidfielder, models.PositionAttacker}
	losingFallback     = []models.Position{models.PositionAttacker, models.PositionMidfielder, models.PositionDefender}
)

// DecideSubstitutionPostInjury picks a bench replacement for an injured
// player. nil means the side stays a player short.
func (t *Trainer) DecideSubstitutionPostInjury(injured *models.Player) *Substitution {
	if injured == nil || !t.canSubstitute() {
		return nil
	}
	bench := t.view.Squad(t.teamID).Bench
	if in := sorters.Strongest(bench, injured.Position); in != nil {
		return &Substitution{Out: injured, In: in}
	}

	var in *models.Player
	switch {
	case injured.Position == models.PositionGoalkeeper:
		in = sorters.StrongestOf(bench, goalkeeperFallback)
	case t.state() == winning:
		in = sorters.StrongestOf(bench, winningFallback)
	case t.state() == losing:
		in = sorters.StrongestOf(bench, losingFallback)
	default:
		if outfield := sorters.ByPower(sorters.Outfield(bench)); len(outfield) > 0 {
			in = outfield[0]
		}
	}
	if in == nil {
		return nil
	}
	return &Substitution{Out: injured, In: in}
}

// DecideSubstitutionPostRedcard rebalances the side after a sending-off. The
// sent-off player is already out; the returned substitution swaps two other
// players. nil means no sensible swap exists.
func (t *Trainer) DecideSubstitutionPostRedcard(sentOff *models.Player) *Substitution {
	if sentOff == nil || !t.canSubstitute() {
		return nil
	}
	squad := t.view.Squad(t.teamID)
	state := t.state()

	if sentOff.Position == models.PositionGoalkeeper {
		in := sorters.Strongest(squad.Bench, models.PositionGoalkeeper)
		if in == nil {
			return nil
		}
		order := sorters.DefensivePriority
		if state == losing {
			order = sorters.OffensivePriority
		}
		out := sorters.LastOfPriority(sorters.Outfield(squad.Playing), order)
		if out == nil {
			return nil
		}
		return &Substitution{Out: out, In: in}
	}

	outPos, chain := models.PositionAttacker, winningFallback
	if state == losing {
		outPos, chain = models.PositionDefender, losingFallback
	}
	out := sorters.Weakest(squad.Playing, outPos)
	if out == nil {
		return nil
	}
	for _, pos := range chain {
		in := sorters.Strongest(squad.Bench, pos)
		if in != nil && in.Power >= out.Power {
			return &Substitution{Out: out, In: in}
		}
	}
	return nil
}
