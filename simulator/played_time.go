package simulator

import "github.com/Dosada05/league-simulator/models"

// PlayedTime computes the minutes a player spent on the pitch from the
// occurrence log. bucket is where the player finished; matchMinutes is the
// minute the match reached.
func PlayedTime(occurrences []models.Occurrence, playerID int, bucket models.SquadBucket, matchMinutes int) int {
	if bucket == models.BucketBench || bucket == "" {
		return 0
	}

	cameOn := 0
	for _, o := range occurrences {
		if o.Type == models.OccurrenceSubstitution && o.PlayerInID == playerID {
			cameOn = o.Minute
			break
		}
	}
	if bucket == models.BucketPlaying {
		return matchMinutes - cameOn
	}

	for _, o := range occurrences {
		if o.PlayerID != playerID {
			continue
		}
		switch o.Type {
		case models.OccurrenceSubstitution, models.OccurrenceRedCard, models.OccurrenceInjury:
			if o.Minute >= cameOn {
				return o.Minute - cameOn
			}
		}
	}
	return matchMinutes - cameOn
}

// Participation summarizes one player's match for the post-round step.
type Participation struct {
	Player    *models.Player
	TeamID    int
	LeftBench bool
	Minutes   int
	Goals     int
	Injured   bool
	RedCarded bool
}

// Participations lists every player of both squads with their aggregated
// occurrences, home side first.
func (s *Simulator) Participations() []Participation {
	goals := make(map[int]int)
	injured := make(map[int]bool)
	sentOff := make(map[int]bool)
	for _, o := range s.occurrences {
		switch o.Type {
		case models.OccurrenceGoal:
			goals[o.PlayerID]++
		case models.OccurrenceInjury:
			injured[o.PlayerID] = true
		case models.OccurrenceRedCard:
			sentOff[o.PlayerID] = true
		}
	}

	var out []Participation
	for _, sd := range s.sides() {
		add := func(players []*models.Player, bucket models.SquadBucket) {
			for _, p := range players {
				out = append(out, Participation{
					Player:    p,
					TeamID:    sd.team.ID,
					LeftBench: bucket != models.BucketBench,
					Minutes:   PlayedTime(s.occurrences, p.ID, bucket, s.clock),
					Goals:     goals[p.ID],
					Injured:   injured[p.ID],
					RedCarded: sentOff[p.ID],
				})
			}
		}
		add(sd.squad.Playing, models.BucketPlaying)
		add(sd.squad.Out, models.BucketOut)
		add(sd.squad.Bench, models.BucketBench)
	}
	return out
}
