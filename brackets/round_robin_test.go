package brackets

import (
	"context"
	"errors"
	"testing"
)

func TestGenerateScheduleDoubleRoundRobin(t *testing.T) {
	teams := []int{11, 12, 13, 14, 15, 16, 17, 18}
	fixtures, err := NewRoundRobinGenerator().GenerateSchedule(context.Background(), GenerateScheduleParams{ChampionshipID: 5, TeamIDs: teams})
	if err != nil {
		t.Fatalf("GenerateSchedule returned error: %v", err)
	}
	if len(fixtures) != 56 {
		t.Fatalf("expected 56 fixtures, got %d", len(fixtures))
	}

	perRound := make(map[int]map[int]int)
	meetings := make(map[[2]int]int)
	for _, f := range fixtures {
		if f.ChampionshipID != 5 {
			t.Fatalf("fixture without championship: %+v", f)
		}
		if f.Round < 1 || f.Round > 14 {
			t.Fatalf("round out of range: %d", f.Round)
		}
		if perRound[f.Round] == nil {
			perRound[f.Round] = make(map[int]int)
		}
		perRound[f.Round][f.HomeID]++
		perRound[f.Round][f.AwayID]++
		meetings[[2]int{f.HomeID, f.AwayID}]++
	}

	if len(perRound) != 14 {
		t.Fatalf("expected 14 rounds, got %d", len(perRound))
	}
	for round, counts := range perRound {
		if len(counts) != 8 {
			t.Fatalf("round %d: %d teams play", round, len(counts))
		}
		for team, n := range counts {
			if n != 1 {
				t.Fatalf("round %d: team %d plays %d times", round, team, n)
			}
		}
	}

	for _, a := range teams {
		for _, b := range teams {
			if a == b {
				continue
			}
			if meetings[[2]int{a, b}] != 1 {
				t.Fatalf("%d hosts %d %d times, expected once", a, b, meetings[[2]int{a, b}])
			}
		}
	}
}

func TestGenerateScheduleSecondHalfMirrorsFirst(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5, 6, 7, 8}
	fixtures, err := NewRoundRobinGenerator().GenerateSchedule(context.Background(), GenerateScheduleParams{TeamIDs: teams})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(fixtures)/2; i++ {
		first, second := fixtures[i], fixtures[i+len(fixtures)/2]
		if second.Round != first.Round+RoundsPerHalf || second.HomeID != first.AwayID || second.AwayID != first.HomeID {
			t.Fatalf("fixture %d not mirrored: %+v vs %+v", i, first, second)
		}
	}
	if fixtures[0].HomeID != 8 || fixtures[0].AwayID != 1 {
		t.Fatalf("unexpected opening fixture %+v", fixtures[0])
	}
}

func TestGenerateScheduleRejectsWrongSize(t *testing.T) {
	_, err := NewRoundRobinGenerator().GenerateSchedule(context.Background(), GenerateScheduleParams{TeamIDs: []int{1, 2, 3}})
	if !errors.Is(err, ErrUnsupportedTeamCount) {
		t.Fatalf("expected ErrUnsupportedTeamCount, got %v", err)
	}
	_, err = NewRoundRobinGenerator().GenerateSchedule(context.Background(), GenerateScheduleParams{TeamIDs: []int{1, 1, 2, 3, 4, 5, 6, 7}})
	if err == nil {
		t.Fatal("expected duplicate team error")
	}
}
