package models

// SquadBucket names one of the three disjoint sets of a SquadRecord.
type SquadBucket string

const (
	BucketPlaying SquadBucket = "playing"
	BucketBench   SquadBucket = "bench"
	BucketOut     SquadBucket = "out"
)

// SquadRecord partitions one side's selected players during a match.
type SquadRecord struct {
	Playing []*Player `json:"playing"`
	Bench   []*Player `json:"bench"`
	Out     []*Player `json:"out"`
}

func (s *SquadRecord) Size() int {
	return len(s.Playing) + len(s.Bench) + len(s.Out)
}

// Locate returns the bucket and index of playerID, or ok=false.
func (s *SquadRecord) Locate(playerID int) (bucket SquadBucket, index int, ok bool) {
	for i, p := range s.Playing {
		if p.ID == playerID {
			return BucketPlaying, i, true
		}
	}
	for i, p := range s.Bench {
		if p.ID == playerID {
			return BucketBench, i, true
		}
	}
	for i, p := range s.Out {
		if p.ID == playerID {
			return BucketOut, i, true
		}
	}
	return "", -1, false
}

// Player returns the player with the given id from any bucket.
func (s *SquadRecord) Player(playerID int) *Player {
	bucket, i, ok := s.Locate(playerID)
	if !ok {
		return nil
	}
	switch bucket {
	case BucketPlaying:
		return s.Playing[i]
	case BucketBench:
		return s.Bench[i]
	default:
		return s.Out[i]
	}
}

// IDs returns the ids of players, preserving order.
func IDs(players []*Player) []int {
	ids := make([]int, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}

func removeAt(players []*Player, i int) []*Player {
	out := make([]*Player, 0, len(players)-1)
	out = append(out, players[:i]...)
	return append(out, players[i+1:]...)
}

// TakeFromPlaying removes playing[i] and returns it.
func (s *SquadRecord) TakeFromPlaying(i int) *Player {
	p := s.Playing[i]
	s.Playing = removeAt(s.Playing, i)
	return p
}

// TakeFromBench removes bench[i] and returns it.
func (s *SquadRecord) TakeFromBench(i int) *Player {
	p := s.Bench[i]
	s.Bench = removeAt(s.Bench, i)
	return p
}
