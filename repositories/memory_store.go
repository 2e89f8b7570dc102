package repositories

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/league-simulator/models"
)

// memoryData is the whole league held in maps. Values are owned by the store;
// readers always get copies.
type memoryData struct {
	players       map[int]*models.Player
	teams         map[int]*models.Team
	fixtures      map[int]*models.Fixture
	standings     map[int]*models.Standing
	leagues       map[int]*models.League
	championships map[int]*models.Championship
	budgets       map[int]*models.TeamBudget
	managers      map[int]*models.Manager
	clock         *models.SeasonClock
	lastID        int
}

func newMemoryData() *memoryData {
	return &memoryData{
		players:       make(map[int]*models.Player),
		teams:         make(map[int]*models.Team),
		fixtures:      make(map[int]*models.Fixture),
		standings:     make(map[int]*models.Standing),
		leagues:       make(map[int]*models.League),
		championships: make(map[int]*models.Championship),
		budgets:       make(map[int]*models.TeamBudget),
		managers:      make(map[int]*models.Manager),
	}
}

// nextID hands out ids from one sequence shared by every table.
func (d *memoryData) nextID() int {
	d.lastID++
	return d.lastID
}

func cloneMap[T any](src map[int]*T, clone func(*T) *T) map[int]*T {
	out := make(map[int]*T, len(src))
	for id, v := range src {
		out[id] = clone(v)
	}
	return out
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

func clonePlayer(p *models.Player) *models.Player { return p.Clone() }

func cloneTeam(t *models.Team) *models.Team {
	c := *t
	c.ChampionshipID = cloneIntPtr(t.ChampionshipID)
	c.BudgetID = cloneIntPtr(t.BudgetID)
	c.Players = nil
	return &c
}

func cloneFixture(f *models.Fixture) *models.Fixture {
	c := *f
	c.HomeSquad = models.FixtureSquad{FirstTeam: slices.Clone(f.HomeSquad.FirstTeam), Substitutes: slices.Clone(f.HomeSquad.Substitutes)}
	c.AwaySquad = models.FixtureSquad{FirstTeam: slices.Clone(f.AwaySquad.FirstTeam), Substitutes: slices.Clone(f.AwaySquad.Substitutes)}
	return &c
}

func cloneChampionship(ch *models.Championship) *models.Championship {
	c := *ch
	c.ChampionTeamID = cloneIntPtr(ch.ChampionTeamID)
	return &c
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (d *memoryData) snapshot() *memoryData {
	s := &memoryData{
		players:       cloneMap(d.players, clonePlayer),
		teams:         cloneMap(d.teams, cloneTeam),
		fixtures:      cloneMap(d.fixtures, cloneFixture),
		standings:     cloneMap(d.standings, copyOf[models.Standing]),
		leagues:       cloneMap(d.leagues, copyOf[models.League]),
		championships: cloneMap(d.championships, cloneChampionship),
		budgets:       cloneMap(d.budgets, copyOf[models.TeamBudget]),
		managers:      cloneMap(d.managers, copyOf[models.Manager]),
		lastID:        d.lastID,
	}
	if d.clock != nil {
		s.clock = copyOf(d.clock)
	}
	return s
}

// sortedValues returns copies of the values of m matching keep, ordered by
// less (or by id when less is nil).
func sortedValues[T any](m map[int]*T, clone func(*T) *T, keep func(*T) bool, less func(a, b *T) int) []*T {
	ids := slices.Sorted(maps.Keys(m))
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v := m[id]
		if keep == nil || keep(v) {
			out = append(out, clone(v))
		}
	}
	if less != nil {
		slices.SortStableFunc(out, less)
	}
	return out
}

type memoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

// NewMemoryStore returns a Store that keeps everything in process memory.
// Transactions take a snapshot on begin and restore it when fn fails.
func NewMemoryStore() Store {
	return &memoryStore{data: newMemoryData()}
}

// memoryAccess is shared by all repositories of one Repos value. Outside a
// transaction every call takes the store lock; inside, RunInTx holds it.
type memoryAccess struct {
	store *memoryStore
	inTx  bool
}

func (a *memoryAccess) do(fn func(d *memoryData) error) error {
	if !a.inTx {
		a.store.mu.Lock()
		defer a.store.mu.Unlock()
	}
	return fn(a.store.data)
}

func (s *memoryStore) repos(inTx bool) Repos {
	a := &memoryAccess{store: s, inTx: inTx}
	return Repos{
		Players:       &memoryPlayerRepository{a},
		Teams:         &memoryTeamRepository{a},
		Fixtures:      &memoryFixtureRepository{a},
		Standings:     &memoryStandingRepository{a},
		Leagues:       &memoryLeagueRepository{a},
		Championships: &memoryChampionshipRepository{a},
		Budgets:       &memoryBudgetRepository{a},
		Clock:         &memorySeasonClockRepository{a},
		Managers:      &memoryManagerRepository{a},
	}
}

func (s *memoryStore) Repos() Repos {
	return s.repos(false)
}

func (s *memoryStore) RunInTx(ctx context.Context, fn func(r Repos) error) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.data.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.data = before
			panic(p)
		} else if err != nil {
			s.data = before
		}
	}()
	err = fn(s.repos(true))
	return err
}

type memoryPlayerRepository struct{ a *memoryAccess }

func (r *memoryPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	return r.a.do(func(d *memoryData) error {
		if p.TeamID != nil {
			if _, ok := d.teams[*p.TeamID]; !ok {
				return ErrPlayerTeamInvalid
			}
		}
		p.ID = d.nextID()
		d.players[p.ID] = p.Clone()
		return nil
	})
}

func (r *memoryPlayerRepository) GetByID(ctx context.Context, id int) (player *models.Player, err error) {
	err = r.a.do(func(d *memoryData) error {
		p, ok := d.players[id]
		if !ok {
			return ErrPlayerNotFound
		}
		player = p.Clone()
		return nil
	})
	return player, err
}

func (r *memoryPlayerRepository) ListByTeam(ctx context.Context, teamID int) (players []*models.Player, err error) {
	err = r.a.do(func(d *memoryData) error {
		players = sortedValues(d.players, clonePlayer, func(p *models.Player) bool {
			return p.TeamID != nil && *p.TeamID == teamID
		}, nil)
		return nil
	})
	return players, err
}

func (r *memoryPlayerRepository) List(ctx context.Context) (players []*models.Player, err error) {
	err = r.a.do(func(d *memoryData) error {
		players = sortedValues(d.players, clonePlayer, nil, nil)
		return nil
	})
	return players, err
}

func (r *memoryPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	return r.a.do(func(d *memoryData) error {
		if _, ok := d.players[p.ID]; !ok {
			return ErrPlayerNotFound
		}
		if p.TeamID != nil {
			if _, ok := d.teams[*p.TeamID]; !ok {
				return ErrPlayerTeamInvalid
			}
		}
		d.players[p.ID] = p.Clone()
		return nil
	})
}

type memoryTeamRepository struct{ a *memoryAccess }

func checkTeamChampionship(d *memoryData, t *models.Team) error {
	if t.ChampionshipID != nil {
		if _, ok := d.championships[*t.ChampionshipID]; !ok {
			return ErrTeamChampionshipInvalid
		}
	}
	return nil
}

func (r *memoryTeamRepository) Create(ctx context.Context, t *models.Team) error {
	return r.a.do(func(d *memoryData) error {
		if err := checkTeamChampionship(d, t); err != nil {
			return err
		}
		t.ID = d.nextID()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		d.teams[t.ID] = cloneTeam(t)
		return nil
	})
}

func (r *memoryTeamRepository) GetByID(ctx context.Context, id int) (team *models.Team, err error) {
	err = r.a.do(func(d *memoryData) error {
		t, ok := d.teams[id]
		if !ok {
			return ErrTeamNotFound
		}
		team = cloneTeam(t)
		return nil
	})
	return team, err
}

func (r *memoryTeamRepository) List(ctx context.Context) (teams []*models.Team, err error) {
	err = r.a.do(func(d *memoryData) error {
		teams = sortedValues(d.teams, cloneTeam, nil, nil)
		return nil
	})
	return teams, err
}

func (r *memoryTeamRepository) ListByChampionship(ctx context.Context, championshipID int) (teams []*models.Team, err error) {
	err = r.a.do(func(d *memoryData) error {
		teams = sortedValues(d.teams, cloneTeam, func(t *models.Team) bool {
			return t.ChampionshipID != nil && *t.ChampionshipID == championshipID
		}, nil)
		return nil
	})
	return teams, err
}

func (r *memoryTeamRepository) ListUnassigned(ctx context.Context) (teams []*models.Team, err error) {
	err = r.a.do(func(d *memoryData) error {
		teams = sortedValues(d.teams, cloneTeam, func(t *models.Team) bool { return t.ChampionshipID == nil }, nil)
		return nil
	})
	return teams, err
}

func (r *memoryTeamRepository) Update(ctx context.Context, t *models.Team) error {
	return r.a.do(func(d *memoryData) error {
		existing, ok := d.teams[t.ID]
		if !ok {
			return ErrTeamNotFound
		}
		if err := checkTeamChampionship(d, t); err != nil {
			return err
		}
		c := cloneTeam(t)
		c.CreatedAt = existing.CreatedAt
		d.teams[t.ID] = c
		return nil
	})
}

type memoryFixtureRepository struct{ a *memoryAccess }

func (r *memoryFixtureRepository) CreateBatch(ctx context.Context, fixtures []*models.Fixture) error {
	return r.a.do(func(d *memoryData) error {
		for _, f := range fixtures {
			if _, ok := d.championships[f.ChampionshipID]; !ok {
				return ErrFixtureChampionshipInvalid
			}
			if _, ok := d.teams[f.HomeID]; !ok {
				return ErrFixtureTeamInvalid
			}
			if _, ok := d.teams[f.AwayID]; !ok {
				return ErrFixtureTeamInvalid
			}
		}
		for _, f := range fixtures {
			f.ID = d.nextID()
			d.fixtures[f.ID] = cloneFixture(f)
		}
		return nil
	})
}

func (r *memoryFixtureRepository) GetByID(ctx context.Context, id int) (fixture *models.Fixture, err error) {
	err = r.a.do(func(d *memoryData) error {
		f, ok := d.fixtures[id]
		if !ok {
			return ErrFixtureNotFound
		}
		fixture = cloneFixture(f)
		return nil
	})
	return fixture, err
}

func byRound(a, b *models.Fixture) int {
	return a.Round - b.Round
}

func (r *memoryFixtureRepository) ListByChampionship(ctx context.Context, championshipID int) (fixtures []*models.Fixture, err error) {
	err = r.a.do(func(d *memoryData) error {
		fixtures = sortedValues(d.fixtures, cloneFixture, func(f *models.Fixture) bool {
			return f.ChampionshipID == championshipID
		}, byRound)
		return nil
	})
	return fixtures, err
}

func (r *memoryFixtureRepository) ListByRound(ctx context.Context, championshipID, round int) (fixtures []*models.Fixture, err error) {
	err = r.a.do(func(d *memoryData) error {
		fixtures = sortedValues(d.fixtures, cloneFixture, func(f *models.Fixture) bool {
			return f.ChampionshipID == championshipID && f.Round == round
		}, nil)
		return nil
	})
	return fixtures, err
}

func (r *memoryFixtureRepository) Update(ctx context.Context, f *models.Fixture) error {
	return r.a.do(func(d *memoryData) error {
		existing, ok := d.fixtures[f.ID]
		if !ok {
			return ErrFixtureNotFound
		}
		c := cloneFixture(existing)
		c.Occurred, c.HomeGoals, c.AwayGoals, c.Attendance = f.Occurred, f.HomeGoals, f.AwayGoals, f.Attendance
		updated := cloneFixture(f)
		c.HomeSquad, c.AwaySquad = updated.HomeSquad, updated.AwaySquad
		d.fixtures[f.ID] = c
		return nil
	})
}

type memoryStandingRepository struct{ a *memoryAccess }

func (r *memoryStandingRepository) Create(ctx context.Context, s *models.Standing) error {
	return r.a.do(func(d *memoryData) error {
		for _, existing := range d.standings {
			if existing.ChampionshipID == s.ChampionshipID && existing.TeamID == s.TeamID {
				return ErrStandingConflict
			}
		}
		s.ID = d.nextID()
		d.standings[s.ID] = copyOf(s)
		return nil
	})
}

func (r *memoryStandingRepository) GetByChampionshipAndTeam(ctx context.Context, championshipID, teamID int) (standing *models.Standing, err error) {
	err = r.a.do(func(d *memoryData) error {
		for _, s := range d.standings {
			if s.ChampionshipID == championshipID && s.TeamID == teamID {
				standing = copyOf(s)
				return nil
			}
		}
		return ErrStandingNotFound
	})
	return standing, err
}

func (r *memoryStandingRepository) ListByChampionship(ctx context.Context, championshipID int) (standings []*models.Standing, err error) {
	err = r.a.do(func(d *memoryData) error {
		standings = sortedValues(d.standings, copyOf[models.Standing], func(s *models.Standing) bool {
			return s.ChampionshipID == championshipID
		}, func(a, b *models.Standing) int { return a.TeamID - b.TeamID })
		return nil
	})
	return standings, err
}

func (r *memoryStandingRepository) Update(ctx context.Context, s *models.Standing) error {
	return r.a.do(func(d *memoryData) error {
		existing, ok := d.standings[s.ID]
		if !ok {
			return ErrStandingNotFound
		}
		c := copyOf(s)
		c.ChampionshipID, c.TeamID = existing.ChampionshipID, existing.TeamID
		d.standings[s.ID] = c
		return nil
	})
}

type memoryLeagueRepository struct{ a *memoryAccess }

func (r *memoryLeagueRepository) Create(ctx context.Context, l *models.League) error {
	return r.a.do(func(d *memoryData) error {
		for _, existing := range d.leagues {
			if existing.Division == l.Division {
				return ErrLeagueConflict
			}
		}
		l.ID = d.nextID()
		d.leagues[l.ID] = copyOf(l)
		return nil
	})
}

func (r *memoryLeagueRepository) GetByDivision(ctx context.Context, division int) (league *models.League, err error) {
	err = r.a.do(func(d *memoryData) error {
		for _, l := range d.leagues {
			if l.Division == division {
				league = copyOf(l)
				return nil
			}
		}
		return ErrLeagueNotFound
	})
	return league, err
}

func (r *memoryLeagueRepository) List(ctx context.Context) (leagues []*models.League, err error) {
	err = r.a.do(func(d *memoryData) error {
		leagues = sortedValues(d.leagues, copyOf[models.League], nil, func(a, b *models.League) int {
			return a.Division - b.Division
		})
		return nil
	})
	return leagues, err
}

type memoryChampionshipRepository struct{ a *memoryAccess }

func (r *memoryChampionshipRepository) Create(ctx context.Context, c *models.Championship) error {
	return r.a.do(func(d *memoryData) error {
		if _, ok := d.leagues[c.LeagueID]; !ok {
			return ErrChampionshipLeagueInvalid
		}
		for _, existing := range d.championships {
			if existing.LeagueID == c.LeagueID && existing.Season == c.Season {
				return ErrChampionshipConflict
			}
		}
		c.ID = d.nextID()
		d.championships[c.ID] = cloneChampionship(c)
		return nil
	})
}

func (r *memoryChampionshipRepository) GetByID(ctx context.Context, id int) (championship *models.Championship, err error) {
	err = r.a.do(func(d *memoryData) error {
		c, ok := d.championships[id]
		if !ok {
			return ErrChampionshipNotFound
		}
		championship = cloneChampionship(c)
		return nil
	})
	return championship, err
}

func (r *memoryChampionshipRepository) ListBySeason(ctx context.Context, season int) (championships []*models.Championship, err error) {
	err = r.a.do(func(d *memoryData) error {
		championships = sortedValues(d.championships, cloneChampionship, func(c *models.Championship) bool {
			return c.Season == season
		}, func(a, b *models.Championship) int { return a.Division - b.Division })
		return nil
	})
	return championships, err
}

func (r *memoryChampionshipRepository) Update(ctx context.Context, c *models.Championship) error {
	return r.a.do(func(d *memoryData) error {
		existing, ok := d.championships[c.ID]
		if !ok {
			return ErrChampionshipNotFound
		}
		existing.ChampionTeamID = cloneIntPtr(c.ChampionTeamID)
		return nil
	})
}

type memoryBudgetRepository struct{ a *memoryAccess }

func (r *memoryBudgetRepository) Create(ctx context.Context, b *models.TeamBudget) error {
	return r.a.do(func(d *memoryData) error {
		for _, existing := range d.budgets {
			if existing.TeamID == b.TeamID && existing.ChampionshipID == b.ChampionshipID {
				return ErrBudgetConflict
			}
		}
		b.ID = d.nextID()
		d.budgets[b.ID] = copyOf(b)
		return nil
	})
}

func (r *memoryBudgetRepository) GetByID(ctx context.Context, id int) (budget *models.TeamBudget, err error) {
	err = r.a.do(func(d *memoryData) error {
		b, ok := d.budgets[id]
		if !ok {
			return ErrBudgetNotFound
		}
		budget = copyOf(b)
		return nil
	})
	return budget, err
}

func (r *memoryBudgetRepository) GetByTeamAndChampionship(ctx context.Context, teamID, championshipID int) (budget *models.TeamBudget, err error) {
	err = r.a.do(func(d *memoryData) error {
		for _, b := range d.budgets {
			if b.TeamID == teamID && b.ChampionshipID == championshipID {
				budget = copyOf(b)
				return nil
			}
		}
		return ErrBudgetNotFound
	})
	return budget, err
}

func (r *memoryBudgetRepository) Update(ctx context.Context, b *models.TeamBudget) error {
	return r.a.do(func(d *memoryData) error {
		existing, ok := d.budgets[b.ID]
		if !ok {
			return ErrBudgetNotFound
		}
		existing.Earnings, existing.Spendings = b.Earnings, b.Spendings
		return nil
	})
}

type memorySeasonClockRepository struct{ a *memoryAccess }

func (r *memorySeasonClockRepository) Get(ctx context.Context) (clock *models.SeasonClock, err error) {
	err = r.a.do(func(d *memoryData) error {
		if d.clock == nil {
			return ErrSeasonClockNotFound
		}
		clock = copyOf(d.clock)
		return nil
	})
	return clock, err
}

func (r *memorySeasonClockRepository) Save(ctx context.Context, clock *models.SeasonClock) error {
	return r.a.do(func(d *memoryData) error {
		d.clock = copyOf(clock)
		return nil
	})
}

type memoryManagerRepository struct{ a *memoryAccess }

func (r *memoryManagerRepository) Create(ctx context.Context, m *models.Manager) error {
	return r.a.do(func(d *memoryData) error {
		if _, ok := d.teams[m.TeamID]; !ok {
			return ErrManagerTeamInvalid
		}
		for _, existing := range d.managers {
			if existing.Email == m.Email {
				return ErrManagerEmailConflict
			}
			if existing.TeamID == m.TeamID {
				return ErrManagerTeamConflict
			}
		}
		m.ID = d.nextID()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		d.managers[m.ID] = copyOf(m)
		return nil
	})
}

func (r *memoryManagerRepository) GetByID(ctx context.Context, id int) (manager *models.Manager, err error) {
	err = r.a.do(func(d *memoryData) error {
		m, ok := d.managers[id]
		if !ok {
			return ErrManagerNotFound
		}
		manager = copyOf(m)
		return nil
	})
	return manager, err
}

func (r *memoryManagerRepository) GetByEmail(ctx context.Context, email string) (manager *models.Manager, err error) {
	err = r.a.do(func(d *memoryData) error {
		for _, m := range d.managers {
			if m.Email == email {
				manager = copyOf(m)
				return nil
			}
		}
		return ErrManagerNotFound
	})
	return manager, err
}
