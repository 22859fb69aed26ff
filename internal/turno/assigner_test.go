package turno

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/repository"
)

// memStore is an in-memory Store with the same atomicity contract the
// MySQL repository provides: CreateWithTurn runs under one lock and the
// per-municipality counter only ever grows, even across deletions.
type memStore struct {
	mu        sync.Mutex
	nextID    uint64
	tickets   []model.Ticket
	lastTurno map[uint64]uint32

	failFirst int // return ErrTurnConflict for the first n creations
}

func (s *memStore) CreateWithTurn(ctx context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failFirst > 0 {
		s.failFirst--
		return repository.ErrTurnConflict
	}

	for _, ex := range s.tickets {
		if ex.MunicipioID == t.MunicipioID && ex.CURP == t.CURP {
			return repository.ErrDuplicateCURP
		}
	}
	if s.lastTurno == nil {
		s.lastTurno = make(map[uint64]uint32)
	}
	s.lastTurno[t.MunicipioID]++
	s.nextID++
	t.ID = s.nextID
	t.NumeroTurno = s.lastTurno[t.MunicipioID]
	if t.Estatus == "" {
		t.Estatus = model.EstatusPendiente
	}
	t.FechaCreacion = time.Now().UTC()
	s.tickets = append(s.tickets, *t)
	return nil
}

func (s *memStore) LastTurnNumber(ctx context.Context, municipioID uint64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTurno[municipioID], nil
}

func (s *memStore) HasTicketForCURP(ctx context.Context, municipioID uint64, curp string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.tickets {
		if ex.MunicipioID == municipioID && ex.CURP == curp {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) delete(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.tickets[:0]
	for _, ex := range s.tickets {
		if ex.ID != id {
			out = append(out, ex)
		}
	}
	s.tickets = out
}

func ticket(mun uint64, curp string) *model.Ticket {
	return &model.Ticket{
		CURP:            curp,
		Nombre:          "Juan",
		ApellidoPaterno: "Perez",
		MunicipioID:     mun,
	}
}

func TestCreateFirstTicketGetsTurnOne(t *testing.T) {
	a := NewAssigner(&memStore{})
	tk := ticket(1, "ABCD010101HDFXYZ01")
	require.NoError(t, a.Create(context.Background(), tk))
	assert.Equal(t, uint32(1), tk.NumeroTurno)
	assert.Equal(t, model.EstatusPendiente, tk.Estatus)
}

func TestCreateIncrementsPerMunicipality(t *testing.T) {
	a := NewAssigner(&memStore{})
	ctx := context.Background()

	t1 := ticket(1, "ABCD010101HDFXYZ01")
	t2 := ticket(1, "EFGH020202MDFABC02")
	t3 := ticket(2, "ABCD010101HDFXYZ01") // same citizen, other municipality

	require.NoError(t, a.Create(ctx, t1))
	require.NoError(t, a.Create(ctx, t2))
	require.NoError(t, a.Create(ctx, t3))

	assert.Equal(t, uint32(1), t1.NumeroTurno)
	assert.Equal(t, uint32(2), t2.NumeroTurno)
	assert.Equal(t, uint32(1), t3.NumeroTurno, "numbering is independent per municipality")
}

func TestCreateRejectsDuplicateCURP(t *testing.T) {
	a := NewAssigner(&memStore{})
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, ticket(1, "ABCD010101HDFXYZ01")))
	err := a.Create(ctx, ticket(1, "ABCD010101HDFXYZ01"))
	assert.ErrorIs(t, err, repository.ErrDuplicateCURP)
}

func TestCreateDoesNotReuseNumbersAfterDelete(t *testing.T) {
	st := &memStore{}
	a := NewAssigner(st)
	ctx := context.Background()

	t1 := ticket(1, "ABCD010101HDFXYZ01")
	t2 := ticket(1, "EFGH020202MDFABC02")
	require.NoError(t, a.Create(ctx, t1))
	require.NoError(t, a.Create(ctx, t2))

	// Deleting the ticket holding the current maximum must leave a
	// permanent hole; the next number is one past the deleted one.
	st.delete(t2.ID)
	t3 := ticket(1, "IJKL030303HDFDEF03")
	require.NoError(t, a.Create(ctx, t3))
	assert.Equal(t, uint32(3), t3.NumeroTurno)

	// An earlier deletion does not lower the mark either.
	st.delete(t1.ID)
	t4 := ticket(1, "MNOP040404MDFGHI04")
	require.NoError(t, a.Create(ctx, t4))
	assert.Equal(t, uint32(4), t4.NumeroTurno)
}

func TestCreateRetriesOnceOnTurnConflict(t *testing.T) {
	a := NewAssigner(&memStore{failFirst: 1})
	tk := ticket(1, "ABCD010101HDFXYZ01")
	require.NoError(t, a.Create(context.Background(), tk))
	assert.Equal(t, uint32(1), tk.NumeroTurno)
}

func TestCreateGivesUpAfterSecondConflict(t *testing.T) {
	a := NewAssigner(&memStore{failFirst: 2})
	err := a.Create(context.Background(), ticket(1, "ABCD010101HDFXYZ01"))
	assert.ErrorIs(t, err, repository.ErrTurnConflict)
}

func TestNextTurnNumber(t *testing.T) {
	st := &memStore{}
	a := NewAssigner(st)
	ctx := context.Background()

	n, err := a.NextTurnNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n, "empty municipality starts at 1")

	require.NoError(t, a.Create(ctx, ticket(1, "ABCD010101HDFXYZ01")))
	n, err = a.NextTurnNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), n)
}

func TestHasExistingTicket(t *testing.T) {
	a := NewAssigner(&memStore{})
	ctx := context.Background()

	ok, err := a.HasExistingTicket(ctx, 1, "ABCD010101HDFXYZ01")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Create(ctx, ticket(1, "ABCD010101HDFXYZ01")))
	ok, err = a.HasExistingTicket(ctx, 1, "ABCD010101HDFXYZ01")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentCreatesAssignContiguousNumbers(t *testing.T) {
	st := &memStore{}
	a := NewAssigner(st)
	ctx := context.Background()

	const n = 50
	curps := make([]string, n)
	for i := range curps {
		// Vary the name block so every CURP is distinct.
		curps[i] = "AB" + string(rune('A'+i/26)) + string(rune('A'+i%26)) + "010101HDFXYZ01"
	}

	results := make([]uint32, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tk := ticket(1, curps[i])
			if err := a.Create(ctx, tk); err == nil {
				results[i] = tk.NumeroTurno
			}
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, got := range results {
		assert.Equal(t, uint32(i+1), got, "numbers must be contiguous with no gaps or duplicates")
	}
}
