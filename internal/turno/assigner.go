// Package turno implements turn-number assignment.  The rule is simple:
// numbers start at 1 per municipality, grow by exactly one per ticket,
// and are never reused after deletion.  The work is making that hold
// under concurrent submissions, which the Assigner does by serializing
// creations per municipality before handing the storage layer its single
// atomic reserve-and-insert operation.
package turno

import (
	"context"
	"errors"
	"sync"

	"github.com/turnosmx/sistema-turnos/internal/model"
	"github.com/turnosmx/sistema-turnos/internal/repository"
)

// Store is the storage contract the Assigner drives.  CreateWithTurn
// must reserve the next turn number and insert the ticket as one atomic
// unit; repository.TicketRepo implements it by bumping a per-municipality
// counter under a row lock inside a transaction.  The counter never goes
// backwards, which is what keeps deleted numbers out of circulation.
type Store interface {
	CreateWithTurn(ctx context.Context, t *model.Ticket) error
	LastTurnNumber(ctx context.Context, municipioID uint64) (uint32, error)
	HasTicketForCURP(ctx context.Context, municipioID uint64, curp string) (bool, error)
}

// Assigner is a stateless service constructed once at startup and passed
// to the handlers that create tickets.  Besides delegating to the Store
// it holds a mutex per municipality, so that within this process two
// submissions for the same municipality never even race to the database
// lock.  Cross-municipality requests proceed in parallel.
type Assigner struct {
	store Store

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewAssigner builds an Assigner over the given store.
func NewAssigner(store Store) *Assigner {
	if store == nil {
		panic("nil store passed to NewAssigner")
	}
	return &Assigner{store: store, locks: make(map[uint64]*sync.Mutex)}
}

// lockFor returns the mutex guarding a municipality, creating it on
// first use.  Mutexes are never removed; the set of municipalities is
// small and bounded.
func (a *Assigner) lockFor(municipioID uint64) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[municipioID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[municipioID] = l
	}
	return l
}

// NextTurnNumber returns the number the next ticket in the municipality
// would receive: 1 past the high-water mark, or 1 when none was ever
// assigned.  It is advisory, for display and pre-checks only; the
// binding assignment happens inside Create.  Storage failures are
// returned, never papered over with a default.
func (a *Assigner) NextTurnNumber(ctx context.Context, municipioID uint64) (uint32, error) {
	last, err := a.store.LastTurnNumber(ctx, municipioID)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// HasExistingTicket reports whether the citizen already holds a ticket
// in the municipality, regardless of status.
func (a *Assigner) HasExistingTicket(ctx context.Context, municipioID uint64, curp string) (bool, error) {
	return a.store.HasTicketForCURP(ctx, municipioID, curp)
}

// Create assigns a turn number and persists the ticket.  The ticket's
// MunicipioID and CURP must be set; NumeroTurno is assigned here.  A
// citizen with an existing ticket in the municipality gets
// repository.ErrDuplicateCURP.  If the storage unique key still fires —
// another replica won the race between our lock and the insert — the
// creation is retried once before giving up with ErrTurnConflict.
func (a *Assigner) Create(ctx context.Context, t *model.Ticket) error {
	l := a.lockFor(t.MunicipioID)
	l.Lock()
	defer l.Unlock()

	err := a.store.CreateWithTurn(ctx, t)
	if errors.Is(err, repository.ErrTurnConflict) {
		err = a.store.CreateWithTurn(ctx, t)
	}
	return err
}
