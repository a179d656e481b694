// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y con
// STORE_DRIVER=memory; los IDs salen de contadores que, como las secuencias de Postgres,
// no retroceden al descartar una transacción.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// movementRow fila de entries/exits.
type movementRow struct {
	Kind          entity.Kind
	RowID         int64
	TransactionID int64
	UserID        int64
	OccurredAt    time.Time
}

type state struct {
	items        map[string]entity.Item
	suppliers    map[int64]entity.Supplier
	transactions map[int64]entity.Transaction
	movements    map[entity.CompositeID]movementRow
	byTx         map[int64]entity.CompositeID
	accounts     map[int64]entity.Account
	users        map[int64]entity.User
}

func newState() state {
	return state{
		items:        make(map[string]entity.Item),
		suppliers:    make(map[int64]entity.Supplier),
		transactions: make(map[int64]entity.Transaction),
		movements:    make(map[entity.CompositeID]movementRow),
		byTx:         make(map[int64]entity.CompositeID),
		accounts:     make(map[int64]entity.Account),
		users:        make(map[int64]entity.User),
	}
}

func (s state) clone() state {
	users := make(map[int64]entity.User, len(s.users))
	for id, u := range s.users {
		u.Permissions = slices.Clone(u.Permissions)
		users[id] = u
	}
	return state{
		items:        maps.Clone(s.items),
		suppliers:    maps.Clone(s.suppliers),
		transactions: maps.Clone(s.transactions),
		movements:    maps.Clone(s.movements),
		byTx:         maps.Clone(s.byTx),
		accounts:     maps.Clone(s.accounts),
		users:        users,
	}
}

type sequences struct {
	transaction, entry, exit, supplier, account, user int64
}

// Store almacén en memoria compartido por todos los repositorios.
type Store struct {
	mu   sync.RWMutex
	data state
	seq  sequences

	// txMu serializa Run y las escrituras de los repositorios fuera de Run: el rollback
	// restaura el estado completo y no debe pisar escrituras ajenas.
	txMu sync.Mutex
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Items repositorio de items sobre el almacén.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Transactions repositorio del libro.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Accounts repositorio de cuentas.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Users repositorio de perfiles de inventario.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Run ejecuta fn y, si devuelve error o entra en pánico, restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	itemRepo repository.ItemRepository,
	supplierRepo repository.SupplierRepository,
) error) error {
	return s.atomically(ctx, func() error {
		return fn(&TransactionRepo{s: s, inTx: true}, &ItemRepo{s: s, inTx: true}, &SupplierRepo{s: s, inTx: true})
	})
}

// RunIdentity como Run, con los repositorios de cuentas y perfiles.
func (s *Store) RunIdentity(ctx context.Context, fn func(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
) error) error {
	return s.atomically(ctx, func() error {
		return fn(&AccountRepo{s: s, inTx: true}, &UserRepo{s: s, inTx: true})
	})
}

// write toma mu para escribir. Fuera de Run también espera a txMu.
func (s *Store) write(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) atomically(ctx context.Context, fn func() error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
	}()

	if err := fn(); err != nil {
		return err
	}
	committed = true
	return nil
}
