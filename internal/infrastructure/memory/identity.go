package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

var userOrder = listing.NewRegistry(
	listing.Field[*entity.User]{Name: "id", Compare: listing.ByInt(func(u *entity.User) int64 { return u.ID })},
	listing.Field[*entity.User]{Name: "name", Compare: listing.ByFold(func(u *entity.User) string { return u.Name })},
)

// AccountRepo cuentas en memoria. Email y username son únicos sin distinguir mayúsculas.
type AccountRepo struct {
	s    *Store
	inTx bool
}

func (r *AccountRepo) Create(_ context.Context, a *entity.Account) error {
	defer r.s.write(r.inTx)()
	if err := r.checkUnique(a); err != nil {
		return err
	}
	r.s.seq.account++
	a.ID = r.s.seq.account
	r.s.data.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) checkUnique(a *entity.Account) error {
	for _, other := range r.s.data.accounts {
		if other.ID == a.ID {
			continue
		}
		if strings.EqualFold(other.Email, a.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if strings.EqualFold(other.Username, a.Username) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, id int64) (*entity.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.data.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	return r.find(func(a entity.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *AccountRepo) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	return r.find(func(a entity.Account) bool { return strings.EqualFold(a.Username, username) })
}

func (r *AccountRepo) find(match func(entity.Account) bool) (*entity.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.data.accounts {
		if match(a) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) Update(_ context.Context, a *entity.Account) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.accounts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(a); err != nil {
		return err
	}
	r.s.data.accounts[a.ID] = *a
	return nil
}

// Delete borra la cuenta y desvincula el perfil (ON DELETE SET NULL).
func (r *AccountRepo) Delete(_ context.Context, id int64) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.data.accounts, id)
	for uid, u := range r.s.data.users {
		if u.AccountID != nil && *u.AccountID == id {
			u.AccountID = nil
			r.s.data.users[uid] = u
		}
	}
	return nil
}

// UserRepo perfiles de inventario en memoria.
type UserRepo struct {
	s    *Store
	inTx bool
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.write(r.inTx)()
	if u.AccountID != nil {
		for _, other := range r.s.data.users {
			if other.AccountID != nil && *other.AccountID == *u.AccountID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.seq.user++
	u.ID = r.s.seq.user
	stored := *u
	stored.Permissions = slices.Clone(u.Permissions)
	r.s.data.users[u.ID] = stored
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	u.Permissions = slices.Clone(u.Permissions)
	return &u, nil
}

func (r *UserRepo) GetByAccountID(_ context.Context, accountID int64) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.data.users {
		if u.AccountID != nil && *u.AccountID == accountID {
			u.Permissions = slices.Clone(u.Permissions)
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *u
	stored.Permissions = slices.Clone(u.Permissions)
	r.s.data.users[u.ID] = stored
	return nil
}

// Delete devuelve domain.ErrConflict si el perfil registró movimientos.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	defer r.s.write(r.inTx)()
	if _, ok := r.s.data.users[id]; !ok {
		return domain.ErrNotFound
	}
	for _, m := range r.s.data.movements {
		if m.UserID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.data.users, id)
	return nil
}

func (r *UserRepo) List(_ context.Context, f repository.UserFilter, opts repository.ListOptions) ([]*entity.User, int, error) {
	r.s.mu.RLock()
	var out []*entity.User
	for _, u := range r.s.data.users {
		if !containsFold(u.Name, f.Name) {
			continue
		}
		u.Permissions = slices.Clone(u.Permissions)
		out = append(out, &u)
	}
	r.s.mu.RUnlock()

	userOrder.Sort(out, withDefault(opts.Sort, "id"))
	return paginate(out, opts)
}
