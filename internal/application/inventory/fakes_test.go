package inventory_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// memState estado en memoria; memStore.Run copia el estado, ejecuta fn y solo lo reemplaza si no hubo error.
type memState struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	movements  []entity.Movement
	users      map[string]entity.User
}

func (s *memState) clone() *memState {
	c := &memState{
		products:   map[string]entity.Product{},
		categories: s.categories,
		movements:  append([]entity.Movement(nil), s.movements...),
		users:      s.users,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

type memStore struct {
	mu    sync.Mutex
	state *memState
	runs  int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		products:   map[string]entity.Product{},
		categories: map[string]entity.Category{},
		users:      map[string]entity.User{},
	}}
}

func (m *memStore) Run(ctx context.Context, fn func(repository.MovementRepository, repository.ProductRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	work := m.state.clone()
	tx := func() *memState { return work }
	if err := fn(memMovements{tx}, memProducts{tx}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// committed devuelve el último estado confirmado. Un estado confirmado no se vuelve a escribir.
func (m *memStore) committed() *memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Repos fuera de tx: leen el estado confirmado.
func (m *memStore) products() memProducts   { return memProducts{m.committed} }
func (m *memStore) movements() memMovements { return memMovements{m.committed} }
func (m *memStore) users() memUsers         { return memUsers{m.committed} }

func (m *memStore) quantity(id string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.products[id].Quantity
}

type memProducts struct{ st func() *memState }

func (r memProducts) Create(_ context.Context, p *entity.Product) error {
	r.st().products[p.ID] = *p
	return nil
}
func (r memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st().products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
func (r memProducts) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range r.st().products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}
func (r memProducts) GetView(ctx context.Context, id string) (*repository.ProductView, error) {
	p, _ := r.GetByID(ctx, id)
	if p == nil {
		return nil, nil
	}
	return &repository.ProductView{Product: *p, CategoryName: r.st().categories[p.CategoryID].Name}, nil
}
func (r memProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}
func (r memProducts) Update(_ context.Context, p *entity.Product) error {
	r.st().products[p.ID] = *p
	return nil
}
func (r memProducts) UpdateQuantity(_ context.Context, id string, q decimal.Decimal, at time.Time) error {
	p, ok := r.st().products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity, p.UpdatedAt = q, at
	r.st().products[id] = p
	return nil
}
func (r memProducts) List(context.Context, repository.ProductFilter) ([]repository.ProductView, error) {
	return nil, nil
}
func (r memProducts) Delete(_ context.Context, id string) error {
	delete(r.st().products, id)
	return nil
}

type memMovements struct{ st func() *memState }

func (r memMovements) Create(_ context.Context, m *entity.Movement) error {
	r.st().movements = append(r.st().movements, *m)
	return nil
}
func (r memMovements) view(m entity.Movement) repository.MovementView {
	u := r.st().users[m.UserID]
	return repository.MovementView{Movement: m, ProductName: r.st().products[m.ProductID].Name, UserName: u.DisplayName()}
}
func (r memMovements) GetView(_ context.Context, id string) (*repository.MovementView, error) {
	for _, m := range r.st().movements {
		if m.ID == id {
			v := r.view(m)
			return &v, nil
		}
	}
	return nil, nil
}
func (r memMovements) List(_ context.Context, f repository.MovementFilter) ([]repository.MovementView, error) {
	out := []repository.MovementView{}
	for _, m := range r.st().movements {
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.CreatedAt.Before(*f.To) {
			continue
		}
		out = append(out, r.view(m))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memUsers struct{ st func() *memState }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.st().users[u.ID] = *u
	return nil
}
func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st().users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
func (r memUsers) GetByEmail(context.Context, string) (*entity.User, error)    { return nil, nil }
func (r memUsers) GetByUsername(context.Context, string) (*entity.User, error) { return nil, nil }
func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.st().users[u.ID] = *u
	return nil
}
func (r memUsers) ListStaffEmails(context.Context) ([]string, error) { return nil, nil }

type recordingObserver struct {
	mu    sync.Mutex
	saved []entity.Product
}

func (o *recordingObserver) ProductSaved(p *entity.Product, _ string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved = append(o.saved, *p)
	return true
}
