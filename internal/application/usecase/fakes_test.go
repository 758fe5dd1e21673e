package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// memDB fake mínimo compartido por los repos; la tx solo serializa (sin rollback).
type memDB struct {
	mu         sync.Mutex
	categories map[string]entity.Category
	products   map[string]entity.Product
	movements  []entity.Movement
	users      map[string]entity.User
}

func newMemDB() *memDB {
	return &memDB{
		categories: map[string]entity.Category{},
		products:   map[string]entity.Product{},
		users:      map[string]entity.User{},
	}
}

func (db *memDB) Run(_ context.Context, fn func(repository.MovementRepository, repository.ProductRepository) error) error {
	return fn(movementRepo{db}, productRepo{db})
}

type categoryRepo struct{ db *memDB }

func (r categoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.categories[c.ID] = *c
	return nil
}
func (r categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
func (r categoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}
func (r categoryRepo) Update(ctx context.Context, c *entity.Category) error { return r.Create(ctx, c) }
func (r categoryRepo) List(_ context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*entity.Category{}
	for _, c := range r.db.categories {
		c := c
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Description), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
func (r categoryRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.categories, id)
	for pid, p := range r.db.products {
		if p.CategoryID == id {
			delete(r.db.products, pid)
		}
	}
	return nil
}

type productRepo struct{ db *memDB }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.products[p.ID] = *p
	return nil
}
func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
func (r productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, nil
}
func (r productRepo) GetView(ctx context.Context, id string) (*repository.ProductView, error) {
	p, _ := r.GetByID(ctx, id)
	if p == nil {
		return nil, nil
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return &repository.ProductView{Product: *p, CategoryName: r.db.categories[p.CategoryID].Name}, nil
}
func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}
func (r productRepo) Update(ctx context.Context, p *entity.Product) error { return r.Create(ctx, p) }
func (r productRepo) UpdateQuantity(_ context.Context, id string, q decimal.Decimal, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity, p.UpdatedAt = q, at
	r.db.products[id] = p
	return nil
}
func (r productRepo) List(_ context.Context, f repository.ProductFilter) ([]repository.ProductView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []repository.ProductView{}
	for _, p := range r.db.products {
		p := p
		if f.LowStockOnly && !p.LowStock() {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, repository.ProductView{Product: p, CategoryName: r.db.categories[p.CategoryID].Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
func (r productRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

type movementRepo struct{ db *memDB }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.movements = append(r.db.movements, *m)
	return nil
}
func (r movementRepo) GetView(context.Context, string) (*repository.MovementView, error) {
	return nil, nil
}
func (r movementRepo) List(context.Context, repository.MovementFilter) ([]repository.MovementView, error) {
	return nil, nil
}

type userRepo struct{ db *memDB }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.ID] = *u
	return nil
}
func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
func (r userRepo) GetByEmail(context.Context, string) (*entity.User, error)    { return nil, nil }
func (r userRepo) GetByUsername(context.Context, string) (*entity.User, error) { return nil, nil }
func (r userRepo) Update(ctx context.Context, u *entity.User) error            { return r.Create(ctx, u) }
func (r userRepo) ListStaffEmails(context.Context) ([]string, error)           { return nil, nil }

type countingObserver struct {
	mu    sync.Mutex
	saved []entity.Product
}

func (o *countingObserver) ProductSaved(p *entity.Product, _ string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.saved = append(o.saved, *p)
	return true
}
