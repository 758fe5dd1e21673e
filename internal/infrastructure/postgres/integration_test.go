package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/migrations"
)

type seed struct {
	pool     *pgxpool.Pool
	users    *postgres.UserRepo
	cats     *postgres.CategoryRepo
	products *postgres.ProductRepo
	moves    *postgres.MovementRepo
	runner   *postgres.TxRunner
}

func newSeed(t *testing.T) *seed {
	pool := testPool(t)
	return &seed{
		pool:     pool,
		users:    postgres.NewUserRepository(pool),
		cats:     postgres.NewCategoryRepository(pool),
		products: postgres.NewProductRepository(pool),
		moves:    postgres.NewMovementRepository(pool),
		runner:   postgres.NewTxRunner(pool, 3, nil),
	}
}

func (s *seed) user(t *testing.T, email, username string, staff bool) *entity.User {
	t.Helper()
	now := time.Now()
	u := &entity.User{
		ID: uuid.NewString(), Email: email, Username: username, FirstName: "Juan", LastName: "Pérez",
		PasswordHash: "x", IsStaff: staff, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *seed) category(t *testing.T, name string) *entity.Category {
	t.Helper()
	now := time.Now()
	c := &entity.Category{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.cats.Create(context.Background(), c))
	return c
}

func (s *seed) product(t *testing.T, categoryID, code string, qty, min int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID: uuid.NewString(), Code: code, Name: "Producto " + code, CategoryID: categoryID,
		Quantity: decimal.NewFromInt(qty), Unit: entity.UnitPiece, MinimumQuantity: decimal.NewFromInt(min),
		Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.products.Create(context.Background(), p))
	return p
}

func (s *seed) movements(opts inventory.Options) *inventory.MovementUseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return inventory.NewMovementUseCase(s.runner, s.moves, s.products, s.users, nil, opts)
}

func quantity(t *testing.T, s *seed, id string) decimal.Decimal {
	t.Helper()
	p, err := s.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func TestMigrator_IdempotenteYReversible(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	m, err := postgres.NewMigrator(pool, migrations.FS, nil)
	require.NoError(t, err)

	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "ya estaba migrado")

	n, err = m.Down(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserRepo_UnicidadYStaff(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", true)
	s.user(t, "ana@example.com", "ana", false)

	got, err := s.users.GetByEmail(ctx, "JUAN@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := s.users.GetByEmail(ctx, "nadie@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := *u
	dup.ID = uuid.NewString()
	dup.Username = "otro"
	err = s.users.Create(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")

	emails, err := s.users.ListStaffEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"juan@example.com"}, emails)
}

func TestProductRepo_CodigoUnicoYFiltros(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	c := s.category(t, "Eléctricos")
	other := s.category(t, "Aseo")
	s.product(t, c.ID, "ELE001", 10, 5)
	s.product(t, c.ID, "ELE002", 2, 5)
	s.product(t, other.ID, "ASE001", 0, 0)

	dup := &entity.Product{ID: uuid.NewString(), Code: "ELE001", Name: "x", CategoryID: c.ID, Unit: entity.UnitPiece, Active: true}
	err := s.products.Create(ctx, dup)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "%v", err)
	assert.Contains(t, verr.Fields, "code")

	low, err := s.products.List(ctx, repository.ProductFilter{LowStockOnly: true, Limit: 10})
	require.NoError(t, err)
	codes := []string{}
	for _, p := range low {
		codes = append(codes, p.Code)
	}
	assert.ElementsMatch(t, []string{"ELE002", "ASE001"}, codes)

	byCat, err := s.products.List(ctx, repository.ProductFilter{CategoryID: c.ID, Ordering: "-quantity", Limit: 10})
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "ELE001", byCat[0].Code)
	assert.Equal(t, "Eléctricos", byCat[0].CategoryName)

	search, err := s.products.List(ctx, repository.ProductFilter{Search: "ase", Limit: 10})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "ASE001", search[0].Code)
}

func TestMovimientos_EscenarioEntradaSalida(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	p := s.product(t, s.category(t, "Eléctricos").ID, "ELE001", 10, 5)
	uc := s.movements(inventory.Options{})

	rec, err := uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementInbound, Quantity: decimal.NewFromInt(5), User: u})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(rec.Product.Quantity))
	assert.False(t, rec.Product.LowStock())

	rec, err = uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementOutbound, Quantity: decimal.NewFromInt(12), User: u})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(quantity(t, s, p.ID)))
	assert.True(t, rec.Product.LowStock())

	_, err = uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementOutbound, Quantity: decimal.NewFromInt(4), User: u})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, decimal.NewFromInt(3).Equal(quantity(t, s, p.ID)), "la salida rechazada no deja rastro")

	list, err := s.moves.List(ctx, repository.MovementFilter{ProductID: p.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Juan Pérez", list[0].UserName)
	assert.Equal(t, "Producto ELE001", list[0].ProductName)
}

// N movimientos concurrentes sobre el mismo producto: ninguna actualización se pierde.
func TestMovimientos_ConcurrenciaSinPerdidas(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	p := s.product(t, s.category(t, "Eléctricos").ID, "ELE001", 100, 5)
	uc := s.movements(inventory.Options{})

	const n = 20
	var g errgroup.Group
	for i := 0; i < n; i++ {
		kind, qty := entity.MovementInbound, decimal.NewFromInt(5)
		if i%2 == 1 {
			kind, qty = entity.MovementOutbound, decimal.NewFromInt(3)
		}
		g.Go(func() error {
			_, err := uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: kind, Quantity: qty, User: u})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, decimal.NewFromInt(100+10*5-10*3).Equal(quantity(t, s, p.ID)), "got %s", quantity(t, s, p.ID))
	list, err := s.moves.List(ctx, repository.MovementFilter{ProductID: p.ID, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestCategoria_BorradoEnCascada(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	c := s.category(t, "Eléctricos")
	p := s.product(t, c.ID, "ELE001", 10, 5)
	_, err := s.movements(inventory.Options{}).Record(ctx, inventory.MovementInput{
		ProductID: p.ID, Kind: entity.MovementInbound, Quantity: decimal.NewFromInt(1), User: u,
	})
	require.NoError(t, err)

	require.NoError(t, s.cats.Delete(ctx, c.ID))

	got, err := s.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	var count int
	require.NoError(t, s.pool.QueryRow(ctx, `SELECT count(*) FROM movements`).Scan(&count))
	assert.Zero(t, count)

	assert.ErrorIs(t, s.cats.Delete(ctx, c.ID), domain.ErrNotFound)
}

func TestMovementRepo_FiltroPorFechas(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	p := s.product(t, s.category(t, "Eléctricos").ID, "ELE001", 10, 5)
	day := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{day.AddDate(0, 0, -1), day, day.AddDate(0, 0, 1)} {
		require.NoError(t, s.moves.Create(ctx, &entity.Movement{
			ID: uuid.NewString(), ProductID: p.ID, Kind: entity.MovementInbound,
			Quantity: decimal.NewFromInt(int64(i + 1)), Note: "lote", UserID: u.ID, CreatedAt: at,
		}))
	}
	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	list, err := s.moves.List(ctx, repository.MovementFilter{From: &from, To: &to, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(list[0].Quantity))

	list, err = s.moves.List(ctx, repository.MovementFilter{Search: "LOTE", Ordering: "quantity", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, decimal.NewFromInt(1).Equal(list[0].Quantity))
}

func TestDashboard_SnapshotYDesempate(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	c := s.category(t, "Eléctricos")
	s.category(t, "Aseo")
	a := s.product(t, c.ID, "A", 10, 5)
	b := s.product(t, c.ID, "B", 10, 5)
	z := s.product(t, c.ID, "Z", 1, 5)
	inactive := s.product(t, c.ID, "I", 0, 0)
	inactive.Active = false
	require.NoError(t, s.products.Update(ctx, inactive))

	now := time.Now()
	add := func(p *entity.Product, qty int64, at time.Time) {
		require.NoError(t, s.moves.Create(ctx, &entity.Movement{
			ID: uuid.NewString(), ProductID: p.ID, Kind: entity.MovementInbound,
			Quantity: decimal.NewFromInt(qty), UserID: u.ID, CreatedAt: at,
		}))
	}
	add(b, 7, now)
	add(a, 7, now)
	add(z, 3, now)
	add(z, 100, now.AddDate(0, 0, -40)) // fuera de la ventana de 30 días

	snap, err := postgres.NewDashboardRepository(s.runner).Snapshot(ctx, repository.DashboardQuery{
		TodayStart: now.Add(-time.Hour),
		TodayEnd:   now.Add(time.Hour),
		Since:      now.AddDate(0, 0, -30),
		TopLimit:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalProducts)
	assert.Equal(t, 3, snap.ActiveProducts)
	assert.Equal(t, 2, snap.Categories)
	assert.Equal(t, 3, snap.MovementsToday)
	assert.Equal(t, 2, snap.LowStockProducts, "Z (1<=5) e I (0<=0)")

	require.Len(t, snap.TopMoved, 3)
	assert.Equal(t, []string{"A", "B", "Z"}, []string{snap.TopMoved[0].Code, snap.TopMoved[1].Code, snap.TopMoved[2].Code},
		"empate en total se resuelve por nombre")
	assert.True(t, decimal.NewFromInt(3).Equal(snap.TopMoved[2].TotalMoved))
}

func TestNumeric_PrecisionYRango(t *testing.T) {
	s := newSeed(t)
	ctx := context.Background()
	u := s.user(t, "juan@example.com", "jdoe", false)
	p := s.product(t, s.category(t, "Eléctricos").ID, "ELE001", 10, 5)
	uc := s.movements(inventory.Options{})

	_, err := uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementInbound, Quantity: decimal.RequireFromString("0.001"), User: u})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "%v", err)
	assert.Contains(t, verr.Fields, "quantity")
	assert.True(t, decimal.NewFromInt(10).Equal(quantity(t, s, p.ID)))

	rec, err := uc.Record(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementInbound, Quantity: decimal.RequireFromString("0.01"), User: u})
	require.NoError(t, err)
	assert.True(t, rec.Product.Quantity.Equal(quantity(t, s, p.ID)), "la respuesta coincide con lo persistido")

	// Sin pasar por la validación del caso de uso, el 22003 también es un error de validación.
	err = s.products.UpdateQuantity(ctx, p.ID, decimal.New(1, 10), time.Now())
	require.True(t, errors.As(err, &verr), "%v", err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, decimal.RequireFromString("10.01").Equal(quantity(t, s, p.ID)))
}
