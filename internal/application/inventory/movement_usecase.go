package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Options reglas configurables del motor de stock.
type Options struct {
	AllowNegativeStock bool
	Location           *time.Location // define el día calendario de los filtros date_from/date_to
}

// MovementUseCase registra movimientos de stock de forma transaccional
// (INBOUND, OUTBOUND, ADJUSTMENT) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
// Es el único camino que modifica la cantidad de un producto a través del libro de movimientos.
type MovementUseCase struct {
	txRunner    TxRunner
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	observer    ports.ProductObserver
	opts        Options
	now         func() time.Time
}

// NewMovementUseCase construye el caso de uso. observer puede ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	observer ports.ProductObserver,
	opts Options,
) *MovementUseCase {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &MovementUseCase{
		txRunner:    txRunner,
		movRepo:     movRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		observer:    observer,
		opts:        opts,
		now:         time.Now,
	}
}

// MovementInput entrada ya normalizada para Record. Kind debe ser canónico.
type MovementInput struct {
	ProductID string
	Kind      string
	Quantity  decimal.Decimal
	Note      string
	User      *entity.User
}

// Recorded resultado de un movimiento confirmado: el movimiento y el producto tal como quedaron.
type Recorded struct {
	Movement     entity.Movement
	Product      entity.Product
	CategoryName string
}

// Record valida la cantidad, y en una sola transacción bloquea el producto, aplica la regla de
// mutación, persiste la nueva cantidad e inserta el movimiento. Tras el commit avisa al observer.
// Devuelve domain.ErrNotFound si el producto no existe.
func (uc *MovementUseCase) Record(ctx context.Context, in MovementInput) (*Recorded, error) {
	if err := inventory.ValidateQuantity(in.Kind, in.Quantity); err != nil {
		return nil, err
	}
	if in.User == nil {
		return nil, domain.ErrUnauthorized
	}

	movementID := uuid.New().String()
	var out Recorded

	// Inicia transacción; Commit si todo ok, Rollback si algo falla (TxRunner.Run lo hace)
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		newQty, err := inventory.ApplyMovement(product.Quantity, in.Kind, in.Quantity)
		if err != nil {
			return err
		}
		if err := inventory.EnsureNonNegative(newQty, uc.opts.AllowNegativeStock); err != nil {
			return err
		}
		if err := inventory.EnsureWithinRange(newQty); err != nil {
			return err
		}
		now := uc.now()
		if err := productRepo.UpdateQuantity(ctx, product.ID, newQty, now); err != nil {
			return err
		}
		product.Quantity = newQty
		product.UpdatedAt = now

		movement := entity.Movement{
			ID:        movementID,
			ProductID: product.ID,
			Kind:      in.Kind,
			Quantity:  in.Quantity,
			Note:      in.Note,
			UserID:    in.User.ID,
			CreatedAt: now,
		}
		if err := movRepo.Create(ctx, &movement); err != nil {
			return err
		}
		out.Movement = movement
		out.Product = *product
		return nil
	})
	if err != nil {
		return nil, err
	}

	// El nombre de la categoría solo se usa en el aviso; un fallo aquí no invalida el movimiento.
	if view, vErr := uc.productRepo.GetView(ctx, out.Product.ID); vErr == nil && view != nil {
		out.CategoryName = view.CategoryName
	}
	if uc.observer != nil {
		uc.observer.ProductSaved(&out.Product, out.CategoryName)
	}
	return &out, nil
}

// RecordMovement adapta el request HTTP a Record. Si user_id viene vacío el movimiento
// se atribuye al usuario autenticado.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, requesterID string, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	kind, ok := entity.ParseMovementKind(in.Kind)
	if !ok {
		return nil, domain.NewValidationError("kind", "tipo de movimiento inválido")
	}
	if in.Quantity == nil {
		return nil, domain.NewValidationError("quantity", "la cantidad es obligatoria")
	}
	if err := inventory.ValidateQuantity(kind, *in.Quantity); err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == "" {
		userID = requesterID
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if in.UserID == "" {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.NewValidationError("user_id", "el usuario no existe")
	}

	rec, err := uc.Record(ctx, MovementInput{
		ProductID: in.ProductID,
		Kind:      kind,
		Quantity:  *in.Quantity,
		Note:      strings.TrimSpace(in.Note),
		User:      user,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("product_id", "el producto no existe")
	}
	if err != nil {
		return nil, err
	}
	return toMovementResponse(&repository.MovementView{
		Movement:    rec.Movement,
		ProductName: rec.Product.Name,
		UserName:    user.DisplayName(),
	}), nil
}

// GetByID obtiene un movimiento con nombres de producto y usuario.
func (uc *MovementUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	view, err := uc.movRepo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	return toMovementResponse(view), nil
}

// List lista movimientos con filtros. date_from/date_to son días calendario inclusivos
// en la zona horaria configurada.
func (uc *MovementUseCase) List(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	q.DefaultPage()
	f := repository.MovementFilter{
		ProductID: q.ProductID,
		Search:    strings.TrimSpace(q.Search),
		Ordering:  q.Ordering,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	verr := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	if q.Kind != "" {
		kind, ok := entity.ParseMovementKind(q.Kind)
		if !ok {
			verr.Add("kind", "tipo de movimiento inválido")
		}
		f.Kind = kind
	}
	if q.ProductID != "" {
		if _, err := uuid.Parse(q.ProductID); err != nil {
			verr.Add("product_id", "identificador inválido")
		}
	}
	if q.DateFrom != "" {
		from, err := time.ParseInLocation(dateLayout, q.DateFrom, uc.opts.Location)
		if err != nil {
			verr.Add("date_from", "formato esperado YYYY-MM-DD")
		} else {
			f.From = &from
		}
	}
	if q.DateTo != "" {
		to, err := time.ParseInLocation(dateLayout, q.DateTo, uc.opts.Location)
		if err != nil {
			verr.Add("date_to", "formato esperado YYYY-MM-DD")
		} else {
			end := to.AddDate(0, 0, 1)
			f.To = &end
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	list, err := uc.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementListItem, 0, len(list))
	for i := range list {
		items = append(items, toMovementListItem(&list[i]))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

func toMovementResponse(v *repository.MovementView) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          v.ID,
		ProductID:   v.ProductID,
		ProductName: v.ProductName,
		Kind:        v.Kind,
		Quantity:    v.Quantity,
		Note:        v.Note,
		UserID:      v.UserID,
		UserName:    v.UserName,
		CreatedAt:   v.CreatedAt,
	}
}

func toMovementListItem(v *repository.MovementView) dto.MovementListItem {
	return dto.MovementListItem{
		ID:          v.ID,
		ProductName: v.ProductName,
		Kind:        v.Kind,
		Quantity:    v.Quantity,
		UserName:    v.UserName,
		CreatedAt:   v.CreatedAt,
	}
}
