package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	stockrule "github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockRecorder registra un movimiento y aplica la regla de mutación (inventory.MovementUseCase).
type StockRecorder interface {
	Record(ctx context.Context, in inventory.MovementInput) (*inventory.Recorded, error)
}

// ProductUseCase casos de uso CRUD para productos más el ajuste de stock.
// Cada escritura confirmada se notifica al observer (avisos de stock bajo).
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	stock        StockRecorder
	observer     ports.ProductObserver
}

// NewProductUseCase construye el caso de uso. observer puede ser nil.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	stock StockRecorder,
	observer ports.ProductObserver,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		repo:         repo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		stock:        stock,
		observer:     observer,
	}
}

// Create crea un nuevo producto. Unit por defecto UN; Active por defecto true.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Unit == "" {
		in.Unit = entity.UnitPiece
	}
	verr := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	if strings.TrimSpace(in.Code) == "" {
		verr.Add("code", "el código es obligatorio")
	}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "el nombre es obligatorio")
	}
	if !entity.ValidUnit(in.Unit) {
		verr.Add("unit", "unidad inválida")
	}
	checkNonNegative(verr, "quantity", in.Quantity)
	checkNonNegative(verr, "cost_price", in.CostPrice)
	checkNonNegative(verr, "sale_price", in.SalePrice)
	checkNonNegative(verr, "minimum_quantity", in.MinimumQuantity)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.Code)
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewUniqueError("code", "ya existe un producto con este código")
	}
	category, err := uc.requireCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		Code:            code,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		CategoryID:      category.ID,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		CostPrice:       in.CostPrice,
		SalePrice:       in.SalePrice,
		MinimumQuantity: in.MinimumQuantity,
		Active:          active,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.saved(product, category.Name)
	return toProductResponse(&repository.ProductView{Product: *product, CategoryName: category.Name}), nil
}

// GetByID obtiene un producto con su categoría.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	view, err := uc.repo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(view), nil
}

// Update actualiza parcialmente un producto. Bloquea la fila para no pisar un movimiento concurrente.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	verr := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	if in.Code != nil && strings.TrimSpace(*in.Code) == "" {
		verr.Add("code", "el código es obligatorio")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		verr.Add("name", "el nombre es obligatorio")
	}
	if in.Unit != nil && !entity.ValidUnit(*in.Unit) {
		verr.Add("unit", "unidad inválida")
	}
	for field, v := range map[string]*decimal.Decimal{
		"quantity":         in.Quantity,
		"cost_price":       in.CostPrice,
		"sale_price":       in.SalePrice,
		"minimum_quantity": in.MinimumQuantity,
	} {
		if v != nil {
			checkNonNegative(verr, field, *v)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var category *entity.Category
	if in.CategoryID != nil {
		c, err := uc.requireCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		category = c
	}

	var updated entity.Product
	err := uc.txRunner.Run(ctx, func(_ repository.MovementRepository, productRepo repository.ProductRepository) error {
		product, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Code != nil {
			code := strings.TrimSpace(*in.Code)
			if code != product.Code {
				other, err := productRepo.GetByCode(ctx, code)
				if err != nil {
					return err
				}
				if other != nil && other.ID != product.ID {
					return domain.NewUniqueError("code", "ya existe un producto con este código")
				}
			}
			product.Code = code
		}
		if in.Name != nil {
			product.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if category != nil {
			product.CategoryID = category.ID
		}
		if in.Quantity != nil {
			product.Quantity = *in.Quantity
		}
		if in.Unit != nil {
			product.Unit = *in.Unit
		}
		if in.CostPrice != nil {
			product.CostPrice = *in.CostPrice
		}
		if in.SalePrice != nil {
			product.SalePrice = *in.SalePrice
		}
		if in.MinimumQuantity != nil {
			product.MinimumQuantity = *in.MinimumQuantity
		}
		if in.Active != nil {
			product.Active = *in.Active
		}
		product.UpdatedAt = time.Now()
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		updated = *product
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := uc.repo.GetView(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, domain.ErrNotFound
	}
	uc.saved(&updated, view.CategoryName)
	return toProductResponse(view), nil
}

// List lista productos con filtros y paginación (forma compacta).
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	verr := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	if q.CategoryID != "" {
		if _, err := uuid.Parse(q.CategoryID); err != nil {
			verr.Add("category_id", "identificador inválido")
		}
	}
	if q.Unit != "" && !entity.ValidUnit(q.Unit) {
		verr.Add("unit", "unidad no soportada")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:       strings.TrimSpace(q.Search),
		CategoryID:   q.CategoryID,
		Unit:         q.Unit,
		Active:       q.Active,
		LowStockOnly: q.LowStock,
		Ordering:     q.Ordering,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductListItem, 0, len(list))
	for i := range list {
		items = append(items, toProductListItem(&list[i]))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// ListLowStock lista solo productos con quantity <= minimum_quantity.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.LowStock = true
	return uc.List(ctx, q)
}

// Delete elimina un producto y, en cascada, sus movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// AdjustStock fija la cantidad del producto creando un movimiento ADJUSTMENT atribuido al usuario.
// No escribe la cantidad por su cuenta: el movimiento es la única fuente de verdad.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, requesterID, id string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if in.Quantity == nil {
		return nil, domain.NewValidationError("quantity", "la cantidad es obligatoria")
	}
	user, err := uc.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	rec, err := uc.stock.Record(ctx, inventory.MovementInput{
		ProductID: id,
		Kind:      entity.MovementAdjustment,
		Quantity:  *in.Quantity,
		Note:      "Ajuste de stock realizado por " + user.DisplayName(),
		User:      user,
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(&repository.ProductView{Product: rec.Product, CategoryName: rec.CategoryName}), nil
}

func (uc *ProductUseCase) requireCategory(ctx context.Context, id string) (*entity.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidationError("category_id", "identificador inválido")
	}
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewValidationError("category_id", "la categoría no existe")
	}
	return category, nil
}

func (uc *ProductUseCase) saved(p *entity.Product, categoryName string) {
	if uc.observer != nil {
		uc.observer.ProductSaved(p, categoryName)
	}
}

func checkNonNegative(verr *domain.ValidationError, field string, v decimal.Decimal) {
	if v.IsNegative() {
		verr.Add(field, "no puede ser negativo")
		return
	}
	var amountErr *domain.ValidationError
	if errors.As(stockrule.CheckAmount(field, v), &amountErr) {
		for _, msg := range amountErr.Fields[field] {
			verr.Add(field, msg)
		}
	}
}

func toProductResponse(v *repository.ProductView) *dto.ProductResponse {
	if v == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              v.ID,
		Code:            v.Code,
		Name:            v.Name,
		Description:     v.Description,
		CategoryID:      v.CategoryID,
		CategoryName:    v.CategoryName,
		Quantity:        v.Quantity,
		Unit:            v.Unit,
		CostPrice:       v.CostPrice,
		SalePrice:       v.SalePrice,
		MinimumQuantity: v.MinimumQuantity,
		Active:          v.Active,
		LowStock:        v.LowStock(),
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func toProductListItem(v *repository.ProductView) dto.ProductListItem {
	return dto.ProductListItem{
		ID:              v.ID,
		Code:            v.Code,
		Name:            v.Name,
		CategoryName:    v.CategoryName,
		Quantity:        v.Quantity,
		Unit:            v.Unit,
		MinimumQuantity: v.MinimumQuantity,
		LowStock:        v.LowStock(),
	}
}
