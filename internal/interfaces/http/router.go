package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-api/internal/application/dto"
)

// AuthService lo implementa *auth.AuthUseCase.
type AuthService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.RefreshResponse, error)
	Verify(in dto.VerifyRequest) error
	Profile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error
}

// CategoryService lo implementa *usecase.CategoryUseCase.
type CategoryService interface {
	Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context, q dto.CategoryListQuery) (*dto.CategoryListResponse, error)
	Delete(ctx context.Context, id string) error
}

// ProductService lo implementa *usecase.ProductUseCase.
type ProductService interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProductResponse, error)
	Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error)
	ListLowStock(ctx context.Context, q dto.ProductListQuery) (*dto.ProductListResponse, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, requesterID, id string, in dto.AdjustStockRequest) (*dto.ProductResponse, error)
}

// MovementService lo implementa *inventory.MovementUseCase.
type MovementService interface {
	RecordMovement(ctx context.Context, requesterID string, in dto.CreateMovementRequest) (*dto.MovementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.MovementResponse, error)
	List(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error)
}

// DashboardService lo implementa *analytics.DashboardUseCase.
type DashboardService interface {
	GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error)
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      AuthService
	CategoryUC  CategoryService
	ProductUC   ProductService
	MovementUC  MovementService
	DashboardUC DashboardService
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	// Auth: registro, login y tokens son públicos; el perfil exige Bearer
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/login/refresh", authHandler.Refresh)
	authGroup.Post("/login/verify", authHandler.Verify)
	authGroup.Get("/profile", requireAuth, authHandler.Profile)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)
	authGroup.Patch("/profile", requireAuth, authHandler.UpdateProfile)
	authGroup.Put("/profile/update", requireAuth, authHandler.UpdateProfile)
	authGroup.Patch("/profile/update", requireAuth, authHandler.UpdateProfile)
	authGroup.Post("/change-password", requireAuth, authHandler.ChangePassword)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", requireAuth)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Patch("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Patch("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/adjust-stock", productHandler.AdjustStock)

	// Movimientos: solo alta y consulta (append-only)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Get("/", movementHandler.List)
	movements.Post("/", movementHandler.Create)
	movements.Get("/:id", movementHandler.GetByID)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.GetSummary)
}
