// Package analytics contiene los casos de uso de reportes: el dashboard de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

const (
	dashboardTopProducts = 5  // número de productos en el ranking
	dashboardWindowDays  = 30 // ventana del ranking de más movidos
)

// DashboardUseCase genera el resumen de inventario.
//
// Fuente de datos: DashboardRepository (consultas read-only en un único snapshot).
// Sin caché: cada petición vuelve a contar.
type DashboardUseCase struct {
	repo repository.DashboardRepository
	loc  *time.Location
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc define qué es "hoy".
func NewDashboardUseCase(repo repository.DashboardRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardUseCase{repo: repo, loc: loc, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO.
//
//	Hoy:     [00:00, 00:00 del día siguiente) en la zona configurada
//	Ranking: últimos 30 días hasta ahora, top 5
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now().In(uc.loc)

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	todayEnd := todayStart.AddDate(0, 0, 1)

	snap, err := uc.repo.Snapshot(ctx, repository.DashboardQuery{
		TodayStart: todayStart,
		TodayEnd:   todayEnd,
		Since:      now.AddDate(0, 0, -dashboardWindowDays),
		TopLimit:   dashboardTopProducts,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: snapshot: %w", err)
	}

	top := make([]dto.TopMovedProductDTO, 0, len(snap.TopMoved))
	for _, p := range snap.TopMoved {
		top = append(top, dto.TopMovedProductDTO{
			ProductID:   p.ProductID,
			Code:        p.Code,
			ProductName: p.ProductName,
			TotalMoved:  p.TotalMoved,
		})
	}
	return &dto.DashboardSummaryDTO{
		TotalProducts:    snap.TotalProducts,
		ActiveProducts:   snap.ActiveProducts,
		Categories:       snap.Categories,
		MovementsToday:   snap.MovementsToday,
		LowStockProducts: snap.LowStockProducts,
		TopMovedProducts: top,
	}, nil
}
