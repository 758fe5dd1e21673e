// Package alerts despacha avisos de stock bajo después de que la escritura del producto quedó confirmada.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 15 * time.Second

// Dispatcher se invoca explícitamente tras el commit de cada escritura de producto
// (creación, edición, movimiento). Nunca bloquea ni hace fallar al llamador.
type Dispatcher struct {
	notifier ports.LowStockNotifier
	users    repository.UserRepository
	log      *logger.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

// NewDispatcher construye el despachador. timeout <= 0 usa 15s.
func NewDispatcher(notifier ports.LowStockNotifier, users repository.UserRepository, log *logger.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{notifier: notifier, users: users, log: log.Named("alerts"), timeout: timeout}
}

// ShouldNotify: stock bajo y todavía con unidades. Un producto en cero no dispara aviso.
func ShouldNotify(p *entity.Product) bool {
	return p != nil && p.LowStock() && p.Quantity.GreaterThan(decimal.Zero)
}

// ProductSaved evalúa el producto persistido y, si corresponde, envía el aviso en segundo plano.
// Devuelve true si se lanzó un envío.
func (d *Dispatcher) ProductSaved(p *entity.Product, categoryName string) bool {
	if d == nil || d.notifier == nil || !ShouldNotify(p) {
		return false
	}
	alert := ports.LowStockAlert{
		ProductID:       p.ID,
		Code:            p.Code,
		Name:            p.Name,
		CategoryName:    categoryName,
		Quantity:        p.Quantity,
		MinimumQuantity: p.MinimumQuantity,
		Unit:            p.Unit,
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Str("product_id", alert.ProductID).Msg(fmt.Sprintf("panic en aviso de stock bajo: %v", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.send(ctx, alert); err != nil {
			d.log.Warn().Err(err).Str("product_id", alert.ProductID).Str("code", alert.Code).Msg("no se pudo enviar aviso de stock bajo")
		}
	}()
	return true
}

func (d *Dispatcher) send(ctx context.Context, alert ports.LowStockAlert) error {
	recipients, err := d.users.ListStaffEmails(ctx)
	if err != nil {
		return fmt.Errorf("destinatarios: %w", err)
	}
	if len(recipients) == 0 {
		d.log.Debug().Str("product_id", alert.ProductID).Msg("stock bajo sin destinatarios staff")
		return nil
	}
	if err := d.notifier.NotifyLowStock(ctx, alert, recipients); err != nil {
		return err
	}
	d.log.Info().Str("product_id", alert.ProductID).Int("recipients", len(recipients)).Msg("aviso de stock bajo enviado")
	return nil
}

// Wait bloquea hasta que terminen los avisos en curso (apagado ordenado y tests).
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
