package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/pkg/config"
	"gopkg.in/gomail.v2"
)

// Verificar en tiempo de compilación que SMTPNotifier implementa LowStockNotifier.
var _ ports.LowStockNotifier = (*SMTPNotifier)(nil)

// sender abstrae gomail.Dialer para poder sustituirlo en tests.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier adaptador que envía el aviso de stock bajo por correo vía gomail.
type SMTPNotifier struct {
	from   string
	sender sender
}

// NewSMTPNotifier construye el adaptador a partir de la configuración SMTP.
func NewSMTPNotifier(cfg config.MailConfig) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.From,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// NotifyLowStock envía un único correo a todos los destinatarios.
// gomail no acepta contexto: si ctx vence antes, se devuelve ctx.Err() y el envío termina en segundo plano.
func (n *SMTPNotifier) NotifyLowStock(ctx context.Context, alert ports.LowStockAlert, recipients []string) error {
	if len(recipients) == 0 {
		return errors.New("mail: sin destinatarios")
	}
	msg := BuildLowStockMessage(n.from, alert, recipients)

	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: enviar aviso %s: %w", alert.Code, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildLowStockMessage arma el correo: asunto con el nombre del producto, cuerpo con código, cantidad, mínimo y categoría.
func BuildLowStockMessage(from string, alert ports.LowStockAlert, recipients []string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", "Stock bajo: "+alert.Name)
	m.SetBody("text/plain", lowStockBody(alert))
	return m
}

func lowStockBody(a ports.LowStockAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "El producto %s alcanzó su stock mínimo.\n\n", a.Name)
	fmt.Fprintf(&b, "Código: %s\n", a.Code)
	fmt.Fprintf(&b, "Cantidad actual: %s %s\n", a.Quantity.StringFixed(2), a.Unit)
	fmt.Fprintf(&b, "Cantidad mínima: %s %s\n", a.MinimumQuantity.StringFixed(2), a.Unit)
	fmt.Fprintf(&b, "Categoría: %s\n", a.CategoryName)
	return b.String()
}
