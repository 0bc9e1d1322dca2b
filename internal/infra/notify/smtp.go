package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	domorder "example.com/storefront/internal/domain/order"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails an order confirmation to the shipping address.
type SMTPNotifier struct {
	addr string
	from string
	auth smtp.Auth
	send SendFunc
}

func NewSMTPNotifier(addr, from string, auth smtp.Auth) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from, auth: auth, send: smtp.SendMail}
}

func (n *SMTPNotifier) OrderPlaced(ctx context.Context, o *domorder.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := strings.TrimSpace(o.Shipping.Email)
	if to == "" {
		return fmt.Errorf("order %s: no recipient", o.ID)
	}
	if err := n.send(n.addr, n.auth, n.from, []string{to}, confirmationMail(n.from, to, o)); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", o.ID, err)
	}
	return nil
}

func confirmationMail(from, to string, o *domorder.Order) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Order %s confirmed\r\n", o.ID)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", o.Shipping.Name)
	fmt.Fprintf(&b, "Thank you for your order %s.\r\n\r\n", o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d x %s  $%s\r\n", it.Quantity, it.Name, it.Subtotal)
	}
	fmt.Fprintf(&b, "\r\nTotal: $%s\r\n", o.Total)
	fmt.Fprintf(&b, "Payment: %s\r\n", o.PaymentMethod)
	fmt.Fprintf(&b, "Ship to: %s\r\n", o.Shipping.Address)
	return b.Bytes()
}
