package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Claim describes a completed registration.
type Claim struct {
	UserLogin    string
	UserEmail    string
	ProductName  string
	SerialNumber string
}

// DefaultTimeout bounds one Notify call, both messages included.
const DefaultTimeout = 30 * time.Second

// Notifier sends the customer and operator mails for a claim.
type Notifier struct {
	mailer        Mailer
	operatorEmail string
	timeout       time.Duration
}

func NewNotifier(m Mailer, operatorEmail string) *Notifier {
	return &Notifier{mailer: m, operatorEmail: operatorEmail, timeout: DefaultTimeout}
}

// SetTimeout changes the bound on a Notify call.
func (n *Notifier) SetTimeout(d time.Duration) {
	n.timeout = d
}

// Notify tries both messages and returns their joined errors. A missing
// address skips that message. Sending outlives a cancelled request but not
// the notifier's timeout.
func (n *Notifier) Notify(ctx context.Context, c Claim) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	var errs []error

	if c.UserEmail == "" {
		log.Printf("notify: no email for user %q, customer mail skipped", c.UserLogin)
	} else if err := n.mailer.Send(ctx, CustomerMessage(c)); err != nil {
		errs = append(errs, fmt.Errorf("customer mail: %w", err))
	}

	if n.operatorEmail == "" {
		log.Printf("notify: no operator email configured, operator mail skipped")
	} else if err := n.mailer.Send(ctx, OperatorMessage(c, n.operatorEmail)); err != nil {
		errs = append(errs, fmt.Errorf("operator mail: %w", err))
	}

	return errors.Join(errs...)
}

func CustomerMessage(c Claim) Message {
	return Message{
		To:      c.UserEmail,
		Subject: fmt.Sprintf("Your product %s has been registered", c.ProductName),
		Body: fmt.Sprintf("Thank you for registering your product. Here are the details:\n\nProduct: %s\nSerial Number: %s",
			c.ProductName, c.SerialNumber),
	}
}

func OperatorMessage(c Claim, to string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("New product registration: %s", c.ProductName),
		Body: fmt.Sprintf("A new product has been registered:\n\nUser: %s\nProduct: %s\nSerial Number: %s",
			c.UserLogin, c.ProductName, c.SerialNumber),
	}
}
