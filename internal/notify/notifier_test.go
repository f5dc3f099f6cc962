package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"winsbygroup.com/prodreg/internal/notify"
)

type recordingMailer struct {
	sent []notify.Message
	fail map[string]error
}

func (m *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	if err := m.fail[msg.To]; err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var claim = notify.Claim{
	UserLogin:    "jdoe",
	UserEmail:    "jdoe@example.com",
	ProductName:  "Kettle",
	SerialNumber: "ABC123",
}

func TestNotifySendsBothMessages(t *testing.T) {
	m := &recordingMailer{}
	n := notify.NewNotifier(m, "ops@example.com")

	if err := n.Notify(context.Background(), claim); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(m.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.sent))
	}

	customer := m.sent[0]
	if customer.To != "jdoe@example.com" {
		t.Errorf("customer mail sent to %s", customer.To)
	}
	if customer.Subject != "Your product Kettle has been registered" {
		t.Errorf("unexpected customer subject %q", customer.Subject)
	}
	wantBody := "Thank you for registering your product. Here are the details:\n\nProduct: Kettle\nSerial Number: ABC123"
	if customer.Body != wantBody {
		t.Errorf("unexpected customer body %q", customer.Body)
	}

	operator := m.sent[1]
	if operator.To != "ops@example.com" {
		t.Errorf("operator mail sent to %s", operator.To)
	}
	if operator.Subject != "New product registration: Kettle" {
		t.Errorf("unexpected operator subject %q", operator.Subject)
	}
	if !strings.Contains(operator.Body, "User: jdoe\nProduct: Kettle\nSerial Number: ABC123") {
		t.Errorf("unexpected operator body %q", operator.Body)
	}
}

func TestNotifySkipsMissingAddresses(t *testing.T) {
	m := &recordingMailer{}
	n := notify.NewNotifier(m, "")

	c := claim
	c.UserEmail = ""
	if err := n.Notify(context.Background(), c); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(m.sent) != 0 {
		t.Errorf("expected no messages, got %d", len(m.sent))
	}
}

func TestNotifyJoinsErrors(t *testing.T) {
	errDown := errors.New("relay down")
	m := &recordingMailer{fail: map[string]error{"jdoe@example.com": errDown}}
	n := notify.NewNotifier(m, "ops@example.com")

	err := n.Notify(context.Background(), claim)
	if !errors.Is(err, errDown) {
		t.Fatalf("expected relay error, got %v", err)
	}
	// operator mail is still attempted
	if len(m.sent) != 1 || m.sent[0].To != "ops@example.com" {
		t.Errorf("expected operator mail to be sent, got %+v", m.sent)
	}
}

func TestLogMailer(t *testing.T) {
	var m notify.Mailer = notify.LogMailer{}
	if err := m.Send(context.Background(), notify.CustomerMessage(claim)); err != nil {
		t.Errorf("log mailer: %v", err)
	}
}
