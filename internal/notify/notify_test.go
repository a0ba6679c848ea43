package notify

import (
	"context"
	"strings"
	"testing"

	"jacksonjar/internal/domain"
)

type captureSender struct {
	sent []Message
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestDonationReceived(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, "https://jar.example.com/")

	m := domain.Merchant{ID: 1, StripeUserID: "acct_1", Email: "owner@example.com", Name: "Jar Co"}
	d := domain.Donation{StripeChargeID: "ch_1", DonatorEmail: "fan@example.com", Amount: 2000}
	if err := n.DonationReceived(context.Background(), m, d, "$20.00"); err != nil {
		t.Fatalf("DonationReceived() unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "owner@example.com" || !strings.Contains(msg.Subject, "fan@example.com") {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !strings.Contains(msg.Body, "$20.00") || !strings.Contains(msg.Body, "https://jar.example.com/home") {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
}

func TestDonationReceivedSkips(t *testing.T) {
	sender := &captureSender{}
	d := domain.Donation{DonatorEmail: "fan@example.com"}

	if err := New(sender, "").DonationReceived(context.Background(), domain.Merchant{}, d, "$20.00"); err != nil {
		t.Fatalf("DonationReceived() unexpected error: %v", err)
	}
	if err := New(nil, "").DonationReceived(context.Background(), domain.Merchant{Email: "o@example.com"}, d, "$20.00"); err != nil {
		t.Fatalf("DonationReceived() with nil sender: %v", err)
	}
	var disabled *Notifier
	if err := disabled.DonationReceived(context.Background(), domain.Merchant{Email: "o@example.com"}, d, "$20.00"); err != nil {
		t.Fatalf("DonationReceived() on nil notifier: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no messages, got %d", len(sender.sent))
	}
}
