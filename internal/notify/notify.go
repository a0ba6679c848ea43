// Package notify tells merchants when a Jackson lands in their jar.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"jacksonjar/internal/domain"
)

// Message is a rendered plain-text e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders donation notices and hands them to a Sender.
type Notifier struct {
	sender  Sender
	baseURL string
}

// New returns a Notifier. A nil sender turns notifications off.
func New(sender Sender, baseURL string) *Notifier {
	return &Notifier{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

// DonationReceived e-mails the merchant about a new Jackson. Merchants without
// an e-mail address are skipped.
func (n *Notifier) DonationReceived(ctx context.Context, m domain.Merchant, d domain.Donation, amount string) error {
	if n == nil || n.sender == nil || strings.TrimSpace(m.Email) == "" {
		return nil
	}
	msg := Message{
		To:      m.Email,
		Subject: fmt.Sprintf("You received a Jackson from %s", d.DonatorEmail),
		Body: fmt.Sprintf(
			"Hi %s,\n\n%s just dropped %s into your jar.\n\nSee every donation at %s/home\n",
			m.DisplayName(), d.DonatorEmail, amount, n.baseURL,
		),
	}
	return n.sender.Send(ctx, msg)
}

// SES sends mail through Amazon SES v2.
type SES struct {
	client *sesv2.Client
	from   string
}

// NewSES loads the default AWS credential chain for region.
func NewSES(ctx context.Context, region, from string) (*SES, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SES{client: sesv2.NewFromConfig(awsCfg), from: from}, nil
}

// Send implements Sender.
func (s *SES) Send(ctx context.Context, msg Message) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}
