package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailNotifier sends order mail through AWS SES.
type EmailNotifier struct {
	client *ses.Client
	sender string
}

func NewEmailNotifier(ctx context.Context, region, keyID, secret, sender string) (*EmailNotifier, error) {
	if sender == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &EmailNotifier{client: ses.NewFromConfig(awsCfg), sender: sender}, nil
}

func (n *EmailNotifier) OrderPlaced(ctx context.Context, ev Event) error {
	subject := fmt.Sprintf("Order %s Confirmation - Thank You for Your Purchase!", ev.OrderNumber)
	body := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Your order %s has been successfully placed.\n\n"+
			"Order Details:\nOrder Number: %s\nTotal Amount: %s\n\n"+
			"We'll send you another email when your order ships.\n\nBest regards,\nThe QuickMart Team",
		ev.CustomerName, ev.OrderNumber, ev.OrderNumber, ev.TotalAmount)
	return n.send(ctx, ev, subject, body)
}

func (n *EmailNotifier) OrderStatusChanged(ctx context.Context, ev Event) error {
	subject := fmt.Sprintf("Order %s Update", ev.OrderNumber)
	body := fmt.Sprintf(
		"Dear %s,\n\nYour order %s is now %s.\n\nBest regards,\nThe QuickMart Team",
		ev.CustomerName, ev.OrderNumber, ev.Status)
	return n.send(ctx, ev, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, ev Event, subject, body string) error {
	if ev.CustomerEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}
	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{ev.CustomerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	}
	if _, err := n.client.SendEmail(ctx, input); err != nil {
		log.Printf("[notify] email for order %s to %s failed: %v", ev.OrderNumber, ev.CustomerEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
