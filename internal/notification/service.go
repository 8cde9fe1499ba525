package notification

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/utils"
)

type Service interface {
	// Notify publishes a message to the booking-events topic and delivers
	// it to the customer channel when a recipient is present. Failures are
	// logged, never propagated: notification must not fail the operation.
	Notify(ctx context.Context, msg Message)

	ListInApp(ctx context.Context, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	email Channel
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{
		repo:  repo,
		email: NewEmailSender(cfg),
	}
}

func (s *service) Notify(ctx context.Context, msg Message) {
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ notification: marshal failed for %s: %v", msg.Kind, err)
		return
	}

	if err := utils.PublishMessage(ctx, msg.Kind, payload); err != nil {
		log.Printf("❌ notification: kafka publish failed for %s: %v", msg.Kind, err)
	}

	if msg.Recipient != "" {
		go func(to, subject, body string) {
			if err := s.email.Send([]string{to}, subject, body); err != nil {
				log.Printf("❌ notification: email to %s failed: %v", to, err)
			}
		}(msg.Recipient, msg.Title, msg.Body)
	}
}

func (s *service) ListInApp(ctx context.Context, unreadOnly bool, limit int) ([]InAppNotification, error) {
	return s.repo.ListInApp(ctx, unreadOnly, limit)
}

func (s *service) MarkInAppAsRead(ctx context.Context, id uint) error {
	return s.repo.MarkInAppAsRead(ctx, id)
}
