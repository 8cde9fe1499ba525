package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/utils"
)

// StartKafkaConsumer reads the booking-events topic and materialises each
// message as an in-app notification for the admin dashboard. It blocks, so
// call it from its own goroutine. Returns immediately when Kafka is not
// configured.
func StartKafkaConsumer(ctx context.Context, cfg *config.Config, repo Repository) {
	reader := utils.NewKafkaReader(cfg, "notification-inbox")
	if reader == nil {
		log.Println("⚠️ Kafka not configured, skipping notification consumer")
		return
	}
	defer reader.Close()

	log.Println("📨 Notification consumer started on topic:", cfg.KafkaTopic)

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("❌ notification consumer: read failed: %v", err)
			continue
		}

		var msg Message
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("❌ notification consumer: bad payload at offset %d: %v", m.Offset, err)
			continue
		}

		n := &InAppNotification{
			Kind:      msg.Kind,
			Title:     msg.Title,
			Message:   msg.Body,
			OrderID:   msg.OrderID,
			BookingID: msg.BookingID,
			EventID:   msg.EventID,
		}
		if err := repo.CreateInApp(ctx, n); err != nil {
			log.Printf("❌ notification consumer: persist failed: %v", err)
		}
	}
}
