package auditlog

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/datatypes"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error
	List(ctx context.Context, filter Filter) (*Paginated, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	var detailsJSON datatypes.JSON
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Printf("audit: failed to marshal details for %s: %v", action, err)
			raw = []byte(`{}`)
		}
		detailsJSON = datatypes.JSON(raw)
	}

	entry := &AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   detailsJSON,
		IPAddress: ip,
		Status:    status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		// Audit persistence must never break the operation being audited.
		log.Printf("audit: failed to persist %s: %v", action, err)
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter) (*Paginated, error) {
	return s.repo.List(ctx, filter)
}
