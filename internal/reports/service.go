package reports

import (
	"context"
	"fmt"
)

type Service interface {
	// ExportRoster renders an event's attendee roster in the requested
	// format ("xlsx" or "csv"). Returns content, filename, mime type.
	ExportRoster(ctx context.Context, eventID uint, format string) ([]byte, string, string, error)
	// ExportReceipt renders an order receipt as PDF.
	ExportReceipt(ctx context.Context, orderID uint) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	exporter Exporter
}

func NewService(repo Repository) Service {
	return &service{repo: repo, exporter: NewExporter()}
}

func (s *service) ExportRoster(ctx context.Context, eventID uint, format string) ([]byte, string, string, error) {
	data, err := s.repo.RosterForEvent(ctx, eventID)
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case "csv":
		return s.exporter.RosterCSV(data)
	case "", "xlsx":
		return s.exporter.RosterExcel(data)
	default:
		return nil, "", "", fmt.Errorf("unsupported roster format: %s", format)
	}
}

func (s *service) ExportReceipt(ctx context.Context, orderID uint) ([]byte, string, string, error) {
	data, err := s.repo.ReceiptForOrder(ctx, orderID)
	if err != nil {
		return nil, "", "", err
	}
	return s.exporter.ReceiptPDF(data)
}
