package backoffice

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ErrInvoiceRequired rejects finalizing an order without its invoice number.
var ErrInvoiceRequired = fmt.Errorf("%w: invoice number is required to finalize an order", ErrInvalidInput)

// OrderFilter selects work orders. Only one criterion is sent, in the order Number,
// TechnicianID, Status; with none the numbered page is listed.
type OrderFilter struct {
	Page         int
	Number       string
	TechnicianID string
	Status       string
}

func (f OrderFilter) path() string {
	switch {
	case strings.TrimSpace(f.Number) != "":
		return "/orden-numero/" + seg(f.Number)
	case strings.TrimSpace(f.TechnicianID) != "":
		return "/orden-tecnico/" + seg(f.TechnicianID)
	case strings.TrimSpace(f.Status) != "":
		return "/orden-filtro/" + seg(f.Status)
	default:
		return "/ordenes/" + pageNumber(f.Page)
	}
}

func (s *Service) ListOrders(ctx context.Context, f OrderFilter) (Page[Order], error) {
	raw, err := s.api.Get(ctx, f.path())
	if err != nil {
		return emptyPage[Order](), err
	}
	return decodeList[Order](raw, nil, []string{"orden"}), nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	raw, err := s.api.Get(ctx, "/orden/"+seg(id))
	if err != nil {
		return nil, err
	}
	order, ok := decodeRecord[Order](raw, "ordenDeTrabajo", "data", "orden")
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *Service) AssignTechnician(ctx context.Context, orderID, technicianID string) (*Order, error) {
	if err := requireID("technician", technicianID); err != nil {
		return nil, err
	}
	return s.updateOrder(ctx, orderID, map[string]any{"tecnico": technicianID})
}

func (s *Service) ChangeOrderStatus(ctx context.Context, orderID, status string) (*Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, invalid("status is required")
	}
	return s.updateOrder(ctx, orderID, map[string]any{"estado": status})
}

func (s *Service) RescheduleOrder(ctx context.Context, orderID string, at time.Time) (*Order, error) {
	if at.IsZero() {
		return nil, invalid("scheduled date and time are required")
	}
	return s.updateOrder(ctx, orderID, map[string]any{"fechaProgramada": isoTimestamp(at)})
}

// FinalizeOrder closes an order. The invoice number is mandatory; a periodicity of zero
// months is left out so no maintenance gets scheduled.
func (s *Service) FinalizeOrder(ctx context.Context, orderID, invoice string, periodicityMonths int) (*Order, error) {
	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		return nil, ErrInvoiceRequired
	}
	if periodicityMonths < 0 {
		return nil, invalid("periodicity must not be negative")
	}
	payload := map[string]any{"factura": invoice, "estado": StatusFinished}
	if periodicityMonths > 0 {
		payload["periodicidadMeses"] = periodicityMonths
	}
	return s.updateOrder(ctx, orderID, payload)
}

// updateOrder writes the change and re-reads the order so the caller only ever reports
// success with the stored state in hand.
func (s *Service) updateOrder(ctx context.Context, orderID string, payload map[string]any) (*Order, error) {
	if err := requireID("order", orderID); err != nil {
		return nil, err
	}
	if _, err := s.api.Put(ctx, "/orden/"+seg(orderID), payload); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// isoTimestamp formats t the way the backend stores dates.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
