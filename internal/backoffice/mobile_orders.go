package backoffice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MobileOrderFilter selects orders created from the mobile app.
type MobileOrderFilter struct {
	Number       string
	Text         string
	FinishedOnly bool
	TechnicianID string
}

// ListMobileOrders returns mobile orders. A number lookup only yields the order when it
// came from the app; Text and TechnicianID are applied to what the backend returned.
func (s *Service) ListMobileOrders(ctx context.Context, f MobileOrderFilter) ([]Order, error) {
	var items []Order

	if number := strings.TrimSpace(f.Number); number != "" {
		raw, err := s.api.Get(ctx, "/orden-numero/"+seg(number))
		if err != nil {
			return []Order{}, err
		}
		if order, ok := decodeRecord[Order](raw, "orden"); ok && order.Type != "" {
			items = append(items, order)
		}
	} else {
		path := "/ordenes-mobile"
		if f.FinishedOnly {
			path += "?soloFinalizadas=true"
		}
		raw, err := s.api.Get(ctx, path)
		if err != nil {
			return []Order{}, err
		}
		items = decodeList[Order](raw, []string{"ordenes"}, nil).Items
		if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
			items = filterOrders(items, func(o Order) bool { return matchesText(o, text) })
		}
	}

	if tech := strings.TrimSpace(f.TechnicianID); tech != "" {
		items = filterOrders(items, func(o Order) bool { return o.Technician != nil && o.Technician.ID == tech })
	}
	if items == nil {
		items = []Order{}
	}
	return items, nil
}

func filterOrders(in []Order, keep func(Order) bool) []Order {
	out := make([]Order, 0, len(in))
	for _, o := range in {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// matchesText reports whether the lowercase needle appears in the client or technician
// name, the notes, the result, the number or the status.
func matchesText(o Order, needle string) bool {
	var fields []string
	if o.Client != nil {
		fields = append(fields, o.Client.Name)
	}
	if o.Technician != nil {
		fields = append(fields, o.Technician.Name)
	}
	fields = append(fields, o.Notes, o.Result, o.Status)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return o.Number != 0 && strings.Contains(strconv.Itoa(o.Number), needle)
}

// MobileAssignment schedules a visit. StartHour is "HH:MM".
type MobileAssignment struct {
	TechnicianID string
	Date         time.Time
	StartHour    string
}

type notification struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID string `json:"usuarioId"`
}

// AssignMobileOrder assigns a technician and visit slot, re-reads the order and tells the
// client about the visit. A failed notification does not fail the assignment.
func (s *Service) AssignMobileOrder(ctx context.Context, orderID string, a MobileAssignment) (*Order, error) {
	if err := requireID("order", orderID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.TechnicianID) == "" || a.Date.IsZero() || strings.TrimSpace(a.StartHour) == "" {
		return nil, invalid("technician, date and start hour are required")
	}
	if _, err := time.Parse("15:04", a.StartHour); err != nil {
		return nil, invalid("start hour %q must be HH:MM", a.StartHour)
	}

	payload := map[string]any{
		"tecnico":         a.TechnicianID,
		"fechaProgramada": fmt.Sprintf("%sT%s:00.000Z", a.Date.Format("2006-01-02"), a.StartHour),
		"horaInicio":      a.StartHour,
		"estado":          StatusAssigned,
	}
	order, err := s.updateOrder(ctx, orderID, payload)
	if err != nil {
		return nil, err
	}

	if order.Client != nil && order.Client.ID != "" {
		s.notifyAssignment(ctx, order, a)
	}
	return order, nil
}

func (s *Service) notifyAssignment(ctx context.Context, order *Order, a MobileAssignment) {
	name := "Técnico"
	if order.Technician != nil && order.Technician.Name != "" {
		name = order.Technician.Name
	}
	msg := notification{
		Title: "Técnico Asignado",
		Body: fmt.Sprintf("Su orden de trabajo ha sido asignada a %s. Fecha de visita: %s a las %s",
			name, a.Date.Format("2/1/2006"), a.StartHour),
		UserID: order.Client.ID,
	}
	if _, err := s.api.Post(ctx, "/enviar-notificacion/", msg); err != nil {
		s.log.Warn("client notification failed",
			zap.String("order_id", order.ID),
			zap.String("client_id", order.Client.ID),
			zap.Error(err),
		)
	}
}
