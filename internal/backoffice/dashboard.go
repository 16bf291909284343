package backoffice

import (
	"context"
	"net/url"
)

func (s *Service) Overview(ctx context.Context) (DashboardOverview, error) {
	raw, err := s.api.Get(ctx, "/dashboard/overview")
	if err != nil {
		return DashboardOverview{}, err
	}
	overview, _ := decodeObject[DashboardOverview](raw, "data")
	return overview, nil
}

// DashboardCards lays the overview out as the three dashboard counters, each linking to
// the order list it counts.
func DashboardCards(o DashboardOverview) []DashboardCard {
	return []DashboardCard{
		{Title: "Órdenes sin asignar", Value: o.Unassigned, Link: ordersLink(StatusPending)},
		{Title: "Órdenes en ejecución", Value: o.InProgress, Link: ordersLink(StatusInProgress)},
		{Title: "Órdenes sin movimiento (5 días)", Value: o.Stale, Link: "/orders"},
	}
}

func ordersLink(status string) string {
	return "/orders?" + url.Values{"estado": {status}}.Encode()
}
