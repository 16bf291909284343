package backoffice

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const (
	defaultMaintenanceLimit = 25
	maintenanceScanLimit    = 100
	maxMaintenanceScanPages = 10
)

// ListPendingMaintenance returns one page of upcoming periodic maintenance. Records without
// an id cannot be opened and are dropped.
func (s *Service) ListPendingMaintenance(ctx context.Context, page, limit int) (Page[Maintenance], error) {
	if limit <= 0 {
		limit = defaultMaintenanceLimit
	}
	path := fmt.Sprintf("/mantenimientos-pendientes?page=%s&limit=%d", pageNumber(page), limit)
	raw, err := s.api.Get(ctx, path)
	if err != nil {
		return emptyPage[Maintenance](), err
	}
	result := decodeList[Maintenance](raw, []string{"mantenimientos"}, nil)

	kept := result.Items[:0]
	for _, m := range result.Items {
		if m.ID != "" {
			kept = append(kept, m)
		}
	}
	if dropped := len(result.Items) - len(kept); dropped > 0 && result.Total >= dropped {
		result.Total -= dropped
	}
	result.Items = kept
	return result, nil
}

// findMaintenance asks for the whole pending list first. When the backend still pages that
// answer, it scans at most maxMaintenanceScanPages pages.
func (s *Service) findMaintenance(ctx context.Context, id string) (*Maintenance, error) {
	raw, err := s.api.Get(ctx, "/mantenimientos-pendientes")
	if err != nil {
		return nil, err
	}
	all := decodeList[Maintenance](raw, []string{"mantenimientos"}, nil)
	if m := maintenanceByID(all.Items, id); m != nil {
		return m, nil
	}
	if all.TotalPages <= 1 {
		return nil, ErrNotFound
	}

	pages := min(all.TotalPages, maxMaintenanceScanPages)
	for page := 1; page <= pages; page++ {
		result, err := s.ListPendingMaintenance(ctx, page, maintenanceScanLimit)
		if err != nil {
			return nil, err
		}
		if m := maintenanceByID(result.Items, id); m != nil {
			return m, nil
		}
		pages = min(result.TotalPages, maxMaintenanceScanPages)
	}
	return nil, ErrNotFound
}

func maintenanceByID(items []Maintenance, id string) *Maintenance {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// GetMaintenance finds the record in the pending list and resolves its address. The address
// lookup is best effort; the record is returned without it when the lookup fails.
func (s *Service) GetMaintenance(ctx context.Context, id string) (*MaintenanceDetail, error) {
	if err := requireID("maintenance", id); err != nil {
		return nil, err
	}

	found, err := s.findMaintenance(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &MaintenanceDetail{Maintenance: *found}
	if found.AddressID == "" {
		return detail, nil
	}
	raw, err := s.api.Get(ctx, "/direccion/"+seg(found.AddressID))
	if err != nil {
		s.log.Warn("maintenance address lookup failed",
			zap.String("maintenance_id", id),
			zap.String("address_id", found.AddressID),
			zap.Error(err),
		)
		return detail, nil
	}
	if obj, ok := asObject(raw); ok {
		if addr, ok := asObject(obj["direccion"]); ok && len(addr) > 0 {
			detail.Address = obj["direccion"]
		} else {
			detail.Address = json.RawMessage(raw)
		}
	}
	return detail, nil
}
