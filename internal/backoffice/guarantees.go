package backoffice

import "context"

func (s *Service) ListPendingGuarantees(ctx context.Context, page int) (Page[Guarantee], error) {
	raw, err := s.api.Get(ctx, "/garantias/pendientes/"+pageNumber(page))
	if err != nil {
		return emptyPage[Guarantee](), err
	}
	return decodeList[Guarantee](raw, []string{"garantias"}, nil), nil
}

// AssignGuaranteeTechnician assigns the claim and returns the refreshed pending page.
func (s *Service) AssignGuaranteeTechnician(ctx context.Context, guaranteeID, technicianID string, page int) (Page[Guarantee], error) {
	if err := requireID("guarantee", guaranteeID); err != nil {
		return emptyPage[Guarantee](), err
	}
	if err := requireID("technician", technicianID); err != nil {
		return emptyPage[Guarantee](), err
	}
	body := map[string]string{"tecnicoId": technicianID}
	if _, err := s.api.Put(ctx, "/garantia/"+seg(guaranteeID)+"/asignar-tecnico", body); err != nil {
		return emptyPage[Guarantee](), err
	}
	return s.ListPendingGuarantees(ctx, page)
}
