package backoffice

import (
	"context"
	"strings"
)

func (s *Service) ListClients(ctx context.Context, page int) (Page[Client], error) {
	raw, err := s.api.Get(ctx, "/clientes/"+pageNumber(page))
	if err != nil {
		return emptyPage[Client](), err
	}
	return decodeList[Client](raw, []string{"clientes"}, nil), nil
}

func (s *Service) CreateClient(ctx context.Context, in ClientInput, page int) (Page[Client], error) {
	if strings.TrimSpace(in.Name) == "" {
		return emptyPage[Client](), invalid("client name is required")
	}
	if _, err := s.api.Post(ctx, "/cliente", in); err != nil {
		return emptyPage[Client](), err
	}
	return s.ListClients(ctx, page)
}

func (s *Service) UpdateClient(ctx context.Context, id string, in ClientInput, page int) (Page[Client], error) {
	if err := requireID("client", id); err != nil {
		return emptyPage[Client](), err
	}
	if strings.TrimSpace(in.Name) == "" {
		return emptyPage[Client](), invalid("client name is required")
	}
	if _, err := s.api.Put(ctx, "/cliente/"+seg(id), in); err != nil {
		return emptyPage[Client](), err
	}
	return s.ListClients(ctx, page)
}

func (s *Service) DeleteClient(ctx context.Context, id string, page int) (Page[Client], error) {
	if err := requireID("client", id); err != nil {
		return emptyPage[Client](), err
	}
	if _, err := s.api.Delete(ctx, "/cliente/"+seg(id)); err != nil {
		return emptyPage[Client](), err
	}
	return s.ListClients(ctx, page)
}
