package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"castella/internal/backoffice"
)

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := backoffice.OrderFilter{
		Page:         queryInt(r, "page"),
		Number:       q.Get("numero"),
		TechnicianID: q.Get("tecnico"),
		Status:       q.Get("estado"),
	}
	s.latest(w, r, "orders", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ListOrders(ctx, filter)
	})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderID")
	s.latest(w, r, "order", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.GetOrder(ctx, id)
	})
}

type technicianBody struct {
	TechnicianID string `json:"tecnicoId"`
	Page         int    `json:"page"`
}

func (s *Server) handleOrderTechnician(w http.ResponseWriter, r *http.Request) {
	var body technicianBody
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id := chi.URLParam(r, "orderID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.AssignTechnician(ctx, id, body.TechnicianID)
	})
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"estado"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id := chi.URLParam(r, "orderID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ChangeOrderStatus(ctx, id, body.Status)
	})
}

func (s *Server) handleOrderSchedule(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ScheduledAt string `json:"fechaProgramada"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	at, ok := parseSchedule(body.ScheduledAt)
	if !ok {
		s.writeError(w, http.StatusBadRequest, errInvalidSchedule)
		return
	}
	id := chi.URLParam(r, "orderID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.RescheduleOrder(ctx, id, at)
	})
}

// parseSchedule accepts an RFC 3339 timestamp or a local "YYYY-MM-DDTHH:MM" value.
func parseSchedule(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (s *Server) handleOrderFinalize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Invoice           string `json:"factura"`
		PeriodicityMonths int    `json:"periodicidadMeses"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id := chi.URLParam(r, "orderID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.FinalizeOrder(ctx, id, body.Invoice, body.PeriodicityMonths)
	})
}

func (s *Server) handleMobileOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := backoffice.MobileOrderFilter{
		Number:       q.Get("numero"),
		Text:         q.Get("q"),
		FinishedOnly: queryBool(r, "finalizadas"),
		TechnicianID: q.Get("tecnico"),
	}
	s.latest(w, r, "mobile-orders", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		items, err := svc.ListMobileOrders(ctx, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": items, "total": len(items)}, nil
	})
}

func (s *Server) handleMobileAssignment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TechnicianID string `json:"tecnicoId"`
		Date         string `json:"fecha"`
		StartHour    string `json:"horaInicio"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(body.Date))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidDate)
		return
	}
	id := chi.URLParam(r, "orderID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.AssignMobileOrder(ctx, id, backoffice.MobileAssignment{
			TechnicianID: body.TechnicianID,
			Date:         date,
			StartHour:    strings.TrimSpace(body.StartHour),
		})
	})
}

func (s *Server) handleTechnicians(w http.ResponseWriter, r *http.Request) {
	s.latest(w, r, "technicians", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		items, err := svc.ListTechnicians(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": items}, nil
	})
}

func (s *Server) handleMaintenanceList(w http.ResponseWriter, r *http.Request) {
	page, limit := queryInt(r, "page"), queryInt(r, "limit")
	s.latest(w, r, "maintenance", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ListPendingMaintenance(ctx, page, limit)
	})
}

func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "maintenanceID")
	s.latest(w, r, "maintenance-detail", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.GetMaintenance(ctx, id)
	})
}

func (s *Server) handleGuarantees(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	s.latest(w, r, "guarantees", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ListPendingGuarantees(ctx, page)
	})
}

func (s *Server) handleGuaranteeTechnician(w http.ResponseWriter, r *http.Request) {
	var body technicianBody
	if err := decodeBody(r, &body); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id := chi.URLParam(r, "guaranteeID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.AssignGuaranteeTechnician(ctx, id, body.TechnicianID, body.Page)
	})
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "technicianID")
	s.latest(w, r, "ratings", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.TechnicianRatings(ctx, id)
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	s.latest(w, r, "users", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ListUsers(ctx, page)
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in backoffice.UserInput
	if err := decodeBody(r, &in); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	page := queryInt(r, "page")
	s.run(w, r, http.StatusCreated, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.CreateUser(ctx, in, page)
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in backoffice.UserInput
	if err := decodeBody(r, &in); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id, page := chi.URLParam(r, "userID"), queryInt(r, "page")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.UpdateUser(ctx, id, in, page)
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, page := chi.URLParam(r, "userID"), queryInt(r, "page")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.DeleteUser(ctx, id, page)
	})
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	s.latest(w, r, "roles", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		roles, err := svc.ListRoles(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"items": roles}, nil
	})
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	s.latest(w, r, "clients", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.ListClients(ctx, page)
	})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in backoffice.ClientInput
	if err := decodeBody(r, &in); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	page := queryInt(r, "page")
	s.run(w, r, http.StatusCreated, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.CreateClient(ctx, in, page)
	})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var in backoffice.ClientInput
	if err := decodeBody(r, &in); err != nil {
		s.writeViewError(w, r, err)
		return
	}
	id, page := chi.URLParam(r, "clientID"), queryInt(r, "page")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.UpdateClient(ctx, id, in, page)
	})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, page := chi.URLParam(r, "clientID"), queryInt(r, "page")
	s.run(w, r, http.StatusOK, func(ctx context.Context, svc *backoffice.Service) (any, error) {
		return svc.DeleteClient(ctx, id, page)
	})
}
