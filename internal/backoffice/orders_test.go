package backoffice

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrdersPathPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		filter OrderFilter
		path   string
	}{
		{name: "page", filter: OrderFilter{Page: 3}, path: "/ordenes/3"},
		{name: "page defaults to one", filter: OrderFilter{}, path: "/ordenes/1"},
		{name: "status", filter: OrderFilter{Page: 2, Status: StatusInProgress}, path: "/orden-filtro/EN%20EJECUCI%C3%93N"},
		{name: "technician over status", filter: OrderFilter{TechnicianID: "t1", Status: StatusPending}, path: "/orden-tecnico/t1"},
		{name: "number over everything", filter: OrderFilter{Number: "42", TechnicianID: "t1", Status: StatusPending}, path: "/orden-numero/42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI().on(http.MethodGet, tt.path, ok(`{"items":[{"_id":"o1"}],"total":1}`))
			page, err := NewService(api, nil).ListOrders(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, []string{"GET " + tt.path}, api.methodsAndPaths())
			assert.Len(t, page.Items, 1)
		})
	}
}

func TestListOrdersPropagatesFailure(t *testing.T) {
	api := newFakeAPI().on(http.MethodGet, "/ordenes/1", fail(http.StatusInternalServerError, "boom"))
	page, err := NewService(api, nil).ListOrders(context.Background(), OrderFilter{})
	require.Error(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()

	api := newFakeAPI().on(http.MethodGet, "/orden/o1", ok(`{"ok":true,"ordenDeTrabajo":{"_id":"o1","numero":9}}`))
	order, err := NewService(api, nil).GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 9, order.Number)

	api = newFakeAPI().on(http.MethodGet, "/orden/o2", ok(`{"ok":true}`))
	_, err = NewService(api, nil).GetOrder(ctx, "o2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewService(newFakeAPI(), nil).GetOrder(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOrderMutationsRefetch(t *testing.T) {
	ctx := context.Background()
	updated := `{"ordenDeTrabajo":{"_id":"o1","estado":"FINALIZADO","factura":"F-1"}}`

	newAPI := func() *fakeAPI {
		return newFakeAPI().
			on(http.MethodPut, "/orden/o1", ok(`{"ok":true}`)).
			on(http.MethodGet, "/orden/o1", ok(updated))
	}

	t.Run("assign technician", func(t *testing.T) {
		api := newAPI()
		order, err := NewService(api, nil).AssignTechnician(ctx, "o1", "t1")
		require.NoError(t, err)
		assert.Equal(t, "o1", order.ID)
		assert.Equal(t, []string{"PUT /orden/o1", "GET /orden/o1"}, api.methodsAndPaths())
		assert.Equal(t, map[string]any{"tecnico": "t1"}, api.bodyOf(0))
	})

	t.Run("reschedule in utc", func(t *testing.T) {
		api := newAPI()
		at := time.Date(2024, 5, 10, 9, 30, 0, 0, time.FixedZone("ECT", -5*3600))
		_, err := NewService(api, nil).RescheduleOrder(ctx, "o1", at)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-10T14:30:00.000Z", api.bodyOf(0)["fechaProgramada"])
	})

	t.Run("finalize without periodicity", func(t *testing.T) {
		api := newAPI()
		order, err := NewService(api, nil).FinalizeOrder(ctx, "o1", " F-1 ", 0)
		require.NoError(t, err)
		assert.Equal(t, StatusFinished, order.Status)
		assert.Equal(t, map[string]any{"factura": "F-1", "estado": StatusFinished}, api.bodyOf(0))
	})

	t.Run("finalize with periodicity", func(t *testing.T) {
		api := newAPI()
		_, err := NewService(api, nil).FinalizeOrder(ctx, "o1", "F-1", 6)
		require.NoError(t, err)
		assert.Equal(t, float64(6), api.bodyOf(0)["periodicidadMeses"])
	})

	t.Run("finalize requires invoice", func(t *testing.T) {
		api := newAPI()
		_, err := NewService(api, nil).FinalizeOrder(ctx, "o1", "  ", 6)
		assert.ErrorIs(t, err, ErrInvoiceRequired)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, api.methodsAndPaths())
	})

	t.Run("failed write is not refetched", func(t *testing.T) {
		api := newFakeAPI().on(http.MethodPut, "/orden/o1", fail(http.StatusBadRequest, "estado inválido"))
		_, err := NewService(api, nil).ChangeOrderStatus(ctx, "o1", "???")
		require.Error(t, err)
		assert.Equal(t, []string{"PUT /orden/o1"}, api.methodsAndPaths())
	})
}
