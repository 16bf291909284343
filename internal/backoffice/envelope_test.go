package backoffice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		ids   []string
		total int
	}{
		{name: "bare array", body: `[{"_id":"a"},{"_id":"b"}]`, ids: []string{"a", "b"}, total: 2},
		{name: "items with total", body: `{"items":[{"_id":"a"}],"total":40,"page":2,"totalPages":4}`, ids: []string{"a"}, total: 40},
		{name: "list key", body: `{"ordenes":[{"_id":"a"}],"total":7}`, ids: []string{"a"}, total: 7},
		{name: "data array", body: `{"ok":true,"data":[{"_id":"a"},{"_id":"b"}]}`, ids: []string{"a", "b"}, total: 2},
		{name: "data with items", body: `{"data":{"items":[{"_id":"a"}],"total":12}}`, ids: []string{"a"}, total: 12},
		{name: "single key", body: `{"orden":{"_id":"a"}}`, ids: []string{"a"}, total: 1},
		{name: "single object", body: `{"_id":"a","numero":3}`, ids: []string{"a"}, total: 1},
		{name: "empty object", body: `{}`, ids: []string{}, total: 0},
		{name: "scalar", body: `"nope"`, ids: []string{}, total: 0},
		{name: "null", body: `null`, ids: []string{}, total: 0},
		{name: "empty body", body: ``, ids: []string{}, total: 0},
		{name: "bad element skipped", body: `[{"_id":"a"},{"_id":"b","numero":"x"}]`, ids: []string{"a"}, total: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := decodeList[Order](json.RawMessage(tt.body), []string{"ordenes"}, []string{"orden"})
			ids := make([]string, 0, len(page.Items))
			for _, o := range page.Items {
				ids = append(ids, o.ID)
			}
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	o, ok := decodeRecord[Order](json.RawMessage(`{"ordenDeTrabajo":{"_id":"x","estado":"PENDIENTE"}}`), "ordenDeTrabajo", "data")
	assert.True(t, ok)
	assert.Equal(t, "x", o.ID)

	o, ok = decodeRecord[Order](json.RawMessage(`{"_id":"y"}`), "ordenDeTrabajo")
	assert.True(t, ok)
	assert.Equal(t, "y", o.ID)

	_, ok = decodeRecord[Order](json.RawMessage(`{"data":{"estado":"PENDIENTE"}}`), "data")
	assert.False(t, ok)

	_, ok = decodeRecord[Order](json.RawMessage(`{"_id":""}`))
	assert.False(t, ok)
}

func TestPopulatedOrBareReferences(t *testing.T) {
	var o Order
	err := json.Unmarshal([]byte(`{"_id":"1","cliente":"c1","tecnico":{"_id":"t1","nombre":"Ana"}}`), &o)
	assert.NoError(t, err)
	assert.Equal(t, "c1", o.Client.ID)
	assert.Equal(t, "Ana", o.Technician.Name)
}

func TestFullNumber(t *testing.T) {
	assert.Equal(t, "20240542", Order{ScheduleMonth: "202405", Number: 42}.FullNumber())
	assert.Equal(t, "202405", Order{ScheduleMonth: "202405"}.FullNumber())
}
