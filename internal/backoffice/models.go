package backoffice

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Work order states used by the back office.
const (
	StatusPending    = "PENDIENTE"
	StatusAssigned   = "ASIGNADA"
	StatusInProgress = "EN EJECUCIÓN"
	StatusFinished   = "FINALIZADO"
)

// Person is a reference to a user record: technician, typist, closer.
type Person struct {
	ID    string `json:"_id"`
	Name  string `json:"nombre,omitempty"`
	Email string `json:"correoPrincipal,omitempty"`
}

// UnmarshalJSON accepts a populated object or a bare id.
func (p *Person) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*p = Person{ID: id}
		return nil
	}
	type plain Person
	return json.Unmarshal(data, (*plain)(p))
}

// Ref names a catalogue entry such as a service or a task.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"nombre,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	return json.Unmarshal(data, (*plain)(r))
}

// ClientRef is the client embedded in orders and maintenance records.
type ClientRef struct {
	ID    string `json:"_id"`
	Name  string `json:"nombre,omitempty"`
	Phone string `json:"telefono,omitempty"`
	Email string `json:"correo,omitempty"`
}

func (c *ClientRef) UnmarshalJSON(data []byte) error {
	if id, ok := bareID(data); ok {
		*c = ClientRef{ID: id}
		return nil
	}
	type plain ClientRef
	return json.Unmarshal(data, (*plain)(c))
}

// Order is a work order.
type Order struct {
	ID                string     `json:"_id"`
	Number            int        `json:"numero"`
	Status            string     `json:"estado"`
	Client            *ClientRef `json:"cliente,omitempty"`
	Technician        *Person    `json:"tecnico,omitempty"`
	EnteredAt         string     `json:"fechaDigitacion,omitempty"`
	ScheduledAt       string     `json:"fechaProgramada,omitempty"`
	ExecutedAt        string     `json:"fechaEjecucion,omitempty"`
	StartHour         string     `json:"horaInicio,omitempty"`
	Invoice           string     `json:"factura,omitempty"`
	PeriodicityMonths int        `json:"periodicidadMeses,omitempty"`
	Type              string     `json:"tipo,omitempty"`
	ScheduleMonth     string     `json:"aniomesprogramacion,omitempty"`
	Notes             string     `json:"notas,omitempty"`
	Result            string     `json:"resultadoGestion,omitempty"`
}

// FullNumber is the number shown to operators: schedule month followed by the sequence.
func (o Order) FullNumber() string {
	if o.Number == 0 {
		return o.ScheduleMonth
	}
	return o.ScheduleMonth + strconv.Itoa(o.Number)
}

// Client is a customer record.
type Client struct {
	ID      string          `json:"_id"`
	Name    string          `json:"nombre"`
	Mobile  string          `json:"celular,omitempty"`
	Phone   string          `json:"telefono,omitempty"`
	Email   string          `json:"correo,omitempty"`
	Address json.RawMessage `json:"direccion,omitempty"`
}

// ClientInput is the editable part of a client.
type ClientInput struct {
	Name   string `json:"nombre"`
	Email  string `json:"correo"`
	Phone  string `json:"telefono"`
	Mobile string `json:"celular"`
}

// UserInput is the editable part of a user. An empty password is not sent.
type UserInput struct {
	Name     string `json:"nombre"`
	Email    string `json:"correoPrincipal"`
	Password string `json:"contrasenia,omitempty"`
	RoleID   string `json:"rol"`
}

// Maintenance is a pending periodic maintenance derived from a finished order.
type Maintenance struct {
	ID                string     `json:"_id"`
	Number            int        `json:"numero"`
	Status            string     `json:"estado"`
	Client            *ClientRef `json:"cliente,omitempty"`
	Technician        *Person    `json:"tecnico,omitempty"`
	EnteredBy         *Person    `json:"digitador,omitempty"`
	Service           *Ref       `json:"servicio,omitempty"`
	Task              *Ref       `json:"tarea,omitempty"`
	ClosedBy          *Person    `json:"cerroOrden,omitempty"`
	ExecutedAt        string     `json:"fechaEjecucion,omitempty"`
	PeriodicityMonths int        `json:"periodicidadMeses,omitempty"`
	ScheduleMonth     string     `json:"aniomesprogramacion,omitempty"`
	Invoice           string     `json:"factura,omitempty"`
	NextMaintenance   string     `json:"proximoMantenimiento,omitempty"`
	DaysUntil         int        `json:"diasHastaMantenimiento"`
	AddressID         string     `json:"direccion,omitempty"`
}

// MaintenanceDetail adds the resolved address to a maintenance record.
type MaintenanceDetail struct {
	Maintenance
	Address json.RawMessage `json:"direccionDetalle,omitempty"`
}

// Guarantee is a warranty claim waiting for a technician.
type Guarantee struct {
	ID          string     `json:"_id"`
	Status      string     `json:"estado,omitempty"`
	Client      *ClientRef `json:"cliente,omitempty"`
	GuaranteeOf *Order     `json:"garantiaDe,omitempty"`
}

// RatingStats summarizes the ratings a technician received.
type RatingStats struct {
	Average      float64        `json:"promedio"`
	Total        int            `json:"total"`
	Distribution map[string]int `json:"distribucion"`
}

// DashboardOverview holds the order counters. A nil counter was not reported.
type DashboardOverview struct {
	Unassigned *int `json:"sinAsignar,omitempty"`
	InProgress *int `json:"enEjecucion,omitempty"`
	Stale      *int `json:"sinMovimiento5d,omitempty"`
}

// DashboardCard is one counter with the order list it links to.
type DashboardCard struct {
	Title string `json:"title"`
	Value *int   `json:"value"`
	Link  string `json:"link"`
}

func bareID(data []byte) (string, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var id string
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return "", false
	}
	return id, true
}
