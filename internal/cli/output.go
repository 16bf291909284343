package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"castella/internal/backoffice"
	"castella/internal/navigation"
	"castella/internal/session"
)

// load runs fn behind a spinner when attached to a terminal.
func load[T any](r *runtime, label string, fn func() (T, error)) (T, error) {
	if !r.opts.Interactive {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(r.opts.ErrOut),
		spinner.WithSuffix(" "+label),
	)
	s.Start()
	defer s.Stop()
	return fn()
}

func (r *runtime) printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.opts.Out, string(encoded))
	return err
}

func (r *runtime) render(tw table.Writer) {
	tw.SetStyle(table.StyleLight)
	fmt.Fprintln(r.opts.Out, tw.Render())
}

func (r *runtime) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(r.opts.Out, format+"\n", args...)
}

func name(p *backoffice.Person) string {
	if p == nil {
		return "-"
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func clientName(c *backoffice.ClientRef) string {
	if c == nil {
		return "-"
	}
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func counter(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func (r *runtime) printOrders(orders []backoffice.Order, total int) error {
	if r.json {
		return r.printJSON(map[string]any{"items": orders, "total": total})
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Number", "Status", "Client", "Technician", "Scheduled"})
	for _, o := range orders {
		tw.AppendRow(table.Row{o.ID, orNone(o.FullNumber()), o.Status, clientName(o.Client), name(o.Technician), orNone(o.ScheduledAt)})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", total})
	r.render(tw)
	return nil
}

func (r *runtime) printOrder(o *backoffice.Order) error {
	if r.json {
		return r.printJSON(o)
	}
	tw := table.NewWriter()
	tw.AppendRows([]table.Row{
		{"ID", o.ID},
		{"Number", orNone(o.FullNumber())},
		{"Status", o.Status},
		{"Client", clientName(o.Client)},
		{"Technician", name(o.Technician)},
		{"Entered", orNone(o.EnteredAt)},
		{"Scheduled", orNone(o.ScheduledAt)},
		{"Executed", orNone(o.ExecutedAt)},
		{"Invoice", orNone(o.Invoice)},
		{"Notes", orNone(o.Notes)},
	})
	r.render(tw)
	return nil
}

func (r *runtime) printPeople(people []backoffice.Person) error {
	if r.json {
		return r.printJSON(people)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name", "Email"})
	for _, p := range people {
		tw.AppendRow(table.Row{p.ID, p.Name, orNone(p.Email)})
	}
	r.render(tw)
	return nil
}

func (r *runtime) printUsers(page backoffice.Page[session.UserProfile]) error {
	if r.json {
		return r.printJSON(page)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role"})
	for _, u := range page.Items {
		tw.AppendRow(table.Row{u.ID, u.DisplayName, u.Email, orNone(u.Role.Name)})
	}
	tw.AppendFooter(table.Row{"", "", "Total", page.Total})
	r.render(tw)
	return nil
}

func (r *runtime) printClients(page backoffice.Page[backoffice.Client]) error {
	if r.json {
		return r.printJSON(page)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name", "Email", "Phone", "Mobile"})
	for _, c := range page.Items {
		tw.AppendRow(table.Row{c.ID, c.Name, orNone(c.Email), orNone(c.Phone), orNone(c.Mobile)})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", page.Total})
	r.render(tw)
	return nil
}

func (r *runtime) printMaintenance(page backoffice.Page[backoffice.Maintenance]) error {
	if r.json {
		return r.printJSON(page)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Number", "Client", "Technician", "Next", "Days"})
	for _, m := range page.Items {
		tw.AppendRow(table.Row{m.ID, m.Number, clientName(m.Client), name(m.Technician), orNone(m.NextMaintenance), m.DaysUntil})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Total", page.Total})
	r.render(tw)
	return nil
}

func (r *runtime) printGuarantees(page backoffice.Page[backoffice.Guarantee]) error {
	if r.json {
		return r.printJSON(page)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Status", "Client", "Original order"})
	for _, g := range page.Items {
		original := "-"
		if g.GuaranteeOf != nil {
			original = orNone(g.GuaranteeOf.FullNumber())
		}
		tw.AppendRow(table.Row{g.ID, orNone(g.Status), clientName(g.Client), original})
	}
	tw.AppendFooter(table.Row{"", "", "Total", page.Total})
	r.render(tw)
	return nil
}

func (r *runtime) printMenu(entries []navigation.MenuEntry) error {
	if r.json {
		return r.printJSON(entries)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Title", "Path"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Title, e.Path})
	}
	r.render(tw)
	return nil
}
