package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"castella/internal/backoffice"
	"castella/internal/navigation"
	"castella/internal/session"
)

func pageFlag() cli.Flag {
	return &cli.IntFlag{Name: "page", Value: 1, Usage: "page number"}
}

func (r *runtime) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "authenticate against the backend and keep the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", EnvVars: []string{"CASTELLA_PASSWORD"}, Required: true},
			},
			Action: r.login,
		},
		{
			Name:   "logout",
			Usage:  "forget the stored session",
			Action: r.logout,
		},
		{Name: "whoami", Usage: "show the logged in user", Action: r.authed("/session", r.whoami)},
		{Name: "menu", Usage: "show the sections available to your role", Action: r.authed("/menu", r.menu)},
		{Name: "dashboard", Usage: "show order counters", Action: r.authed("/dashboard", r.dashboard)},
		r.ordersCommand(),
		r.mobileOrdersCommand(),
		{Name: "technicians", Usage: "list technicians", Action: r.authed("/technicians", r.technicians)},
		r.maintenanceCommand(),
		r.guaranteesCommand(),
		{
			Name:      "ratings",
			Usage:     "show a technician's ratings",
			ArgsUsage: "TECHNICIAN_ID",
			Action:    r.authed("/ratings", r.ratings),
		},
		r.usersCommand(),
		{Name: "roles", Usage: "list user roles", Action: r.authed("/roles", r.roles)},
		r.clientsCommand(),
	}
}

func (r *runtime) login(c *cli.Context) error {
	creds := backoffice.Credentials{Email: c.String("email"), Password: c.String("password")}
	user, err := load(r, "Signing in", func() (*session.UserProfile, error) {
		return r.svc.Login(c.Context, r.store, creds)
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	r.success("Logged in as %s (%s)", user.DisplayName, orNone(user.Role.Name))
	return nil
}

func (r *runtime) logout(c *cli.Context) error {
	if err := r.store.Logout(c.Context); err != nil {
		return err
	}
	r.success("Logged out")
	return nil
}

func (r *runtime) whoami(c *cli.Context) error {
	user := r.store.CurrentUser()
	if r.json {
		return r.printJSON(user)
	}
	if user == nil {
		fmt.Fprintln(r.opts.Out, "token stored without a user profile; run `castella login` again")
		return nil
	}
	tw := table.NewWriter()
	tw.AppendRows([]table.Row{
		{"ID", user.ID},
		{"Name", user.DisplayName},
		{"Email", user.Email},
		{"Role", orNone(user.Role.Name)},
	})
	r.render(tw)
	return nil
}

func (r *runtime) menu(c *cli.Context) error {
	return r.printMenu(navigation.VisibleMenu(navigation.DefaultManifest(), r.store.CurrentUser()))
}

func (r *runtime) dashboard(c *cli.Context) error {
	overview, err := load(r, "Loading dashboard", func() (backoffice.DashboardOverview, error) {
		return r.svc.Overview(c.Context)
	})
	if err != nil {
		return err
	}
	cards := backoffice.DashboardCards(overview)
	if r.json {
		return r.printJSON(cards)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Counter", "Value", "Link"})
	for _, card := range cards {
		tw.AppendRow(table.Row{card.Title, counter(card.Value), card.Link})
	}
	r.render(tw)
	return nil
}

func (r *runtime) ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "work orders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list orders; at most one of --number, --technician, --status applies",
				Flags: []cli.Flag{
					pageFlag(),
					&cli.StringFlag{Name: "number"},
					&cli.StringFlag{Name: "technician", Usage: "technician id"},
					&cli.StringFlag{Name: "status", Usage: strings.Join([]string{
						backoffice.StatusPending, backoffice.StatusAssigned, backoffice.StatusInProgress, backoffice.StatusFinished,
					}, ", ")},
				},
				Action: r.authed("/orders", func(c *cli.Context) error {
					filter := backoffice.OrderFilter{
						Page:         c.Int("page"),
						Number:       c.String("number"),
						TechnicianID: c.String("technician"),
						Status:       c.String("status"),
					}
					page, err := load(r, "Loading orders", func() (backoffice.Page[backoffice.Order], error) {
						return r.svc.ListOrders(c.Context, filter)
					})
					if err != nil {
						return err
					}
					return r.printOrders(page.Items, page.Total)
				}),
			},
			{
				Name:      "get",
				ArgsUsage: "ORDER_ID",
				Action: r.authed("/order", func(c *cli.Context) error {
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.GetOrder(c.Context, c.Args().First())
					})
				}),
			},
			{
				Name:      "assign",
				ArgsUsage: "ORDER_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "technician", Required: true}},
				Action: r.authed("/order", func(c *cli.Context) error {
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.AssignTechnician(c.Context, c.Args().First(), c.String("technician"))
					})
				}),
			},
			{
				Name:      "status",
				ArgsUsage: "ORDER_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "status", Required: true}},
				Action: r.authed("/order", func(c *cli.Context) error {
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.ChangeOrderStatus(c.Context, c.Args().First(), c.String("status"))
					})
				}),
			},
			{
				Name:      "schedule",
				ArgsUsage: "ORDER_ID",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "at", Required: true, Usage: "YYYY-MM-DDTHH:MM local time, or RFC 3339"}},
				Action: r.authed("/order", func(c *cli.Context) error {
					at, err := parseLocal(c.String("at"))
					if err != nil {
						return err
					}
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.RescheduleOrder(c.Context, c.Args().First(), at)
					})
				}),
			},
			{
				Name:      "finalize",
				ArgsUsage: "ORDER_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "invoice", Required: true},
					&cli.IntFlag{Name: "periodicity", Usage: "months until the next maintenance, 0 for none"},
				},
				Action: r.authed("/order", func(c *cli.Context) error {
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.FinalizeOrder(c.Context, c.Args().First(), c.String("invoice"), c.Int("periodicity"))
					})
				}),
			},
		},
	}
}

func (r *runtime) showOrder(c *cli.Context, fn func() (*backoffice.Order, error)) error {
	order, err := load(r, "Working", fn)
	if err != nil {
		return err
	}
	return r.printOrder(order)
}

func parseLocal(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", value, time.Local)
	if err != nil {
		return time.Time{}, cli.Exit(fmt.Sprintf("invalid time %q: use YYYY-MM-DDTHH:MM", value), 2)
	}
	return t, nil
}

func (r *runtime) mobileOrdersCommand() *cli.Command {
	return &cli.Command{
		Name:  "mobile-orders",
		Usage: "orders created from the mobile app",
		Subcommands: []*cli.Command{
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "number"},
					&cli.StringFlag{Name: "text", Usage: "search client, technician, notes, result, number and status"},
					&cli.BoolFlag{Name: "finished", Usage: "only finished orders"},
					&cli.StringFlag{Name: "technician", Usage: "technician id"},
				},
				Action: r.authed("/mobile-orders", func(c *cli.Context) error {
					filter := backoffice.MobileOrderFilter{
						Number:       c.String("number"),
						Text:         c.String("text"),
						FinishedOnly: c.Bool("finished"),
						TechnicianID: c.String("technician"),
					}
					items, err := load(r, "Loading mobile orders", func() ([]backoffice.Order, error) {
						return r.svc.ListMobileOrders(c.Context, filter)
					})
					if err != nil {
						return err
					}
					return r.printOrders(items, len(items))
				}),
			},
			{
				Name:      "assign",
				ArgsUsage: "ORDER_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "technician", Required: true},
					&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
					&cli.StringFlag{Name: "hour", Required: true, Usage: "HH:MM"},
				},
				Action: r.authed("/mobile-orders", func(c *cli.Context) error {
					date, err := time.Parse("2006-01-02", c.String("date"))
					if err != nil {
						return cli.Exit(fmt.Sprintf("invalid date %q: use YYYY-MM-DD", c.String("date")), 2)
					}
					return r.showOrder(c, func() (*backoffice.Order, error) {
						return r.svc.AssignMobileOrder(c.Context, c.Args().First(), backoffice.MobileAssignment{
							TechnicianID: c.String("technician"),
							Date:         date,
							StartHour:    c.String("hour"),
						})
					})
				}),
			},
		},
	}
}

func (r *runtime) technicians(c *cli.Context) error {
	people, err := load(r, "Loading technicians", func() ([]backoffice.Person, error) {
		return r.svc.ListTechnicians(c.Context)
	})
	if err != nil {
		return err
	}
	return r.printPeople(people)
}

func (r *runtime) maintenanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "maintenance",
		Usage: "upcoming periodic maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{pageFlag(), &cli.IntFlag{Name: "limit", Value: 25}},
				Action: r.authed("/maintenance", func(c *cli.Context) error {
					page, err := load(r, "Loading maintenance", func() (backoffice.Page[backoffice.Maintenance], error) {
						return r.svc.ListPendingMaintenance(c.Context, c.Int("page"), c.Int("limit"))
					})
					if err != nil {
						return err
					}
					return r.printMaintenance(page)
				}),
			},
			{
				Name:      "get",
				ArgsUsage: "MAINTENANCE_ID",
				Action: r.authed("/maintenance", func(c *cli.Context) error {
					detail, err := load(r, "Loading maintenance", func() (*backoffice.MaintenanceDetail, error) {
						return r.svc.GetMaintenance(c.Context, c.Args().First())
					})
					if err != nil {
						return err
					}
					return r.printJSON(detail)
				}),
			},
		},
	}
}

func (r *runtime) guaranteesCommand() *cli.Command {
	return &cli.Command{
		Name:  "guarantees",
		Usage: "warranty claims waiting for a technician",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{pageFlag()},
				Action: r.authed("/guarantees", func(c *cli.Context) error {
					page, err := load(r, "Loading guarantees", func() (backoffice.Page[backoffice.Guarantee], error) {
						return r.svc.ListPendingGuarantees(c.Context, c.Int("page"))
					})
					if err != nil {
						return err
					}
					return r.printGuarantees(page)
				}),
			},
			{
				Name:      "assign",
				ArgsUsage: "GUARANTEE_ID",
				Flags:     []cli.Flag{pageFlag(), &cli.StringFlag{Name: "technician", Required: true}},
				Action: r.authed("/guarantees", func(c *cli.Context) error {
					page, err := load(r, "Assigning", func() (backoffice.Page[backoffice.Guarantee], error) {
						return r.svc.AssignGuaranteeTechnician(c.Context, c.Args().First(), c.String("technician"), c.Int("page"))
					})
					if err != nil {
						return err
					}
					return r.printGuarantees(page)
				}),
			},
		},
	}
}

func (r *runtime) ratings(c *cli.Context) error {
	stats, err := load(r, "Loading ratings", func() (backoffice.RatingStats, error) {
		return r.svc.TechnicianRatings(c.Context, c.Args().First())
	})
	if err != nil {
		return err
	}
	if r.json {
		return r.printJSON(stats)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Stars", "Count"})
	for stars := 5; stars >= 1; stars-- {
		tw.AppendRow(table.Row{stars, stats.Distribution[fmt.Sprint(stars)]})
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("Average %.1f", stats.Average), stats.Total})
	r.render(tw)
	return nil
}

func userFlags(passwordRequired bool) []cli.Flag {
	return []cli.Flag{
		pageFlag(),
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: passwordRequired},
		&cli.StringFlag{Name: "role", Required: true, Usage: "role id, see `castella roles`"},
	}
}

func userInput(c *cli.Context) backoffice.UserInput {
	return backoffice.UserInput{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
		RoleID:   c.String("role"),
	}
}

func (r *runtime) usersCommand() *cli.Command {
	users := func(label string, fn func(c *cli.Context) (backoffice.Page[session.UserProfile], error)) cli.ActionFunc {
		return r.authed("/users", func(c *cli.Context) error {
			page, err := load(r, label, func() (backoffice.Page[session.UserProfile], error) { return fn(c) })
			if err != nil {
				return err
			}
			return r.printUsers(page)
		})
	}

	return &cli.Command{
		Name:  "users",
		Usage: "back-office users",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{pageFlag()},
				Action: users("Loading users", func(c *cli.Context) (backoffice.Page[session.UserProfile], error) {
					return r.svc.ListUsers(c.Context, c.Int("page"))
				}),
			},
			{
				Name:  "create",
				Flags: userFlags(true),
				Action: users("Creating user", func(c *cli.Context) (backoffice.Page[session.UserProfile], error) {
					return r.svc.CreateUser(c.Context, userInput(c), c.Int("page"))
				}),
			},
			{
				Name:      "update",
				ArgsUsage: "USER_ID",
				Flags:     userFlags(false),
				Action: users("Updating user", func(c *cli.Context) (backoffice.Page[session.UserProfile], error) {
					return r.svc.UpdateUser(c.Context, c.Args().First(), userInput(c), c.Int("page"))
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "USER_ID",
				Flags:     []cli.Flag{pageFlag()},
				Action: users("Deleting user", func(c *cli.Context) (backoffice.Page[session.UserProfile], error) {
					return r.svc.DeleteUser(c.Context, c.Args().First(), c.Int("page"))
				}),
			},
		},
	}
}

func (r *runtime) roles(c *cli.Context) error {
	roles, err := load(r, "Loading roles", func() ([]session.Role, error) {
		return r.svc.ListRoles(c.Context)
	})
	if err != nil {
		return err
	}
	if r.json {
		return r.printJSON(roles)
	}
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"ID", "Name"})
	for _, role := range roles {
		tw.AppendRow(table.Row{role.ID, role.Name})
	}
	r.render(tw)
	return nil
}

func clientFlags() []cli.Flag {
	return []cli.Flag{
		pageFlag(),
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "email"},
		&cli.StringFlag{Name: "phone"},
		&cli.StringFlag{Name: "mobile"},
	}
}

func clientInput(c *cli.Context) backoffice.ClientInput {
	return backoffice.ClientInput{
		Name:   c.String("name"),
		Email:  c.String("email"),
		Phone:  c.String("phone"),
		Mobile: c.String("mobile"),
	}
}

func (r *runtime) clientsCommand() *cli.Command {
	clients := func(label string, fn func(c *cli.Context) (backoffice.Page[backoffice.Client], error)) cli.ActionFunc {
		return r.authed("/clients", func(c *cli.Context) error {
			page, err := load(r, label, func() (backoffice.Page[backoffice.Client], error) { return fn(c) })
			if err != nil {
				return err
			}
			return r.printClients(page)
		})
	}

	return &cli.Command{
		Name:  "clients",
		Usage: "customers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: []cli.Flag{pageFlag()},
				Action: clients("Loading clients", func(c *cli.Context) (backoffice.Page[backoffice.Client], error) {
					return r.svc.ListClients(c.Context, c.Int("page"))
				}),
			},
			{
				Name:  "create",
				Flags: clientFlags(),
				Action: clients("Creating client", func(c *cli.Context) (backoffice.Page[backoffice.Client], error) {
					return r.svc.CreateClient(c.Context, clientInput(c), c.Int("page"))
				}),
			},
			{
				Name:      "update",
				ArgsUsage: "CLIENT_ID",
				Flags:     clientFlags(),
				Action: clients("Updating client", func(c *cli.Context) (backoffice.Page[backoffice.Client], error) {
					return r.svc.UpdateClient(c.Context, c.Args().First(), clientInput(c), c.Int("page"))
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "CLIENT_ID",
				Flags:     []cli.Flag{pageFlag()},
				Action: clients("Deleting client", func(c *cli.Context) (backoffice.Page[backoffice.Client], error) {
					return r.svc.DeleteClient(c.Context, c.Args().First(), c.Int("page"))
				}),
			},
		},
	}
}
