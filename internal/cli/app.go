// Package cli is the castella command line client. Its durable client storage is a JSON
// file, so a login survives between invocations the way a browser session would.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"castella/internal/auth"
	"castella/internal/backoffice"
	"castella/internal/config"
	"castella/internal/gateway"
	"castella/internal/logging"
	"castella/internal/session"
	"castella/internal/storage"
)

// Options configure a CLI instance.
type Options struct {
	Config config.Config
	Log    *zap.Logger
	Out    io.Writer
	ErrOut io.Writer
	// Interactive enables progress spinners on ErrOut.
	Interactive bool
}

type runtime struct {
	opts  Options
	log   *zap.Logger
	guard auth.Guard
	store *session.Store
	svc   *backoffice.Service
	json  bool
}

// NewApp builds the command tree.
func NewApp(opts Options) *cli.App {
	r := &runtime{
		opts:  opts,
		log:   logging.OrNop(opts.Log),
		guard: auth.NewGuard(auth.LoginPath),
	}

	return &cli.App{
		Name:      "castella",
		Usage:     "back-office client for work orders, maintenance and staff",
		Writer:    opts.Out,
		ErrWriter: opts.ErrOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "backend base URL",
				Value: opts.Config.APIBaseURL,
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: "where the login is kept between runs",
				Value: opts.Config.SessionFile,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "table or json",
				Value:   "table",
			},
		},
		Before:   r.before,
		Commands: r.commands(),
		// Exit codes are applied by the caller through ExitCode.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// ExitCode is the process status for an error returned by the app.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	return 1
}

func (r *runtime) before(c *cli.Context) error {
	switch c.String("output") {
	case "table":
	case "json":
		r.json = true
	default:
		return cli.Exit(fmt.Sprintf("unknown output format %q", c.String("output")), 2)
	}

	r.store = session.NewStore(storage.NewFile(c.String("session-file"), r.log), r.log)
	if err := r.store.Initialize(c.Context); err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	client, err := gateway.New(c.String("api-url"), r.store, gateway.WithLogger(r.log))
	if err != nil {
		return err
	}
	r.svc = backoffice.NewService(client, r.log)
	return nil
}

// authed runs action only when the stored session may open path.
func (r *runtime) authed(path string, action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if d := r.guard.Check(r.store, path); !d.Allow {
			return cli.Exit(fmt.Sprintf("not logged in: run `%s login` first", c.App.Name), 1)
		}
		if err := action(c); err != nil {
			return r.explain(c, err)
		}
		return nil
	}
}

// explain turns backend and validation failures into messages for the operator.
func (r *runtime) explain(c *cli.Context, err error) error {
	var exit cli.ExitCoder
	switch {
	case errors.As(err, &exit):
		return err
	case gateway.IsUnauthorized(err):
		return cli.Exit(fmt.Sprintf("the backend rejected the stored session: run `%s login` again", c.App.Name), 1)
	case errors.Is(err, backoffice.ErrInvalidInput), errors.Is(err, backoffice.ErrNotFound):
		return cli.Exit(err.Error(), 2)
	case gateway.StatusCode(err) != 0:
		msg := gateway.Message(err)
		if msg == "" {
			msg = err.Error()
		}
		return cli.Exit(fmt.Sprintf("backend error (%d): %s", gateway.StatusCode(err), msg), 1)
	default:
		return err
	}
}
