package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/placement/internal/app"
	"github.com/felixgeelhaar/placement/internal/config"
	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/guard"
	"github.com/felixgeelhaar/placement/internal/telemetry"
	"github.com/felixgeelhaar/placement/internal/ux"
)

// CommandContext carries what every command needs: resolved configuration,
// the wired container and the output formatter.
type CommandContext struct {
	Ctx    context.Context
	Config *config.Config
	App    *app.Container
	Out    io.Writer
	Err    io.Writer

	name      string
	started   time.Time
	ephemeral bool
	formatter ux.Formatter
}

// NewCommandContext loads configuration and builds the container. toaster
// may be nil to write toasts to the command's stderr.
func NewCommandContext(cmd *cobra.Command, toaster app.Toaster) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		cfg.Color = false
	}
	ephemeral, _ := cmd.Flags().GetBool("ephemeral")

	if toaster == nil {
		toaster = ux.NewToaster(cmd.ErrOrStderr(), cfg.Color)
	}

	container, err := app.NewContainer(cfg, app.Options{Toaster: toaster, Ephemeral: ephemeral})
	if err != nil {
		return nil, err
	}

	formatter, err := ux.NewFormatter(cfg.Output, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		container.Close()
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid --output", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return &CommandContext{
		Ctx:       ctx,
		Config:    cfg,
		App:       container,
		Out:       cmd.OutOrStdout(),
		Err:       cmd.ErrOrStderr(),
		name:      cmd.CommandPath(),
		started:   time.Now(),
		ephemeral: ephemeral,
		formatter: formatter,
	}, nil
}

// Print writes data in the configured output format.
func (c *CommandContext) Print(data interface{}) error {
	return c.formatter.Format(data)
}

// Ephemeral reports whether the session lives in memory only.
func (c *CommandContext) Ephemeral() bool {
	return c.ephemeral
}

// Text reports whether output is meant for humans.
func (c *CommandContext) Text() bool {
	return c.Config.Output == "text"
}

// Restore restores the persisted session, if any.
func (c *CommandContext) Restore() error {
	return c.App.Startup(c.Ctx)
}

// RequireSession restores the session and fails if nobody is signed in.
func (c *CommandContext) RequireSession() (domain.User, error) {
	if err := c.Restore(); err != nil {
		return domain.User{}, err
	}
	st := c.App.Session.State()
	if !st.IsAuthenticated || st.User == nil {
		return domain.User{}, errors.NewNotAuthenticatedError()
	}
	return *st.User, nil
}

// RequirePage restores the session and checks the route guard for path,
// so commands enforce the same role rules as the portal's pages.
func (c *CommandContext) RequirePage(path string) (domain.User, error) {
	user, err := c.RequireSession()
	if err != nil {
		return user, err
	}

	view := guard.ViewOf(true, &user)
	res, ok := guard.Resolve(path, view)
	if !ok || res.Outcome != guard.Render {
		return user, errors.New(errors.ErrCodeForbidden,
			"a "+user.Role.Label()+" account cannot open "+path).
			WithSuggestion("Run 'placement route check " + path + "' to see the required roles")
	}
	return user, nil
}

// Finish records the command outcome and releases the container.
func (c *CommandContext) Finish(err error) error {
	c.App.Metrics.RecordCommand(c.name, err == nil, time.Since(c.started))
	c.App.Metrics.RecordError(err, "cmd")
	if err != nil {
		c.App.Logger.WithError(err).Debug("command failed", "command", c.name)
	}
	c.App.Close()
	return err
}

// run wraps a command body with context setup, tracing and teardown.
func run(fn func(c *CommandContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := NewCommandContext(cmd, nil)
		if err != nil {
			return err
		}

		ctx, span := telemetry.StartCommandSpan(c.Ctx, c.name)
		c.Ctx = ctx
		err = fn(c, args)
		telemetry.End(span, err)
		return c.Finish(err)
	}
}
