package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/portfolio/internal/audit"
	"github.com/alexanderramin/portfolio/internal/backup"
	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/alexanderramin/portfolio/internal/outbox"
	"github.com/alexanderramin/portfolio/internal/permission"
	"github.com/alexanderramin/portfolio/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to the services used by CLI commands. Backup and
// Outbox are nil when their collaborators are not configured.
type App struct {
	Mutations     service.MutationService
	Users         service.UserService
	Config        service.ConfigService
	Notifications service.NotificationService
	Log           audit.Log
	Converter     effort.Converter

	Backup         *backup.Runner
	BackupSchedule string
	Outbox         *outbox.RedisOutbox

	// DefaultActor is used when --as is not given. Empty means the root
	// identity.
	DefaultActor string
	Clock        func() time.Time

	actorFlag string
	jsonOut   bool
}

func (app *App) now() time.Time {
	if app.Clock != nil {
		return app.Clock()
	}
	return time.Now()
}

// rootActor is the built-in operator identity used before any users exist.
func rootActor() domain.Actor {
	return domain.Actor{Name: "root", Email: permission.RootIdentityEmail, Role: domain.RoleAdmin}
}

// actor resolves --as (or the configured default) to a user.
func (app *App) actor(ctx context.Context) (domain.Actor, error) {
	ident := domain.CoalesceStr(app.actorFlag, app.DefaultActor)
	if ident == "" || strings.EqualFold(ident, permission.RootIdentityEmail) || ident == "root" {
		return rootActor(), nil
	}
	u, err := app.Users.Resolve(ctx, ident)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("unknown user %q", ident)
	}
	if err != nil {
		return domain.Actor{}, err
	}
	return u.Actor(), nil
}

// viewer resolves the acting user and checks they may see tab.
func (app *App) viewer(ctx context.Context, tab domain.PermissionKey) (domain.Actor, error) {
	actor, err := app.actor(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	r := permission.NewResolver(app.Config.Current().RolePermissions)
	if err := r.ViewTab(actor, tab).Err(); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

// printJSON writes v as indented JSON when --json is set and reports
// whether it did.
func (app *App) printJSON(w io.Writer, v any) (bool, error) {
	if !app.jsonOut {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

// resolveInitiativeID accepts a full id, a unique id prefix or an exact
// title (case-insensitive).
func resolveInitiativeID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("initiative ID is required")
	}
	items := app.Mutations.List(ctx, true)

	for _, i := range items {
		if i.ID == input {
			return i.ID, nil
		}
	}

	var matches []string
	for _, i := range items {
		if strings.HasPrefix(i.ID, input) || strings.EqualFold(i.Title, input) {
			matches = append(matches, i.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("initiative not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("initiative %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveTaskID matches a task id or unique prefix within one initiative.
func resolveTaskID(i *domain.Initiative, input string) (string, error) {
	var matches []string
	for _, t := range i.Tasks {
		if t.ID == input {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, input) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task %q is ambiguous (%d matches)", input, len(matches))
	}
}

// NewRootCmd creates the top-level "portfolio" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Permission-gated portfolio and effort tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.actorFlag, "as", "", "Act as this user (id or email)")
	root.PersistentFlags().BoolVar(&app.jsonOut, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newInitiativeCmd(app),
		newTaskCmd(app),
		newCommentCmd(app),
		newAuditCmd(app),
		newPermissionCmd(app),
		newCapacityCmd(app),
		newConfigCmd(app),
		newUserCmd(app),
		newNotificationCmd(app),
		newConvertCmd(app),
		newBackupCmd(app),
		newSweepCmd(app),
	)

	return root
}
