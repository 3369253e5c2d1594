package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/client/client"
	"github.com/dmitrijs2005/gophvault/internal/client/config"
	"github.com/dmitrijs2005/gophvault/internal/flagx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
	"github.com/fatih/color"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Vault is the part of the vault core the CLI drives.
type Vault interface {
	Upload(ctx context.Context, p models.Principal, req vault.UploadRequest) (*models.MetadataEntry, error)
	List(ctx context.Context, p models.Principal) ([]*models.MetadataEntry, error)
	ListDirectory(ctx context.Context, p models.Principal, directory string) ([]*models.MetadataEntry, error)
	Read(ctx context.Context, p models.Principal, ref string) (string, error)
	ReadMetadata(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error)
	Publish(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error)
	Unpublish(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error)
	Delete(ctx context.Context, p models.Principal, ref string) error
	CreateDirectory(ctx context.Context, p models.Principal, name, parentPath string) (*models.Directory, error)
	Directories(ctx context.Context, p models.Principal) ([]*models.Directory, error)
	Audit(ctx context.Context, p models.Principal) (*vault.Report, error)
}

type Users interface {
	Register(ctx context.Context, userName, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*models.User, string, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type Sessions interface {
	Begin(ctx context.Context, userID, token string) error
	Current(ctx context.Context) (models.Principal, error)
	End(ctx context.Context) error
}

// Health reports the serving status of a running server and its stores.
type Health interface {
	Report(ctx context.Context) (map[string]healthpb.HealthCheckResponse_ServingStatus, error)
}

// backend holds the services opened on the local stores.
type backend struct {
	vault    Vault
	users    Users
	sessions Sessions
	close    func() error
}

type App struct {
	config   *config.Config
	vault    Vault
	users    Users
	sessions Sessions
	health   Health
	reader   *bufio.Reader
	out      io.Writer
	closer   func() error
	// open connects the local stores; nil once connected.
	open func(ctx context.Context) (*backend, error)

	userName string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if c.NoColor {
		color.NoColor = true
	}

	logger := logging.New(os.Stderr, "text", "warn")

	hc, err := client.NewHealthClient(c.Server.EndpointAddrGRPC)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		health: hc,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		closer: hc.Close,
		open: func(ctx context.Context) (*backend, error) {
			s, err := server.OpenServices(ctx, c.Server, logger)
			if err != nil {
				return nil, err
			}
			return &backend{vault: s.Vault, users: s.Users, sessions: s.Sessions, close: s.Close}, nil
		},
	}, nil
}

// connect opens the local stores on first use. Commands that only talk to
// the running server never call it, so they work while the server holds
// single-process stores such as badger.
func (a *App) connect(ctx context.Context) error {
	if a.open == nil {
		return nil
	}
	b, err := a.open(ctx)
	if err != nil {
		return err
	}
	a.open = nil

	a.vault, a.users, a.sessions = b.vault, b.users, b.sessions
	prev := a.closer
	a.closer = func() error {
		var err error
		if prev != nil {
			err = prev()
		}
		return errors.Join(err, b.close())
	}
	return nil
}

// Run executes the command found in args, or starts the REPL when args hold
// only flags. The result is the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	defer a.close()

	words := flagx.Positional(args, config.ValuedFlags())
	if len(words) == 0 {
		if err := a.connect(ctx); err != nil {
			a.printError(err)
			return 1
		}
		a.Root(ctx)
		return 0
	}

	if cmd, ok := commands[words[0]]; ok && !cmd.remote {
		if err := a.connect(ctx); err != nil {
			a.printError(err)
			return 1
		}
	}

	if err := a.Execute(ctx, words[0], words[1:]); err != nil {
		a.printError(err)
		return 1
	}
	return 0
}

func (a *App) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		a.printError(err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}
