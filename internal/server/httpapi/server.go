// Package httpapi exposes the vault over a JSON HTTP API built on fiber.
// Every request carries its own bearer token; there is no server-side
// session.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
	"github.com/gofiber/fiber/v2"
)

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
}

type Users interface {
	Register(ctx context.Context, userName, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*models.User, string, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Authenticate(token string) (models.Principal, error)
}

type Thumbnails interface {
	Get(blobID string) ([]byte, error)
}

// BodyLimit caps request bodies, uploads included.
const BodyLimit = 32 << 20

type Server struct {
	app    *fiber.App
	vault  Vault
	users  Users
	thumbs Thumbnails
	log    logging.Logger
}

func New(v Vault, users Users, thumbs Thumbnails, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop{}
	}
	s := &Server{
		vault:  v,
		users:  users,
		thumbs: thumbs,
		log:    log.With("module", "http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "gophvault",
		BodyLimit:             BodyLimit,
		UnescapePath:          true,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.logRequests, s.authenticate)

	api := s.app.Group("/api")

	u := api.Group("/users")
	u.Post("/register", s.register)
	u.Post("/login", s.login)
	u.Get("/me", s.me)

	f := api.Group("/files")
	f.Post("/", s.createFile)
	f.Get("/", s.listFiles)
	f.Get("/:name", s.fileMetadata)
	f.Get("/:name/data", s.fileData)
	f.Get("/:name/thumbnail", s.fileThumbnail)
	f.Patch("/:name/publish", s.publish)
	f.Patch("/:name/unpublish", s.unpublish)
	f.Delete("/:name", s.deleteFile)

	api.Post("/directories", s.createDirectory)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info(context.Background(), "http server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.log.Debug(c.UserContext(), "request",
		"method", c.Method(), "path", c.Path(), "status", status, "duration", time.Since(start))
	return err
}
