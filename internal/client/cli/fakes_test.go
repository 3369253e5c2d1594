package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/config"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
	"github.com/fatih/color"
)

type call struct {
	op   string
	p    models.Principal
	args []string
}

type fakeVault struct {
	calls []call

	entries []*models.MetadataEntry
	dirs    []*models.Directory
	content string
	report  *vault.Report
	upload  vault.UploadRequest
	err     error
}

func (f *fakeVault) record(op string, p models.Principal, args ...string) {
	f.calls = append(f.calls, call{op: op, p: p, args: args})
}

func (f *fakeVault) entry(name string, vis models.Visibility) *models.MetadataEntry {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.MetadataEntry{FileID: "blob-" + name, FileName: name, UserID: "u1",
		Visibility: vis, Type: models.FileTypeFor(name), FileSize: 5, CreatedAt: ts, UpdatedAt: ts}
}

func (f *fakeVault) Upload(_ context.Context, p models.Principal, req vault.UploadRequest) (*models.MetadataEntry, error) {
	f.record("upload", p, req.FileName, req.DirectoryName)
	f.upload = req
	if f.err != nil {
		return nil, f.err
	}
	e := f.entry(req.FileName, models.VisibilityPrivate)
	e.FileSize = int64(len(req.Data))
	return e, nil
}

func (f *fakeVault) List(_ context.Context, p models.Principal) ([]*models.MetadataEntry, error) {
	f.record("list", p)
	return f.entries, f.err
}

func (f *fakeVault) ListDirectory(_ context.Context, p models.Principal, dir string) ([]*models.MetadataEntry, error) {
	f.record("ls", p, dir)
	return f.entries, f.err
}

func (f *fakeVault) Read(_ context.Context, p models.Principal, ref string) (string, error) {
	f.record("read", p, ref)
	return f.content, f.err
}

func (f *fakeVault) ReadMetadata(_ context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	f.record("metadata", p, ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.entry(ref, models.VisibilityPrivate), nil
}

func (f *fakeVault) Publish(_ context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	f.record("publish", p, ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.entry(ref, models.VisibilityPublic), nil
}

func (f *fakeVault) Unpublish(_ context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	f.record("unpublish", p, ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.entry(ref, models.VisibilityPrivate), nil
}

func (f *fakeVault) Delete(_ context.Context, p models.Principal, ref string) error {
	f.record("delete", p, ref)
	return f.err
}

func (f *fakeVault) CreateDirectory(_ context.Context, p models.Principal, name, parent string) (*models.Directory, error) {
	f.record("mkdir", p, name, parent)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Directory{ID: "d1", OwnerID: string(p), Name: name, Path: models.JoinPath(parent, name)}, nil
}

func (f *fakeVault) Directories(_ context.Context, p models.Principal) ([]*models.Directory, error) {
	f.record("dirs", p)
	return f.dirs, f.err
}

func (f *fakeVault) Audit(_ context.Context, p models.Principal) (*vault.Report, error) {
	f.record("check", p)
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil {
		return &vault.Report{}, nil
	}
	return f.report, nil
}

type fakeUsers struct {
	regUser, regEmail, regPass string
	regErr                     error

	loginUser, loginPass string
	loginErr             error

	users map[string]*models.User
}

func (f *fakeUsers) Register(_ context.Context, userName, email, password string) (*models.User, error) {
	f.regUser, f.regEmail, f.regPass = userName, email, password
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u-" + userName, UserName: userName, Email: email}, nil
}

func (f *fakeUsers) Login(_ context.Context, userName, password string) (*models.User, string, error) {
	f.loginUser, f.loginPass = userName, password
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return &models.User{ID: "u-" + userName, UserName: userName}, "tok-" + userName, nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeSessions struct {
	userID, token string
	beginErr      error
	currentErr    error
	endCalled     bool
	endErr        error
}

func (f *fakeSessions) Begin(_ context.Context, userID, token string) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.userID, f.token = userID, token
	return nil
}

func (f *fakeSessions) Current(context.Context) (models.Principal, error) {
	if f.currentErr != nil {
		return models.Anonymous, f.currentErr
	}
	if f.userID == "" {
		return models.Anonymous, common.ErrNoSession
	}
	return models.Principal(f.userID), nil
}

func (f *fakeSessions) End(context.Context) error {
	f.endCalled = true
	if f.endErr != nil {
		return f.endErr
	}
	f.userID, f.token = "", ""
	return nil
}

type harness struct {
	app      *App
	vault    *fakeVault
	users    *fakeUsers
	sessions *fakeSessions
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	h := &harness{
		vault:    &fakeVault{},
		users:    &fakeUsers{users: map[string]*models.User{}},
		sessions: &fakeSessions{},
		out:      &bytes.Buffer{},
	}
	h.app = &App{
		config:   &config.Config{MaxUploadBytes: config.DefaultMaxUploadBytes},
		vault:    h.vault,
		users:    h.users,
		sessions: h.sessions,
		reader:   bufio.NewReader(strings.NewReader("")),
		out:      h.out,
	}
	return h
}

// loggedIn puts u into the session slot.
func (h *harness) loggedIn(u *models.User) {
	h.users.users[u.ID] = u
	h.sessions.userID = u.ID
	h.sessions.token = "tok"
}

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
}
