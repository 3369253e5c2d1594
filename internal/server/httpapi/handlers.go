package httpapi

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// fileRequest creates either a file or, with Type "folder", a directory.
type fileRequest struct {
	Type          string `json:"type"`
	FileName      string `json:"file_name"`
	Data          string `json:"data"`
	DirectoryName string `json:"directory_name"`
	ParentName    string `json:"parent_name"`
}

type directoryRequest struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

func (s *Server) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, err := s.users.Register(c.UserContext(), req.UserName, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, token, err := s.users.Login(c.UserContext(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
		}
		return err
	}
	return c.JSON(loginResponse{Token: token, UserID: u.ID})
}

func (s *Server) me(c *fiber.Ctx) error {
	p := principal(c)
	if p.IsAnonymous() {
		return common.ErrNoSession
	}
	u, err := s.users.Get(c.UserContext(), string(p))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) createFile(c *fiber.Ctx) error {
	var req fileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	switch req.Type {
	case "folder":
		d, err := s.vault.CreateDirectory(c.UserContext(), principal(c), req.FileName, req.ParentName)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	case "", "file", "image", "video":
		e, err := s.vault.Upload(c.UserContext(), principal(c), vault.UploadRequest{
			FileName:      req.FileName,
			Data:          []byte(req.Data),
			DirectoryName: req.DirectoryName,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	default:
		return fmt.Errorf("%w: unknown type %q", common.ErrorValidation, req.Type)
	}
}

func (s *Server) listFiles(c *fiber.Ctx) error {
	p := principal(c)
	if dir := c.Query("directory"); dir != "" {
		entries, err := s.vault.ListDirectory(c.UserContext(), p, dir)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}

	entries, err := s.vault.List(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

func (s *Server) fileMetadata(c *fiber.Ctx) error {
	e, err := s.vault.ReadMetadata(c.UserContext(), principal(c), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) fileData(c *fiber.Ctx) error {
	text, err := s.vault.Read(c.UserContext(), principal(c), c.Params("name"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}

func (s *Server) fileThumbnail(c *fiber.Ctx) error {
	e, err := s.vault.ReadMetadata(c.UserContext(), principal(c), c.Params("name"))
	if err != nil {
		return err
	}
	if !e.Type.HasThumbnail() {
		return fmt.Errorf("%w: %s files have no thumbnail", common.ErrUnsupportedContent, e.Type)
	}

	data, err := s.thumbs.Get(e.FileID)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(data)
}

func (s *Server) publish(c *fiber.Ctx) error {
	e, err := s.vault.Publish(c.UserContext(), principal(c), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) unpublish(c *fiber.Ctx) error {
	e, err := s.vault.Unpublish(c.UserContext(), principal(c), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) deleteFile(c *fiber.Ctx) error {
	if err := s.vault.Delete(c.UserContext(), principal(c), c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) createDirectory(c *fiber.Ctx) error {
	var req directoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	d, err := s.vault.CreateDirectory(c.UserContext(), principal(c), req.Name, req.Parent)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}
