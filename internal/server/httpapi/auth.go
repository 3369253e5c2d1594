package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// authenticate resolves the bearer token, if any, into the request
// principal. Requests without a token run as models.Anonymous; a token
// that does not verify is rejected outright.
func (s *Server) authenticate(c *fiber.Ctx) error {
	header := c.Get(common.AuthorizationHeaderName)
	if header == "" {
		c.Locals(principalKey, models.Anonymous)
		return c.Next()
	}

	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return common.ErrInvalidToken
	}

	p, err := s.users.Authenticate(strings.TrimSpace(token))
	if err != nil {
		return err
	}
	c.Locals(principalKey, p)
	return c.Next()
}

func principal(c *fiber.Ctx) models.Principal {
	p, _ := c.Locals(principalKey).(models.Principal)
	return p
}
