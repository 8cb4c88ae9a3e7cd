package routes

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/LFroesch/project-management-sub010/controllers"
)

func TestInvitationRoutesRegistered(t *testing.T) {
	e := echo.New()
	ic := controllers.NewInvitationController(nil, nil, nil, nil, nil, nil)
	RegisterInvitationRoutes(e, nil, ic)

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/projects/:id/invitations",
		"GET /api/projects/:id/invitations",
		"GET /api/invitations",
		"POST /api/invitations/accept",
		"POST /api/invitations/decline",
		"GET /api/invitations/:id/qr",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}
