package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/model"
	"github.com/arc-self/amon/apps/master/internal/service"
)

// ContactsHandler serves /pub/:login/contacts[/:contact].
type ContactsHandler struct {
	svc *service.ObjectService
}

func NewContactsHandler(svc *service.ObjectService) *ContactsHandler {
	return &ContactsHandler{svc: svc}
}

func (h *ContactsHandler) Register(g *echo.Group) {
	g.GET("/contacts", h.List)
	g.PUT("/contacts/:contact", h.Put)
	g.GET("/contacts/:contact", h.Get)
	g.DELETE("/contacts/:contact", h.Delete)
}

type contactBody struct {
	Medium string `json:"medium"`
	Data   string `json:"data"`
}

func (h *ContactsHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := requireSessionMatch(c, user); err != nil {
		return writeErr(c, err)
	}

	var body contactBody
	if err := c.Bind(&body); err != nil {
		return writeErr(c, err)
	}

	// Route params win over body fields for identity (spec.md §4.D).
	contact, err := h.svc.PutContact(ctx, model.ContactInput{
		Name:   c.Param("contact"),
		Medium: body.Medium,
		Data:   body.Data,
		User:   user,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, contact.Serialize(false))
}

func (h *ContactsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	contact, err := h.svc.GetContact(ctx, user, c.Param("contact"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, contact.Serialize(false))
}

func (h *ContactsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	contacts, err := h.svc.ListContacts(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]map[string]any, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, contact.Serialize(false))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContactsHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := h.svc.DeleteContact(ctx, user, c.Param("contact")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
