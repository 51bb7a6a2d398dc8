package adminapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/proisp/radiusd/internal/store"
)

func (s *Server) handleListNAS(c *fiber.Ctx) error {
	clients, err := s.store.ListNAS()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list nas clients")
	}
	return c.JSON(fiber.Map{"items": clients})
}

func (s *Server) handleCreateNAS(c *fiber.Ctx) error {
	// store.NAS hides Secret from JSON, so the request reads it separately.
	var req struct {
		store.NAS
		Secret string `json:"secret"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	n := req.NAS
	n.Secret = req.Secret
	if n.IPAddress == "" || n.Secret == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ip_address and secret are required")
	}
	if err := s.store.CreateNAS(&n); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (s *Server) handleUpdateNAS(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid nas id")
	}

	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.store.UpdateNAS(uint(id), fields); err == store.ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, "nas client not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if ip, ok := fields["ip_address"].(string); ok && ip != "" {
		s.cache.InvalidateNAS(c.Context(), ip)
	}

	return c.JSON(fiber.Map{"id": id, "updated": true})
}

func (s *Server) handleDeleteNAS(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid nas id")
	}
	if err := s.store.DeleteNAS(uint(id)); err == store.ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, "nas client not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete nas client")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
