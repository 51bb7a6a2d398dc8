package adminapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/proisp/radiusd/internal/store"
)

func (s *Server) handleListActiveSessions(c *fiber.Ctx) error {
	sessions, err := s.store.ListActiveSessions()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list sessions")
	}
	return c.JSON(fiber.Map{"items": sessions})
}

func (s *Server) handleListAccounting(c *fiber.Ctx) error {
	page, limit, offset := pageAndLimit(c)
	records, total, err := s.store.ListAccountingRecords(offset, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list accounting records")
	}
	return c.JSON(listResponse{Items: records, Total: total, Page: page, Limit: limit})
}

func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	profiles, err := s.store.ListProfiles()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list profiles")
	}
	return c.JSON(fiber.Map{"items": profiles})
}

func (s *Server) handleCreateProfile(c *fiber.Ctx) error {
	var p store.Profile
	if err := c.BodyParser(&p); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if p.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if err := s.store.CreateProfile(&p); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) handleDashboardStats(c *fiber.Ctx) error {
	stats, err := s.store.Dashboard()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to gather stats")
	}
	return c.JSON(stats)
}

// buildVersion is overridden at link time via -ldflags, following the
// teacher's own version.go pattern.
var buildVersion = "dev"

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"uptime":  time.Since(s.startedAt).String(),
		"version": buildVersion,
	})
}
