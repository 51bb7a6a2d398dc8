package adminapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/proisp/radiusd/internal/store"
)

type listResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func pageAndLimit(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit", "25"))
	if limit < 1 || limit > 200 {
		limit = 25
	}
	offset = (page - 1) * limit
	return
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	page, limit, offset := pageAndLimit(c)

	users, total, err := s.store.ListUsers(offset, limit, c.Query("search"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list users")
	}

	return c.JSON(listResponse{Items: users, Total: total, Page: page, Limit: limit})
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var u store.User
	if err := c.BodyParser(&u); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if u.Username == "" {
		return fiber.NewError(fiber.StatusBadRequest, "username is required")
	}
	if err := s.store.CreateUser(&u); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) handleGetUser(c *fiber.Ctx) error {
	u, err := s.store.GetUserByUsername(c.Params("username"))
	if err == store.ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(u)
}

func (s *Server) handleUpdateUser(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.store.UpdateUser(c.Params("username"), fields); err == store.ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	u, err := s.store.GetUserByUsername(c.Params("username"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload user")
	}
	return c.JSON(u)
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	if err := s.store.DeleteUser(c.Params("username")); err == store.ErrNotFound {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	} else if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
