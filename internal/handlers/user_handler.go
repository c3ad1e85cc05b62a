package handlers

import (
	"errors"
	"io"
	"log/slog"
	"strconv"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/middleware"
	"github.com/gendata/gendata-api/internal/services"
	"github.com/gendata/gendata-api/internal/tabular"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService   *services.UserService
	importService *services.ImportService
}

func NewUserHandler(userService *services.UserService, importService *services.ImportService) *UserHandler {
	return &UserHandler{userService: userService, importService: importService}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err, "Failed to create user")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	skip, _ := strconv.Atoi(c.Query("skip", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(services.DefaultListLimit)))

	users, err := h.userService.List(c.UserContext(), skip, limit)
	if err != nil {
		return h.fail(c, err, "Failed to fetch users")
	}
	return c.JSON(dto.NewUserResponses(users))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to fetch user")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.UserContext(), id, &req)
	if err != nil {
		return h.fail(c, err, "Failed to update user")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "Failed to delete user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Import accepts a multipart "file" field holding a CSV or XLSX table of users.
func (h *UserHandler) Import(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "File is required")
	}
	if !tabular.IsSupported(header.Filename) {
		return badRequest(c, tabular.ErrUnsupportedFormat.Error())
	}

	f, err := header.Open()
	if err != nil {
		return badRequest(c, "Failed to read file")
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "Failed to read file")
	}

	summary, err := h.importService.Import(c.UserContext(), raw, header.Filename)
	if err != nil {
		return h.fail(c, err, "Failed to import users")
	}

	if admin := middleware.CurrentUser(c); admin != nil {
		slog.Info("import requested", "action", "user_import", "login", admin.Login, "filename", header.Filename)
	}
	return c.JSON(summary)
}

func (h *UserHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrLoginTaken),
		errors.Is(err, services.ErrLoginRequired),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrInvalidRole):
		return badRequest(c, err.Error())
	case errors.Is(err, tabular.ErrUnsupportedFormat),
		errors.Is(err, tabular.ErrParse),
		errors.Is(err, tabular.ErrMissingColumn):
		return badRequest(c, "Error processing file: "+err.Error())
	}

	slog.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func userID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
