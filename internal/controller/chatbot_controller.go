package controller

import (
	"arogya-chat-be/internal/dto"
	"arogya-chat-be/internal/pkg/apperror"
	"arogya-chat-be/internal/pkg/serverutils"
	"arogya-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service     service.IChatbotService
	auth        fiber.Handler
	sendLimiter fiber.Handler
}

// NewChatbotController takes the auth middleware for the whole group and a limiter for sends only.
func NewChatbotController(service service.IChatbotService, auth fiber.Handler, sendLimiter fiber.Handler) IChatbotController {
	return &chatbotController{service: service, auth: auth, sendLimiter: sendLimiter}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(c.auth)
	h.Post("/message", c.sendLimiter, c.SendMessage)
	h.Get("/history/:userId", c.GetHistory)
	h.Post("/new", c.CreateSession)
	h.Get("/:chatId", c.GetSession)
	h.Delete("/:chatId", c.DeleteSession)
}

func (c *chatbotController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if userId := serverutils.UserIdFromLocals(ctx); userId != "" {
		req.UserId = userId
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatbotController) GetHistory(ctx *fiber.Ctx) error {
	userId := serverutils.UserIdFromLocals(ctx)
	if userId == "" {
		userId = ctx.Params("userId")
	}

	res, err := c.service.GetHistory(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
		}
	}
	if userId := serverutils.UserIdFromLocals(ctx); userId != "" {
		req.UserId = userId
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.UserContext(), req.UserId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Chat created", res))
}

func (c *chatbotController) GetSession(ctx *fiber.Ctx) error {
	chatId, err := parseChatId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), chatId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat detail", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	chatId, err := parseChatId(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.UserContext(), chatId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat deleted", dto.DeleteSessionResponse{Success: true}))
}

func parseChatId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("chatId"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid chat id")
	}
	return id, nil
}
