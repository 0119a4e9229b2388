package handlers

import (
	"datachat-ai/internal/apis/dtos"
	"datachat-ai/internal/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	chatService services.ChatService
}

func NewSessionHandler(chatService services.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

// @Summary Create a new session
// @Description Create a chat session bound to a loaded dataset
// @Accept json
// @Produce json
// @Param createSessionRequest body dtos.CreateSessionRequest true "Create session request"
// @Success 200 {object} dtos.Response

func (h *SessionHandler) Create(c *gin.Context) {
	var req dtos.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	response, statusCode, err := h.chatService.CreateSession(&req)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary List sessions
// @Description List sessions, most recently active first
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)

func (h *SessionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	response, statusCode, err := h.chatService.ListSessions(page, pageSize)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary Get a session
// @Description Get a session by its id

func (h *SessionHandler) GetByID(c *gin.Context) {
	response, statusCode, err := h.chatService.GetSession(c.Param("id"))
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary Delete a session
// @Description Delete a session and its messages

func (h *SessionHandler) Delete(c *gin.Context) {
	statusCode, err := h.chatService.DeleteSession(c.Param("id"))
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    "Session deleted",
	})
}

// @Summary Ask a question
// @Description Run one natural-language question through the answer pipeline
// @Accept json
// @Produce json
// @Param askRequest body dtos.AskRequest true "Question"
// @Success 200 {object} dtos.Response

func (h *SessionHandler) Ask(c *gin.Context) {
	var req dtos.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorMsg := err.Error()
		c.JSON(http.StatusBadRequest, dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	response, statusCode, err := h.chatService.Answer(c.Request.Context(), c.Param("id"), req.Question)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}

// @Summary List messages
// @Description List a session's messages in chronological order
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(50)

func (h *SessionHandler) ListMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	response, statusCode, err := h.chatService.ListMessages(c.Param("id"), page, pageSize)
	if err != nil {
		errorMsg := err.Error()
		c.JSON(int(statusCode), dtos.Response{
			Success: false,
			Error:   &errorMsg,
		})
		return
	}

	c.JSON(int(statusCode), dtos.Response{
		Success: true,
		Data:    response,
	})
}
