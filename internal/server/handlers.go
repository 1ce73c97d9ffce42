package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/page"
)

type handlers struct {
	resumes      model.ResumeSource
	assistant    *chat.Assistant
	aiConfigured bool
	logger       *slog.Logger
	now          func() time.Time
}

func (h *handlers) resume(c *gin.Context) {
	r, err := h.resumes.FetchResume(c.Request.Context())
	if err != nil {
		h.logger.Error("resume unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Resume unavailable"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handlers) chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	answer, err := h.assistant.Reply(c.Request.Context(), req.Message, req.History)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if err != nil {
		h.logger.Error("chat reply failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer"})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		Message:   answer.Text,
		Timestamp: h.now().Format(time.RFC3339),
	})
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"timestamp":          h.now().Format(time.RFC3339),
		"api_key_configured": h.aiConfigured,
	})
}

// index renders the portfolio. ?open=N expands experience entry N.
func (h *handlers) index(c *gin.Context) {
	r, err := h.resumes.FetchResume(c.Request.Context())
	if err != nil {
		h.logger.Error("resume unavailable", "error", err)
		c.String(http.StatusInternalServerError, "resume unavailable")
		return
	}

	acc := page.NewAccordion(len(r.Experience))
	if n, err := strconv.Atoi(c.Query("open")); err == nil {
		acc.Toggle(n)
	}

	c.HTML(http.StatusOK, indexTemplate, NewPageData(r, acc, ""))
}
