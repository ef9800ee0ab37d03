package assistant

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tcmclinic/clinic/internal/platform/metrics"
)

type Handler struct {
	client      *Client
	transcripts *TranscriptStore
}

func NewHandler(client *Client, transcripts *TranscriptStore) *Handler {
	return &Handler{client: client, transcripts: transcripts}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.chat)
	api.GET("/chat/transcripts/:key", h.getTranscript)
	api.PUT("/chat/transcripts/:key", h.putTranscript)
	api.DELETE("/chat/transcripts/:key", h.clearTranscript)
	api.DELETE("/chat/transcripts", h.resetTranscripts)
}

type chatRequest struct {
	Question string `json:"question"`
	// Key selects the transcript the exchange is recorded under.
	Key string `json:"key"`
}

type chatResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Status   string   `json:"status"`
}

func (h *Handler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	if req.Key == "" {
		req.Key = "default"
	}

	answer, err := h.client.Chat(c.Request().Context(), req.Question)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()

	now := time.Now()
	h.transcripts.Append(req.Key,
		Message{Role: "user", Content: req.Question, At: now},
		Message{Role: "assistant", Content: answer.Answer, Sources: answer.Sources, At: now},
	)

	return c.JSON(http.StatusOK, chatResponse{
		Question: answer.Question,
		Answer:   answer.Answer,
		Sources:  answer.Sources,
		Status:   "ok",
	})
}

func (h *Handler) getTranscript(c echo.Context) error {
	t := h.transcripts.Get(c.Param("key"))
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "transcript not found")
	}
	return c.JSON(http.StatusOK, t)
}

// putTranscript replaces a transcript wholesale, for clients restoring a
// saved conversation.
func (h *Handler) putTranscript(c echo.Context) error {
	var msgs []Message
	if err := c.Bind(&msgs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	h.transcripts.Replace(c.Param("key"), msgs)
	return c.JSON(http.StatusOK, h.transcripts.Get(c.Param("key")))
}

func (h *Handler) clearTranscript(c echo.Context) error {
	if !h.transcripts.Clear(c.Param("key")) {
		return echo.NewHTTPError(http.StatusNotFound, "transcript not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) resetTranscripts(c echo.Context) error {
	h.transcripts.Reset()
	return c.NoContent(http.StatusNoContent)
}
