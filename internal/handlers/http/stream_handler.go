package http

import (
	"net/http"
	"strings"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/gateway"
	"camlive/internal/infrastructure/middleware"
	"camlive/pkg/validation"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct {
	streams    ports.StreamService
	streamRepo ports.StreamRepository
	tokens     services.TokenService
	registry   *gateway.RoomRegistry
}

func NewStreamHandler(streams ports.StreamService, streamRepo ports.StreamRepository, tokens services.TokenService, registry *gateway.RoomRegistry) *StreamHandler {
	return &StreamHandler{
		streams:    streams,
		streamRepo: streamRepo,
		tokens:     tokens,
		registry:   registry,
	}
}

func (h *StreamHandler) SetupRoutes(router *gin.Engine) {
	public := router.Group("/api/streams")
	{
		public.GET("", h.ListStreams)
		public.GET("/:id", h.GetStream)
		public.GET("/:id/stats", h.GetStreamStats)
	}

	owned := router.Group("/api/streams")
	owned.Use(middleware.AuthMiddleware(h.tokens))
	{
		owned.POST("", middleware.RequireRoles(domain.RolePerformer, domain.RoleAdmin), h.CreateStream)

		ownership := middleware.RequireOwnership(middleware.StreamOwnership{Streams: h.streamRepo}, "id")
		owned.PATCH("/:id", ownership, h.UpdateStream)
		owned.DELETE("/:id", ownership, h.DeleteStream)
		owned.POST("/:id/start", ownership, h.StartStream)
		owned.POST("/:id/end", ownership, h.EndStream)
		owned.GET("/:id/key", ownership, h.GetStreamKey)
	}
}

type CreateStreamRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	IsPrivate   bool   `json:"isPrivate"`
}

type UpdateStreamRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsPrivate   *bool   `json:"isPrivate"`
}

func (h *StreamHandler) CreateStream(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateStreamRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}
	if err := validation.ValidateStreamTitle(req.Title); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	stream, err := h.streams.CreateStream(c.Request.Context(), user.ID, strings.TrimSpace(req.Title), strings.TrimSpace(req.Description), req.IsPrivate)
	if err != nil {
		failDomain(c, err)
		return
	}

	rtmp, hls := h.streams.PlaybackURLs(stream)
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "stream created successfully",
		"data": gin.H{
			"stream":    stream,
			"streamKey": stream.StreamKey,
			"rtmpUrl":   rtmp,
			"hlsUrl":    hls,
		},
	})
}

func (h *StreamHandler) ListStreams(c *gin.Context) {
	offset, limit := pagination(c)
	status := domain.StreamStatus(c.Query("status"))

	streams, err := h.streams.ListStreams(c.Request.Context(), status, offset, limit)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"streams": streams,
			"offset":  offset,
			"limit":   limit,
		},
	})
}

func (h *StreamHandler) GetStream(c *gin.Context) {
	stream, err := h.streams.GetStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	_, hls := h.streams.PlaybackURLs(stream)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"stream": stream,
			"hlsUrl": hls,
		},
	})
}

func (h *StreamHandler) UpdateStream(c *gin.Context) {
	var req UpdateStreamRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	stream, err := h.streams.GetStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validation.ValidateStreamTitle(title); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		stream.Title = title
	}
	if req.Description != nil {
		stream.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsPrivate != nil {
		stream.IsPrivate = *req.IsPrivate
	}
	stream.UpdatedAt = time.Now()

	if err := h.streams.UpdateStream(c.Request.Context(), stream); err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "stream updated successfully",
		"data":    gin.H{"stream": stream},
	})
}

func (h *StreamHandler) DeleteStream(c *gin.Context) {
	if err := h.streams.DeleteStream(c.Request.Context(), domain.StreamID(c.Param("id"))); err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "stream deleted successfully",
	})
}

func (h *StreamHandler) StartStream(c *gin.Context) {
	stream, err := h.streams.StartStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	if h.registry != nil {
		h.registry.SendStatusUpdate(stream.ID, string(domain.StreamLive))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "stream started",
		"data":    gin.H{"stream": stream},
	})
}

func (h *StreamHandler) EndStream(c *gin.Context) {
	stream, err := h.streams.EndStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	if h.registry != nil {
		h.registry.SendStatusUpdate(stream.ID, string(domain.StreamEnded))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "stream ended",
		"data":    gin.H{"stream": stream},
	})
}

func (h *StreamHandler) GetStreamStats(c *gin.Context) {
	stats, err := h.streams.GetStreamStats(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	if h.registry != nil {
		stats.Viewers = h.registry.RoomSize(stats.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"stats": stats},
	})
}

// GetStreamKey reveals the ingest key to the stream's owner only.
func (h *StreamHandler) GetStreamKey(c *gin.Context) {
	stream, err := h.streams.GetStream(c.Request.Context(), domain.StreamID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	rtmp, _ := h.streams.PlaybackURLs(stream)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"streamKey": stream.StreamKey,
			"rtmpUrl":   rtmp,
		},
	})
}
