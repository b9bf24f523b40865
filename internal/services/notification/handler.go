package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vistara-hms/internal/database/models"
	"vistara-hms/internal/utils"
)

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
	BranchID *int64 `json:"branch_id,omitempty"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

type HTTPHandler struct {
	dispatcher *Dispatcher
}

func NewHTTPHandler(dispatcher *Dispatcher) *HTTPHandler {
	return &HTTPHandler{dispatcher: dispatcher}
}

func (h *HTTPHandler) VapidKey(c *gin.Context) {
	key := h.dispatcher.VAPIDPublicKey()
	if key == "" {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Push notifications are not configured"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("VAPID public key", gin.H{"public_key": key}))
}

func (h *HTTPHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	sub := models.PushSubscription{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
		BranchID: req.BranchID,
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(int64); ok {
			sub.UserID = &id
		}
	}

	if err := h.dispatcher.Subscribe(c.Request.Context(), sub); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to store subscription"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Subscribed", nil))
}

func (h *HTTPHandler) Unsubscribe(c *gin.Context) {
	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	if err := h.dispatcher.Unsubscribe(c.Request.Context(), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to remove subscription"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Unsubscribed", nil))
}
