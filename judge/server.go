package judge

import (
	"encoding/base64"
	"errors"
	"net/http"

	"doodleparty/logger"

	"github.com/gin-gonic/gin"
)

// Handler proxies verdict requests from clients. The judge endpoint and
// its API key stay server-side; clients only ever see this route.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/v1/judge", h.JudgeHandler)
}

type judgeRequest struct {
	Prompt string   `json:"prompt" binding:"required"`
	Images []string `json:"images" binding:"required,min=1"`
}

type judgeResponse struct {
	Match       bool   `json:"match"`
	Forced      bool   `json:"forced"`
	Explanation string `json:"explanation,omitempty"`
}

func (h *Handler) JudgeHandler(ctx *gin.Context) {
	var payload judgeRequest
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.String(http.StatusBadRequest, "invalid judge request")
		return
	}

	images := make([][]byte, len(payload.Images))
	for i, encoded := range payload.Images {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			ctx.String(http.StatusBadRequest, "image %d is not valid base64", i)
			return
		}
		images[i] = decoded
	}

	result, err := h.client.Judge(ctx.Request.Context(), payload.Prompt, images...)
	if err != nil {
		if errors.Is(err, ErrJudgeUnavailable) {
			logger.Warningf("[judge] verdict unavailable: %v", err)
			ctx.String(http.StatusBadGateway, "judge unavailable")
			return
		}
		ctx.String(http.StatusInternalServerError, "judge error")
		return
	}

	ctx.JSON(http.StatusOK, judgeResponse{
		Match:       result.Match,
		Forced:      result.Forced,
		Explanation: result.Explanation,
	})
}
