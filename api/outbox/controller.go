// Package outbox - outbox 运维接口
package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront/api/response"
	"storefront/infrastructure/outbox"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Store 是 OutboxRepository 的只读部分
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]outbox.Message, error)
	CountPending(ctx context.Context) (int64, error)
}

type Controller struct {
	store Store
}

func NewController(store Store) *Controller {
	return &Controller{store: store}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/outbox/pending", c.Pending)
}

type MessageResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	OccurredOn  time.Time       `json:"occurred_on"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error,omitempty"`
	Content     json.RawMessage `json:"content"`
}

type PendingResponse struct {
	Total    int64             `json:"total"`
	Messages []MessageResponse `json:"messages"`
}

type pendingQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Pending GET /api/v1/outbox/pending?limit=
// 返回最早的待投递消息和积压总数，limit 上限 500
func (c *Controller) Pending(ctx *gin.Context) {
	q := pendingQuery{Limit: defaultLimit}
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.HandleError(ctx, err, "invalid query parameters", http.StatusBadRequest)
		return
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}

	reqCtx := ctx.Request.Context()
	msgs, err := c.store.FetchPending(reqCtx, q.Limit)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	total, err := c.store.CountPending(reqCtx)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}

	out := PendingResponse{Total: total, Messages: make([]MessageResponse, len(msgs))}
	for i, m := range msgs {
		out.Messages[i] = MessageResponse{
			ID:          m.ID,
			Type:        string(m.Type),
			AggregateID: m.AggregateID,
			OccurredOn:  m.OccurredOn,
			Attempts:    m.Attempts,
			LastError:   m.LastError,
			Content:     json.RawMessage(m.Content),
		}
	}
	response.HandleSuccess(ctx, out, "pending outbox messages")
}
