package response

import (
	"net/http"

	"storefront/domain/shared"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, body *Response) {
	body.Success = true
	body.Code = status
	body.RequestID = getRequestID(c)
	c.JSON(status, body)
}

func HandleSuccess(c *gin.Context, data any, message string) {
	ok(c, http.StatusOK, &Response{Data: data, Message: message})
}

func HandleCreated(c *gin.Context, data any, message string) {
	ok(c, http.StatusCreated, &Response{Data: data, Message: message})
}

func HandleNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandlePage 列表响应；空页返回 [] 而不是 null
func HandlePage[T any](c *gin.Context, page *shared.PagedResult[T], message string) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	totalPages := page.TotalPages()
	ok(c, http.StatusOK, &Response{
		Data:    items,
		Message: message,
		Pagination: &Pagination{
			Page:       page.PageIndex,
			PageSize:   page.PageSize,
			TotalItems: page.TotalCount,
			TotalPages: totalPages,
			HasNext:    page.PageIndex < totalPages,
		},
	})
}
