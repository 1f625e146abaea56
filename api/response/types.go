package response

// RequestIDKey gin context 中请求 ID 的键
const RequestIDKey = "request_id"

// Response 统一响应信封。Error 是错误码，Field 是校验失败的字段；
// Pagination 只在列表接口出现
type Response struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Field      string      `json:"field,omitempty"`
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Pagination *Pagination `json:"pagination,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
}

// Pagination Page 从 1 开始
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}
