package api

// Request DTOs. Bodies arrive either as JSON or as form key-value maps,
// so every field carries both tags.

type CreateThreadRequest struct {
	Text           string `json:"text" form:"text"`
	DeletePassword string `json:"delete_password" form:"delete_password" validate:"required"`
}

type DeleteThreadRequest struct {
	ThreadId       string `json:"thread_id" form:"thread_id"`
	DeletePassword string `json:"delete_password" form:"delete_password"`
}

type ReportThreadRequest struct {
	ThreadId string `json:"thread_id" form:"thread_id"`
}

type CreateReplyRequest struct {
	ThreadId       string `json:"thread_id" form:"thread_id"`
	Text           string `json:"text" form:"text"`
	DeletePassword string `json:"delete_password" form:"delete_password" validate:"required"`
}

type DeleteReplyRequest struct {
	ThreadId       string `json:"thread_id" form:"thread_id"`
	ReplyId        string `json:"reply_id" form:"reply_id"`
	DeletePassword string `json:"delete_password" form:"delete_password"`
}

type ReportReplyRequest struct {
	ThreadId string `json:"thread_id" form:"thread_id"`
	ReplyId  string `json:"reply_id" form:"reply_id"`
}

// Response DTOs

type ErrorResponse struct {
	Error string `json:"error"`
}

// EmptyResponse is the `{}` answer for an unknown or malformed thread id.
type EmptyResponse struct{}
