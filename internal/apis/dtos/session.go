package dtos

type CreateSessionRequest struct {
	DatasetName string `json:"dataset_name" binding:"required"`
	Mode        string `json:"mode" binding:"omitempty,oneof=structured retrieval"`
}

type SessionResponse struct {
	ID          string `json:"id"`
	DatasetName string `json:"dataset_name"`
	Mode        string `json:"mode"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int64             `json:"total"`
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type AnswerResponse struct {
	Answer        string  `json:"answer"`
	ResultPreview *string `json:"result_preview,omitempty"`
	State         string  `json:"state"`
}

type MessageResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	Role          string  `json:"role"`
	Content       string  `json:"content"`
	ResultPreview *string `json:"result_preview,omitempty"`
	State         string  `json:"state"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}
