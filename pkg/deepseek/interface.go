package deepseek

import "context"

// IDeepSeek is a chat completion client for OpenAI-compatible endpoints.
type IDeepSeek interface {
	GenerateContent(ctx context.Context, req *Request) (*Response, error)
	Model() string
}
