package response

const (
	MessageSuccess = "Success"

	// ErrorCodeBadRequest is used for malformed requests. Every other error
	// body carries its HTTP status as the code.
	ErrorCodeBadRequest = 1
)
