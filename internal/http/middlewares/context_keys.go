package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxLambdaID  = "lambda_request_id"
)
