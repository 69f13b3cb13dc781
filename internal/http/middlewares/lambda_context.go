package middlewares

import (
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
)

// LambdaContext exposes the invocation's AWS request id to the request logger.
// Outside Lambda there is no invocation context and nothing is set.
func LambdaContext() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if lc, ok := lambdacontext.FromContext(ctx.Request.Context()); ok && lc.AwsRequestID != "" {
			ctx.Set(CtxLambdaID, lc.AwsRequestID)
		}

		ctx.Next()
	}
}
