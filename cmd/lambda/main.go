package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/joselyntm20/userslambda/internal/app"
	"github.com/joselyntm20/userslambda/internal/config"
	"github.com/joselyntm20/userslambda/internal/observability"
)

// Built once per execution environment and reused by every invocation it
// serves, together with the database handle it holds.
func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	log.Info("lambda starting", "env", cfg.Env, "event_format", cfg.LambdaEventFormat, "store", cfg.StoreBackend)

	switch cfg.LambdaEventFormat {
	case "v2":
		adapter := ginadapter.NewV2(a.Router)
		lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
	default:
		adapter := ginadapter.New(a.Router)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
	}
}
