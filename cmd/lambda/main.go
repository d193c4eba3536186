// AWS Lambda entrypoint. The gateway's JWT authorizer has already verified
// the caller; this layer carries the verified subject into the router via a
// trusted header that inbound requests can never supply themselves.
package main

import (
	"context"
	"log"

	"calendar-backend/infrastructure/config"
	"calendar-backend/infrastructure/di"
	"calendar-backend/interfaces/http/rest/middleware"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	mux, ok := container.Router.(*chi.Mux)
	if !ok {
		log.Fatal("router is not a chi.Mux")
	}
	chiLambda = chiadapter.NewV2(mux)
}

// Handler adapts one API Gateway invocation onto the router
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	// Never trust an inbound copy of the identity header
	delete(req.Headers, middleware.HeaderAuthorizedUserID)
	delete(req.Headers, "x-authorizer-user-id")

	if sub := authorizerSubject(req); sub != "" {
		req.Headers[middleware.HeaderAuthorizedUserID] = sub
	} else {
		container.Logger.Warn("request without verified subject",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("method", req.RequestContext.HTTP.Method),
		)
	}

	return chiLambda.ProxyWithContextV2(ctx, req)
}

// authorizerSubject extracts the sub claim the gateway authorizer verified.
// An absent claim returns "", which downstream turns into 401.
func authorizerSubject(req events.APIGatewayV2HTTPRequest) string {
	auth := req.RequestContext.Authorizer
	if auth == nil || auth.JWT == nil {
		return ""
	}
	return auth.JWT.Claims["sub"]
}

func main() {
	lambda.Start(Handler)
}
