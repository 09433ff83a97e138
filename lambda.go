package main

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleAPIGateway adapts API Gateway proxy events to Handle. The user comes
// from the authorizer: JWT claims "sub" first, then the custom authorizer's
// principalId.
func (h *PaletteHandler) HandleAPIGateway(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID := authorizerUser(ev.RequestContext.Authorizer)
	if userID == "" {
		h.logger.Warn("request without authorizer identity", "path", ev.Path, "requestId", ev.RequestContext.RequestID)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	body := ev.Body
	if ev.IsBase64Encoded && body != "" {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		}
		body = string(b)
	}

	ctx = WithRequestID(ctx, ev.RequestContext.RequestID)
	resp := h.Handle(ctx, Request{
		HTTPMethod: ev.HTTPMethod,
		Path:       ev.Path,
		Body:       body,
		UserID:     userID,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

func authorizerUser(authorizer map[string]any) string {
	if claims, ok := authorizer["claims"].(map[string]any); ok {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub
		}
	}
	if principal, ok := authorizer["principalId"].(string); ok {
		return principal
	}
	return ""
}
