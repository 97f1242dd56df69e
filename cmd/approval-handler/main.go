// The approval-handler function terminates Slack's interactive
// callback at an API gateway endpoint. All request handling lives in
// the gateway package; this shim only maps the proxy event in and the
// response out.
package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sentinelops/macieguard/internal/gateway"
	"github.com/sentinelops/macieguard/internal/wiring"
)

func main() {
	app, err := wiring.Build(context.Background(), os.Getenv("MACIEGUARD_CONFIG"))
	if err != nil {
		panic(err)
	}

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				app.Log.Warn().Err(err).Msg("undecodable request body")
				return events.APIGatewayProxyResponse{
					StatusCode: http.StatusBadRequest,
					Body:       `{"text":"Error: malformed request payload"}`,
					Headers:    map[string]string{"Content-Type": "application/json"},
				}, nil
			}
			body = decoded
		}

		resp := app.Gateway.Handle(ctx,
			header(req.Headers, gateway.HeaderSignature),
			header(req.Headers, gateway.HeaderTimestamp),
			body)

		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	})
}

// header looks a name up case-insensitively; API gateway preserves
// whatever casing the client sent.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	canon := http.CanonicalHeaderKey(name)
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == canon {
			return v
		}
	}
	return ""
}
