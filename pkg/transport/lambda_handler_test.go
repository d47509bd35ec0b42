package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaHandler_List(t *testing.T) {
	handler := NewLambdaHandler(newFixture(t).router)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: "GET",
		Path:       "/books",
		MultiValueQueryStringParameters: map[string][]string{
			"_page":  {"1"},
			"_limit": {"3"},
		},
		Headers: map[string]string{"Host": "api.example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Headers[HeaderTotalCount])
	assert.Contains(t, resp.Headers["Link"], `<https://api.example.com/books?_page=2&_limit=3>; rel="next"`)
	assert.Contains(t, resp.Body, `"title":"Book 03"`)
	assert.NotContains(t, resp.Body, `"title":"Book 04"`)
}

func TestLambdaHandler_CreateBase64(t *testing.T) {
	handler := NewLambdaHandler(newFixture(t).router)
	body := `{"title": "Lambda", "price": 3.5, "genre": ["Drama"], "year": 2024}`

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/books",
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/xml",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/books/11", resp.Headers["Location"])
	assert.Equal(t, "application/xml", resp.Headers["Content-Type"])
	assert.Contains(t, resp.Body, "<title>Lambda</title>")
}

func TestLambdaHandler_Errors(t *testing.T) {
	handler := NewLambdaHandler(newFixture(t).router)

	resp, err := handler.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/books",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = handler.Handle(context.Background(), events.APIGatewayProxyRequest{Path: "/books/42"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []string{"Accept"}, resp.MultiValueHeaders["Vary"])
}
