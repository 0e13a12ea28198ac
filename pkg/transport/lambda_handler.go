package transport

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/raywall/fast-service-simulator/pkg/logger"
	"github.com/raywall/fast-service-simulator/pkg/scenario"
	"github.com/rs/zerolog/log"
)

// LambdaHandler adapta eventos do API Gateway para o engine do simulador
type LambdaHandler struct {
	sim Simulator
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(sim Simulator) *LambdaHandler {
	return &LambdaHandler{sim: sim}
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// 1. Observabilidade (Réplica da lógica do Middleware HTTP)
	start := time.Now()

	corrID := headerValue(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}

	reqLogger := log.With().Str("correlation_id", corrID).Logger()
	ctx = reqLogger.WithContext(ctx)
	ctx = logger.WithCorrelationID(ctx, corrID)

	// 2. Simulação
	response := h.handle(ctx, req)

	// 3. Log Final (Similar ao middleware HTTP)
	reqLogger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	if response.Headers == nil {
		response.Headers = make(map[string]string)
	}
	response.Headers[HeaderCorrelationID] = corrID

	return response, nil
}

func (h *LambdaHandler) handle(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"error": "corpo base64 inválido"}`,
			}
		}
		body = decoded
	}

	res, err := h.sim.Execute(ctx, scenario.Request{
		Method:  req.HTTPMethod,
		Path:    req.Path,
		Headers: req.Headers,
		Query:   queryOf(req),
		Body:    body,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Erro crítico na simulação Lambda")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}
	}

	headers := make(map[string]string, len(res.Headers))
	for k, v := range res.Headers {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: res.Status,
		Headers:    headers,
		Body:       string(res.Body),
	}
}

// queryOf prefere os valores múltiplos quando o API Gateway os informa.
func queryOf(req events.APIGatewayProxyRequest) map[string][]string {
	if len(req.MultiValueQueryStringParameters) > 0 {
		return req.MultiValueQueryStringParameters
	}
	query := make(map[string][]string, len(req.QueryStringParameters))
	for k, v := range req.QueryStringParameters {
		query[k] = []string{v}
	}
	return query
}

// headerValue busca o header sem diferenciar maiúsculas (o API Gateway pode normalizar).
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
