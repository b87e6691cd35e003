package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"edit-relay/internal/config"
	"edit-relay/internal/linelog"
	"edit-relay/internal/metrics"
	"edit-relay/internal/models"
	"edit-relay/internal/upstream"
)

const (
	contentTypeJSON      = "application/json"
	queryLogContentLimit = 300
)

// Logs groups the two side files. Nil appenders discard.
type Logs struct {
	Debug linelog.Appender
	Query linelog.Appender
}

// Relay turns an edit request into one chat completion call.
type Relay struct {
	endpoint string
	model    string
	apiKey   string
	timeout  time.Duration

	client   upstream.Client
	debugLog linelog.Appender
	queryLog linelog.Appender
	metrics  *metrics.RelayMetrics
}

// New constructs a relay for the configured provider.
func New(cfg config.UpstreamConfig, client upstream.Client, logs Logs, m *metrics.RelayMetrics) (*Relay, error) {
	if client == nil {
		return nil, errors.New("upstream client must not be nil")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("endpoint must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model must not be empty")
	}

	r := &Relay{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		client:   client,
		debugLog: logs.Debug,
		queryLog: logs.Query,
		metrics:  m,
	}
	if r.debugLog == nil {
		r.debugLog = linelog.Nop{}
	}
	if r.queryLog == nil {
		r.queryLog = linelog.Nop{}
	}
	return r, nil
}

// Handle runs the full pipeline for one raw request body and returns the
// status and JSON body to send back.
func (r *Relay) Handle(ctx context.Context, raw []byte) (int, any) {
	resp, err := r.Edit(ctx, raw)
	if err != nil {
		r.metrics.ObserveRequest(outcomeFor(err))
		status, body := Render(err)
		return status, body
	}
	r.metrics.ObserveRequest(metrics.OutcomeSuccess)
	return http.StatusOK, resp
}

// Edit validates the request, calls the provider and extracts the markup.
// Failures are returned as *Error.
func (r *Relay) Edit(ctx context.Context, raw []byte) (models.EditResponse, error) {
	req, err := decodeEditRequest(raw)
	if err != nil {
		return models.EditResponse{}, err
	}

	instruction := req.InstructionOr("")
	content := req.ContentOr("")

	r.queryLog.Append(fmt.Sprintf("Instruction: %s | Content: %s",
		req.InstructionOr("[none]"), truncate(content, queryLogContentLimit)))

	if instruction == "" && content == "" {
		return models.EditResponse{}, inputError(msgEmptyInput, nil)
	}

	payload, err := json.Marshal(buildPayload(r.model, instruction, content))
	if err != nil {
		return models.EditResponse{}, fmt.Errorf("marshal payload: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + r.apiKey,
		"Content-Type":  contentTypeJSON,
		"Accept":        contentTypeJSON,
	}

	start := time.Now()
	status, body, err := r.client.Post(ctx, r.endpoint, headers, payload, r.timeout)
	latency := time.Since(start)
	if err != nil {
		status = 0
	}

	r.metrics.ObserveUpstream(status, latency.Seconds())
	r.debugLog.Append(fmt.Sprintf("REQUEST model=%s HTTP_CODE=%d ENDPOINT=%s", r.model, status, r.endpoint))

	if err != nil {
		slog.Warn("upstream transport failure", "endpoint", r.endpoint, "latency_ms", latency.Milliseconds(), "err", err)
		return models.EditResponse{}, transportError(err)
	}

	slog.Info("upstream responded", "model", r.model, "status", status, "latency_ms", latency.Milliseconds())

	if status != http.StatusOK {
		return models.EditResponse{}, upstreamError(status, body)
	}

	text, usage := extractCompletion(body)
	r.metrics.ObserveTokens(usage.PromptTokens, usage.CompletionTokens)

	return models.EditResponse{ModifiedContent: strings.TrimSpace(text)}, nil
}

func decodeEditRequest(raw []byte) (models.EditRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.EditRequest{}, NoInput(nil)
	}

	var req models.EditRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return models.EditRequest{}, NoInput(err)
	}
	return req, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type usageEnvelope struct {
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// extractCompletion pulls choices[0].message.content out of a provider body.
// Any deviation from the expected shape yields the sentinel text.
func extractCompletion(body []byte) (string, models.Usage) {
	var usage models.Usage
	var env usageEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Usage != nil {
		usage = models.Usage{
			PromptTokens:     env.Usage.PromptTokens,
			CompletionTokens: env.Usage.CompletionTokens,
		}
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("provider returned undecodable body", "err", err)
		return noResponseGenerated, usage
	}
	if len(resp.Choices) == 0 {
		return noResponseGenerated, usage
	}

	raw := resp.Choices[0].Message.Content
	if len(raw) == 0 || string(raw) == "null" {
		return noResponseGenerated, usage
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return noResponseGenerated, usage
	}
	return text, usage
}

// truncate keeps at most n code points of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func outcomeFor(err error) string {
	var relayErr *Error
	if !errors.As(err, &relayErr) {
		return metrics.OutcomeInternalError
	}
	switch relayErr.Kind {
	case KindInput:
		return metrics.OutcomeInputError
	case KindTransport:
		return metrics.OutcomeTransportError
	default:
		return metrics.OutcomeUpstreamError
	}
}
