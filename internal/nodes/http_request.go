package nodes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

type httpRequestConfig struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

// HttpRequestExecutor issues a single HTTP call. There is no retry.
type HttpRequestExecutor struct {
	Client *http.Client
}

func (e *HttpRequestExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[httpRequestConfig](node)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, configError(node.NodeType, "url is required")
	}
	if u, err := url.Parse(cfg.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, configError(node.NodeType, "url %q is not an absolute URL", cfg.URL)
	}
	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	payload := rawString(cfg.Body)
	sendsBody := payload != "" && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch)
	if sendsBody {
		body = bytes.NewBufferString(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, configError(node.NodeType, "invalid request: %v", err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	if sendsBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s %s: %w", method, cfg.URL, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	headers := make(map[string]any, len(resp.Header))
	for k, v := range resp.Header {
		headers[k] = strings.Join(v, ", ")
	}

	return map[string]any{
		"statusCode": resp.StatusCode,
		"isSuccess":  resp.StatusCode >= 200 && resp.StatusCode < 300,
		"headers":    headers,
		"body":       responseBody(resp.Header.Get("Content-Type"), content),
	}, nil
}

// responseBody decodes JSON responses so later nodes can address fields directly.
func responseBody(contentType string, content []byte) any {
	if strings.Contains(strings.ToLower(contentType), "json") && len(bytes.TrimSpace(content)) > 0 {
		var v any
		if err := json.Unmarshal(content, &v); err == nil {
			return v
		}
	}
	return string(content)
}
