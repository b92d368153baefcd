// Package assistant talks to the hosted AI completion endpoint: OCR-assisted
// claim extraction, sales pitch generation and product diagnostics. Each
// operation is one request and one response. Nothing is retried.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Part is one piece of prompt content, either text or inline bytes
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// Prompt is a single completion request
type Prompt struct {
	System string
	Parts  []Part
	// JSON asks the model for an application/json response
	JSON bool
}

// Completer performs one completion round trip
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// CompleterFunc adapts a function to Completer
type CompleterFunc func(ctx context.Context, p Prompt) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// GatewayError reports a failed or unusable round trip to the completion endpoint
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("assistant %s: gateway failure: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// MissingFieldsError reports a response that lacks required fields
type MissingFieldsError struct {
	Op     string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("assistant %s: response missing %s", e.Op, strings.Join(e.Fields, ", "))
}

// ErrEmptyResponse is wrapped in a GatewayError when the endpoint answers nothing
var ErrEmptyResponse = errors.New("empty response")

// Assistant runs the prompt templates against a Completer
type Assistant struct {
	completer Completer
	logger    *zap.Logger
}

// New creates an assistant over c
func New(c Completer, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{completer: c, logger: logger}
}

func (a *Assistant) complete(ctx context.Context, op string, p Prompt) (string, error) {
	text, err := a.completer.Complete(ctx, p)
	if err != nil {
		a.logger.Warn("completion failed", zap.String("op", op), zap.Error(err))
		return "", &GatewayError{Op: op, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GatewayError{Op: op, Err: ErrEmptyResponse}
	}
	a.logger.Debug("completion", zap.String("op", op), zap.Int("chars", len(text)))
	return text, nil
}

// decodeJSON decodes the first JSON object found in text. Models sometimes
// wrap their answer in a markdown fence or a sentence.
func decodeJSON(text string, v interface{}) error {
	body := stripFence(text)
	start := strings.IndexByte(body, '{')
	end := strings.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return fmt.Errorf("no JSON object in response")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body[start : end+1])))
	dec.UseNumber()
	return dec.Decode(v)
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// missing returns the keys whose values are blank, sorted
func missing(fields map[string]string) []string {
	var out []string
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
