package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/mailmind/internal/identity"
	"github.com/nhle/mailmind/internal/model"
)

// UploadStatus is the backend's answer to an email upload.
type UploadStatus struct {
	Status   string `json:"status"`
	Inserted int    `json:"inserted,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Health pings the backend and returns its reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.do(ctx, request{
		op: "health", method: http.MethodGet, path: "/health", idempotent: true,
	})
	if err != nil {
		return "", err
	}
	var res struct {
		Status string `json:"status"`
	}
	if err := decode("health", body, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

// ListEmails fetches the full email list.
func (c *Client) ListEmails(ctx context.Context) ([]identity.RawEmail, error) {
	body, err := c.do(ctx, request{
		op: "list emails", method: http.MethodGet, path: "/emails", idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	var emails []identity.RawEmail
	if err := decode("list emails", body, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FetchDrafts fetches all saved drafts.
func (c *Client) FetchDrafts(ctx context.Context) ([]identity.RawDraft, error) {
	body, err := c.do(ctx, request{
		op: "fetch drafts", method: http.MethodGet, path: "/drafts", idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	var drafts []identity.RawDraft
	if err := decode("fetch drafts", body, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// AddDraft saves a new draft. All three fields must be non-empty; an
// empty field is rejected here without contacting the backend.
func (c *Client) AddDraft(ctx context.Context, recipient, subject, body string) (identity.RawDraft, error) {
	const op = "add draft"
	if strings.TrimSpace(recipient) == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return identity.RawDraft{}, validationError(op, "recipient, subject and body are required")
	}

	q := url.Values{}
	q.Set("recipient", recipient)
	q.Set("subject", subject)
	q.Set("body", body)

	resp, err := c.do(ctx, request{
		op: op, method: http.MethodPost, path: "/drafts/add_one", query: q,
	})
	if err != nil {
		return identity.RawDraft{}, err
	}

	created := identity.RawDraft{Recipient: recipient, Subject: subject, Body: body}
	// Older backends answer with a bare status; the draft list reload
	// picks up the assigned identity in that case.
	if err := json.Unmarshal(resp, &created); err != nil {
		c.log.Debug("add draft response not decoded", zap.String("op", op), zap.Error(err))
	}
	return created, nil
}

// Search runs a semantic query and returns the matching emails.
func (c *Client) Search(ctx context.Context, query string) ([]identity.RawEmail, error) {
	const op = "search"
	if strings.TrimSpace(query) == "" {
		return nil, validationError(op, "query is required")
	}

	q := url.Values{}
	q.Set("q", query)

	body, err := c.do(ctx, request{
		op: op, method: http.MethodGet, path: "/search", query: q, idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	var results []identity.RawEmail
	if err := decode(op, body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GenerateDraft asks the backend to author a draft for target (an email
// identity, or the compose package's new-email sentinel) following
// instruction.
func (c *Client) GenerateDraft(ctx context.Context, target, instruction string) (string, error) {
	const op = "generate draft"
	if strings.TrimSpace(instruction) == "" {
		return "", validationError(op, "instruction is required")
	}
	if strings.TrimSpace(target) == "" {
		return "", validationError(op, "target is required")
	}

	q := url.Values{}
	q.Set("email_id", target)
	q.Set("prompt", instruction)

	r := request{op: op, method: http.MethodPost, path: "/ds7m/autodraft", query: q}
	if err := r.jsonBody(struct{}{}); err != nil {
		return "", err
	}

	body, err := c.do(ctx, r)
	if err != nil {
		return "", err
	}
	var res struct {
		Draft string `json:"draft"`
	}
	if err := decode(op, body, &res); err != nil {
		return "", err
	}
	return res.Draft, nil
}

// Ask poses a question about a single email. The payload is returned
// undecoded since its shape varies.
func (c *Client) Ask(ctx context.Context, emailID, question string) (json.RawMessage, error) {
	const op = "ask"
	if strings.TrimSpace(emailID) == "" {
		return nil, validationError(op, "email id is required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, validationError(op, "question is required")
	}

	r := request{op: op, method: http.MethodPost, path: "/ds7m/ask"}
	if err := r.jsonBody(map[string]string{"email_id": emailID, "question": question}); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	return asJSON(body), nil
}

// AskGlobal poses a question across all emails.
func (c *Client) AskGlobal(ctx context.Context, question string) (json.RawMessage, error) {
	const op = "superquery"
	if strings.TrimSpace(question) == "" {
		return nil, validationError(op, "question is required")
	}

	r := request{op: op, method: http.MethodPost, path: "/ds7m/superquery"}
	if err := r.jsonBody(map[string]string{"question": question}); err != nil {
		return nil, err
	}
	body, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	return asJSON(body), nil
}

// UploadEmails posts an email export file as multipart form data.
func (c *Client) UploadEmails(ctx context.Context, filename string, payload []byte) (UploadStatus, error) {
	const op = "upload emails"
	if len(bytes.TrimSpace(payload)) == 0 {
		return UploadStatus{}, validationError(op, "file is empty")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return UploadStatus{}, &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if _, err := part.Write(payload); err != nil {
		return UploadStatus{}, &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if err := w.Close(); err != nil {
		return UploadStatus{}, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	body, err := c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/email/upload",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	})
	if err != nil {
		return UploadStatus{}, err
	}

	var status UploadStatus
	if err := decode(op, body, &status); err != nil {
		return UploadStatus{}, err
	}
	return status, nil
}

// GetPrompts fetches the active system prompts, without the document key.
func (c *Client) GetPrompts(ctx context.Context) (model.Prompts, error) {
	const op = "get prompts"
	body, err := c.do(ctx, request{
		op: op, method: http.MethodGet, path: "/prompts/get_all", idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := decode(op, body, &raw); err != nil {
		return nil, err
	}

	prompts := make(model.Prompts, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		if s, ok := v.(string); ok {
			prompts[k] = s
		} else {
			prompts[k] = fmt.Sprint(v)
		}
	}
	return prompts, nil
}

// UpdatePrompts replaces the active system prompts.
func (c *Client) UpdatePrompts(ctx context.Context, prompts model.Prompts) error {
	const op = "update prompts"
	if len(prompts) == 0 {
		return validationError(op, "no prompts to save")
	}

	payload := make(map[string]string, len(prompts)+1)
	for k, v := range prompts {
		payload[k] = v
	}
	payload["_id"] = model.ActivePromptsID

	r := request{op: op, method: http.MethodPost, path: "/prompts/change_one"}
	if err := r.jsonBody(payload); err != nil {
		return err
	}
	_, err := c.do(ctx, r)
	return err
}

// asJSON returns body unchanged when it is valid JSON, and otherwise wraps
// the text as a JSON string so callers always receive JSON.
func asJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}
