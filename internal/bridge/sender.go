package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sender delivers a request to the consumer service and returns the HTTP
// status it answered with.
type Sender interface {
	Send(ctx context.Context, prefix string, req Request) (int, error)
}

// HTTPSender POSTs requests as JSON. When Secret is set every request
// carries a short-lived HS256 bearer token whose subject is the node id.
type HTTPSender struct {
	BaseURL string
	Secret  []byte
	Client  *http.Client
}

func NewHTTPSender(baseURL, secret string) *HTTPSender {
	s := &HTTPSender{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
	if secret != "" {
		s.Secret = []byte(secret)
	}
	return s
}

func (s *HTTPSender) Send(ctx context.Context, prefix string, req Request) (int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+SavePath(prefix), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if len(s.Secret) > 0 {
		token, err := IssueToken(s.Secret, req.NodeID, time.Minute)
		if err != nil {
			return 0, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", SavePath(prefix), err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// IssueToken signs an HS256 token for subject.
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
