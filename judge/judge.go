// Package judge calls the external image-similarity service that decides
// whether a traced drawing matches its reference. The service returns free
// text whose leading token is YES or NO.
package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doodleparty/logger"
)

var ErrJudgeUnavailable = errors.New("judge-unavailable")

// extraAttempts is the retry budget for ambiguous replies. After the
// budget is spent the result is a forced pass, not another retry.
const extraAttempts = 2

// Result of one similarity verdict.
type Result struct {
	Match bool
	// Forced is true when the reply never led with YES or NO and the
	// retry budget ran out, forcing a pass-through success.
	Forced bool
	// Explanation is the text after the leading token, when present.
	Explanation string
}

type request struct {
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
}

// Client talks to the similarity judge endpoint.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(url, apiKey string) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: time.Second * 30},
	}
}

// Judge submits the captured canvas and reference images with a prompt
// and interprets the reply. Transport failures surface as
// ErrJudgeUnavailable and are never converted into a forced pass; the
// caller logs them and leaves the round unresolved.
func (c *Client) Judge(ctx context.Context, prompt string, images ...[]byte) (Result, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}

	for attempt := 0; attempt <= extraAttempts; attempt++ {
		reply, err := c.call(ctx, request{Prompt: prompt, Images: encoded})
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrJudgeUnavailable, err)
		}

		token, rest, _ := strings.Cut(strings.TrimSpace(reply), " ")
		switch strings.ToUpper(strings.TrimRight(token, ".,:!")) {
		case "YES":
			return Result{Match: true, Explanation: strings.TrimSpace(rest)}, nil
		case "NO":
			return Result{Match: false, Explanation: strings.TrimSpace(rest)}, nil
		}
		logger.Warningf("[judge] ambiguous reply %q (attempt %d/%d)", token, attempt+1, extraAttempts+1)
	}

	// Budget spent on ambiguous replies: pass the player through rather
	// than blocking a children's game on a flaky judge.
	return Result{Match: true, Forced: true}, nil
}

func (c *Client) call(ctx context.Context, payload request) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("judge returned status %d", resp.StatusCode)
	}
	reply, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	return string(reply), nil
}
