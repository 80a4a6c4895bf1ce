package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"campus-notice/internal/common"
)

// UpdatePath 快照写入接口
const UpdatePath = "/api/update-mock-notices"

type updateRequest struct {
	Content string `json:"content"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client 调用快照写入服务
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient baseURL 形如 http://localhost:3001
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// Persist 发送整份快照, 失败返回 NetworkError
func (c *Client) Persist(ctx context.Context, content string) error {
	op := "POST " + UpdatePath
	payload, err := json.Marshal(updateRequest{Content: content})
	if err != nil {
		return fmt.Errorf("序列化快照失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+UpdatePath, bytes.NewReader(payload))
	if err != nil {
		return &common.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &common.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.NetworkError{Op: op, Err: fmt.Errorf("读取响应失败: %w", err)}
	}

	var out updateResponse
	_ = json.Unmarshal(body, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if out.Details != "" {
			msg += ": " + out.Details
		}
		return &common.NetworkError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
	}
	if !out.Success {
		return &common.NetworkError{Op: op, Err: fmt.Errorf("更新文件失败: %s", string(body))}
	}
	return nil
}
