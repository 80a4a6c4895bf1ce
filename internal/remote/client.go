// Package remote 读取数据 API 提供的通知列表。
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

// Client 数据 API 客户端, 只读
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient baseURL 形如 http://localhost:5000/api
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// listResponse 数据 API 统一返回 {data: [...]}
type listResponse struct {
	Data  []model.Notice `json:"data"`
	Error string         `json:"error"`
}

func (c *Client) list(ctx context.Context, path string, query url.Values) ([]model.Notice, error) {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	op := "GET " + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &common.NetworkError{Op: op, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &common.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("读取响应失败: %w", err)}
	}

	var out listResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = json.Unmarshal(body, &out)
		if out.Error != "" {
			return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, out.Error)}
		}
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("解析响应失败: %w", err)}
	}
	if out.Data == nil {
		out.Data = []model.Notice{}
	}
	return out.Data, nil
}

// Notices 教务通知
func (c *Client) Notices(ctx context.Context) ([]model.Notice, error) {
	return c.list(ctx, "/notices", nil)
}

// NoticesBySource 按来源 (QQ群 / 官网) 读取教务通知
func (c *Client) NoticesBySource(ctx context.Context, source string) ([]model.Notice, error) {
	return c.list(ctx, "/notices", url.Values{"source": {source}})
}

// Competitions 竞赛信息
func (c *Client) Competitions(ctx context.Context) ([]model.Notice, error) {
	return c.list(ctx, "/competitions", nil)
}

// Exams 考试信息
func (c *Client) Exams(ctx context.Context) ([]model.Notice, error) {
	return c.list(ctx, "/exams", nil)
}

// Internships 实习信息
func (c *Client) Internships(ctx context.Context) ([]model.Notice, error) {
	return c.list(ctx, "/internships", nil)
}

// Search 合并搜索
func (c *Client) Search(ctx context.Context, keyword string) ([]model.Notice, error) {
	return c.list(ctx, "/search", url.Values{"keyword": {keyword}})
}
