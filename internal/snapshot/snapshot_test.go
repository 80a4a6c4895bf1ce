package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-notice/internal/common"
	"campus-notice/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRender(t *testing.T) {
	out, err := Render([]model.Notice{{ID: 7, Title: "期末考试安排", Source: "官网", Category: "通知", PublishDate: "2024-03-20", Views: 3}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "import { Notice } from '../types';\n\nexport const mockNotices: Notice[] = [\n  {\n    \"id\": 7,"))
	assert.True(t, strings.HasSuffix(out, "\n];"))
	assert.Contains(t, out, `    "publish_date": "2024-03-20",`)
	assert.Contains(t, out, `"title": "期末考试安排"`)
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "import { Notice } from '../types';\n\nexport const mockNotices: Notice[] = [];", out)
}

func newTestServer(t *testing.T, path string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(path, nil).SetupRouter())
	t.Cleanup(ts.Close)
	return ts
}

// 测试客户端写入后文件内容与快照一致
func TestPersistWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web", "src", "data", "mockNotices.ts")
	ts := newTestServer(t, path)

	content, err := Render([]model.Notice{{ID: 1, Title: "T"}})
	require.NoError(t, err)
	require.NoError(t, NewClient(ts.URL+"/", nil).Persist(context.Background(), content))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(written))

	// 第二次整份覆盖
	require.NoError(t, NewClient(ts.URL, nil).Persist(context.Background(), "x"))
	written, _ = os.ReadFile(path)
	assert.Equal(t, "x", string(written))
}

func TestUpdateHandlerMissingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockNotices.ts")
	router := NewServer(path, nil).SetupRouter()

	for _, body := range []string{`{}`, `{"content":""}`, `not json`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, UpdatePath, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"缺少文件内容"}`, w.Body.String())
	}
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

// 目标目录被普通文件占用时写入失败
func TestUpdateHandlerWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))
	router := NewServer(filepath.Join(blocker, "mockNotices.ts"), nil).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, UpdatePath, strings.NewReader(`{"content":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "更新文件失败")
	assert.Contains(t, w.Body.String(), "details")
}

func TestPersistServerErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"400", http.StatusBadRequest, `{"error":"缺少文件内容"}`},
		{"500", http.StatusInternalServerError, `{"error":"更新文件失败","details":"disk full"}`},
		{"success false", http.StatusOK, `{"success":false}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			err := NewClient(ts.URL, nil).Persist(context.Background(), "abc")
			assert.ErrorIs(t, err, common.ErrNetwork)
		})
	}
}

func TestPersistUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := NewClient(url, nil).Persist(context.Background(), "abc")
	assert.ErrorIs(t, err, common.ErrNetwork)
}
