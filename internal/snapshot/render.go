// Package snapshot 把通知集合整份写成前端的 mockNotices.ts 数据文件。
//
// 快照只是镜像, 读取永远以本地存储为准。
package snapshot

import (
	"context"
	"encoding/json"

	"campus-notice/internal/model"
)

const header = "import { Notice } from '../types';\n\nexport const mockNotices: Notice[] = "

// Persister 接收整份快照文本并覆盖服务端文件
type Persister interface {
	Persist(ctx context.Context, content string) error
}

// Render 生成快照文本, 数组用两个空格缩进
func Render(notices []model.Notice) (string, error) {
	if notices == nil {
		notices = []model.Notice{}
	}
	body, err := json.MarshalIndent(notices, "", "  ")
	if err != nil {
		return "", err
	}
	return header + string(body) + ";", nil
}
