package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resumesmith/internal/database"
	"resumesmith/internal/render"
	"resumesmith/internal/resume"
	"resumesmith/internal/storage"
)

// renderStoredResume 解码简历档案并渲染成完整 HTML。
// 头像 key 必须落在本人前缀下才会签名，防止档案里塞别人的对象路径。
func renderStoredResume(ctx context.Context, storageClient *storage.Client, resumeModel *database.Resume, templateID string) ([]byte, error) {
	var profile resume.Profile
	if err := json.Unmarshal(resumeModel.Content, &profile); err != nil {
		return nil, fmt.Errorf("decode resume content: %w", err)
	}

	photoURL := ""
	if key := strings.TrimSpace(profile.Personal.PhotoKey); key != "" {
		expectedPrefix := fmt.Sprintf("user-photos/%d/", resumeModel.UserID)
		if strings.HasPrefix(key, expectedPrefix) {
			if url, err := storageClient.GeneratePresignedURL(ctx, key, time.Hour); err == nil {
				photoURL = url
			}
		}
	}

	return render.RenderDocument(&profile, templateID, photoURL)
}
