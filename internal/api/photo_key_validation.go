package api

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var errInvalidPhotoKey = errors.New("invalid photo object key")

// validatePhotoKey 校验对象 key 是否落在该用户自己的照片前缀下。
// 同时拦截路径穿越和奇怪的后缀。
func validatePhotoKey(key string, userID uint) error {
	if key == "" || !utf8.ValidString(key) {
		return errInvalidPhotoKey
	}
	expected := fmt.Sprintf("user-photos/%d/", userID)
	if !strings.HasPrefix(key, expected) {
		return errInvalidPhotoKey
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return errInvalidPhotoKey
	}
	if len(key) > 200 {
		return errInvalidPhotoKey
	}
	lower := strings.ToLower(strings.TrimSpace(key))
	if !(strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") || strings.HasSuffix(lower, ".webp")) {
		return errInvalidPhotoKey
	}
	return nil
}
