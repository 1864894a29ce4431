package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 固定使用默认成本，保证各环境哈希强度一致。
const bcryptCost = bcrypt.DefaultCost

// HashPassword 生成密码的 bcrypt 哈希串。
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash 校验明文密码与存储哈希是否匹配。
// 任何比较错误都按不匹配处理，不向调用方泄露细节。
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
