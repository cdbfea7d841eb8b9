package router

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/iamkhs/ProjectManagement/internal/config"
	"github.com/iamkhs/ProjectManagement/internal/handler"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"gorm.io/gorm"
)

// AuthMiddleware 解析Bearer令牌并加载当前用户。
// 令牌签发由外部认证服务负责，这里只做校验与用户解析。
func AuthMiddleware(db *gorm.DB, cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing or malformed authorization header.",
				"status":  http.StatusUnauthorized,
			})
			return
		}

		userID, err := parseSubject(tokenString, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token.",
				"status":  http.StatusUnauthorized,
			})
			return
		}

		var user model.User
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unknown user.",
				"status":  http.StatusUnauthorized,
			})
			return
		}

		c.Set(handler.ContextUserKey, &user)
		c.Next()
	}
}

// bearerToken 从Authorization头提取令牌
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// parseSubject 校验签名并取出subject中的用户ID
func parseSubject(tokenString string, cfg config.AuthConfig) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(subject, 10, 32)
	if err != nil {
		return 0, errors.New("invalid subject claim")
	}

	return uint(userID), nil
}
