package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/softskills/softskills_go_server/internal/pkg/response"
	"github.com/softskills/softskills_go_server/internal/repository"

	"gorm.io/gorm"
)

// RequireSubscription 订阅检查中间件，保护会员专属内容。
// 有效性按订阅记录实时判断，不信任用户表上的冗余标记
func RequireSubscription(subRepo *repository.SubscriptionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		sub, err := subRepo.GetActiveByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.SubscriptionError(c, "该内容仅对订阅会员开放")
				c.Abort()
				return
			}
			response.ServerError(c, "订阅检查失败")
			c.Abort()
			return
		}

		if !sub.IsActive() {
			response.SubscriptionError(c, "该内容仅对订阅会员开放")
			c.Abort()
			return
		}

		c.Next()
	}
}
