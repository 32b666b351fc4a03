package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zybl-io/passport/internal/config"
)

// Payment proof headers set by the upstream payment middleware.
const (
	headerPaymentResponse = "X-PAYMENT-RESPONSE"
	headerPaymentID       = "X-PAYMENT-ID"
)

// PaymentRequired gates a route on settled payment. Requests without payment
// proof get a 402 carrying the accepted payment terms; actual settlement and
// receipt validation are the upstream middleware's job, fully delegated.
func PaymentRequired(cfg config.PaymentConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerPaymentResponse) == "" {
			logger.Info("payment required", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": "payment required",
				"accepts": []gin.H{{
					"price":   cfg.Price,
					"network": cfg.Network,
					"asset":   cfg.AssetAddress,
					"payTo":   cfg.ProtocolAddress,
				}},
			})
			return
		}
		c.Next()
	}
}
