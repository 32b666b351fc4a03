package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zybl-io/passport/internal/config"
)

// NewRouter wires the payment relay's routes. The relay is stateless: it
// validates nothing itself beyond presence of payment proof and echoes the
// payment metadata into a fixed-shape receipt.
func NewRouter(logger *slog.Logger, cfg config.PaymentConfig) (http.Handler, error) {
	splits, err := buildSplits(cfg)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	r.GET("/health", handleHealth)

	api := r.Group("/api")
	api.Use(PaymentRequired(cfg, logger))
	api.POST("/verify", handleVerify(cfg, splits))

	return r, nil
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Zybl payment backend is running",
	})
}

// handleVerify acknowledges a settled verification payment. Repeated calls
// with the same headers echo the same receipt; transaction hashes are not
// deduplicated.
func handleVerify(cfg config.PaymentConfig, splits []Split) gin.HandlerFunc {
	amount := formatAmount(cfg.Price)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"message":            "Verification payment processed successfully",
			"verificationStatus": "active",
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
			"receipt": Receipt{
				TransactionHash: c.GetHeader(headerPaymentResponse),
				PaymentID:       c.GetHeader(headerPaymentID),
				Amount:          amount,
				Network:         cfg.NetworkLabel,
				Splits:          splits,
			},
		})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// corsMiddleware mirrors the relay's open CORS policy.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-PAYMENT-RESPONSE, X-PAYMENT-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
