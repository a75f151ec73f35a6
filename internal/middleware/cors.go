package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets browser clients in origins call the API with cookies.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			HeaderRequestID,
			HeaderIdempotencyKey,
			"X-Client-Type",
		},
		ExposeHeaders:    []string{"Content-Length", HeaderRequestID, HeaderIdempotentReplayed},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
