package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-fractions/internal/api/shared/constants"
)

// SetupCORS configures CORS middleware. An empty origin list allows every origin.
func SetupCORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowAllOrigins:  len(allowedOrigins) == 0,
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", constants.CALLER_ADDRESS_HEADER, constants.REQUEST_ID_HEADER},
		ExposeHeaders:    []string{"Content-Length", constants.REQUEST_ID_HEADER},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	return cors.New(config)
}
