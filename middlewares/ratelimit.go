package middlewares

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/voicebridge/apiv1/utils"
)

// RateLimit limits each client IP to max requests per second. The client IP
// is the connection's remote address; forwarding headers are only honoured
// when trustProxy is set, since any client can send them.
func RateLimit(max float64, trustProxy bool) func(http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(max, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lookups := []string{"RemoteAddr"}
	if trustProxy {
		lookups = []string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"}
	}
	lmt.SetIPLookups(lookups)
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"success":false,"error":"` + utils.RATE_LIMIT_ERROR + `"}`)

	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}
