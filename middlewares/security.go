package middlewares

import (
	"github.com/gin-gonic/gin"
)

// apiSecurityHeaders berlaku untuk semua response. API ini hanya melayani JSON dan
// websocket, jadi tidak ada resource yang boleh di-embed atau di-cache.
var apiSecurityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":         "no-referrer",
	"Cache-Control":           "no-store",
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders memasang header keamanan. HSTS hanya dikirim bila aplikasi
// memang dilayani lewat HTTPS, supaya development di http://localhost tidak terkunci.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range apiSecurityHeaders {
			h.Set(k, v)
		}
		if hsts {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
