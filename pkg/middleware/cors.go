package middleware

import "net/http"

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
)

type CORSHeaders struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

func DefaultCORSHeaders() CORSHeaders {
	return CORSHeaders{
		AllowOrigin:  "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type",
	}
}

// CORS は内側のハンドラーより先にヘッダーを設定するため、エラーレスポンスにも付与される
func CORS(headers CORSHeaders) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set(HeaderAllowOrigin, headers.AllowOrigin)
			h.Set(HeaderAllowMethods, headers.AllowMethods)
			h.Set(HeaderAllowHeaders, headers.AllowHeaders)

			next.ServeHTTP(w, r)
		})
	}
}
