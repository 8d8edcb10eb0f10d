package middleware

import (
	"net/http"
	"net/url"

	"github.com/HMasataka/siteserve/pkg/rewrite"
)

// Rewrite はルーティング前にパスを書き換える
// 照合はエスケープされたままのパスとの完全一致で、クエリ文字列が付いたリクエストは書き換えない
func Rewrite(table rewrite.Table) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" || r.URL.ForceQuery {
				next.ServeHTTP(w, r)
				return
			}

			requested := r.URL.EscapedPath()
			resolved := table.Resolve(requested)
			if resolved == requested {
				next.ServeHTTP(w, r)
				return
			}

			r2 := new(http.Request)
			*r2 = *r
			r2.URL = new(url.URL)
			*r2.URL = *r.URL
			r2.URL.Path = resolved
			r2.URL.RawPath = ""

			next.ServeHTTP(w, r2)
		})
	}
}
