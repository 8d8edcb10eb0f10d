package middleware

import (
	"net/http"

	"github.com/gammazero/workerpool"
)

// Limit はリクエストを pool 上で実行し、同時に処理するリクエスト数を制限する
// ワーカー数1のプールでは1リクエストずつ順番に処理される
func Limit(pool *workerpool.WorkerPool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var recovered any

			pool.SubmitWait(func() {
				defer func() {
					recovered = recover()
				}()

				next.ServeHTTP(w, r)
			})

			// 呼び出し元の goroutine で panic し直す
			if recovered != nil {
				panic(recovered)
			}
		})
	}
}
