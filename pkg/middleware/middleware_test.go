package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HMasataka/logging"
	"github.com/HMasataka/siteserve/pkg/middleware"
	"github.com/HMasataka/siteserve/pkg/rewrite"
	"github.com/gammazero/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string, order *[]string) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain(t *testing.T) {
	t.Run("先に追加したものが外側", func(t *testing.T) {
		var order []string
		h := middleware.NewChain(tag("a", &order), tag("b", &order)).
			Use(tag("c", &order)).
			Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "handler")
			}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
	})

	t.Run("Useは元のChainを変更しない", func(t *testing.T) {
		var order []string
		base := middleware.NewChain(tag("a", &order))
		extended := base.Use(tag("b", &order))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		base.Then(h).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, []string{"a"}, order)

		order = nil
		extended.Then(h).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, []string{"a", "b"}, order)
	})

	t.Run("空のChain", func(t *testing.T) {
		called := false
		h := middleware.NewChain().Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, called)
	})
}

func TestCORS(t *testing.T) {
	cors := middleware.CORS(middleware.DefaultCORSHeaders())

	assertCORS := func(t *testing.T, h http.Header) {
		t.Helper()
		assert.Equal(t, []string{"*"}, h.Values(middleware.HeaderAllowOrigin))
		assert.Equal(t, []string{"GET, POST, OPTIONS"}, h.Values(middleware.HeaderAllowMethods))
		assert.Equal(t, []string{"Content-Type"}, h.Values(middleware.HeaderAllowHeaders))
	}

	t.Run("成功レスポンス", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assertCORS(t, rec.Header())
	})

	t.Run("エラーレスポンス", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cors(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assertCORS(t, rec.Header())
	})

	t.Run("内側で追加されても重複しない", func(t *testing.T) {
		rec := httptest.NewRecorder()
		cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(middleware.HeaderAllowOrigin, "*")
		})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assertCORS(t, rec.Header())
	})
}

func TestRewrite(t *testing.T) {
	var seen string
	h := middleware.Rewrite(rewrite.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	}))

	cases := []struct {
		target string
		want   string
	}{
		{"/", "/index.html"},
		{"/help", "/help.html"},
		{"/about", "/about.html"},
		{"/status", "/status.html"},
		{"/help?lang=ja", "/help"},
		{"/?a=b", "/"},
		{"/help?", "/help"},
		{"/hel%70", "/help"},
		{"/help/", "/help/"},
		{"/index.html", "/index.html"},
		{"/img/logo.png", "/img/logo.png"},
	}

	for _, c := range cases {
		t.Run(c.target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, c.target, nil)
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, c.want, seen)
		})
	}

	t.Run("元のリクエストは変更しない", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/about", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "/about.html", seen)
		assert.Equal(t, "/about", req.URL.Path)
	})
}

func decodeLines(t *testing.T, b []byte) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(b), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		entries = append(entries, entry)
	}

	return entries
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(slog.NewJSONHandler(&buf, nil)))

	h := middleware.AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, logging.HasLoggingContext(r.Context()))
		logger.InfoContext(r.Context(), "file lookup")

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/nope.html", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := decodeLines(t, buf.Bytes())
	require.Len(t, entries, 2)

	t.Run("内側のログにもcontextの値が出る", func(t *testing.T) {
		inner := entries[0]
		assert.Equal(t, "file lookup", inner["msg"])
		assert.Equal(t, "GET", inner["method"])
		assert.Equal(t, req.RemoteAddr, inner["remote"])
	})

	t.Run("アクセスログ", func(t *testing.T) {
		entry := entries[1]
		assert.Equal(t, "request served", entry["msg"])
		assert.Equal(t, "GET", entry["method"])
		assert.Equal(t, req.RemoteAddr, entry["remote"])
		assert.Equal(t, "/nope.html", entry["path"])
		assert.EqualValues(t, http.StatusNotFound, entry["status"])
		assert.EqualValues(t, len("missing"), entry["bytes"])
	})

	t.Run("WriteHeaderなしは200", func(t *testing.T) {
		buf.Reset()
		h := middleware.AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, strings.Contains(buf.String(), `"status":200`))
	})
}

func TestLimit(t *testing.T) {
	t.Run("ワーカー数1では同時に1件だけ処理する", func(t *testing.T) {
		pool := workerpool.New(1)
		defer pool.StopWait()

		var running, maxRunning int32
		h := middleware.Limit(pool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			w.WriteHeader(http.StatusNoContent)
		}))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, http.StatusNoContent, rec.Code)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	})

	t.Run("panicは呼び出し元に伝わる", func(t *testing.T) {
		pool := workerpool.New(2)
		defer pool.StopWait()

		h := middleware.Limit(pool)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		assert.PanicsWithValue(t, "boom", func() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}
