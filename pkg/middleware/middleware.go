package middleware

import "net/http"

type Middleware func(next http.Handler) http.Handler

// Chain はミドルウェアを順に合成する
// 先に追加したものほど外側で実行される
type Chain struct {
	middlewares []Middleware
}

func NewChain(middlewares ...Middleware) Chain {
	return Chain{middlewares: append([]Middleware(nil), middlewares...)}
}

// Use は元の Chain を変更せず、ミドルウェアを追加した新しい Chain を返す
func (c Chain) Use(middlewares ...Middleware) Chain {
	next := make([]Middleware, 0, len(c.middlewares)+len(middlewares))
	next = append(next, c.middlewares...)
	next = append(next, middlewares...)

	return Chain{middlewares: next}
}

func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}

	return h
}
