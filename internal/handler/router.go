package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter は GET と HEAD を site に振り分ける
// OPTIONS はプリフライト応答として 204、それ以外のメソッドは 501 を返す
// パスの正規化は site 側に任せ、ルーターではリダイレクトしない
func NewRouter(site http.Handler) *mux.Router {
	router := mux.NewRouter().SkipClean(true)

	router.Methods(http.MethodOptions).HandlerFunc(Preflight)
	router.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).Handler(site)

	router.MethodNotAllowedHandler = http.HandlerFunc(NotImplemented)

	return router
}

func Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func NotImplemented(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "501 Unsupported method ("+r.Method+")", http.StatusNotImplemented)
}
