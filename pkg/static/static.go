package static

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// FileServer はサーバールート配下のファイルを返す http.Handler
// http.FileServer と違い "/index.html" を "./" へリダイレクトしないため、
// 書き換え後のパスとファイル名を直接指定したパスで同じレスポンスになる
type FileServer struct {
	root http.FileSystem
	dirs http.Handler
}

func NewFileServer(root http.FileSystem) *FileServer {
	return &FileServer{
		root: root,
		dirs: http.FileServer(root),
	}
}

func (f *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	name := path.Clean(upath)

	file, err := f.root.Open(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if info.IsDir() {
		f.dirs.ServeHTTP(w, r)
		return
	}

	if strings.HasSuffix(upath, "/") {
		http.NotFound(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		slog.ErrorContext(r.Context(), "failed to open file", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
