package rewrite

import (
	"slices"

	"github.com/samber/lo"
)

// Table はリクエストパスからサーバールート配下のファイル名への固定の対応表
// 生成後は変更されない
type Table struct {
	routes map[string]string
}

// Default は標準のルーティング表を返す
func Default() Table {
	return New(map[string]string{
		"/":       "index.html",
		"/help":   "help.html",
		"/about":  "about.html",
		"/status": "status.html",
	})
}

// New は routes をコピーして Table を作る
func New(routes map[string]string) Table {
	copied := make(map[string]string, len(routes))
	for route, file := range routes {
		copied[route] = file
	}

	return Table{routes: copied}
}

// Lookup は完全一致でのみ照合する
func (t Table) Lookup(path string) (string, bool) {
	file, ok := t.routes[path]
	return file, ok
}

// Resolve は一致すれば "/<file>" を、しなければ path をそのまま返す
func (t Table) Resolve(path string) string {
	file, ok := t.Lookup(path)
	if !ok {
		return path
	}

	return "/" + file
}

func (t Table) Routes() []string {
	routes := lo.Keys(t.routes)
	slices.Sort(routes)

	return routes
}
