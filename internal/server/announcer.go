package server

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:generate mockgen -source announcer.go -destination mock/announcer.go

// Announcer は起動・停止をユーザーに知らせる
type Announcer interface {
	Started(banner Banner)
	Stopped()
	Failed(err error)
}

type Link struct {
	Name string
	URL  string
}

type Banner struct {
	URL   string
	Port  int
	Root  string
	Links []Link
}

func newBanner(port int, root string, routes []string) Banner {
	base := fmt.Sprintf("http://localhost:%d", port)
	title := cases.Title(language.English)

	links := make([]Link, 0, len(routes))
	for _, route := range routes {
		name := strings.Trim(route, "/")
		if name == "" {
			continue
		}
		links = append(links, Link{
			Name: title.String(name) + " page",
			URL:  base + route,
		})
	}

	return Banner{
		URL:   base,
		Port:  port,
		Root:  root,
		Links: links,
	}
}

// ConsoleAnnouncer は人が読むためのメッセージを書き出す
type ConsoleAnnouncer struct {
	out  io.Writer
	port int
}

var _ Announcer = (*ConsoleAnnouncer)(nil)

// port はバインド前に失敗した場合のメッセージに使う
func NewConsoleAnnouncer(out io.Writer, port int) *ConsoleAnnouncer {
	return &ConsoleAnnouncer{out: out, port: port}
}

func (c *ConsoleAnnouncer) Started(banner Banner) {
	fmt.Fprintf(c.out, "Serving website at %s\n", banner.URL)
	fmt.Fprintf(c.out, "Serving from: %s\n", banner.Root)
	for _, link := range banner.Links {
		fmt.Fprintf(c.out, "%s: %s\n", link.Name, link.URL)
	}
	fmt.Fprintln(c.out, "Press Ctrl+C to stop the server")
}

func (c *ConsoleAnnouncer) Stopped() {
	fmt.Fprintln(c.out, "\nServer stopped")
}

func (c *ConsoleAnnouncer) Failed(err error) {
	if errors.Is(err, ErrPortInUse) {
		fmt.Fprintf(c.out, "Port %d is already in use. Please stop the existing server or use a different port.\n", c.port)
		return
	}

	fmt.Fprintf(c.out, "Error starting server: %v\n", err)
}
