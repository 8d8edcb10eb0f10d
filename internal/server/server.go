package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/HMasataka/logging"
	"github.com/HMasataka/siteserve/internal/config"
	"github.com/HMasataka/siteserve/internal/handler"
	"github.com/HMasataka/siteserve/pkg/middleware"
	"github.com/HMasataka/siteserve/pkg/rewrite"
	"github.com/HMasataka/siteserve/pkg/static"
	"github.com/gammazero/workerpool"
)

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithAnnouncer(announcer Announcer) Option {
	return func(s *Server) {
		s.announcer = announcer
	}
}

func WithRewriteTable(table rewrite.Table) Option {
	return func(s *Server) {
		s.table = table
	}
}

type Server struct {
	cfg       config.Config
	table     rewrite.Table
	logger    *slog.Logger
	announcer Announcer

	pool       *workerpool.WorkerPool
	handler    http.Handler
	httpServer *http.Server
	listener   net.Listener

	closeOnce sync.Once
}

// New は cfg.Site.Root が存在するディレクトリであることを確認してからサーバーを組み立てる
func New(cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}

	info, err := os.Stat(cfg.Site.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnavailable, cfg.Site.Root)
	}

	s := &Server{
		cfg:       cfg,
		table:     rewrite.Default(),
		logger:    slog.New(logging.NewHandler(slog.Default().Handler())),
		announcer: NewConsoleAnnouncer(io.Discard, cfg.Server.Port),
	}

	for _, opt := range opts {
		opt(s)
	}

	if cfg.Server.Workers > 0 {
		s.pool = workerpool.New(cfg.Server.Workers)
	}

	s.handler = s.newHandler()
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: cfg.Timeouts.ReadHeaderTimeout(),
		ReadTimeout:       cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       cfg.Timeouts.IdleTimeout(),
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	return s, nil
}

// CORS -> AccessLog -> Limit -> Rewrite -> router -> static
func (s *Server) newHandler() http.Handler {
	chain := middleware.NewChain(
		middleware.CORS(middleware.DefaultCORSHeaders()),
		middleware.AccessLog(s.logger),
	)

	if s.pool != nil {
		chain = chain.Use(middleware.Limit(s.pool))
	}

	chain = chain.Use(middleware.Rewrite(s.table))

	site := static.NewFileServer(http.Dir(s.cfg.Site.Root))

	return chain.Then(handler.NewRouter(site))
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		if isAddrInUse(err) {
			return fmt.Errorf("%w: %w", ErrPortInUse, err)
		}
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}

	s.listener = ln

	return nil
}

// Addr は Listen 前なら nil
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}

	return s.listener.Addr()
}

func (s *Server) Banner() Banner {
	port := s.cfg.Server.Port
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	return newBanner(port, s.cfg.Site.Root, s.table.Routes())
}

// Serve は ctx がキャンセルされるまでブロックする
// キャンセル時は処理中のリクエストを待たずに閉じる
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("%w: not listening", ErrStartup)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server...")
		err := s.Close()
		<-errCh
		return err
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		s.logger.Error("failed to listen", slog.String("addr", s.cfg.Addr()), slog.String("error", err.Error()))
		s.announcer.Failed(err)
		return err
	}

	s.logger.Info("server starting", slog.String("addr", s.Addr().String()), slog.String("root", s.cfg.Site.Root))
	s.announcer.Started(s.Banner())

	if err := s.Serve(ctx); err != nil {
		s.logger.Error("server error", slog.String("error", err.Error()))
		s.announcer.Failed(err)
		return err
	}

	s.announcer.Stopped()

	return nil
}

func (s *Server) Close() error {
	var err error

	s.closeOnce.Do(func() {
		err = s.httpServer.Close()
		if s.listener != nil {
			s.listener.Close()
		}
		if s.pool != nil {
			s.pool.StopWait()
		}
	})

	return err
}
