// Package api serves the practice engine as a small JSON API.
package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mandaact/internal/engine"
)

// UserHeader selects the user a request acts for. Requests without it act
// for the configured default user.
const UserHeader = "X-User-ID"

type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type Options struct {
	UserID   string
	Location *time.Location
	Logger   Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

type Server struct {
	svc      *engine.Service
	app      *fiber.App
	validate *validator.Validate
	userID   string
	loc      *time.Location
	log      Logger
	now      func() time.Time
}

func New(svc *engine.Service, opts Options) *Server {
	s := &Server{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		userID:   opts.UserID,
		loc:      opts.Location,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "mandaact",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(s.requestLog)
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Post("/suggest", s.suggest)
	api.Get("/today", s.today)
	api.Get("/actions", s.listActions)
	api.Post("/actions", s.addAction)
	api.Post("/actions/:id/check", s.check)
	api.Delete("/actions/:id/check", s.uncheck)
	api.Get("/stats", s.stats)
	api.Get("/multipliers", s.multipliers)
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLog runs the handler, resolves its error into a response and logs
// one line with the final status.
func (s *Server) requestLog(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			return herr
		}
	}
	s.log.Printf("api %s %s status=%d dur=%s", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start).Round(time.Microsecond))
	return nil
}

func (s *Server) user(c *fiber.Ctx) (string, error) {
	if id := strings.TrimSpace(c.Get(UserHeader)); id != "" {
		return id, nil
	}
	if s.userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "missing "+UserHeader+" header")
	}
	return s.userID, nil
}

func (s *Server) clock() time.Time {
	return s.now().In(s.loc)
}

// errorHandler maps engine errors onto HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var (
		fe           *fiber.Error
		invalid      engine.ValidationError
		notFound     engine.NotFoundError
		notCheckable engine.NotCheckableError
		checked      engine.AlreadyCheckedError
		unchecked    engine.NotCheckedError
		completed    engine.MissionCompletedError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &invalid), errors.As(err, &notCheckable):
		code = fiber.StatusBadRequest
	case errors.As(err, &notFound):
		code = fiber.StatusNotFound
	case errors.As(err, &checked), errors.As(err, &unchecked), errors.As(err, &completed):
		code = fiber.StatusConflict
	}
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
