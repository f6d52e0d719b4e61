// Package web is a small application shell on top of gin. Handlers return
// errors instead of writing them, and middleware wraps handlers rather than
// the gin chain.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles a single http request.
type Handler func(c *Context) error

// Middleware wraps a Handler with extra behaviour.
type Middleware func(Handler) Handler

// App is the entrypoint into the application. It embeds the gin engine so
// raw gin routes and middleware can still be registered.
type App struct {
	*gin.Engine
	log *slog.Logger
	mw  []Middleware
}

// NewApp creates an App with the middleware applied to every Handler.
func NewApp(log *slog.Logger, mw ...Middleware) *App {
	if log == nil {
		log = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &App{
		Engine: engine,
		log:    log,
		mw:     mw,
	}
}

// Log returns the application logger.
func (a *App) Log() *slog.Logger {
	return a.log
}

// Handle attaches a Handler to a method and path. Route middleware runs
// inside the application middleware.
func (a *App) Handle(method string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)
	handler = wrapMiddleware(a.mw, handler)

	a.Engine.Handle(method, path, func(gc *gin.Context) {
		c := &Context{
			Context: gc,
			Ctx:     gc.Request.Context(),
			TraceID: uuid.NewString(),
			log:     a.log,
		}

		if err := handler(c); err != nil {
			a.log.Error("unhandled error", "trace_id", c.TraceID, "path", path, "error", err)
			if !gc.Writer.Written() {
				gc.JSON(http.StatusInternalServerError, errorBody(http.StatusText(http.StatusInternalServerError), nil))
			}
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, handler, mw...)
}

// wrapMiddleware wraps the handler so the first middleware in the slice is
// the first one executed.
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if h := mw[i]; h != nil {
			handler = h(handler)
		}
	}

	return handler
}
