// Package mcp serves the discovery and retrieval operations over a small HTTP tool interface.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/code4lm/internal/utils"
)

const (
	fallbackAddress        = "127.0.0.1:0"
	fallbackDrainTimeout   = 5 * time.Second
	fallbackBodyLimit      = 1 << 20
	readHeaderTimeout      = 10 * time.Second
	contentTypeHeader      = "Content-Type"
	contentTypeJSON        = "application/json"
	capabilitiesRoute      = "/capabilities"
	healthRoute            = "/"
	toolRoute              = "/commands/{tool}"
	toolRouteParameter     = "tool"
	unknownToolMessage     = "command not found"
	readBodyErrorFormat    = "read request body: %v"
	encodeErrorFormat      = "encode response: %v"
	serveErrorFormat       = "serve tool interface: %w"
	drainErrorFormat       = "shutdown tool interface: %w"
	listenErrorFormat      = "listen on %s: %w"
	toolFailedLogMessage   = "tool command failed"
	logFieldTool           = "command"
	logFieldRequestID      = "request_id"
	logFieldStatus         = "status"
	encodeFailedLogMessage = "tool response encoding failed"
)

// Capability names one tool and what it does.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Request is a tool invocation: the tool name taken from the route and the raw JSON body.
type Request struct {
	Tool string
	Body json.RawMessage
}

// Response is the JSON body returned by a successful tool invocation.
type Response struct {
	Output   string   `json:"output"`
	Format   string   `json:"format"`
	Files    []string `json:"files"`
	Denied   []string `json:"denied,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Tool handles invocations of one named command.
type Tool interface {
	Invoke(ctx context.Context, request Request) (Response, error)
}

// ToolFunc lets a plain function serve as a Tool.
type ToolFunc func(ctx context.Context, request Request) (Response, error)

// Invoke calls function.
func (function ToolFunc) Invoke(ctx context.Context, request Request) (Response, error) {
	return function(ctx, request)
}

// StatusError carries the HTTP status a tool failure is reported with.
type StatusError struct {
	Status int
	Err    error
}

func (statusError StatusError) Error() string {
	return statusError.Err.Error()
}

func (statusError StatusError) Unwrap() error {
	return statusError.Err
}

// Fail attaches status to err. A nil err stays nil.
func Fail(status int, err error) error {
	if err == nil {
		return nil
	}
	return StatusError{Status: status, Err: err}
}

// Config holds the listen address, the advertised capabilities and the tools keyed by command name.
type Config struct {
	Address      string
	Capabilities []Capability
	Tools        map[string]Tool
	// DrainTimeout bounds graceful shutdown once the run context ends.
	DrainTimeout time.Duration
	// MaxBodyBytes bounds request bodies; zero selects one mebibyte.
	MaxBodyBytes int64
	Logger       *zap.Logger
}

func (config Config) withDefaults() Config {
	if config.Address == "" {
		config.Address = fallbackAddress
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = fallbackDrainTimeout
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = fallbackBodyLimit
	}
	if config.Capabilities == nil {
		config.Capabilities = []Capability{}
	}
	if config.Tools == nil {
		config.Tools = map[string]Tool{}
	}
	config.Logger = utils.LoggerOrNop(config.Logger)
	return config
}

// Server routes tool invocations to their Tool.
type Server struct {
	config Config
}

// New returns a Server for config with unset fields defaulted.
func New(config Config) *Server {
	return &Server{config: config.withDefaults()}
}

type errorBody struct {
	Error string `json:"error"`
}

type capabilitiesBody struct {
	Capabilities []Capability `json:"capabilities"`
}

// Handler returns the chi router serving every route.
func (server *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer)
	router.Get(capabilitiesRoute, func(writer http.ResponseWriter, _ *http.Request) {
		server.respond(writer, http.StatusOK, capabilitiesBody{Capabilities: server.config.Capabilities})
	})
	router.Get(healthRoute, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	router.Post(toolRoute, server.invoke)
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		server.respond(writer, http.StatusNotFound, errorBody{Error: unknownToolMessage})
	})
	return router
}

// Serve listens on the configured address and serves until ctx ends, then drains open requests.
// onListen, when set, receives the bound address before the first request is accepted.
func (server *Server) Serve(ctx context.Context, onListen func(address string)) error {
	listener, listenError := net.Listen("tcp", server.config.Address)
	if listenError != nil {
		return fmt.Errorf(listenErrorFormat, server.config.Address, listenError)
	}
	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: readHeaderTimeout}
	if onListen != nil {
		onListen(listener.Addr().String())
	}

	group, groupContext := errgroup.WithContext(ctx)
	group.Go(func() error {
		if serveError := httpServer.Serve(listener); !errors.Is(serveError, http.ErrServerClosed) {
			return fmt.Errorf(serveErrorFormat, serveError)
		}
		return nil
	})
	group.Go(func() error {
		<-groupContext.Done()
		drainContext, cancel := context.WithTimeout(context.Background(), server.config.DrainTimeout)
		defer cancel()
		if drainError := httpServer.Shutdown(drainContext); drainError != nil && !errors.Is(drainError, http.ErrServerClosed) {
			return fmt.Errorf(drainErrorFormat, drainError)
		}
		return nil
	})
	return group.Wait()
}

func (server *Server) invoke(writer http.ResponseWriter, httpRequest *http.Request) {
	toolName := chi.URLParam(httpRequest, toolRouteParameter)
	tool, registered := server.config.Tools[toolName]
	if !registered {
		server.respond(writer, http.StatusNotFound, errorBody{Error: unknownToolMessage})
		return
	}

	body, readError := io.ReadAll(http.MaxBytesReader(writer, httpRequest.Body, server.config.MaxBodyBytes))
	if readError != nil {
		server.respond(writer, http.StatusBadRequest, errorBody{Error: fmt.Sprintf(readBodyErrorFormat, readError)})
		return
	}

	response, invokeError := tool.Invoke(httpRequest.Context(), Request{Tool: toolName, Body: body})
	if invokeError != nil {
		status := failureStatus(invokeError)
		server.config.Logger.Warn(toolFailedLogMessage,
			zap.String(logFieldTool, toolName),
			zap.String(logFieldRequestID, middleware.GetReqID(httpRequest.Context())),
			zap.Int(logFieldStatus, status),
			zap.Error(invokeError),
		)
		server.respond(writer, status, errorBody{Error: invokeError.Error()})
		return
	}
	if response.Files == nil {
		response.Files = []string{}
	}
	server.respond(writer, http.StatusOK, response)
}

// respond encodes value before touching the header so an encoding failure can still report 500.
func (server *Server) respond(writer http.ResponseWriter, status int, value interface{}) {
	encoded, encodeError := json.Marshal(value)
	if encodeError != nil {
		server.config.Logger.Error(encodeFailedLogMessage, zap.Error(encodeError))
		status = http.StatusInternalServerError
		encoded, _ = json.Marshal(errorBody{Error: fmt.Sprintf(encodeErrorFormat, encodeError)})
	}
	writer.Header().Set(contentTypeHeader, contentTypeJSON)
	writer.WriteHeader(status)
	_, _ = writer.Write(append(encoded, '\n'))
}

// failureStatus maps a tool error to its HTTP status: explicit statuses first, then cancellation.
func failureStatus(err error) int {
	var statusError StatusError
	switch {
	case errors.As(err, &statusError):
		return statusError.Status
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
