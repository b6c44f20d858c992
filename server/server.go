// Package server exposes task operations over HTTP and provides a client
// for them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"time"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
	"github.com/amonks/tasktracker/task"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id used to correlate a request with its log
// lines.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// Options configures a server.
type Options struct {
	Backend Backend
	Logger  *log.Logger

	// Location is used to read start times. Defaults to time.Local.
	Location *time.Location

	// Web, when set, is mounted under /web/.
	Web http.Handler
}

// Server handles task requests.
type Server struct {
	backend  Backend
	logger   *log.Logger
	location *time.Location
	web      http.Handler
}

type requestIDKey struct{}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "tt: ", log.LstdFlags)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Server{backend: opts.Backend, logger: logger, location: loc, web: opts.Web}, nil
}

// collection binds the routes of one kind to the backend.
type collection struct {
	name   string
	list   func(context.Context) ([]entityJSON, error)
	get    func(context.Context, int64) (entityJSON, error)
	create func(context.Context, entityJSON) (int64, error)
	update func(context.Context, entityJSON) error
	remove func(context.Context, int64) error
	clear  func(context.Context) error
}

func (s *Server) collections() []collection {
	b := s.backend
	return []collection{
		{
			name: "tasks",
			list: func(ctx context.Context) ([]entityJSON, error) {
				items, err := b.Tasks(ctx)
				return encodeEntities(items), err
			},
			get: func(ctx context.Context, id int64) (entityJSON, error) {
				item, err := b.TaskByID(ctx, id)
				return encodeEntity(item), err
			},
			create: func(ctx context.Context, in entityJSON) (int64, error) {
				item, err := in.task(task.KindTask, s.location)
				if err != nil {
					return 0, err
				}
				return b.CreateTask(ctx, &item)
			},
			update: func(ctx context.Context, in entityJSON) error {
				item, err := in.task(task.KindTask, s.location)
				if err != nil {
					return err
				}
				return b.UpdateTask(ctx, &item)
			},
			remove: b.DeleteTask,
			clear:  b.DeleteAllTasks,
		},
		{
			name: "epics",
			list: func(ctx context.Context) ([]entityJSON, error) {
				items, err := b.Epics(ctx)
				return encodeEntities(items), err
			},
			get: func(ctx context.Context, id int64) (entityJSON, error) {
				item, err := b.EpicByID(ctx, id)
				return encodeEntity(item), err
			},
			create: func(ctx context.Context, in entityJSON) (int64, error) {
				item, err := in.epic(s.location)
				if err != nil {
					return 0, err
				}
				return b.CreateEpic(ctx, &item)
			},
			update: func(ctx context.Context, in entityJSON) error {
				item, err := in.epic(s.location)
				if err != nil {
					return err
				}
				return b.UpdateEpic(ctx, &item)
			},
			remove: b.DeleteEpic,
			clear:  b.DeleteAllEpics,
		},
		{
			name: "subtasks",
			list: func(ctx context.Context) ([]entityJSON, error) {
				items, err := b.Subtasks(ctx)
				return encodeEntities(items), err
			},
			get: func(ctx context.Context, id int64) (entityJSON, error) {
				item, err := b.SubtaskByID(ctx, id)
				return encodeEntity(item), err
			},
			create: func(ctx context.Context, in entityJSON) (int64, error) {
				item, err := in.subtask(s.location)
				if err != nil {
					return 0, err
				}
				return b.CreateSubtask(ctx, &item)
			},
			update: func(ctx context.Context, in entityJSON) error {
				item, err := in.subtask(s.location)
				if err != nil {
					return err
				}
				return b.UpdateSubtask(ctx, &item)
			},
			remove: b.DeleteSubtask,
			clear:  b.DeleteAllSubtasks,
		},
	}
}

// Handler returns the HTTP handler for task requests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, c := range s.collections() {
		mux.HandleFunc("GET /"+c.name, s.handleList(c))
		mux.HandleFunc("POST /"+c.name, s.handleSave(c))
		mux.HandleFunc("DELETE /"+c.name, s.handleClear(c))
		mux.HandleFunc("GET /"+c.name+"/{id}", s.handleGet(c))
		mux.HandleFunc("DELETE /"+c.name+"/{id}", s.handleDelete(c))
	}
	mux.HandleFunc("GET /epics/{id}/subtasks", s.handleEpicSubtasks)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /prioritized", s.handlePrioritized)
	if s.web != nil {
		mux.Handle("/web/", s.web)
	}
	return s.requestIDHandler(s.recoverHandler(mux))
}

// Serve runs the server on the given address until it fails or the process
// is interrupted.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:     addr,
		Handler:  s.Handler(),
		ErrorLog: s.logger,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logf("listening on %s", addr)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logf("server stopped: %v", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logf("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) handleList(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.list(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// handleSave creates when the body has no id and updates otherwise.
func (s *Server) handleSave(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in entityJSON
		if err := decodeJSON(r, &in); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
		if in.ID == 0 {
			id, err := c.create(r.Context(), in)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusCreated, idResponse{ID: id})
			return
		}
		if err := c.update(r.Context(), in); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, idResponse{ID: in.ID})
	}
}

func (s *Server) handleClear(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.clear(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyResponse{})
	}
}

func (s *Server) handleGet(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		item, err := c.get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleDelete(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := c.remove(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emptyResponse{})
	}
}

func (s *Server) handleEpicSubtasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.backend.EpicSubtasks(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEntities(items))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.backend.History(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEntities(items))
}

func (s *Server) handlePrioritized(w http.ResponseWriter, r *http.Request) {
	items, err := s.backend.PrioritizedTasks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeEntities(items))
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", ErrBadRequest, raw)
	}
	return id, nil
}

func (s *Server) requestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if internalstrings.IsBlank(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logf("request %s: panic handling %s %s: %v\n%s", requestID(r), r.Method, r.URL.Path, recovered, debug.Stack())
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: internalCode})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	s.logRequestError(r, status, err)
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf("request %s: %s %s failed (%d): %v", requestID(r), r.Method, r.URL.Path, status, err)
}

func (s *Server) logf(format string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}
