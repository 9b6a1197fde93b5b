package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"gregoryjjb/carousel/closedlist"
)

type BuildInfo struct {
	Version    string    `json:"version"`
	CommitHash string    `json:"commit_hash"`
	BuiltAt    time.Time `json:"built_at"`
}

/////////////////////
// Response helpers

func RespondText(w http.ResponseWriter, body string) {
	w.Write([]byte(body))
}

func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	RespondText(w, message)
}

// errorStatus maps rotation and ring errors onto HTTP statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, closedlist.ErrInvalidStep),
		errors.Is(err, closedlist.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotMember):
		return http.StatusNotFound
	case errors.Is(err, ErrExists),
		errors.Is(err, closedlist.ErrEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Err(err).Msg("Request failed")
	}
	w.WriteHeader(status)
	RespondText(w, err.Error())
}

// stepParam reads the optional step query parameter, defaulting to 1.
func stepParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("step")
	if raw == "" {
		return 1, nil
	}
	step, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: step %q is not a number", ErrValidation, raw)
	}
	return step, nil
}

type joinRequest struct {
	Name  string `json:"name"`
	Index *int   `json:"index,omitempty"`
}

func NewRouter(rotation *Rotation, info BuildInfo) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware(&log.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, http.StatusOK, info)
		})

		r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Cache-Control", "no-cache, no-store")
			RespondJSON(w, http.StatusOK, rotation.State())
		})

		move := func(fn func(int) (Move, error)) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				step, err := stepParam(r)
				if err != nil {
					RespondError(w, err)
					return
				}

				m, err := fn(step)
				if err != nil {
					RespondError(w, err)
					return
				}

				RespondJSON(w, http.StatusOK, m)
			}
		}
		r.Post("/next", move(rotation.Advance))
		r.Post("/back", move(rotation.Rewind))

		r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, http.StatusOK, rotation.History())
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				RespondJSON(w, http.StatusOK, rotation.Members())
			})

			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				var req joinRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					RespondBadRequest(w, fmt.Sprintf("invalid body: %s", err))
					return
				}

				var err error
				if req.Index != nil {
					err = rotation.JoinAt(*req.Index, req.Name)
				} else {
					err = rotation.Join(req.Name)
				}
				if err != nil {
					RespondError(w, err)
					return
				}

				RespondJSON(w, http.StatusCreated, rotation.State())
			})

			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				rotation.Reset()
				w.WriteHeader(http.StatusNoContent)
			})

			r.Delete("/{name}", func(w http.ResponseWriter, r *http.Request) {
				if err := rotation.Leave(chi.URLParam(r, "name")); err != nil {
					RespondError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
		})

		r.Get("/events", createWebsocketHandler(rotation))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, config *Config, info BuildInfo, rotation *Rotation) error {
	srv := &http.Server{
		Addr:              config.Address(),
		Handler:           NewRouter(rotation, info),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", srv.Addr).Msg("Launching server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")

	// Websocket streams only end once their subscriptions close.
	rotation.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
