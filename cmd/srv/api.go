package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/droplabz/backend/pkg/errorx"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cliCtx *cli.Context) error {
	if err := s.load(cliCtx); err != nil {
		return err
	}

	mux := http.NewServeMux()

	handle(s, mux, "/createEvent", s.eventDomain.Create)
	handle(s, mux, "/getEvent", s.eventDomain.Get)
	handle(s, mux, "/getEvents", s.eventDomain.GetList)
	handle(s, mux, "/updateEvent", s.eventDomain.Update)
	handle(s, mux, "/transitionEvent", s.eventDomain.Transition)

	handle(s, mux, "/submitEntry", s.entryDomain.Submit)
	handle(s, mux, "/getEligibilitySnapshot", s.entryDomain.GetEligibilitySnapshot)
	handle(s, mux, "/getEntries", s.entryDomain.GetEntries)
	handle(s, mux, "/markIneligible", s.entryDomain.MarkIneligible)
	handle(s, mux, "/sweepDuplicates", s.entryDomain.SweepDuplicates)

	handle(s, mux, "/drawWinners", s.winnerDomain.Draw)
	handle(s, mux, "/promoteToWinner", s.winnerDomain.PromoteToWinner)
	handle(s, mux, "/getWinners", s.winnerDomain.GetWinners)

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", s.configs.ApiServer.Address())
	s.server = &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: mux,
	}

	if s.configs.ApiServer.Cert != "" {
		return s.server.ListenAndServeTLS(s.configs.ApiServer.Cert, s.configs.ApiServer.Key)
	}

	return s.server.ListenAndServe()
}

// handle binds one domain operation to a JSON-over-POST endpoint. The
// authenticated user id comes from the gateway in front of this service.
func handle[Request, Response any](
	s *srv, mux *http.ServeMux, pattern string,
	handler func(context.Context, *Request) (*Response, error),
) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ctx := s.ctx
		if userID := r.Header.Get("X-User-Id"); userID != "" {
			ctx = xcontext.WithRequestUserID(ctx, userID)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errorx.New(errorx.BadRequest, "Cannot decode request body"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			xerr := errorx.Unknown
			if !errors.As(err, &xerr) {
				xcontext.Logger(ctx).Errorf("Unexpected non-errorx error: %v", err)
			}

			writeError(w, xerr)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": resp})
	})
}

func writeError(w http.ResponseWriter, err errorx.Error) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    err.Code,
			"message": err.Message,
		},
	})
}
