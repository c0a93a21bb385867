// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/aulagate/internal/platform/apperr"
	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
	"github.com/taibuivan/aulagate/internal/platform/middleware"
	requestutil "github.com/taibuivan/aulagate/internal/platform/request"
	"github.com/taibuivan/aulagate/internal/platform/respond"
	"github.com/taibuivan/aulagate/internal/platform/sec"
	"github.com/taibuivan/aulagate/internal/platform/validate"
	"github.com/taibuivan/aulagate/internal/session"
	"github.com/taibuivan/aulagate/pkg/slice"
)

// Handler implements the navigation HTTP endpoints.
type Handler struct {
	navigator *Navigator
}

// NewHandler constructs a new [Handler].
func NewHandler(navigator *Navigator) *Handler {
	return &Handler{navigator: navigator}
}

// Routes returns a [chi.Router] configured with navigation routes.
//
// # Endpoints
//   - GET /decide?to=&from= : Where a transition would settle, without committing it.
//   - GET /routes           : The route table (super users only).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/decide", handler.decide)
	router.With(middleware.RequireRole(sec.RoleSuperUser)).Get("/routes", handler.routes)

	return router
}

// # Presentation

// routeView is the JSON shape of a [RouteDescriptor].
type routeView struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	RequiresAuth bool     `json:"requires_auth"`
	Roles        []string `json:"roles,omitempty"`
	Redirect     string   `json:"redirect,omitempty"`
	Guarded      bool     `json:"guarded,omitempty"`
}

func viewRoute(route RouteDescriptor) routeView {
	view := routeView{
		Name:         route.Name,
		Path:         route.Path,
		RequiresAuth: route.RequiresAuth,
		Redirect:     route.Redirect,
		Guarded:      route.BeforeEnter != nil,
		Roles:        slice.Map(route.Roles, sec.Role.String),
	}
	return view
}

// decisionView is the JSON shape of a transition outcome.
type decisionView struct {
	To        string            `json:"to"`
	From      string            `json:"from"`
	Route     string            `json:"route"`
	Params    map[string]string `json:"params"`
	Verdict   string            `json:"verdict"`
	Reason    string            `json:"reason"`
	Target    string            `json:"target,omitempty"`
	Settled   string            `json:"settled"`
	Redirects []string          `json:"redirects"`
}

func viewOutcome(requested Target, outcome Outcome, from string) decisionView {
	view := decisionView{
		To:        outcome.Requested,
		From:      from,
		Route:     requested.Route.Name,
		Params:    requested.Params,
		Verdict:   outcome.First.Verdict.String(),
		Reason:    string(outcome.First.Reason),
		Target:    outcome.First.Target,
		Settled:   outcome.Target.Path,
		Redirects: outcome.Redirects,
	}
	if view.Params == nil {
		view.Params = map[string]string{}
	}
	if view.Redirects == nil {
		view.Redirects = []string{}
	}
	return view
}

// navigationError maps navigator errors to [apperr.AppError] values.
func navigationError(err error) error {
	switch {
	case errors.Is(err, ErrSuperseded):
		return apperr.Conflict("Navigation superseded by a newer request")
	case errors.Is(err, ErrDenied):
		return apperr.Forbidden("No page available for this session")
	case errors.Is(err, ErrRedirectLoop):
		return apperr.Internal(err)
	default:
		return err
	}
}

// # Endpoints

// decide handles GET /api/v1/navigation/decide.
//
// Nothing is committed: the last visited page is left unchanged. An expired
// session is still cleared, as it would be on any other check.
func (handler *Handler) decide(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	to := requestutil.Query(request, "to")
	from := requestutil.Query(request, "from")

	validator := &validate.Validator{}
	validator.Required("to", to).Path("to", to)
	if from != "" {
		validator.Path("from", from)
	}
	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	service := session.FromContext(ctx)
	if service == nil {
		respond.Error(writer, request, apperr.Internal(errors.New("navigation: client session middleware not mounted")))
		return
	}

	outcome, err := handler.navigator.Navigate(ctx, ctxutil.GetClientID(ctx), service, to, from)
	if err != nil {
		respond.Error(writer, request, navigationError(err))
		return
	}

	requested := handler.navigator.Table().Resolve(to)
	respond.OK(writer, viewOutcome(requested, outcome, from))
}

// routes handles GET /api/v1/navigation/routes.
func (handler *Handler) routes(writer http.ResponseWriter, request *http.Request) {
	routes := handler.navigator.Table().Routes()

	views := make([]routeView, 0, len(routes))
	for _, route := range routes {
		views = append(views, viewRoute(route))
	}

	respond.OK(writer, views)
}

// # Pages

/*
Pages serves every application page through the navigator.

# Flow
 1. Run the transition from the client's last committed page.
 2. Redirect with 302 when it settled elsewhere.
 3. Commit the page as the client's last one.
 4. Serve shell, or the route descriptor as JSON when shell is nil.
*/
func Pages(navigator *Navigator, shell http.Handler) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		service := session.FromContext(ctx)
		if service == nil {
			respond.Error(writer, request, apperr.Internal(errors.New("navigation: client session middleware not mounted")))
			return
		}
		store := service.Store()

		// ── 1. Transition ─────────────────────────────────────────────────
		from, _ := store.Scratch(ctx, constants.ScratchLastPath)

		outcome, err := navigator.Navigate(ctx, ctxutil.GetClientID(ctx), service, request.URL.Path, from)
		if err != nil {
			respond.Error(writer, request, navigationError(err))
			return
		}

		// ── 2. Redirect ───────────────────────────────────────────────────
		if outcome.Target.Path != request.URL.Path {
			http.Redirect(writer, request, outcome.Target.Path, http.StatusFound)
			return
		}

		// ── 3. Commit ─────────────────────────────────────────────────────
		if err := store.SetScratch(ctx, constants.ScratchLastPath, outcome.Target.Path); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "navigation_commit_failed", slog.Any("error", err))
		}

		// ── 4. Render ─────────────────────────────────────────────────────
		if shell != nil {
			shell.ServeHTTP(writer, request)
			return
		}

		respond.OK(writer, map[string]any{
			"route":  viewRoute(outcome.Target.Route),
			"params": outcome.Target.Params,
		})
	}
}
