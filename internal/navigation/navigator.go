// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/taibuivan/aulagate/internal/platform/constants"
	"github.com/taibuivan/aulagate/internal/platform/ctxutil"
)

var (
	// ErrSuperseded is returned when a newer transition for the same client
	// started before this one settled. Its outcome must not be applied.
	ErrSuperseded = errors.New("navigation: superseded by a newer transition")

	// ErrRedirectLoop is returned when a transition keeps redirecting.
	ErrRedirectLoop = errors.New("navigation: too many redirects")

	// ErrDenied is returned when a guard refuses a page and points back at
	// that same page, leaving nowhere to settle.
	ErrDenied = errors.New("navigation: denied with no page to fall back to")
)

// TransitionObserver is notified when a transition ends.
type TransitionObserver interface {
	ObserveTransition(outcome string, hops int)
}

// Transition outcome labels.
const (
	OutcomeSettled    = "settled"
	OutcomeSuperseded = "superseded"
	OutcomeLoop       = "loop"
	OutcomeCanceled   = "canceled"
	OutcomeDenied     = "denied"
)

// Outcome is where a transition settled.
type Outcome struct {
	// Requested is the path the transition started with.
	Requested string
	// Target is the page that was finally allowed.
	Target Target
	// First is the decision taken for the requested path.
	First Decision
	// Redirects lists every path the transition was sent to, in order.
	Redirects []string
}

// Redirected reports whether the settled page differs from the requested one.
func (outcome Outcome) Redirected() bool {
	return len(outcome.Redirects) > 0
}

// Hops is the number of redirects followed.
func (outcome Outcome) Hops() int {
	return len(outcome.Redirects)
}

// # Navigator

// Navigator runs transitions through the route table and the guards.
//
// Transitions of different clients are independent. For one client, only
// the most recently started transition may settle.
type Navigator struct {
	table    *Table
	guard    GuardFunc
	observer TransitionObserver

	sequence atomic.Uint64
	mu       sync.Mutex
	latest   map[string]uint64
}

// NewNavigator creates a new [Navigator]. A nil observer is allowed.
func NewNavigator(table *Table, guard GuardFunc, observer TransitionObserver) *Navigator {
	return &Navigator{
		table:    table,
		guard:    guard,
		observer: observer,
		latest:   map[string]uint64{},
	}
}

// Table returns the route table.
func (navigator *Navigator) Table() *Table {
	return navigator.table
}

/*
Navigate runs the transition of clientID from "from" to path.

# Flow
 1. Register the transition as the client's newest.
 2. Resolve the path; a route redirect is followed without guarding.
 3. Run the global guard, then the route's BeforeEnter guard.
 4. Follow redirects until a page is allowed, at most MaxRedirectHops times.
    A redirect back to the page just refused ends the transition.
 5. Settle only if no newer transition started meanwhile.

Returns:
  - Outcome: The settled page and the redirects taken
  - error: ErrSuperseded, ErrRedirectLoop, ErrDenied or the context error
*/
func (navigator *Navigator) Navigate(ctx context.Context, clientID string, sessions Sessions, path, from string) (Outcome, error) {

	// ── 1. Registration ───────────────────────────────────────────────────
	ticket := navigator.begin(clientID)
	defer navigator.end(clientID, ticket)

	outcome := Outcome{Requested: normalize(path)}
	current := outcome.Requested

	for hop := 0; ; hop++ {
		if err := ctx.Err(); err != nil {
			navigator.observe(OutcomeCanceled, outcome)
			return outcome, err
		}
		if !navigator.isLatest(clientID, ticket) {
			navigator.observe(OutcomeSuperseded, outcome)
			return outcome, ErrSuperseded
		}
		if hop > constants.MaxRedirectHops {
			navigator.observe(OutcomeLoop, outcome)
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "navigation_redirect_loop",
				slog.String("requested", outcome.Requested),
				slog.Any("redirects", outcome.Redirects),
			)
			return outcome, fmt.Errorf("%w: %s after %d hops", ErrRedirectLoop, outcome.Requested, constants.MaxRedirectHops)
		}

		// ── 2. Resolution ─────────────────────────────────────────────────
		target := navigator.table.Resolve(current)

		var decision Decision
		if target.Route.Redirect != "" {
			decision = redirect(target.Route.Redirect, ReasonRouteRedirect)
		} else {

			// ── 3. Guards ─────────────────────────────────────────────────
			decision = navigator.guard(ctx, sessions, target, from)
			if decision.Allowed() && target.Route.BeforeEnter != nil {
				decision = target.Route.BeforeEnter(ctx, sessions, target, from)
			}
		}

		if hop == 0 {
			outcome.First = decision
		}

		// ── 4. Settle or Follow ───────────────────────────────────────────
		if !decision.Allowed() && normalize(decision.Target) == current {
			navigator.observe(OutcomeDenied, outcome)
			ctxutil.GetLogger(ctx).WarnContext(ctx, "navigation_dead_end",
				slog.String("requested", outcome.Requested),
				slog.String("path", current),
				slog.String("reason", string(decision.Reason)),
			)
			return outcome, fmt.Errorf("%w: %s (%s)", ErrDenied, current, decision.Reason)
		}

		if decision.Allowed() {
			if !navigator.isLatest(clientID, ticket) {
				navigator.observe(OutcomeSuperseded, outcome)
				return outcome, ErrSuperseded
			}
			outcome.Target = target
			navigator.observe(OutcomeSettled, outcome)
			return outcome, nil
		}

		current = normalize(decision.Target)
		outcome.Redirects = append(outcome.Redirects, current)
	}
}

func (navigator *Navigator) begin(clientID string) uint64 {
	ticket := navigator.sequence.Add(1)

	navigator.mu.Lock()
	navigator.latest[clientID] = ticket
	navigator.mu.Unlock()

	return ticket
}

func (navigator *Navigator) end(clientID string, ticket uint64) {
	navigator.mu.Lock()
	if navigator.latest[clientID] == ticket {
		delete(navigator.latest, clientID)
	}
	navigator.mu.Unlock()
}

func (navigator *Navigator) isLatest(clientID string, ticket uint64) bool {
	navigator.mu.Lock()
	defer navigator.mu.Unlock()
	return navigator.latest[clientID] == ticket
}

func (navigator *Navigator) observe(outcome string, result Outcome) {
	if navigator.observer != nil {
		navigator.observer.ObserveTransition(outcome, result.Hops())
	}
}
