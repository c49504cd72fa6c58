// Package assistance implements the assistance-broker collaborator
// contract: route a help request to federation, a peer agent, or human
// escalation, and report which route actually served it.
package assistance

import (
	"context"

	"github.com/Mindburn-Labs/fck/pkg/contracts"
)

// Broker is the assistance collaborator contract.
type Broker interface {
	RequestAssistance(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error)
}

// Router is a Broker that tries a fixed, ordered list of routes and
// returns the first one that succeeds. It does not retry within a
// route; bounding retry attempts is the kernel's concern, not the
// broker's (manifest.assistance.max_attempts is advisory metadata, see
// pkg/kernel).
type Router struct {
	routes []routeHandler
}

type routeHandler struct {
	route   contracts.AssistanceRoute
	handler RouteHandler
}

// RouteHandler serves a single assistance route.
type RouteHandler interface {
	Handle(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error)
}

// NewRouter builds an empty Router. It tries routes in the order they
// were first registered, and only routes with a registered handler.
func NewRouter() *Router {
	return &Router{}
}

// Register binds a handler to a route. Calling Register again for the
// same route replaces the previous handler.
func (r *Router) Register(route contracts.AssistanceRoute, handler RouteHandler) *Router {
	for i, rh := range r.routes {
		if rh.route == route {
			r.routes[i].handler = handler
			return r
		}
	}
	r.routes = append(r.routes, routeHandler{route: route, handler: handler})
	return r
}

func (r *Router) RequestAssistance(ctx context.Context, req contracts.AssistanceRequest) (contracts.AssistanceResponse, error) {
	var lastErr string
	for _, rh := range r.routes {
		resp, err := rh.handler.Handle(ctx, req)
		if err != nil {
			lastErr = err.Error()
			continue
		}
		if resp.OK {
			resp.RouteUsed = rh.route
			return resp, nil
		}
		lastErr = resp.Error
	}
	return contracts.AssistanceResponse{OK: false, Error: lastErr}, nil
}
