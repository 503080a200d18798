// Package ai resolves chat turns into assistant replies. External providers
// are tried in order and the rule set answers when none of them can.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"telebot/internal/domain"
	"telebot/internal/domain/models"
	"telebot/internal/domain/services"
)

// ResolverConfig holds the resolver's strategies and time limits
type ResolverConfig struct {
	Delegates []services.Responder
	Fallback  services.Responder
	// ProviderTimeout bounds a single delegate call
	ProviderTimeout time.Duration
	// Deadline bounds the delegate phase of one resolution; the fallback always runs
	Deadline time.Duration
	Logger   *slog.Logger
}

// Resolver implements services.AIResolver as a fallback chain
type Resolver struct {
	delegates       []services.Responder
	fallback        services.Responder
	providerTimeout time.Duration
	deadline        time.Duration
	logger          *slog.Logger
}

// NewResolver creates a resolver
func NewResolver(cfg *ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		delegates:       cfg.Delegates,
		fallback:        cfg.Fallback,
		providerTimeout: cfg.ProviderTimeout,
		deadline:        cfg.Deadline,
		logger:          logger,
	}
}

// Strategies lists the delegates in order followed by the fallback
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.delegates)+1)
	for _, d := range r.delegates {
		names = append(names, d.Name())
	}
	if r.fallback != nil {
		names = append(names, r.fallback.Name())
	}
	return names
}

// Resolve tries each delegate within the deadline, then the fallback.
// Delegate failures are logged and absorbed.
func (r *Resolver) Resolve(ctx context.Context, req *models.AIChatRequest) (*models.AIChatResponse, error) {
	start := time.Now()
	deadline := start.Add(r.deadline)

	for _, delegate := range r.delegates {
		remaining := time.Until(deadline)
		if r.deadline > 0 && remaining <= 0 {
			r.logger.Warn("response deadline reached, skipping remaining providers",
				"provider", delegate.Name(),
				"elapsed", time.Since(start),
			)
			break
		}
		if ctx.Err() != nil {
			break
		}

		timeout := r.providerTimeout
		if r.deadline > 0 && (timeout <= 0 || remaining < timeout) {
			timeout = remaining
		}

		resp, err := r.call(ctx, delegate, req, timeout)
		if err != nil {
			r.logger.Warn("ai provider failed",
				"provider", delegate.Name(),
				"error", err,
			)
			continue
		}

		r.logger.Info("ai response resolved",
			"strategy", delegate.Name(),
			"duration", time.Since(start),
			"files", len(resp.Files),
		)
		return resp, nil
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("%w: no strategy produced a reply", domain.ErrServiceUnavailable)
	}

	resp, err := r.call(ctx, r.fallback, req, 0)
	if err != nil {
		r.logger.Error("ai fallback failed", "strategy", r.fallback.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
	}

	r.logger.Info("ai response resolved",
		"strategy", r.fallback.Name(),
		"duration", time.Since(start),
		"files", len(resp.Files),
	)
	return resp, nil
}

type callResult struct {
	resp *models.AIChatResponse
	err  error
}

// call runs one strategy, bounded by timeout when positive. A strategy that
// ignores cancellation is abandoned once the timeout fires.
func (r *Resolver) call(ctx context.Context, responder services.Responder, req *models.AIChatRequest, timeout time.Duration) (*models.AIChatResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- callResult{err: fmt.Errorf("%w: %s panicked: %v", domain.ErrUpstreamUnavailable, responder.Name(), rec)}
			}
		}()
		resp, err := responder.Respond(ctx, req)
		done <- callResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if res.resp == nil {
			return nil, fmt.Errorf("%w: %s returned no response", domain.ErrUpstreamUnavailable, responder.Name())
		}
		if res.resp.Files == nil {
			res.resp.Files = map[string]string{}
		}
		return res.resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, responder.Name(), ctx.Err())
	}
}
