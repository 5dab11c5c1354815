// Package router implements the top-level request control flow: it
// validates input, checks rate limits, builds per-request context,
// selects agents via intent matching, executes them concurrently under
// per-agent timeouts, and synthesizes one audited response.
//
// The state machine per request is received, validated, rate-checked,
// context-built, agents-selected, agents-executing, results-synthesized,
// response-returned. Any failure short-circuits to a response carrying
// success=false and the provenance collected so far; the router never
// lets a fault escape its boundary.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/nexusd/internal/config"
	"github.com/fyrsmithlabs/nexusd/internal/logging"
	"github.com/fyrsmithlabs/nexusd/internal/memory"
	"github.com/fyrsmithlabs/nexusd/internal/nexus"
	"github.com/fyrsmithlabs/nexusd/internal/provenance"
	"github.com/fyrsmithlabs/nexusd/internal/ratelimit"
	"github.com/fyrsmithlabs/nexusd/internal/registry"
	"github.com/fyrsmithlabs/nexusd/internal/safety"
)

// Options wires the router's dependencies. Registry, Limiter, Safety,
// Memories, Ranker, and Provenance are required.
type Options struct {
	Config     config.RouterConfig
	Registry   *registry.Registry
	Limiter    *ratelimit.Limiter
	Safety     *safety.Pipeline
	Memories   *memory.Store
	Ranker     *memory.Ranker
	Provenance *provenance.Tracker
	Logger     *logging.Logger
	Tracer     trace.Tracer
}

// Router orchestrates request processing across agents.
type Router struct {
	cfg      config.RouterConfig
	registry *registry.Registry
	limiter  *ratelimit.Limiter
	safety   *safety.Pipeline
	memories *memory.Store
	ranker   *memory.Ranker
	prov     *provenance.Tracker
	logger   *logging.Logger
	tracer   trace.Tracer
	metrics  *routerMetrics
	now      func() time.Time
}

// New creates a router from options.
func New(opts Options) (*Router, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if opts.Safety == nil {
		return nil, fmt.Errorf("safety pipeline is required")
	}
	if opts.Memories == nil || opts.Ranker == nil {
		return nil, fmt.Errorf("memory store and ranker are required")
	}
	if opts.Provenance == nil {
		return nil, fmt.Errorf("provenance tracker is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	return &Router{
		cfg:      opts.Config,
		registry: opts.Registry,
		limiter:  opts.Limiter,
		safety:   opts.Safety,
		memories: opts.Memories,
		ranker:   opts.Ranker,
		prov:     opts.Provenance,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
		metrics:  newRouterMetrics(opts.Logger.Underlying()),
		now:      time.Now,
	}, nil
}

// Handle processes one request end to end. It always returns a
// structured response, never an error.
func (r *Router) Handle(ctx context.Context, req *nexus.Request) *nexus.Response {
	start := r.now()
	ctx, span := r.tracer.Start(ctx, "router.handle")
	defer span.End()

	root := r.prov.Start(req.ID, "router", "route").Input(truncate(req.Prompt, 200))

	var warnings []string

	// validated
	if err := req.Validate(r.cfg.MaxPromptLength); err != nil {
		return r.fail(ctx, req, root, start, "invalid",
			fmt.Sprintf("I couldn't process that request: %v", err), err, warnings)
	}
	ctx = logging.WithRequestID(ctx, req.ID)
	if w := req.TrimHistory(r.cfg.MaxHistoryMessages); w != "" {
		warnings = append(warnings, w)
	}

	userID := resolveUserID(req)

	// rate-checked
	if d := r.limiter.Allow(userID); !d.Allowed {
		r.metrics.recordRateLimited(ctx, d.Scope)
		warnings = append(warnings, fmt.Sprintf("retry after %dms", d.RetryAfterMS()))
		return r.fail(ctx, req, root, start, "rate_limited",
			fmt.Sprintf("You're sending requests too quickly: %s.", d.Reason()), nexus.ErrRateLimited, warnings)
	}

	// context-built
	reqCtx := r.buildContext(req, userID)
	r.logger.Debug(ctx, "request context built",
		zap.String("user_id", userID),
		zap.Int("memories", len(reqCtx.Memories)),
		zap.Int("safety_tier", int(reqCtx.SafetyTier)),
	)

	// agents-selected
	agents, err := r.selectAgents(req)
	if err != nil {
		return r.fail(ctx, req, root, start, "invalid",
			fmt.Sprintf("I couldn't route that request: %v", err), err, warnings)
	}

	// agents-executing
	results := r.executeAgents(ctx, req, reqCtx, agents, root.ID())

	// results-synthesized
	resp := r.synthesize(ctx, req, start, agents, results, root, warnings)
	r.metrics.recordRequest(ctx, outcomeOf(resp), r.now().Sub(start))
	return resp
}

// fail short-circuits to an error response, finalizing the route record
// with whatever provenance was collected so far.
func (r *Router) fail(ctx context.Context, req *nexus.Request, root *provenance.Builder, start time.Time, outcome, answer string, err error, warnings []string) *nexus.Response {
	rec, buildErr := root.Fail(err).Build()
	var prov []nexus.ProvenanceRecord
	if buildErr == nil {
		if chain, chainErr := r.prov.Chain(rec.ID); chainErr == nil {
			prov = chain
		}
	}

	r.logger.Warn(ctx, "request failed", zap.String("outcome", outcome), zap.Error(err))
	r.metrics.recordRequest(ctx, outcome, r.now().Sub(start))

	return &nexus.Response{
		RequestID:    req.ID,
		Success:      false,
		Answer:       answer,
		Provenance:   prov,
		ProcessingMS: r.now().Sub(start).Milliseconds(),
		Warnings:     warnings,
	}
}

// resolveUserID extracts the caller identity from context or metadata.
func resolveUserID(req *nexus.Request) string {
	if req.Context != nil && req.Context.UserID != "" {
		return req.Context.UserID
	}
	if req.Metadata != nil {
		for _, key := range []string{"user_id", "caller_id"} {
			if v, ok := req.Metadata[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return "anonymous"
}

// buildContext assembles the per-request snapshot: ranked memories,
// inferred safety tier, and any caller-supplied partial context.
func (r *Router) buildContext(req *nexus.Request, userID string) *nexus.Context {
	reqCtx := &nexus.Context{
		UserID:     userID,
		SafetyTier: inferSafetyTier(req),
		BuiltAt:    r.now(),
	}
	reqCtx.Merge(req.Context)
	reqCtx.UserID = userID

	ranked := r.ranker.Rank(r.memories.All(userID), req.Prompt, nil)
	for _, item := range ranked {
		reqCtx.Memories = append(reqCtx.Memories, item.Item)
		// Accessing a memory through ranking counts as a use
		_ = r.memories.Touch(userID, item.Item.ID)
	}
	return reqCtx
}

// selectAgents resolves the agents for a request. An explicit target
// bypasses intent matching entirely.
func (r *Router) selectAgents(req *nexus.Request) ([]nexus.Agent, error) {
	if req.TargetAgent != "" {
		if !r.registry.Has(req.TargetAgent) {
			return nil, fmt.Errorf("%w: %s", nexus.ErrUnknownAgent, req.TargetAgent)
		}
		if !r.registry.IsEnabled(req.TargetAgent) {
			return nil, fmt.Errorf("%w: %s", nexus.ErrAgentDisabled, req.TargetAgent)
		}
		agent, err := r.registry.Get(req.TargetAgent)
		if err != nil {
			return nil, err
		}
		return []nexus.Agent{agent}, nil
	}

	var agents []nexus.Agent
	for _, id := range matchIntents(req.Prompt) {
		if !r.registry.IsEnabled(id) {
			continue
		}
		agent, err := r.registry.Get(id)
		if err != nil {
			continue
		}
		if !agent.CanHandle(req) {
			continue
		}
		agents = append(agents, agent)
	}

	if len(agents) == 0 {
		fallback, err := r.registry.Get(DefaultAgentID)
		if err != nil {
			return nil, fmt.Errorf("no agent available for this request: %w", err)
		}
		agents = append(agents, fallback)
	}
	return agents, nil
}

// executeAgents runs all selected agents concurrently. Each invocation
// races its own timeout; a losing race yields a failed result for that
// agent without aborting the others, and a late completion is discarded.
func (r *Router) executeAgents(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context, agents []nexus.Agent, rootID string) []*nexus.AgentResult {
	results := make([]*nexus.AgentResult, len(agents))

	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent nexus.Agent) {
			defer wg.Done()
			results[i] = r.runAgent(ctx, req, reqCtx, agent, rootID)
		}(i, agent)
	}
	wg.Wait()

	return results
}

// runAgent executes one agent under its rate limit and timeout,
// producing a provenance record either way.
func (r *Router) runAgent(ctx context.Context, req *nexus.Request, reqCtx *nexus.Context, agent nexus.Agent, rootID string) *nexus.AgentResult {
	cfg := agent.Config()
	ctx = logging.WithAgentID(ctx, cfg.ID)
	ctx, span := r.tracer.Start(ctx, "router.agent."+cfg.ID)
	defer span.End()

	started := r.now()
	b := r.prov.Start(req.ID, cfg.ID, "process").WithParent(rootID).Input(truncate(req.Prompt, 200))

	// Per-agent rate limit yields an error result, never blocks the batch
	if d := r.limiter.AllowAgent(cfg.ID, cfg.RateLimit); !d.Allowed {
		r.metrics.recordRateLimited(ctx, d.Scope)
		err := fmt.Errorf("%w: %s", nexus.ErrRateLimited, d.Reason())
		return r.finishAgent(ctx, b, nexus.FailedResult(cfg.ID, err, r.now().Sub(started)), "rate_limited")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = r.cfg.DefaultAgentTimeout.Duration()
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so a late completion is dropped instead of leaking the
	// worker goroutine
	ch := make(chan *nexus.AgentResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- nexus.FailedResult(cfg.ID, fmt.Errorf("agent panicked: %v", rec), 0)
			}
		}()
		res, err := agent.Process(tctx, req, reqCtx)
		if err != nil {
			res = nexus.FailedResult(cfg.ID, err, 0)
		} else if res == nil {
			res = nexus.FailedResult(cfg.ID, fmt.Errorf("agent returned no result"), 0)
		}
		ch <- res
	}()

	var result *nexus.AgentResult
	outcome := "ok"
	select {
	case res := <-ch:
		result = res
		if !result.Success {
			outcome = "error"
		}
	case <-tctx.Done():
		result = nexus.FailedResult(cfg.ID, fmt.Errorf("agent timed out after %s", timeout), timeout)
		outcome = "timeout"
	}

	if result.Duration == 0 {
		result.Duration = r.now().Sub(started)
	}
	result.AgentID = cfg.ID
	return r.finishAgent(ctx, b, result, outcome)
}

// finishAgent builds the agent's provenance record and records metrics.
func (r *Router) finishAgent(ctx context.Context, b *provenance.Builder, result *nexus.AgentResult, outcome string) *nexus.AgentResult {
	if result.Success {
		b.Succeed().Output(truncate(result.Answer, 200))
	} else {
		b.Fail(fmt.Errorf("%s", result.Error))
	}
	if rec, err := b.Build(); err == nil {
		result.ProvenanceID = rec.ID
	}

	r.metrics.recordAgent(ctx, result.AgentID, outcome, result.Duration)
	if !result.Success {
		r.logger.Warn(ctx, "agent execution failed",
			zap.String("agent_id", result.AgentID),
			zap.String("outcome", outcome),
			zap.String("error", result.Error),
		)
	}
	return result
}

// synthesize merges agent results into one response: answers
// concatenated in priority order, insights and drafts unioned, drafts
// filtered through the safety pipeline, confidence averaged over
// successes, one warning per failed agent and per blocked action.
func (r *Router) synthesize(ctx context.Context, req *nexus.Request, start time.Time, agents []nexus.Agent, results []*nexus.AgentResult, root *provenance.Builder, warnings []string) *nexus.Response {
	var answers []string
	var insights []nexus.Insight
	var drafts []nexus.ActionDraft
	var agentsUsed []string
	var confidence float64
	succeeded := 0

	for i, res := range results {
		agentsUsed = append(agentsUsed, agents[i].Config().ID)
		if res == nil {
			continue
		}
		if res.ProvenanceID != "" {
			root.AddChild(res.ProvenanceID)
		}
		if !res.Success {
			warnings = append(warnings, fmt.Sprintf("agent %s failed: %s", res.AgentID, res.Error))
			continue
		}
		succeeded++
		confidence += res.Confidence
		if res.Answer != "" {
			answers = append(answers, res.Answer)
		}
		insights = append(insights, res.Insights...)
		if len(res.ActionDrafts) > 0 && !agents[i].Config().CanProduceActions {
			warnings = append(warnings, fmt.Sprintf("agent %s is not allowed to produce actions: %d draft(s) dropped", res.AgentID, len(res.ActionDrafts)))
			continue
		}
		drafts = append(drafts, res.ActionDrafts...)
	}

	if succeeded > 0 {
		confidence /= float64(succeeded)
	} else {
		confidence = 0
	}

	filtered, safetyWarnings := r.safety.FilterUnsafeActions(drafts)
	warnings = append(warnings, safetyWarnings...)

	answer := strings.Join(answers, "\n\n")
	success := succeeded > 0
	if answer == "" {
		if success {
			answer = "Done."
		} else {
			answer = "I wasn't able to process that request; every matched agent failed."
		}
	}

	if success {
		root.Succeed().Output(truncate(answer, 200))
	} else {
		root.Fail(fmt.Errorf("all %d agents failed", len(results)))
	}

	var prov []nexus.ProvenanceRecord
	if rec, err := root.Build(); err == nil {
		if chain, chainErr := r.prov.Chain(rec.ID); chainErr == nil {
			prov = chain
		}
	} else {
		r.logger.Warn(ctx, "failed to build route provenance", zap.Error(err))
	}

	return &nexus.Response{
		RequestID:    req.ID,
		Success:      success,
		Answer:       answer,
		Insights:     insights,
		ActionDrafts: filtered,
		AgentsUsed:   agentsUsed,
		Provenance:   prov,
		Confidence:   confidence,
		ProcessingMS: r.now().Sub(start).Milliseconds(),
		Warnings:     warnings,
	}
}

// outcomeOf maps a response to a metrics outcome label.
func outcomeOf(resp *nexus.Response) string {
	if resp.Success {
		return "ok"
	}
	return "error"
}

// truncate caps a summary string for provenance and logs, backing up
// to a rune boundary so the result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
