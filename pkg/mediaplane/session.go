package mediaplane

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	methodCreate  = "create"
	methodInvoke  = "invoke"
	methodRelease = "release"

	typePipeline       = "MediaPipeline"
	typeRTPEndpoint    = "RtpEndpoint"
	typePlayerEndpoint = "PlayerEndpoint"
)

// cleanupTimeout bounds release calls issued outside a caller's context
const cleanupTimeout = 5 * time.Second

// createParams are the parameters of a create request
type createParams struct {
	Type              string         `json:"type"`
	ConstructorParams map[string]any `json:"constructorParams,omitempty"`
	SessionID         string         `json:"sessionId,omitempty"`
}

// invokeParams are the parameters of an invoke request
type invokeParams struct {
	Object          string         `json:"object"`
	Operation       string         `json:"operation"`
	OperationParams map[string]any `json:"operationParams,omitempty"`
	SessionID       string         `json:"sessionId,omitempty"`
}

// releaseParams are the parameters of a release request
type releaseParams struct {
	Object    string `json:"object"`
	SessionID string `json:"sessionId,omitempty"`
}

// objectResult is the result of create and invoke requests: the created
// object id or the operation return value, plus the server session id.
type objectResult struct {
	Value     string `json:"value"`
	SessionID string `json:"sessionId"`
}

// Session is one media pipeline on the media server: a player endpoint
// reading the source URI, connected to an RTP endpoint that streams toward
// the negotiated client ports.
type Session struct {
	client    *Client
	source    string
	sessionID string
	pipeline  string
	rtp       string
	player    string
	released  atomic.Bool
	log       *slog.Logger
}

// NewSession prepares a media session for one control connection. Nothing
// is created on the media server until ProcessOffer runs.
func NewSession(client *Client, source string) *Session {
	return &Session{
		client: client,
		source: source,
		log:    slog.With(slog.String("source", source)),
	}
}

// ProcessOffer builds the pipeline on first use and asks the RTP endpoint
// to answer the given offer. The returned description carries the server
// ports and ssrc the dispatcher needs.
func (s *Session) ProcessOffer(ctx context.Context, offer string) (string, error) {
	if err := s.ensurePipeline(ctx); err != nil {
		return "", err
	}

	var res objectResult
	err := s.client.Call(ctx, methodInvoke, invokeParams{
		Object:          s.rtp,
		Operation:       "processOffer",
		OperationParams: map[string]any{"offer": offer},
		SessionID:       s.sessionID,
	}, &res)
	if err != nil {
		return "", fmt.Errorf("failed to process offer: %w", err)
	}

	return res.Value, nil
}

// Play starts the player endpoint. The pipeline must have been built by a
// prior ProcessOffer.
func (s *Session) Play(ctx context.Context) error {
	if s.pipeline == "" {
		return ErrNoPipeline
	}

	err := s.client.Call(ctx, methodInvoke, invokeParams{
		Object:    s.player,
		Operation: "play",
		SessionID: s.sessionID,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	s.log.Info("playback started", slog.String("pipeline", s.pipeline))
	return nil
}

// Release tears down the pipeline. Safe to call more than once and before
// anything was created. A failed release re-arms the guard so a later
// call retries.
func (s *Session) Release(ctx context.Context) error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	if s.pipeline == "" {
		return nil
	}

	err := s.client.Call(ctx, methodRelease, releaseParams{
		Object:    s.pipeline,
		SessionID: s.sessionID,
	}, nil)
	if err != nil {
		s.released.Store(false)
		return fmt.Errorf("failed to release pipeline: %w", err)
	}

	s.log.Info("pipeline released", slog.String("pipeline", s.pipeline))
	return nil
}

// ensurePipeline creates pipeline, endpoints and the media link on first
// use: player -> rtp endpoint -> negotiated client address. A step failing
// after the pipeline create releases the pipeline again, so no half-built
// pipeline stays on the media server.
func (s *Session) ensurePipeline(ctx context.Context) error {
	if s.pipeline != "" {
		return nil
	}

	var pipeline objectResult
	err := s.client.Call(ctx, methodCreate, createParams{
		Type: typePipeline,
	}, &pipeline)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	s.sessionID = pipeline.SessionID

	var rtp objectResult
	err = s.client.Call(ctx, methodCreate, createParams{
		Type:              typeRTPEndpoint,
		ConstructorParams: map[string]any{"mediaPipeline": pipeline.Value},
		SessionID:         s.sessionID,
	}, &rtp)
	if err != nil {
		s.discardPipeline(pipeline.Value)
		return fmt.Errorf("failed to create rtp endpoint: %w", err)
	}

	var player objectResult
	err = s.client.Call(ctx, methodCreate, createParams{
		Type: typePlayerEndpoint,
		ConstructorParams: map[string]any{
			"mediaPipeline": pipeline.Value,
			"uri":           s.source,
		},
		SessionID: s.sessionID,
	}, &player)
	if err != nil {
		s.discardPipeline(pipeline.Value)
		return fmt.Errorf("failed to create player endpoint: %w", err)
	}

	err = s.client.Call(ctx, methodInvoke, invokeParams{
		Object:          player.Value,
		Operation:       "connect",
		OperationParams: map[string]any{"sink": rtp.Value},
		SessionID:       s.sessionID,
	}, nil)
	if err != nil {
		s.discardPipeline(pipeline.Value)
		return fmt.Errorf("failed to connect endpoints: %w", err)
	}

	s.pipeline = pipeline.Value
	s.rtp = rtp.Value
	s.player = player.Value

	s.log.Debug("pipeline created",
		slog.String("pipeline", s.pipeline),
		slog.String("rtp_endpoint", s.rtp),
		slog.String("player_endpoint", s.player))

	return nil
}

// discardPipeline releases a pipeline whose setup failed partway. The
// release runs on its own deadline; the context that drove the setup may
// already be cancelled.
func (s *Session) discardPipeline(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	err := s.client.Call(ctx, methodRelease, releaseParams{
		Object:    id,
		SessionID: s.sessionID,
	}, nil)
	if err != nil {
		s.log.Warn("failed to release half-built pipeline",
			slog.String("pipeline", id),
			slog.String("error", err.Error()))
	}
}
