// Package gateway connects control sessions to the media plane: every
// accepted session gets setup, play and teardown capabilities backed by a
// media pipeline of its own.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/arzzra/rtsp_gateway/pkg/mediaplane"
	"github.com/arzzra/rtsp_gateway/pkg/rtsp/server"
)

// releaseTimeout bounds the cleanup call made when a connection dies
const releaseTimeout = 5 * time.Second

// Session is the capability surface of a control session. Satisfied by
// *server.Session.
type Session interface {
	ID() string
	RemoteIP() string
	OnSetup(server.SetupHandler)
	OnPlay(server.PlayHandler)
	OnTeardown(server.TeardownHandler)
	OnError(func(error))
	OnClose(func())
}

// mediaSession is the slice of mediaplane.Session the wiring needs
type mediaSession interface {
	ProcessOffer(ctx context.Context, offer string) (string, error)
	Play(ctx context.Context) error
	Release(ctx context.Context) error
}

// Gateway hands each control session its media pipeline.
type Gateway struct {
	newMedia func() mediaSession
	log      *slog.Logger
}

// New builds a gateway creating pipelines on the given media plane client,
// all playing the same source.
func New(client *mediaplane.Client, source string) *Gateway {
	return &Gateway{
		newMedia: func() mediaSession {
			return mediaplane.NewSession(client, source)
		},
		log: slog.Default(),
	}
}

// Attach wires one session. The pipeline is built lazily at SETUP and
// released on TEARDOWN or when the connection goes away, whichever comes
// first.
func (g *Gateway) Attach(sess Session) {
	media := g.newMedia()
	log := g.log.With(
		slog.String("session_id", sess.ID()),
		slog.String("peer", sess.RemoteIP()),
	)

	sess.OnSetup(func(ctx context.Context, offer string) (string, error) {
		return media.ProcessOffer(ctx, offer)
	})

	sess.OnPlay(func(ctx context.Context, uri string) error {
		log.Info("starting playback", slog.String("uri", uri))
		return media.Play(ctx)
	})

	sess.OnTeardown(func(ctx context.Context, _ string) error {
		return media.Release(ctx)
	})

	sess.OnError(func(err error) {
		log.Error("session error", slog.String("error", err.Error()))
	})

	sess.OnClose(func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := media.Release(ctx); err != nil {
			log.Warn("media release failed", slog.String("error", err.Error()))
		}
	})
}
