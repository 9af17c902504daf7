// Package livesession drives collaborative editing of one prim on a live
// stage: a transform that walks the prim around a circle, plus a message
// channel shared with every other client on the same stage.
package livesession

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

// StepDegrees is how far one transform step advances around the circle.
const StepDegrees = 15

// Radius of the circle the prim walks.
const Radius = 100.0

// Session is the live-edit state for one prim on one stage.
type Session struct {
	client   asset.Client
	logger   *slog.Logger
	stageURL string
	primPath string

	st      *stage.Stage
	prim    *stage.Prim
	angle   int
	channel asset.Channel
}

// New opens the stage, locates the prim and joins the stage's message
// channel. An empty primPath selects the first mesh.
func New(ctx context.Context, client asset.Client, logger *slog.Logger, stageURL, primPath string) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data, err := client.ReadFile(ctx, stageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open stage %s: %w", stageURL, err)
	}
	st, err := stage.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stage %s: %w", stageURL, err)
	}

	var prim *stage.Prim
	if primPath == "" {
		prim = st.FindFirst(func(p *stage.Prim) bool { return p.Type() == stage.TypeMesh })
		if prim == nil {
			return nil, fmt.Errorf("no mesh found in stage %s", stageURL)
		}
	} else {
		prim = st.GetPrimAtPath(primPath)
		if prim == nil {
			return nil, fmt.Errorf("prim %s not found in stage %s", primPath, stageURL)
		}
	}

	channel, err := client.JoinChannel(ctx, stageURL+asset.ChannelSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to join message channel: %w", err)
	}

	logger.Info("live edit started", "stage", stageURL, "prim", prim.Path())
	return &Session{
		client:   client,
		logger:   logger,
		stageURL: stageURL,
		primPath: prim.Path(),
		st:       st,
		prim:     prim,
		channel:  channel,
	}, nil
}

// PrimPath returns the path of the prim under edit.
func (s *Session) PrimPath() string { return s.primPath }

// Angle returns the current angle in degrees.
func (s *Session) Angle() int { return s.angle }

// Transform advances the angle one step, moves the prim along the circle
// and saves the live layer. It returns the new transform for display.
func (s *Session) Transform(ctx context.Context) (stage.SRT, error) {
	s.angle = (s.angle + StepDegrees) % 360
	radians := float64(s.angle) * math.Pi / 180

	srt := s.prim.GetSRT()
	srt.Translate[0] += math.Sin(radians) * Radius
	srt.Translate[2] += math.Cos(radians) * Radius
	srt.RotateXYZ[1] = float64(s.angle)
	s.prim.SetSRT(srt)

	if err := s.save(ctx); err != nil {
		return stage.SRT{}, err
	}
	s.logger.Info("prim transformed",
		"prim", s.primPath, "angle", s.angle,
		"pos", fmt.Sprintf("[%.2f, %.2f, %.2f]",
			srt.Translate[0], srt.Translate[1], srt.Translate[2]))
	return srt, nil
}

// SendMessage posts a text message to the stage's channel.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	if s.channel == nil {
		return asset.ErrChannelClosed
	}
	return s.channel.Send(ctx, []byte(text))
}

// LeaveChannel leaves the message channel; transforms keep working.
func (s *Session) LeaveChannel() error {
	if s.channel == nil {
		return nil
	}
	err := s.channel.Leave()
	s.channel = nil
	return err
}

// Events exposes channel traffic for the UI, or nil after leaving.
func (s *Session) Events() <-chan asset.ChannelEvent {
	if s.channel == nil {
		return nil
	}
	return s.channel.Events()
}

// Close leaves the channel and releases the session.
func (s *Session) Close() error {
	return s.LeaveChannel()
}

func (s *Session) save(ctx context.Context) error {
	data, err := stage.Encode(s.st)
	if err != nil {
		return err
	}
	if err := s.client.WriteFile(ctx, s.stageURL, data, ""); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.stageURL, err)
	}
	return nil
}
