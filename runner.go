package main

import (
	"context"
	"log"
	"time"

	"github.com/4TRICK/GPN/internal/analytics"
	"github.com/4TRICK/GPN/internal/config"
	"github.com/4TRICK/GPN/internal/flow"
	"github.com/4TRICK/GPN/internal/gateway"
	"github.com/4TRICK/GPN/internal/store"
	"github.com/4TRICK/GPN/internal/survey"
	"github.com/4TRICK/GPN/internal/text"
)

const logContentPreviewLen = 160

// SurveyRunner wires the batch pipeline and the live conversation loop.
type SurveyRunner struct {
	cfg        config.Config
	store      *store.Store
	controller *flow.Controller
	logPrefix  string
}

func NewSurveyRunner(cfg config.Config, st *store.Store, controller *flow.Controller, logPrefix string) *SurveyRunner {
	return &SurveyRunner{
		cfg:        cfg,
		store:      st,
		controller: controller,
		logPrefix:  logPrefix,
	}
}

// Run executes the startup analytics pipeline over whatever the store
// already holds, then pumps gateway messages until ctx is done.
func (r *SurveyRunner) Run(ctx context.Context) error {
	analytics.RunPipeline(ctx, r.store,
		survey.RatingPrompts(survey.Questions),
		r.cfg.ChartsDir, r.cfg.ReportTemplate, r.cfg.ReportPath,
		r.logPrefix,
	)

	wsURL, err := gateway.WebsocketURL(r.cfg.GatewayURL)
	if err != nil {
		return err
	}

	log.Printf("%s accepting messages: gateway=%s questions=%d", r.logPrefix, wsURL, len(survey.Questions))

	err = gateway.Run(ctx, wsURL, r.cfg.BotToken, r.handleMessage, gateway.Options{}, gateway.ReconnectOptions{
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		OnDisconnect: func(err error, nextBackoff time.Duration) {
			log.Printf("%s gateway disconnected: %v (reconnecting in %s)", r.logPrefix, err, nextBackoff)
		},
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// handleMessage dispatches one inbound message to the controller on its own
// goroutine and sends the replies. The read loop never waits on a respondent:
// a slow finalize (enrichment retries) must not stall other respondents or
// starve ping/pong. Same-respondent messages stay serialized by the
// controller's per-respondent lock. Failures are logged and contained.
func (r *SurveyRunner) handleMessage(ctx context.Context, msg gateway.InboundMessage, send gateway.SendFunc) error {
	log.Printf("%s message: user=%s content=%q",
		r.logPrefix, msg.UserID, text.Preview(msg.Content, logContentPreviewLen))

	go func() {
		replies, err := r.controller.OnMessage(ctx, msg.UserID, msg.Content)
		if err != nil {
			log.Printf("%s handling failed: user=%s err=%v", r.logPrefix, msg.UserID, err)
			return
		}

		for _, reply := range replies {
			out := gateway.OutboundMessage{
				UserID:       msg.UserID,
				Content:      reply.Text,
				QuickReplies: reply.Options,
				ClearReplies: reply.ClearOptions,
			}
			if err := send(out); err != nil {
				log.Printf("%s send failed: user=%s err=%v", r.logPrefix, msg.UserID, err)
				return
			}
		}
	}()
	return nil
}
