package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/4TRICK/GPN/internal/config"
	"github.com/4TRICK/GPN/internal/flow"
	"github.com/4TRICK/GPN/internal/gateway"
	"github.com/4TRICK/GPN/internal/survey"
)

type runnerStore struct {
	mu       sync.Mutex
	students int
}

func (s *runnerStore) InsertStudent(ctx context.Context, fullName, department string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students++
	return int64(s.students), nil
}

func (s *runnerStore) InsertStaticResponse(ctx context.Context, studentID int64, question, answer string) error {
	return nil
}

func (s *runnerStore) InsertDynamicResponse(ctx context.Context, studentID int64, question, comment, processed string) error {
	return nil
}

// gateEnricher holds the slow comment until release is closed and answers
// everything else immediately.
type gateEnricher struct {
	slow    string
	release chan struct{}
}

func (e *gateEnricher) Summarize(ctx context.Context, comment string) (string, error) {
	if comment == e.slow {
		select {
		case <-e.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "итог: " + comment, nil
}

func TestHandleMessageDoesNotBlockOtherRespondents(t *testing.T) {
	questions := []survey.Question{
		{Prompt: "Оставьте комментарий", Kind: survey.KindComment},
	}
	enricher := &gateEnricher{slow: "медленный ответ", release: make(chan struct{})}
	controller, err := flow.New(questions, &runnerStore{}, enricher, "[test]")
	if err != nil {
		t.Fatalf("flow.New failed: %v", err)
	}
	runner := NewSurveyRunner(config.Config{}, nil, controller, "[test]")

	sent := make(chan gateway.OutboundMessage, 8)
	send := func(msg gateway.OutboundMessage) error {
		sent <- msg
		return nil
	}

	ctx := context.Background()
	if err := runner.handleMessage(ctx, gateway.InboundMessage{ID: "1", UserID: "slow-user", Content: enricher.slow}, send); err != nil {
		t.Fatalf("handleMessage slow-user: %v", err)
	}
	if err := runner.handleMessage(ctx, gateway.InboundMessage{ID: "2", UserID: "fast-user", Content: "быстрый ответ"}, send); err != nil {
		t.Fatalf("handleMessage fast-user: %v", err)
	}

	// fast-user's survey must complete while slow-user's finalize is still
	// held inside the enricher.
	select {
	case msg := <-sent:
		if msg.UserID != "fast-user" {
			t.Fatalf("expected fast-user reply first, got reply for %q", msg.UserID)
		}
		if msg.Content != survey.ClosingText {
			t.Fatalf("expected closing text for fast-user, got %q", msg.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fast-user reply never arrived while slow-user finalize was in flight")
	}

	close(enricher.release)

	select {
	case msg := <-sent:
		if msg.UserID != "slow-user" {
			t.Fatalf("expected slow-user reply after release, got reply for %q", msg.UserID)
		}
		if msg.Content != survey.ClosingText {
			t.Fatalf("expected closing text for slow-user, got %q", msg.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow-user reply never arrived after release")
	}
}
