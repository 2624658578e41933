// Package flow is the conversation controller: it walks each respondent
// through the questionnaire, one inbound message at a time, and persists the
// finished response set.
package flow

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/4TRICK/GPN/internal/enrich"
	"github.com/4TRICK/GPN/internal/survey"
	"github.com/4TRICK/GPN/internal/text"
)

// Store is the slice of the answer store the controller needs.
type Store interface {
	InsertStudent(ctx context.Context, fullName, department string) (int64, error)
	InsertStaticResponse(ctx context.Context, studentID int64, question, answer string) error
	InsertDynamicResponse(ctx context.Context, studentID int64, question, comment, processed string) error
}

// Reply is one outbound message produced by the controller.
type Reply struct {
	Text         string
	Options      []string
	ClearOptions bool
}

// session is one respondent's in-flight progress. answers is parallel to the
// questionnaire: len(answers) == step at all times.
type session struct {
	step    int
	answers []string
}

// Controller owns the respondent-to-session mapping. Sessions live in process
// memory only; a restart drops every in-progress respondent.
type Controller struct {
	questions []survey.Question
	store     Store
	enricher  enrich.Enricher
	logPrefix string

	mu       sync.Mutex
	sessions map[string]*session
	locks    map[string]*sync.Mutex
}

// New builds a controller over the given questionnaire. The enricher may be
// nil, in which case every comment summary is the failure sentinel.
func New(questions []survey.Question, store Store, enricher enrich.Enricher, logPrefix string) (*Controller, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions are required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logPrefix == "" {
		logPrefix = "[survey]"
	}
	return &Controller{
		questions: questions,
		store:     store,
		enricher:  enricher,
		logPrefix: logPrefix,
		sessions:  map[string]*session{},
		locks:     map[string]*sync.Mutex{},
	}, nil
}

// respondentMutex returns the per-respondent lock, creating it on first use.
// Locks are never removed; the table grows with the respondent population,
// like the session table itself.
func (c *Controller) respondentMutex(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mu, ok := c.locks[userID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	c.locks[userID] = mu
	return mu
}

// OnMessage handles one inbound message and returns the replies to send.
// Messages from distinct respondents never block each other; two concurrent
// messages from the same respondent are serialized.
func (c *Controller) OnMessage(ctx context.Context, userID, content string) ([]Reply, error) {
	if content == survey.StartCommand {
		return []Reply{{Text: survey.Greeting, Options: []string{survey.StartKeyword}}}, nil
	}

	lock := c.respondentMutex(userID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	sess, ok := c.sessions[userID]
	if !ok {
		sess = &session{}
		c.sessions[userID] = sess
	}
	c.mu.Unlock()

	// The start keyword opens a fresh session and prompts the first question
	// without consuming the trigger text as an answer.
	if !ok && sess.step == 0 && text.Clean(content) == survey.StartKeyword {
		log.Printf("%s survey started: user=%s", c.logPrefix, userID)
		return []Reply{c.promptReply(0)}, nil
	}

	// Record the answer verbatim; no validation against the question kind.
	q := c.questions[sess.step]
	sess.answers = append(sess.answers, content)
	sess.step++
	log.Printf("%s answer recorded: user=%s step=%d question=%q answer=%q",
		c.logPrefix, userID, sess.step, q.Prompt, text.Preview(content, 120),
	)

	if sess.step < len(c.questions) {
		return []Reply{c.promptReply(sess.step)}, nil
	}

	// Last question answered: persist and drop the session either way, so a
	// failed finalize never leaves the respondent stuck past the end.
	err := c.finalize(ctx, userID, sess.answers)
	c.mu.Lock()
	delete(c.sessions, userID)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("finalize respondent %s: %w", userID, err)
	}

	return []Reply{{Text: survey.ClosingText, ClearOptions: true}}, nil
}

func (c *Controller) promptReply(step int) Reply {
	q := c.questions[step]
	return Reply{Text: q.Prompt, Options: q.Options}
}

// finalize splits the answer set into its two facets and writes them row by
// row. There is no transaction: a mid-way failure leaves the rows written so
// far in place.
func (c *Controller) finalize(ctx context.Context, userID string, answers []string) error {
	var fullName, department string
	for i, q := range c.questions {
		switch q.Prompt {
		case survey.PromptFullName:
			fullName = answers[i]
		case survey.PromptDepartment:
			department = answers[i]
		}
	}

	studentID, err := c.store.InsertStudent(ctx, fullName, department)
	if err != nil {
		return err
	}

	for i, q := range c.questions {
		if !q.IsFixed() {
			continue
		}
		if err := c.store.InsertStaticResponse(ctx, studentID, q.Prompt, answers[i]); err != nil {
			return err
		}
	}

	for i, q := range c.questions {
		if q.IsFixed() {
			continue
		}
		summary := enrich.SummarizeOrSentinel(ctx, c.enricher, answers[i])
		if summary == enrich.FailureSentinel {
			log.Printf("%s enrichment failed, storing sentinel: user=%s question=%q",
				c.logPrefix, userID, q.Prompt)
		}
		if err := c.store.InsertDynamicResponse(ctx, studentID, q.Prompt, answers[i], summary); err != nil {
			return err
		}
	}

	log.Printf("%s respondent finalized: user=%s student=%d", c.logPrefix, userID, studentID)
	return nil
}

// SessionState reports an in-flight session's progress, for monitoring and
// tests. ok is false when the respondent has no live session.
func (c *Controller) SessionState(userID string) (step, answers int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[userID]
	if !ok {
		return 0, 0, false
	}
	return sess.step, len(sess.answers), true
}
