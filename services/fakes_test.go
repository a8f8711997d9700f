package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sashabaranov/go-openai"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"rescueradar/models"
	"rescueradar/repositories"
)

type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[string]models.Report
	createErr error
	listErr   error
	creates   int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]models.Report{}}
}

func (f *fakeReportRepo) Create(_ context.Context, r *models.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.reports[r.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}
	f.reports[r.ID] = *r
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return &r, nil
}

func (f *fakeReportRepo) ListRecent(_ context.Context, limit int) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReportRepo) Ping(context.Context) error { return nil }

type fakeChat struct {
	content string
	err     error
	calls   int
	last    openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.content}}},
	}, nil
}

type fakeMessages struct {
	mu      sync.Mutex
	sent    []*openapi.CreateMessageParams
	failFor map[string]error
}

func (f *fakeMessages) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, params)
	if err, ok := f.failFor[*params.To]; ok {
		return nil, err
	}
	sid := "SM" + *params.To
	status := "queued"
	return &openapi.ApiV2010Message{Sid: &sid, Status: &status}, nil
}

type fakeEmail struct {
	sent []models.OutgoingEmail
	err  error
}

func (f *fakeEmail) Provider() string { return "fake" }

func (f *fakeEmail) Send(_ context.Context, email models.OutgoingEmail) (string, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return "", f.err
	}
	return "msg-1", nil
}

type fakeBroadcaster struct {
	events []models.ReportCreatedEvent
}

func (f *fakeBroadcaster) BroadcastReportCreated(event models.ReportCreatedEvent) {
	f.events = append(f.events, event)
}

type fakePublisher struct {
	NoopPublisher
	events []models.ReportCreatedEvent
	err    error
}

func (f *fakePublisher) PublishReportCreated(_ context.Context, event models.ReportCreatedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

const validAnalysisJSON = `{"severity":"high","category":"neglect","urgency_level":8,
"recommended_actions":["Call rescue"],"confidence_score":0.9,
"requires_immediate_intervention":true,"estimated_animal_count":2,
"risk_factors":["Dehydration"],"next_steps":["Visit site"]}`
