package review

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeProvider struct {
	res        Result
	err        error
	block      bool
	sleep      time.Duration
	panicMsg   string
	namePanics bool
	calls      atomic.Int32
}

func (f *fakeProvider) Name() string {
	if f.namePanics {
		panic("name lookup exploded")
	}
	return "fake"
}

func (f *fakeProvider) Review(ctx context.Context, a Article) (Result, error) {
	f.calls.Add(1)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		<-ctx.Done()
		return Result{Decision: DecisionApproved}, ctx.Err()
	}
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	return f.res, f.err
}

func publishableArticle() Article {
	return Article{
		ID:           "a1",
		Title:        "Library hours",
		Content:      longProse(250),
		DeclaredType: "explainer",
	}
}

func spamArticle() Article {
	return Article{
		ID:           "a2",
		Title:        "Ad",
		Content:      strings.Repeat("buy now ", 5) + strings.Repeat(" ", 19),
		DeclaredType: "explainer",
	}
}

func TestOrchestratorUsesProviderResult(t *testing.T) {
	p := &fakeProvider{res: Result{Decision: DecisionApproved, Category: CategoryLetter, Feedback: "Clear and kind.", Raw: "{}"}}
	o := NewOrchestrator(p, time.Second)

	got := o.Review(context.Background(), publishableArticle())

	assert.Equal(t, DecisionApproved, got.Decision)
	assert.Equal(t, CategoryLetter, got.Category)
	assert.Equal(t, "Clear and kind.", got.Feedback)
	assert.Equal(t, SourceAI, got.Source)
	assert.Equal(t, int32(1), p.calls.Load())
}

// Scenario: model rejects on tone alone.
func TestOrchestratorDowngradesSubjectiveRejection(t *testing.T) {
	p := &fakeProvider{res: Result{Decision: DecisionRejected, Category: CategoryPerspective, Feedback: "tone issue"}}
	o := NewOrchestrator(p, time.Second)

	got := o.Review(context.Background(), publishableArticle())

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.Equal(t, CategoryPerspective, got.Category)
	assert.Contains(t, got.Feedback, OverrideNote)
	assert.Contains(t, got.Feedback, "tone issue")
}

// Scenario: screened spam is rejected whatever the model says.
func TestOrchestratorHardRejectWins(t *testing.T) {
	for _, d := range AllDecisions {
		p := &fakeProvider{res: Result{Decision: d, Category: CategoryExplainer, Feedback: "ok"}}
		got := NewOrchestrator(p, time.Second).Review(context.Background(), spamArticle())
		assert.Equal(t, DecisionRejected, got.Decision, "provider said %s", d)
	}

	got := NewOrchestrator(nil, time.Second).Review(context.Background(), spamArticle())
	assert.Equal(t, DecisionRejected, got.Decision)
	assert.Equal(t, SourceFallback, got.Source)
}

func TestOrchestratorFallbackDowngradeFeedback(t *testing.T) {
	a := Article{Title: "Game recap", Content: "We will kill it at the final. " + longProse(220), DeclaredType: "reporting", Disclosure: "none"}
	require.Equal(t, DecisionRejected, ReviewLocally(a).Decision)

	got := NewOrchestrator(nil, time.Second).Review(context.Background(), a)

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.Equal(t, SourceFallback, got.Source)
	assert.Equal(t, FallbackRevisionFeedback+FallbackMarker, got.Feedback)
	assert.NotContains(t, got.Feedback, "cannot be published")
}

func TestOrchestratorNeverRejectsUnscreenedContent(t *testing.T) {
	articles := []Article{
		publishableArticle(),
		{Title: "Game recap", Content: "We will kill it at the final. " + longProse(220), DeclaredType: "reporting"},
		{Title: "x", Content: "y"},
		{Title: "Open letter", Content: "Dear board, " + longProse(300), DeclaredType: "letter"},
	}
	providers := []Provider{
		nil,
		&fakeProvider{res: Result{Decision: DecisionRejected, Feedback: "no"}},
		&fakeProvider{err: errors.New("503")},
	}

	for _, p := range providers {
		o := NewOrchestrator(p, time.Second)
		for _, a := range articles {
			got := o.Review(context.Background(), a)
			assert.NotEqual(t, DecisionRejected, got.Decision, "article %q", a.Title)
		}
	}
}

func TestOrchestratorFallbackWhenProviderFails(t *testing.T) {
	testCases := []struct {
		name     string
		provider Provider
	}{
		{"not configured", nil},
		{"provider error", &fakeProvider{err: errors.New("connection refused")}},
		{"provider panics", &fakeProvider{panicMsg: "boom"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			o := NewOrchestrator(testCase.provider, time.Second)
			got := o.Review(context.Background(), publishableArticle())

			assert.Equal(t, DecisionApproved, got.Decision)
			assert.Contains(t, AllCategories, got.Category)
			assert.True(t, strings.HasSuffix(got.Feedback, FallbackMarker))
			assert.True(t, strings.HasPrefix(got.Raw, FallbackRawPrefix))
			assert.Equal(t, SourceFallback, got.Source)
		})
	}
}

// Scenario: reporting piece with no disclosure while the provider is down.
func TestOrchestratorFallbackAsksForDisclosure(t *testing.T) {
	a := Article{ID: "a3", Title: "Cafeteria prices", Content: longProse(250), DeclaredType: "reporting"}

	got := NewOrchestrator(nil, time.Second).Review(context.Background(), a)

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.Contains(t, got.Feedback, "disclosure")
}

// Scenario: zero budget for the provider call.
func TestOrchestratorZeroTimeoutFallsBack(t *testing.T) {
	p := &fakeProvider{res: Result{Decision: DecisionApproved, Feedback: "fast"}}
	o := NewOrchestrator(p, 0)

	got := o.Review(context.Background(), publishableArticle())

	assert.Equal(t, SourceFallback, got.Source)
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestOrchestratorTimeoutDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := &fakeProvider{block: true}
	o := NewOrchestrator(p, 20*time.Millisecond)

	start := time.Now()
	got := o.Review(context.Background(), publishableArticle())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, SourceFallback, got.Source)
}

func TestOrchestratorDiscardsLateResult(t *testing.T) {
	p := &fakeProvider{sleep: 100 * time.Millisecond, res: Result{Decision: DecisionApproved, Feedback: "late"}}
	o := NewOrchestrator(p, 10*time.Millisecond)

	got := o.Review(context.Background(), Article{Title: "Tiny", Content: "Too short.", DeclaredType: "letter"})

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.NotContains(t, got.Feedback, "late")
	time.Sleep(150 * time.Millisecond)
}

func TestOrchestratorUnexpectedPanicGivesSafeDefault(t *testing.T) {
	p := &fakeProvider{err: errors.New("bad gateway"), namePanics: true}
	o := NewOrchestrator(p, time.Second)

	got := o.Review(context.Background(), Article{Title: "T", Content: "C", DeclaredType: "letter"})

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.Equal(t, CategoryLetter, got.Category)
	assert.Equal(t, FailureFeedback, got.Feedback)
	assert.Equal(t, ErrorRaw, got.Raw)
	assert.Equal(t, SourceError, got.Source)
}

func TestOrchestratorSanitizesProviderOutput(t *testing.T) {
	p := &fakeProvider{res: Result{Decision: "PUBLISH", Category: "news", Feedback: "   "}}
	got := NewOrchestrator(p, time.Second).Review(context.Background(), publishableArticle())

	assert.Equal(t, DecisionNeedsRevision, got.Decision)
	assert.Equal(t, CategoryExplainer, got.Category)
	assert.Equal(t, DefaultFeedback, got.Feedback)
}
