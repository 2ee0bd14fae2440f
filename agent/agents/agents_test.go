package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/callsense-ai/callsense/agent/contract"
	"github.com/callsense-ai/callsense/agent/state"
)

type fakeLLM struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeCleaner struct {
	out   string
	err   error
	calls int
}

func (f *fakeCleaner) Clean(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func newState(raw string) *state.CallState {
	return state.NewCallState("test-call", raw, time.Now())
}

func TestCleaningLocalFallback(t *testing.T) {
	st := newState("Hello   there. [NOISE] My card   was declined! What now?")

	if _, err := Cleaning(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(st.CleanedTranscript, "[NOISE]") {
		t.Fatalf("artifact not stripped: %q", st.CleanedTranscript)
	}
	if !strings.HasPrefix(st.CleanedTranscript, "Hello there.") {
		t.Fatalf("whitespace not collapsed: %q", st.CleanedTranscript)
	}
	if st.ToolCalls != 0 {
		t.Fatalf("local fallback must not count as a tool call, got %d", st.ToolCalls)
	}
	if st.StepCount != 1 {
		t.Fatalf("step count = %d, want 1", st.StepCount)
	}
	if len(st.Utterances) != 3 {
		t.Fatalf("utterances = %v, want 3 segments", st.Utterances)
	}
}

func TestCleaningCountsCleanerOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		st := newState("raw text")
		cleaner := &fakeCleaner{out: "cleaned text"}

		if _, err := Cleaning(context.Background(), st, contract.Capabilities{Cleaner: cleaner}); err != nil {
			t.Fatal(err)
		}
		if st.CleanedTranscript != "cleaned text" {
			t.Fatalf("cleaned = %q", st.CleanedTranscript)
		}
		if st.ToolCalls != 1 || st.ToolSuccesses != 1 {
			t.Fatalf("counters = %d/%d, want 1/1", st.ToolSuccesses, st.ToolCalls)
		}
	})

	t.Run("failure degrades to local cleaning", func(t *testing.T) {
		st := newState("raw   text")
		cleaner := &fakeCleaner{err: errors.New("service down")}

		if _, err := Cleaning(context.Background(), st, contract.Capabilities{Cleaner: cleaner}); err != nil {
			t.Fatal(err)
		}
		if st.CleanedTranscript != "raw text" {
			t.Fatalf("expected local fallback output, got %q", st.CleanedTranscript)
		}
		if st.ToolCalls != 1 || st.ToolSuccesses != 0 {
			t.Fatalf("counters = %d/%d, want 0/1", st.ToolSuccesses, st.ToolCalls)
		}
	})
}

func TestSplitUtterances(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "One sentence only", want: []string{"One sentence only"}},
		{in: "First. Second! Third?", want: []string{"First.", "Second!", "Third?"}},
		{in: "Costs $3.50 total. Fine.", want: []string{"Costs $3.50 total.", "Fine."}},
	}
	for _, tt := range tests {
		got := splitUtterances(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("splitUtterances(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("splitUtterances(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestEntitiesParsesModelJSON(t *testing.T) {
	st := newState("My mortgage payment was declined.")
	llm := &fakeLLM{reply: `{"customer_profile":"long-time customer","product":"mortgage","issue":"payment declined","priority":"high","other_tags":["payments"]}`}

	if _, err := Entities(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.Entities == nil || st.Entities.Product != "mortgage" || st.Entities.Priority != "high" {
		t.Fatalf("entities = %+v", st.Entities)
	}
	if st.ToolCalls != 1 || st.ToolSuccesses != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", st.ToolSuccesses, st.ToolCalls)
	}

	msg, ok := st.LastMessageFor(AgentSummarization, state.MsgEntitySummary)
	if !ok {
		t.Fatal("expected entity_summary message for summarization")
	}
	payload := msg.Payload.(state.EntitySummary)
	if payload.Product != "mortgage" || payload.Issue != "payment declined" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestEntitiesFallsBackOnBadModelOutput(t *testing.T) {
	st := newState("I was overcharged a fee on my credit card and I want a supervisor.")
	llm := &fakeLLM{reply: "sorry, I can't help with that"}

	if _, err := Entities(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.ToolCalls != 1 || st.ToolSuccesses != 0 {
		t.Fatalf("unparseable output must not count as success: %d/%d", st.ToolSuccesses, st.ToolCalls)
	}
	if st.Entities == nil {
		t.Fatal("fallback entities missing")
	}
	if st.Entities.Product != "credit card" {
		t.Fatalf("product = %q, want credit card", st.Entities.Product)
	}
	if st.Entities.Issue != "fee" {
		t.Fatalf("issue = %q, want fee", st.Entities.Issue)
	}
	if st.Entities.Priority != "high" {
		t.Fatalf("priority = %q, want high (supervisor mention)", st.Entities.Priority)
	}
}

func TestSummarizationEmptyTranscript(t *testing.T) {
	st := newState("")
	llm := &fakeLLM{reply: "should never be called"}

	if _, err := Summarization(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.Summary != EmptyTranscriptSummary {
		t.Fatalf("summary = %q, want sentinel", st.Summary)
	}
	if llm.calls != 0 {
		t.Fatalf("model must not be invoked for an empty transcript, got %d calls", llm.calls)
	}
	if st.StepCount != 1 {
		t.Fatalf("step count = %d, want 1", st.StepCount)
	}
}

func TestSummarizationFallbackOnModelError(t *testing.T) {
	st := newState("Customer called about a refund.")
	llm := &fakeLLM{err: errors.New("timeout")}

	if _, err := Summarization(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.Summary != "Customer called about a refund." {
		t.Fatalf("summary = %q", st.Summary)
	}
	if st.ToolCalls != 1 || st.ToolSuccesses != 0 {
		t.Fatalf("counters = %d/%d, want 0/1", st.ToolSuccesses, st.ToolCalls)
	}
}

func TestShortenTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := shorten(long, 50)

	if len(got) > 50 {
		t.Fatalf("len = %d, want <= 50", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("missing ellipsis: %q", got)
	}
	if strings.Contains(strings.TrimSuffix(got, "..."), "wor ") {
		t.Fatalf("cut mid-word: %q", got)
	}
}

func TestNormalizeSentimentLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "negative", want: "negative", ok: true},
		{in: "Negative.", want: "negative", ok: true},
		{in: "VERY_NEGATIVE\n", want: "very_negative", ok: true},
		{in: "mixed feelings overall", want: "mixed", ok: true},
		{in: "the customer is happy", want: "", ok: false},
		{in: "", want: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := normalizeSentimentLabel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("normalizeSentimentLabel(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSentimentEmptyTranscript(t *testing.T) {
	st := newState("")
	llm := &fakeLLM{reply: "positive"}

	if _, err := Sentiment(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.Sentiment != SentimentUnknown {
		t.Fatalf("sentiment = %q, want unknown", st.Sentiment)
	}
	if llm.calls != 0 {
		t.Fatal("model must not be invoked for an empty transcript")
	}
	if _, ok := st.LastMessageFor(AgentActions, state.MsgSentimentSignal); ok {
		t.Fatal("no sentiment_signal must be published for an empty transcript")
	}
}

func TestSentimentInvalidLabelFallsBack(t *testing.T) {
	st := newState("I am angry and frustrated, I want to cancel right now.")
	llm := &fakeLLM{reply: "hmm, hard to say"}

	if _, err := Sentiment(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.Sentiment != "very_negative" {
		t.Fatalf("sentiment = %q, want very_negative via rule fallback", st.Sentiment)
	}
	if st.ToolCalls != 1 || st.ToolSuccesses != 0 {
		t.Fatalf("counters = %d/%d, want 0/1", st.ToolSuccesses, st.ToolCalls)
	}

	msg, ok := st.LastMessageFor(AgentActions, state.MsgSentimentSignal)
	if !ok {
		t.Fatal("expected sentiment_signal message")
	}
	if msg.Payload.(state.SentimentSignal).Sentiment != "very_negative" {
		t.Fatalf("unexpected payload: %+v", msg.Payload)
	}
}

func TestRuleBasedSentiment(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "", want: SentimentUnknown},
		{text: "I checked my balance today.", want: "neutral"},
		{text: "I am upset about this.", want: "negative"},
		{text: "This is unacceptable, I am so frustrated.", want: "very_negative"},
		{text: "Thank you, that was helpful!", want: "very_positive"},
		{text: "Great, all set.", want: "positive"},
	}
	for _, tt := range tests {
		if got := ruleBasedSentiment(tt.text); got != tt.want {
			t.Fatalf("ruleBasedSentiment(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestFrustrationFallbackTimeline(t *testing.T) {
	st := newState("irrelevant")
	st.CleanedTranscript = "cleaned"
	st.Utterances = []string{
		"Hello, I need help.",
		"I am not happy about the delay.",
		"This is the third time I am calling!",
	}

	if _, err := FrustrationLoop(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	if len(st.FrustrationTimeline) != 3 {
		t.Fatalf("timeline length = %d, want 3", len(st.FrustrationTimeline))
	}
	wantLevels := []state.FrustrationLevel{state.FrustrationLow, state.FrustrationMedium, state.FrustrationHigh}
	for i, p := range st.FrustrationTimeline {
		if p.Index != i+1 {
			t.Fatalf("timeline[%d].Index = %d, want %d", i, p.Index, i+1)
		}
		if p.Level != wantLevels[i] {
			t.Fatalf("timeline[%d].Level = %q, want %q", i, p.Level, wantLevels[i])
		}
	}

	msg, ok := st.LastMessageFor(AgentPainPoints, state.MsgFrustrationSummary)
	if !ok {
		t.Fatal("expected frustration_summary message")
	}
	summary := msg.Payload.(state.FrustrationSummary)
	if summary.OverallLevel != state.FrustrationHigh {
		t.Fatalf("overall level = %q, want high", summary.OverallLevel)
	}
	if len(summary.HighSegments) != 1 || summary.TimelineLength != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestFrustrationEmptyTranscript(t *testing.T) {
	st := newState("")

	if _, err := FrustrationLoop(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	if st.FrustrationTimeline != nil {
		t.Fatalf("timeline = %v, want nil", st.FrustrationTimeline)
	}
	if _, ok := st.LastMessageFor(AgentPainPoints, state.MsgFrustrationSummary); ok {
		t.Fatal("no frustration_summary must be published for an empty transcript")
	}
}

func TestFrustrationSanitizesModelLevels(t *testing.T) {
	st := newState("some text")
	st.Utterances = []string{"first", "second"}
	llm := &fakeLLM{reply: `[{"index":1,"utterance":"first","level":"high"},{"index":2,"utterance":"second","level":"furious"}]`}

	if _, err := FrustrationLoop(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if st.ToolSuccesses != 1 {
		t.Fatalf("successes = %d, want 1", st.ToolSuccesses)
	}
	if st.FrustrationTimeline[0].Level != state.FrustrationHigh {
		t.Fatalf("timeline[0] = %+v", st.FrustrationTimeline[0])
	}
	// Unknown label from the model degrades to the rule-based level per point.
	if st.FrustrationTimeline[1].Level != state.FrustrationLow {
		t.Fatalf("timeline[1] = %+v", st.FrustrationTimeline[1])
	}
}

func TestPainPointsFallback(t *testing.T) {
	st := newState("I keep asking about my refund and nothing happens.")
	st.Entities = &state.Entities{Product: "credit card", Issue: "refund"}
	st.Send(AgentFrustration, AgentPainPoints, state.MsgFrustrationSummary, state.FrustrationSummary{
		OverallLevel: state.FrustrationHigh,
	})

	if _, err := PainPoints(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"refund related to credit card": false,
		"refund or chargeback delay":    false,
		"customer is highly frustrated after multiple attempts": false,
	}
	for _, p := range st.PainPoints {
		if _, ok := want[p]; ok {
			want[p] = true
		}
	}
	for p, seen := range want {
		if !seen {
			t.Fatalf("missing pain point %q in %v", p, st.PainPoints)
		}
	}
}

func TestPainPointsSentinelOnNoSignal(t *testing.T) {
	st := newState("")

	if _, err := PainPoints(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	if len(st.PainPoints) != 1 || st.PainPoints[0] != FallbackPainPoint {
		t.Fatalf("pain points = %v, want sentinel", st.PainPoints)
	}
}

func TestPainPointsUsesModelList(t *testing.T) {
	st := newState("transcript text")
	llm := &fakeLLM{reply: `["slow refund processing", " ", "repeated unresolved contacts"]`}

	if _, err := PainPoints(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	if len(st.PainPoints) != 2 {
		t.Fatalf("pain points = %v, blanks must be dropped", st.PainPoints)
	}
	if st.ToolSuccesses != 1 {
		t.Fatalf("successes = %d, want 1", st.ToolSuccesses)
	}
}

func TestActionsPrefersSentimentSignal(t *testing.T) {
	st := newState("text")
	st.Sentiment = "neutral"
	st.PainPoints = []string{"refund or chargeback delay"}
	st.Send(AgentSentiment, AgentActions, state.MsgSentimentSignal, state.SentimentSignal{Sentiment: "very_negative"})

	if _, err := Actions(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	var apology, refund bool
	for _, a := range st.RecommendedActions {
		if strings.Contains(a, "apology") {
			apology = true
		}
		if strings.Contains(a, "refund/chargeback status") {
			refund = true
		}
	}
	if !refund {
		t.Fatalf("missing refund playbook action: %v", st.RecommendedActions)
	}
	if !apology {
		t.Fatalf("sentiment signal must override state sentiment: %v", st.RecommendedActions)
	}
}

func TestActionsDefaultSentinel(t *testing.T) {
	st := newState("text")

	if _, err := Actions(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	if len(st.RecommendedActions) != 1 || st.RecommendedActions[0] != DefaultAction {
		t.Fatalf("actions = %v, want default sentinel", st.RecommendedActions)
	}
}

func TestEvaluationDefaultScores(t *testing.T) {
	st := newState("text")
	st.StepCount = 7
	st.ToolCalls = 4
	st.ToolSuccesses = 2

	if _, err := Evaluation(context.Background(), st, contract.Capabilities{}); err != nil {
		t.Fatal(err)
	}

	ev := st.Evaluation
	if ev == nil {
		t.Fatal("evaluation missing")
	}
	if *ev.Faithfulness != 1.0 || *ev.Coverage != 1.0 || *ev.Consistency != 1.0 {
		t.Fatalf("default scores expected, got %+v", ev)
	}
	if ev.Notes != DefaultEvalNote {
		t.Fatalf("notes = %q", ev.Notes)
	}
	// The metric snapshot excludes evaluation's own step.
	if ev.StepCount != 7 {
		t.Fatalf("evaluation step count = %d, want 7", ev.StepCount)
	}
	if st.StepCount != 8 {
		t.Fatalf("state step count = %d, want 8", st.StepCount)
	}
	if ev.ToolSuccessRate != 0.5 {
		t.Fatalf("rate = %v, want 0.5", ev.ToolSuccessRate)
	}
}

func TestEvaluationMergesModelScores(t *testing.T) {
	st := newState("text")
	llm := &fakeLLM{reply: `{"faithfulness_score":0.5,"notes":"summary drifts from transcript"}`}

	if _, err := Evaluation(context.Background(), st, contract.Capabilities{LLM: llm}); err != nil {
		t.Fatal(err)
	}

	ev := st.Evaluation
	if *ev.Faithfulness != 0.5 {
		t.Fatalf("faithfulness = %v, want 0.5", *ev.Faithfulness)
	}
	// Keys the model omitted fall back to the defaults.
	if *ev.Coverage != 1.0 || *ev.Consistency != 1.0 {
		t.Fatalf("omitted scores must default to 1.0: %+v", ev)
	}
	if ev.Notes != "summary drifts from transcript" {
		t.Fatalf("notes = %q", ev.Notes)
	}
	// The evaluation call itself is counted before the snapshot is taken.
	if ev.ToolCalls != 1 || ev.ToolSuccesses != 1 {
		t.Fatalf("snapshot counters = %d/%d, want 1/1", ev.ToolSuccesses, ev.ToolCalls)
	}
}
