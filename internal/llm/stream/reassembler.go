package stream

import (
	"strings"

	"github.com/okairos/llm-bridge-api/internal/llm/processing"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

// Sink receives push notifications while a stream is being reassembled.
// Callbacks are invoked synchronously in strict arrival order, one delivery
// per delta, on the goroutine driving the reassembly.
type Sink interface {
	OnToken(text string)
	OnComplete(resp *api.ChatResponse)
	OnError(err error)
}

// ReasoningSink is an optional extension of Sink. Reasoning deltas are only
// forwarded when the sink implements it; they are always accumulated.
type ReasoningSink interface {
	OnReasoning(text string)
}

type State int

const (
	Open State = iota
	Accumulating
	ClosedOK
	ClosedError
)

// Reassembler folds an incremental chunk stream into one normalized response.
// Extension fields may arrive on any chunk, including only the terminal one,
// so they are merged across the whole stream.
type Reassembler struct {
	sink  Sink
	state State

	content   strings.Builder
	reasoning strings.Builder
	thinking  *processing.StreamParser

	id           string
	model        string
	created      int64
	finishReason string
	usage        *api.ResponseUsage

	citations        []string
	searchResults    []api.SearchResult
	relatedQuestions []string
	images           []api.SearchImage
	numSearchQueries *int
}

func New(sink Sink) *Reassembler {
	if sink == nil {
		sink = NopSink{}
	}
	return &Reassembler{
		sink:     sink,
		state:    Open,
		thinking: processing.NewStreamParser(),
	}
}

func (r *Reassembler) State() State {
	return r.state
}

// Consume blocks until the stream reaches a terminal state and returns the
// final normalized response. On any mid-stream error the accumulated buffers
// are discarded, the sink's error callback fires and the error is returned;
// no partial response is ever produced.
func (r *Reassembler) Consume(ch <-chan api.StreamResult) (*api.ChatResponse, error) {
	for result := range ch {
		if result.Err != nil {
			r.fail(result.Err)
			return nil, result.Err
		}
		if result.Response == nil {
			continue
		}
		r.state = Accumulating
		r.absorb(result.Response)
	}

	// Channel closed: either a finish reason was seen or the transport
	// signalled end-of-stream. Both are a clean close.
	return r.finish(), nil
}

func (r *Reassembler) absorb(chunk *api.ChatResponse) {
	if chunk.ID != "" {
		r.id = chunk.ID
	}
	if chunk.Model != "" {
		r.model = chunk.Model
	}
	if chunk.Created != 0 {
		r.created = chunk.Created
	}
	if chunk.Usage != nil {
		r.usage = chunk.Usage
	}

	r.mergeExtensions(chunk)

	if len(chunk.Choices) == 0 {
		return
	}
	choice := chunk.Choices[0]

	if choice.FinishReason != "" {
		r.finishReason = choice.FinishReason
	}

	delta := choice.Delta
	if delta == nil {
		delta = choice.Message
	}
	if delta == nil {
		return
	}

	if delta.Reasoning != "" {
		r.appendReasoning(delta.Reasoning)
	}

	if text := delta.Content.Text; text != "" {
		// Inline <think> blocks are split out so providers that interleave
		// reasoning with content still produce a clean buffer.
		content, reasoning := r.thinking.Process(text)
		if reasoning != "" {
			r.appendReasoning(reasoning)
		}
		if content != "" {
			r.content.WriteString(content)
			r.sink.OnToken(content)
		}
	}
}

func (r *Reassembler) appendReasoning(text string) {
	r.reasoning.WriteString(text)
	if rs, ok := r.sink.(ReasoningSink); ok {
		rs.OnReasoning(text)
	}
}

func (r *Reassembler) mergeExtensions(chunk *api.ChatResponse) {
	if chunk.Citations != nil {
		r.citations = chunk.Citations
	}
	if chunk.SearchResults != nil {
		r.searchResults = chunk.SearchResults
	}
	if chunk.RelatedQuestions != nil {
		r.relatedQuestions = chunk.RelatedQuestions
	}
	if chunk.Images != nil {
		r.images = chunk.Images
	}
	if chunk.NumSearchQueries != nil {
		r.numSearchQueries = chunk.NumSearchQueries
	}
	if chunk.Usage != nil && chunk.Usage.NumSearchQueries > 0 && r.numSearchQueries == nil {
		n := chunk.Usage.NumSearchQueries
		r.numSearchQueries = &n
	}
}

func (r *Reassembler) fail(err error) {
	r.state = ClosedError
	r.content.Reset()
	r.reasoning.Reset()
	r.sink.OnError(err)
}

func (r *Reassembler) finish() *api.ChatResponse {
	r.state = ClosedOK

	msg := &api.ChatMessage{
		Role:      string(api.Assistant),
		Content:   api.Content{Text: r.content.String()},
		Reasoning: r.reasoning.String(),
	}

	finish := r.finishReason
	if finish == "" {
		finish = "stop"
	}

	resp := &api.ChatResponse{
		ID:      r.id,
		Model:   r.model,
		Created: r.created,
		Object:  "chat.completion",
		Choices: []api.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: finish,
		}},
		Usage:            r.usage,
		Citations:        r.citations,
		SearchResults:    r.searchResults,
		RelatedQuestions: r.relatedQuestions,
		Images:           r.images,
		NumSearchQueries: r.numSearchQueries,
	}

	r.sink.OnComplete(resp)
	return resp
}

// NopSink discards all notifications. Useful when the caller only wants the
// blocking return value.
type NopSink struct{}

func (NopSink) OnToken(string)               {}
func (NopSink) OnComplete(*api.ChatResponse) {}
func (NopSink) OnError(error)                {}
