package core

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Stream is a server-sent event stream of decoded events.
//
// Channel rules:
//   - Ch emits events in order and is closed when the stream ends
//   - Err emits at most one error and is closed when the stream ends
//   - a "[DONE]" event ends the stream without error
//   - an event carrying an "error" member ends the stream with a StreamError
//   - on context cancellation the stream ends promptly with ctx.Err()
type Stream[T any] struct {
	// Ch emits decoded events in order. Closed when the stream ends.
	Ch <-chan T

	// Err emits at most one error. Closed when the stream ends.
	Err <-chan error

	// Response is the HTTP response the events are read from.
	Response *http.Response

	cancel    context.CancelFunc
	closeOnce sync.Once
	body      io.Closer
}

// NewStream starts decoding the body of resp as server-sent events.
// The stream owns resp.Body and closes it when finished.
func NewStream[T any](ctx context.Context, resp *http.Response) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan T, 64)
	errCh := make(chan error, 1)

	s := &Stream[T]{
		Ch:       ch,
		Err:      errCh,
		Response: resp,
		cancel:   cancel,
		body:     resp.Body,
	}
	go s.run(ctx, resp, ch, errCh)
	return s
}

// Close stops the stream early and releases the response body.
// It is safe to call more than once and after the stream ended.
func (s *Stream[T]) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.body.Close()
	})
	return err
}

func (s *Stream[T]) run(ctx context.Context, resp *http.Response, ch chan<- T, errCh chan<- error) {
	defer close(errCh)
	defer close(ch)
	defer s.Close()

	// Unblock a pending read when the caller cancels
	stop := context.AfterFunc(ctx, func() { s.body.Close() })
	defer stop()

	reader := bufio.NewReader(resp.Body)
	var data strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctx.Err() != nil {
				errCh <- ctx.Err()
				return
			}
			errCh <- ConnectionError(err)
			return
		}
		eof := err != nil

		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "" && data.Len() > 0:
			done, sendErr := s.dispatch(ctx, resp, data.String(), ch)
			data.Reset()
			if sendErr != nil {
				errCh <- sendErr
				return
			}
			if done {
				return
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}

		if eof {
			if data.Len() > 0 {
				if _, sendErr := s.dispatch(ctx, resp, data.String(), ch); sendErr != nil {
					errCh <- sendErr
				}
			}
			return
		}
	}
}

// dispatch decodes one event. It reports done on the [DONE] sentinel.
func (s *Stream[T]) dispatch(ctx context.Context, resp *http.Response, data string, ch chan<- T) (bool, error) {
	if data == "[DONE]" {
		return true, nil
	}

	raw := []byte(data)
	var probe map[string]any
	if json.Unmarshal(raw, &probe) == nil {
		if _, ok := probe["error"]; ok {
			return true, StreamError(resp, probe)
		}
	}

	var event T
	if err := json.Unmarshal(raw, &event); err != nil {
		return true, DecodeError(err)
	}

	select {
	case ch <- event:
		return false, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

// DrainChat accumulates a chat completion stream into a ChatCompletion.
// Blocks until the stream completes or ctx is cancelled.
func DrainChat(ctx context.Context, s *Stream[ChatCompletionChunk]) (*ChatCompletion, error) {
	if s == nil {
		return nil, ConfigurationError("nil stream")
	}

	out := &ChatCompletion{Object: "chat.completion"}
	var contents []*strings.Builder

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()

		case chunk, ok := <-s.Ch:
			if !ok {
				if err := <-s.Err; err != nil {
					return nil, err
				}
				for i := range out.Choices {
					out.Choices[i].Message.Content = contents[i].String()
				}
				return out, nil
			}

			if out.ID == "" {
				out.ID = chunk.ID
				out.Created = chunk.Created
				out.Model = chunk.Model
			}
			if chunk.Usage != nil {
				out.Usage = chunk.Usage
			}
			for _, c := range chunk.Choices {
				if c.Index < 0 {
					continue
				}
				for len(out.Choices) <= c.Index {
					out.Choices = append(out.Choices, ChatChoice{
						Index:   len(out.Choices),
						Message: Message{Role: RoleAssistant},
					})
					contents = append(contents, &strings.Builder{})
				}
				if c.Delta.Role != "" {
					out.Choices[c.Index].Message.Role = c.Delta.Role
				}
				contents[c.Index].WriteString(c.Delta.Content)
				if c.FinishReason != nil {
					out.Choices[c.Index].FinishReason = *c.FinishReason
				}
			}
		}
	}
}

// DrainCompletion accumulates a text completion stream into a Completion.
func DrainCompletion(ctx context.Context, s *Stream[Completion]) (*Completion, error) {
	if s == nil {
		return nil, ConfigurationError("nil stream")
	}

	out := &Completion{Object: "text_completion"}
	var texts []*strings.Builder

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()

		case chunk, ok := <-s.Ch:
			if !ok {
				if err := <-s.Err; err != nil {
					return nil, err
				}
				for i := range out.Choices {
					out.Choices[i].Text = texts[i].String()
				}
				return out, nil
			}

			if out.ID == "" {
				out.ID = chunk.ID
				out.Created = chunk.Created
				out.Model = chunk.Model
			}
			if chunk.Usage != nil {
				out.Usage = chunk.Usage
			}
			for _, c := range chunk.Choices {
				if c.Index < 0 {
					continue
				}
				for len(out.Choices) <= c.Index {
					out.Choices = append(out.Choices, CompletionChoice{Index: len(out.Choices)})
					texts = append(texts, &strings.Builder{})
				}
				texts[c.Index].WriteString(c.Text)
				if c.FinishReason != "" {
					out.Choices[c.Index].FinishReason = c.FinishReason
				}
			}
		}
	}
}
