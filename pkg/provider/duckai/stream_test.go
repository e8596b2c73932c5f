package duckai

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/duckgate/duckgate/pkg/api"
)

// chunkedReader yields its input in fixed-size chunks, forcing line
// reassembly across read boundaries.
type chunkedReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

// failingReader returns some data and then a read error.
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func collectFrames(t *testing.T, body io.Reader) []api.ChatCompletionChunk {
	t.Helper()
	ch := make(chan api.ChatCompletionChunk, 64)
	meta := frameMeta{id: "chatcmpl-test00000000000000000000", created: 1700000000, model: "gpt-4o-mini"}

	go func() {
		defer close(ch)
		bridgeStream(context.Background(), body, meta, ch)
	}()

	var frames []api.ChatCompletionChunk
	for f := range ch {
		frames = append(frames, f)
	}
	return frames
}

const simpleStream = "data: {\"role\":\"assistant\",\"message\":\"Hel\"}\ndata: {\"message\":\"lo\"}\ndata: [DONE]\n"

func TestBridgeStreamOrderAndSentinel(t *testing.T) {
	frames := collectFrames(t, strings.NewReader(simpleStream))

	if len(frames) != 3 {
		t.Fatalf("frame count = %d, want 3: %+v", len(frames), frames)
	}

	if got := frames[0].Choices[0].Delta; got.Role != "assistant" || got.Content != "Hel" {
		t.Errorf("frames[0].delta = %+v", got)
	}
	if got := frames[1].Choices[0].Delta; got.Role != "" || got.Content != "lo" {
		t.Errorf("frames[1].delta = %+v", got)
	}

	last := frames[2]
	if !last.Terminal() {
		t.Fatal("last frame is not terminal")
	}
	if *last.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q, want stop", *last.Choices[0].FinishReason)
	}
	if d := last.Choices[0].Delta; d.Role != "" || d.Content != "" {
		t.Errorf("terminal delta not empty: %+v", d)
	}
}

func TestBridgeStreamChunkBoundaryIndependence(t *testing.T) {
	// Include a multi-byte sequence so a chunk boundary can fall
	// mid-rune as well as mid-line.
	stream := "data: {\"role\":\"assistant\",\"message\":\"Héllo \"}\ndata: {\"message\":\"wörld\"}\ndata: [DONE]\n"

	whole := collectFrames(t, strings.NewReader(stream))

	for size := 1; size <= 7; size++ {
		split := collectFrames(t, &chunkedReader{data: []byte(stream), size: size})

		if len(split) != len(whole) {
			t.Fatalf("chunk size %d: frame count = %d, want %d", size, len(split), len(whole))
		}
		for i := range whole {
			if split[i].Choices[0].Delta != whole[i].Choices[0].Delta {
				t.Errorf("chunk size %d: frames[%d].delta = %+v, want %+v",
					size, i, split[i].Choices[0].Delta, whole[i].Choices[0].Delta)
			}
		}
	}
}

func TestBridgeStreamSkipsMalformedLines(t *testing.T) {
	stream := "data: {\"message\":\"ok1\"}\ndata: {not json}\ndata: {\"message\":\"ok2\"}\ndata: [DONE]\n"

	frames := collectFrames(t, strings.NewReader(stream))

	// Two valid deltas plus the terminal frame; the malformed line
	// yields nothing and does not halt processing.
	if len(frames) != 3 {
		t.Fatalf("frame count = %d, want 3", len(frames))
	}
	if frames[0].Choices[0].Delta.Content != "ok1" || frames[1].Choices[0].Delta.Content != "ok2" {
		t.Errorf("deltas = %q, %q", frames[0].Choices[0].Delta.Content, frames[1].Choices[0].Delta.Content)
	}
}

func TestBridgeStreamStopsConsumingAfterSentinel(t *testing.T) {
	stream := "data: {\"message\":\"hi\"}\ndata: [DONE]\ndata: {\"message\":\"ghost\"}\n"

	frames := collectFrames(t, strings.NewReader(stream))

	if len(frames) != 2 {
		t.Fatalf("frame count = %d, want 2 (nothing after sentinel)", len(frames))
	}
	if !frames[1].Terminal() {
		t.Error("sentinel did not produce the terminal frame")
	}
}

func TestBridgeStreamAbruptCloseWithoutSentinel(t *testing.T) {
	stream := "data: {\"message\":\"partial\"}\n"

	frames := collectFrames(t, strings.NewReader(stream))

	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	if frames[0].Terminal() {
		t.Error("no sentinel, but a terminal frame was synthesized")
	}
}

func TestBridgeStreamReadErrorTruncates(t *testing.T) {
	r := &failingReader{
		data: "data: {\"message\":\"kept\"}\n",
		err:  io.ErrUnexpectedEOF,
	}

	frames := collectFrames(t, r)

	// The frame read before the failure stands; the sequence ends
	// without a terminal frame and without an error frame.
	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	if frames[0].Choices[0].Delta.Content != "kept" {
		t.Errorf("delta = %q, want kept", frames[0].Choices[0].Delta.Content)
	}
	if frames[0].Terminal() {
		t.Error("read error must not synthesize a terminal frame")
	}
}

func TestBridgeStreamIgnoresNonDataLines(t *testing.T) {
	stream := ": comment\n\ndata: {\"message\":\"hi\"}\n\ndata: [DONE]\n"

	frames := collectFrames(t, strings.NewReader(stream))

	if len(frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(frames))
	}
}

func TestBridgeStreamHandlesOversizedLines(t *testing.T) {
	// A single delta event well past bufio's default 64 KiB line cap
	// must bridge intact, not truncate the stream.
	bigDelta := strings.Repeat("x", 200*1024)
	stream := "data: {\"role\":\"assistant\",\"message\":\"" + bigDelta + "\"}\ndata: [DONE]\n"

	frames := collectFrames(t, strings.NewReader(stream))

	if len(frames) != 2 {
		t.Fatalf("frame count = %d, want 2", len(frames))
	}
	if got := frames[0].Choices[0].Delta.Content; got != bigDelta {
		t.Errorf("delta length = %d, want %d", len(got), len(bigDelta))
	}
	if !frames[1].Terminal() {
		t.Error("stream must still end with the terminal frame")
	}
}

func TestBridgeStreamFrameMetadata(t *testing.T) {
	frames := collectFrames(t, strings.NewReader(simpleStream))

	for i, f := range frames {
		if f.ID != "chatcmpl-test00000000000000000000" {
			t.Errorf("frames[%d].id = %q", i, f.ID)
		}
		if f.Object != "chat.completion.chunk" {
			t.Errorf("frames[%d].object = %q", i, f.Object)
		}
		if f.Model != "gpt-4o-mini" {
			t.Errorf("frames[%d].model = %q", i, f.Model)
		}
		if len(f.Choices) != 1 || f.Choices[0].Index != 0 {
			t.Errorf("frames[%d] choice list malformed: %+v", i, f.Choices)
		}
	}
}
