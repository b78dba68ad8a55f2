package bridge

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/trayd/trayd/internal/errors"
	"github.com/trayd/trayd/internal/util"
)

// HandlerFunc serves one method. The result is JSON-encoded into the
// response.
type HandlerFunc func(ctx context.Context, args Args) (any, error)

// StreamFunc starts a push stream. The returned channel is drained until it
// closes or ctx is cancelled; cancelling ctx must eventually close it.
type StreamFunc func(ctx context.Context) (<-chan any, error)

// Router maps channel and method names to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	streams  map[string]StreamFunc
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		streams:  make(map[string]StreamFunc),
	}
}

func key(channel, method string) string { return channel + "/" + method }

// Handle registers h for channel/method, replacing any previous handler.
func (r *Router) Handle(channel, method string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key(channel, method)] = h
}

// HandleStream registers a stream started by "listen" on channel name.
func (r *Router) HandleStream(name string, fn StreamFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[name] = fn
}

// Dispatch runs the handler for channel/method. Unknown methods fail with
// NOT_IMPLEMENTED, suggesting close matches on the same channel.
func (r *Router) Dispatch(ctx context.Context, channel, method string, args Args) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[key(channel, method)]
	r.mu.RUnlock()
	if !ok {
		err := errors.NotImplemented(channel, method)
		if similar := util.SuggestSimilar(method, r.channelMethods(channel), 3); len(similar) > 0 {
			err.Suggestion = "Did you mean " + strings.Join(similar, ", ") + "?"
		}
		return nil, err
	}
	if args == nil {
		args = Args{}
	}
	return h(ctx, args)
}

// Stream returns the stream registered under name.
func (r *Router) Stream(name string) (StreamFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.streams[name]
	return fn, ok
}

// Methods lists every registered channel/method pair, sorted.
func (r *Router) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers)+2*len(r.streams))
	for k := range r.handlers {
		out = append(out, k)
	}
	for name := range r.streams {
		out = append(out, key(name, MethodStreamListen), key(name, MethodStreamCancel))
	}
	sort.Strings(out)
	return out
}

// errorBody converts a handler failure for the wire.
func errorBody(err error) *ErrorBody {
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrBridge
	}
	return &ErrorBody{Code: code, Message: errors.Summary(err), Suggestion: errors.SuggestionOf(err)}
}

func (r *Router) channelMethods(channel string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for k := range r.handlers {
		if m, ok := strings.CutPrefix(k, channel+"/"); ok {
			out = append(out, m)
		}
	}
	return out
}
