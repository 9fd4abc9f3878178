package coordinator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gcbaptista/go-ordered-list/internal/engine"
	"github.com/gcbaptista/go-ordered-list/internal/errors"
	"github.com/gcbaptista/go-ordered-list/model"
)

// fakeTransport serves requests from an in-process collection. Gates let a test hold a
// round trip open until it chooses to release it.
type fakeTransport struct {
	collection *engine.Collection

	fetches    atomic.Int64
	orderGate  chan struct{}
	opGates    map[model.MoveOperation]chan struct{}
	orderCalls chan model.MoveOperation
	failOrder  error
	failOps    map[model.MoveOperation]error
	failSelect error
	failReset  error
}

func (f *fakeTransport) FetchItems(_ context.Context, page, limit int, search string) (model.PagedView, error) {
	f.fetches.Add(1)
	return f.collection.Query(page, limit, search)
}

func (f *fakeTransport) UpdateSelection(_ context.Context, update model.SelectionUpdate) (model.SelectionResult, error) {
	if f.failSelect != nil {
		return model.SelectionResult{}, f.failSelect
	}
	return model.SelectionResult{Success: true, SelectedCount: f.collection.UpdateSelection(update)}, nil
}

func (f *fakeTransport) UpdateOrder(ctx context.Context, op model.MoveOperation) (model.OrderResult, error) {
	if f.orderCalls != nil {
		f.orderCalls <- op
	}
	gate := f.orderGate
	if g, ok := f.opGates[op]; ok {
		gate = g
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.OrderResult{}, ctx.Err()
		}
	}
	if f.failOrder != nil {
		return model.OrderResult{}, f.failOrder
	}
	if err, ok := f.failOps[op]; ok {
		return model.OrderResult{}, err
	}
	if err := f.collection.Move(op); err != nil {
		return model.OrderResult{}, errors.NewHTTPError(400, "Invalid index: "+err.Error())
	}
	return model.OrderResult{Success: true, Message: "Order updated successfully"}, nil
}

func (f *fakeTransport) ResetOrder(context.Context) (model.OrderResult, error) {
	if f.failReset != nil {
		return model.OrderResult{}, f.failReset
	}
	f.collection.ResetOrder()
	return model.OrderResult{Success: true, Message: "Custom order reset"}, nil
}

func (f *fakeTransport) FetchStats(context.Context) (model.Stats, error) {
	return f.collection.Stats(), nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, title+": "+description)
}

func (n *recordingNotifier) Failure(title string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, title+": "+err.Error())
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.failures)
}

type recordingListener struct {
	mu    sync.Mutex
	views []View
}

func (l *recordingListener) ViewChanged(v View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.views = append(l.views, v)
}

func (l *recordingListener) all() []View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]View(nil), l.views...)
}
