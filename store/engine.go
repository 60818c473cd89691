package store

import (
	"context"
	"time"

	"doodleparty/logger"
)

// Snapshot is one whole-document view of a room. Doc is nil when the room
// does not exist.
type Snapshot struct {
	Room string
	Doc  map[string]any
}

// Subscription delivers snapshots for one room to one session. Delivery is
// conflating: if the consumer lags, intermediate snapshots are dropped and
// only the latest is kept, matching the "local mirror replaced wholesale"
// consumption model.
type Subscription struct {
	session string
	code    string
	ch      chan Snapshot
}

func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

type mutKind int

const (
	mutSet mutKind = iota
	mutUpdate
	mutRemove
	mutPush
)

// mutation is one write request. All four kinds travel on a single inbox
// channel so that a caller's sequential writes are applied in submission
// order: a clear followed by an append must never resolve as append then
// clear.
type mutation struct {
	kind    mutKind
	code    string
	path    string
	value   any
	fields  map[string]any
	keyChan chan string
}

type subscribeOp struct {
	session  string
	code     string
	respChan chan *Subscription
}

type hookOp struct {
	session string
	code    string
	path    string
}

// Engine is the room document store: a path-addressed JSON tree per room
// code with whole-document snapshot fan-out and disconnect hooks. A single
// actor goroutine serializes every mutation, which is what gives fields
// their last-write-wins semantics without locks, and the shared mutation
// inbox keeps each caller's writes in submission order.
type Engine struct {
	rooms map[string]map[string]any
	subs  map[string][]*Subscription
	hooks map[string][]hookOp
	keys  *pushKeyGenerator
	clock func() time.Time

	mutChan        chan mutation
	subscribeChan  chan subscribeOp
	unsubChan      chan *Subscription
	disconnectChan chan hookOp
	dropChan       chan string
}

func NewEngine() *Engine {
	return &Engine{
		rooms:          map[string]map[string]any{},
		subs:           map[string][]*Subscription{},
		hooks:          map[string][]hookOp{},
		keys:           newPushKeyGenerator(),
		clock:          time.Now,
		mutChan:        make(chan mutation, 256),
		subscribeChan:  make(chan subscribeOp),
		unsubChan:      make(chan *Subscription, 64),
		disconnectChan: make(chan hookOp, 64),
		dropChan:       make(chan string, 64),
	}
}

// Run is the engine actor. It closes started once the loop is receiving.
func (e *Engine) Run(started chan struct{}) {
	close(started)
	for {
		select {
		case m := <-e.mutChan:
			e.handleMutation(m)
		case op := <-e.subscribeChan:
			e.handleSubscribe(op)
		case sub := <-e.unsubChan:
			e.handleUnsubscribe(sub)
		case op := <-e.disconnectChan:
			e.hooks[op.session] = append(e.hooks[op.session], op)
		case session := <-e.dropChan:
			e.handleDropSession(session)
		}
	}
}

// Set replaces the subtree at path. Room creation is a Set at the root.
func (e *Engine) Set(ctx context.Context, code, path string, value any) error {
	tree, err := normalize(value)
	if err != nil {
		return err
	}
	select {
	case e.mutChan <- mutation{kind: mutSet, code: code, path: path, value: tree}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update merges fields at path atomically. Field keys may be slash-nested.
func (e *Engine) Update(ctx context.Context, code, path string, fields map[string]any) error {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		tree, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[k] = tree
	}
	select {
	case e.mutChan <- mutation{kind: mutUpdate, code: code, path: path, fields: normalized}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Push appends value under a generated key at path and returns the key.
func (e *Engine) Push(ctx context.Context, code, path string, value any) (string, error) {
	tree, err := normalize(value)
	if err != nil {
		return "", err
	}
	keyChan := make(chan string, 1)
	select {
	case e.mutChan <- mutation{kind: mutPush, code: code, path: path, value: tree, keyChan: keyChan}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case key := <-keyChan:
		return key, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Remove deletes the subtree at path.
func (e *Engine) Remove(ctx context.Context, code, path string) error {
	select {
	case e.mutChan <- mutation{kind: mutRemove, code: code, path: path}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe attaches a session to a room's snapshot feed. The current
// document (nil if the room does not exist) is delivered immediately.
func (e *Engine) Subscribe(ctx context.Context, session, code string) (*Subscription, error) {
	respChan := make(chan *Subscription, 1)
	select {
	case e.subscribeChan <- subscribeOp{session: session, code: code, respChan: respChan}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case sub := <-respChan:
		return sub, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) Unsubscribe(sub *Subscription) {
	e.unsubChan <- sub
}

// OnDisconnect registers removal of path when the session drops.
func (e *Engine) OnDisconnect(ctx context.Context, session, code, path string) error {
	select {
	case e.disconnectChan <- hookOp{session: session, code: code, path: path}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DropSession runs the session's disconnect hooks and closes its
// subscriptions. The transport layer calls this when a connection severs,
// independent of graceful shutdown.
func (e *Engine) DropSession(session string) {
	e.dropChan <- session
}

func (e *Engine) handleMutation(m mutation) {
	switch m.kind {
	case mutSet:
		e.handleSet(m)
	case mutUpdate:
		e.handleUpdate(m)
	case mutRemove:
		e.handleRemove(m)
	case mutPush:
		e.handlePush(m)
	}
}

func (e *Engine) handleSet(m mutation) {
	doc, exists := e.rooms[m.code]
	if !exists {
		doc = map[string]any{}
	}
	doc = setAtPath(doc, splitPath(m.path), m.value)
	e.commit(m.code, doc)
}

func (e *Engine) handleUpdate(m mutation) {
	doc, exists := e.rooms[m.code]
	if !exists {
		doc = map[string]any{}
	}
	doc = updateAtPath(doc, splitPath(m.path), m.fields)
	e.commit(m.code, doc)
}

func (e *Engine) handleRemove(m mutation) {
	doc, exists := e.rooms[m.code]
	if !exists {
		return
	}
	removeAtPath(doc, splitPath(m.path))
	e.commit(m.code, doc)
}

func (e *Engine) handlePush(m mutation) {
	doc, exists := e.rooms[m.code]
	if !exists {
		doc = map[string]any{}
	}
	key := e.keys.next(e.clock())
	doc = setAtPath(doc, append(splitPath(m.path), key), m.value)
	m.keyChan <- key
	e.commit(m.code, doc)
}

func (e *Engine) handleSubscribe(op subscribeOp) {
	sub := &Subscription{
		session: op.session,
		code:    op.code,
		ch:      make(chan Snapshot, 16),
	}
	e.subs[op.code] = append(e.subs[op.code], sub)
	op.respChan <- sub
	sub.deliver(Snapshot{Room: op.code, Doc: e.snapshotDoc(op.code)})
}

func (e *Engine) handleUnsubscribe(sub *Subscription) {
	remaining := e.subs[sub.code][:0]
	for _, s := range e.subs[sub.code] {
		if s != sub {
			remaining = append(remaining, s)
		}
	}
	if len(remaining) == 0 {
		delete(e.subs, sub.code)
	} else {
		e.subs[sub.code] = remaining
	}
	close(sub.ch)
}

func (e *Engine) handleDropSession(session string) {
	hooks := e.hooks[session]
	delete(e.hooks, session)
	for _, h := range hooks {
		logger.Debugf("[store] session %s dropped, removing %s/%s", session, h.code, h.path)
		e.handleRemove(mutation{kind: mutRemove, code: h.code, path: h.path})
	}
	for code, subs := range e.subs {
		remaining := subs[:0]
		for _, s := range subs {
			if s.session == session {
				close(s.ch)
				continue
			}
			remaining = append(remaining, s)
		}
		if len(remaining) == 0 {
			delete(e.subs, code)
		} else {
			e.subs[code] = remaining
		}
	}
}

// commit stores the new document (dropping it entirely when empty) and
// fans the snapshot out to every subscriber of the room.
func (e *Engine) commit(code string, doc map[string]any) {
	if len(doc) == 0 {
		delete(e.rooms, code)
	} else {
		e.rooms[code] = doc
	}
	snap := Snapshot{Room: code, Doc: e.snapshotDoc(code)}
	for _, sub := range e.subs[code] {
		sub.deliver(snap)
	}
}

func (e *Engine) snapshotDoc(code string) map[string]any {
	doc, exists := e.rooms[code]
	if !exists {
		return nil
	}
	return copyValue(doc).(map[string]any)
}

func (s *Subscription) deliver(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
