package store

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"doodleparty/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// NetworkSession is the transport surface the sync pumps run against.
// Production uses WebsocketConnection; tests substitute a mock.
type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// SyncHandler exposes the engine over websockets.
type SyncHandler struct {
	engine *Engine
}

func NewSyncHandler(engine *Engine) *SyncHandler {
	return &SyncHandler{engine: engine}
}

// RegisterRoutes mounts the sync endpoint on the given router.
func (h *SyncHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/v1/rooms/:code/sync", h.SyncRoomHandler)
}

// SyncRoomHandler upgrades to a websocket and runs the op/snapshot pumps
// until the socket drops, at which point the session's disconnect hooks
// fire.
func (h *SyncHandler) SyncRoomHandler(ctx *gin.Context) {
	code := ctx.Param("code")

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	socket, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("[sync %s] websocket upgrade failed: %v", code, err)
		return
	}

	conn, err := h.engine.Connect(ctx.Request.Context(), code)
	if err != nil {
		NewWebsocketConnection(socket).Close("store-unavailable")
		return
	}

	session := newSyncSession(code, conn, NewWebsocketConnection(socket))
	go session.writePump()
	session.readPump()
}

// syncSession ties one websocket to one room connection.
type syncSession struct {
	code    string
	conn    Conn
	socket  NetworkSession
	limiter *rate.Limiter
	outbox  chan []byte
}

func newSyncSession(code string, conn Conn, socket NetworkSession) *syncSession {
	return &syncSession{
		code:    code,
		conn:    conn,
		socket:  socket,
		limiter: rate.NewLimiter(10, 5),
		outbox:  make(chan []byte, 64),
	}
}

func (s *syncSession) readPump() {
	defer s.conn.Close()
	for {
		data, err := s.socket.Read()
		if err != nil {
			logger.Debugf("[sync %s] socket closed: %v", s.code, err)
			return
		}

		op := OpMessage{}
		if err := json.Unmarshal(data, &op); err != nil {
			s.sendFrame(Frame{Type: FrameError, Error: "bad-op"})
			continue
		}

		if !s.limiter.Allow() {
			s.sendFrame(Frame{Type: FrameError, Error: "rate-limited"})
			continue
		}

		s.apply(op)
	}
}

func (s *syncSession) apply(op OpMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	var err error
	switch op.Op {
	case OpSet:
		err = s.conn.Set(ctx, op.Path, op.Value)
	case OpUpdate:
		fields := op.Field
		if fields == nil {
			if m, ok := op.Value.(map[string]any); ok {
				fields = m
			}
		}
		err = s.conn.Update(ctx, op.Path, fields)
	case OpPush:
		var key string
		key, err = s.conn.Push(ctx, op.Path, op.Value)
		if err == nil {
			s.sendFrame(Frame{Type: FramePushed, Key: key})
		}
	case OpRemove:
		err = s.conn.Remove(ctx, op.Path)
	case OpOnDisconnect:
		err = s.conn.OnDisconnect(ctx, op.Path)
	default:
		s.sendFrame(Frame{Type: FrameError, Error: "unknown-op"})
		return
	}
	if err != nil {
		s.sendFrame(Frame{Type: FrameError, Error: "store-unavailable"})
	}
}

func (s *syncSession) writePump() {
	pingTicker := time.NewTicker(time.Second * 30)
	defer pingTicker.Stop()
	defer s.socket.Close("")

	for {
		select {
		case snap, ok := <-s.conn.Snapshots():
			if !ok {
				return
			}
			s.sendFrame(Frame{Type: FrameSnapshot, Room: snap.Room, Doc: snap.Doc})
		case data, ok := <-s.outbox:
			if !ok {
				return
			}
			if err := s.socket.Write(data); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := s.socket.Ping(); err != nil {
				return
			}
		}
	}
}

func (s *syncSession) sendFrame(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		logger.Criticalf("[sync %s] failed to marshal frame: %v", s.code, err)
		return
	}
	select {
	case s.outbox <- data:
	default:
		logger.Warningf("[sync %s] outbox full, dropping frame %s", s.code, frame.Type)
	}
}
