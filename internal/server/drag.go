package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/project"
)

// Drag socket message types.
const (
	MsgBegin  = "begin"
	MsgMove   = "move"
	MsgCell   = "cell"
	MsgEnd    = "end"
	MsgCancel = "cancel"

	MsgState   = "state"
	MsgPreview = "preview"
	MsgOutcome = "outcome"
	MsgError   = "error"
)

const (
	socketReadTimeout  = 5 * time.Minute
	socketWriteTimeout = 5 * time.Second
)

// ClientMsg is a message from a drag client.
//
//	{"type": "begin", "tile": "play"}
//	{"type": "move", "x": 130.5, "y": 12}
//	{"type": "cell", "col": 3, "row": 1}
//	{"type": "end"}
//	{"type": "cancel"}
type ClientMsg struct {
	Type string  `json:"type"`
	Tile string  `json:"tile,omitempty"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Col  int     `json:"col,omitempty"`
	Row  int     `json:"row,omitempty"`
}

// ServerMsg is a message to a drag client. Fields are set by type.
type ServerMsg struct {
	Type     string               `json:"type"`
	Session  string               `json:"session,omitempty"`
	Tile     string               `json:"tile,omitempty"`
	Target   *grid.Cell           `json:"target,omitempty"`
	Origins  map[string]grid.Cell `json:"origins,omitempty"`
	Blocked  []string             `json:"blocked,omitempty"`
	Valid    bool                 `json:"valid"`
	Status   string               `json:"status,omitempty"`
	Moved    []string             `json:"moved,omitempty"`
	Revision uint64               `json:"revision,omitempty"`
	Project  *project.Project     `json:"project,omitempty"`
	Code     string               `json:"code,omitempty"`
	Message  string               `json:"message,omitempty"`
}

func previewMsg(p drag.Preview) ServerMsg {
	target := p.Target
	return ServerMsg{
		Type:    MsgPreview,
		Session: p.Session,
		Tile:    p.Tile,
		Target:  &target,
		Origins: p.Origins,
		Blocked: p.Blocked,
		Valid:   p.Valid,
	}
}

func errorMsg(err error) ServerMsg {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return ServerMsg{Type: MsgError, Code: string(code), Message: errors.UserMessage(err)}
}

// socket is one drag client connected to a board. A board has at most one
// drag session; the socket that began it is the only one that may move or
// end it.
type socket struct {
	srv     *Server
	conn    *websocket.Conn
	name    string
	session string
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := context.WithoutCancel(r.Context())

	var state ServerMsg
	err := s.withBoard(ctx, name, func(b *board.Board) error {
		state = ServerMsg{Type: MsgState, Revision: b.Engine.Revision(), Project: b.Project}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	observability.HTTP().OnSocket(ctx, name, true)
	s.logger.Debug("drag socket opened", "board", name)
	defer func() {
		observability.HTTP().OnSocket(ctx, name, false)
		s.logger.Debug("drag socket closed", "board", name)
	}()

	quit := make(chan struct{})
	defer close(quit)
	go func() {
		select {
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
		case <-quit:
		}
	}()

	sock := &socket{srv: s, conn: conn, name: name}
	defer sock.release(ctx)

	if err := sock.write(state); err != nil {
		return
	}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			if sock.write(errorMsg(errors.Wrap(errors.ErrCodeInvalidInput, err, "decode message"))) != nil {
				return
			}
			continue
		}
		if sock.write(sock.handle(ctx, msg)) != nil {
			return
		}
	}
}

func (c *socket) write(msg ServerMsg) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
	return c.conn.WriteJSON(msg)
}

// handle applies one client message and returns the reply.
func (c *socket) handle(ctx context.Context, msg ClientMsg) ServerMsg {
	var reply ServerMsg
	err := c.srv.withBoard(ctx, c.name, func(b *board.Board) error {
		var err error
		reply, err = c.apply(ctx, b, msg)
		return err
	})
	if err != nil {
		return errorMsg(err)
	}
	return reply
}

func (c *socket) apply(ctx context.Context, b *board.Board, msg ClientMsg) (ServerMsg, error) {
	switch msg.Type {
	case MsgBegin:
		if err := b.Engine.BeginDrag(msg.Tile); err != nil {
			return ServerMsg{}, err
		}
		p, _ := b.Engine.DragPreview()
		c.session = p.Session
		return previewMsg(p), nil
	case MsgMove, MsgCell, MsgEnd, MsgCancel:
	default:
		return ServerMsg{}, errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}

	if err := c.owns(b); err != nil {
		return ServerMsg{}, err
	}
	switch msg.Type {
	case MsgMove:
		p, err := b.Engine.UpdateDrag(grid.Point{X: msg.X, Y: msg.Y})
		if err != nil {
			return ServerMsg{}, err
		}
		return previewMsg(p), nil
	case MsgCell:
		p, err := b.Engine.MoveDrag(grid.Cell{Col: msg.Col, Row: msg.Row})
		if err != nil {
			return ServerMsg{}, err
		}
		return previewMsg(p), nil
	case MsgEnd:
		out, err := b.Engine.EndDrag()
		c.session = ""
		if err != nil {
			return ServerMsg{}, err
		}
		reply := ServerMsg{
			Type:     MsgOutcome,
			Session:  out.Session,
			Tile:     out.Tile,
			Target:   &out.Target,
			Status:   string(out.Status),
			Moved:    out.Moved,
			Revision: b.Engine.Revision(),
		}
		if out.Committed() {
			b.Sync()
			if err := c.srv.persist(ctx, b); err != nil {
				return ServerMsg{}, err
			}
			reply.Project = b.Project
		}
		return reply, nil
	case MsgCancel:
		p, _ := b.Engine.DragPreview()
		b.Engine.CancelDrag()
		c.session = ""
		return ServerMsg{
			Type:     MsgOutcome,
			Session:  p.Session,
			Tile:     p.Tile,
			Status:   string(drag.StatusCancelled),
			Revision: b.Engine.Revision(),
		}, nil
	}
	return ServerMsg{}, nil
}

// owns reports an error unless the board's active session was begun by
// this socket.
func (c *socket) owns(b *board.Board) error {
	p, ok := b.Engine.DragPreview()
	if !ok || c.session == "" || p.Session != c.session {
		c.session = ""
		return errors.New(errors.ErrCodeNoDragSession, "no drag session on this connection")
	}
	return nil
}

// release cancels the socket's session, if it is still active.
func (c *socket) release(ctx context.Context) {
	if c.session == "" {
		return
	}
	_ = c.srv.withBoard(ctx, c.name, func(b *board.Board) error {
		if p, ok := b.Engine.DragPreview(); ok && p.Session == c.session {
			b.Engine.CancelDrag()
			c.srv.logger.Debug("cancelled abandoned drag", "board", c.name, "tile", p.Tile)
		}
		return nil
	})
}
