package game

import (
	"context"
	"time"

	"doodleparty/logger"
	"doodleparty/store"
)

// RevealDelaySeconds is how long the reveal screen stays up before the
// next round starts or the game ends.
const RevealDelaySeconds = 5

const writeTimeout = time.Second * 5

type commandKind int

const (
	cmdStartGame commandKind = iota
	cmdChooseWord
	cmdGuess
	cmdStroke
	cmdClearCanvas
	cmdPlayAgain
)

type command struct {
	kind    commandKind
	ctx     context.Context
	word    string
	guess   string
	stroke  Stroke
	errChan chan error
}

type snapshotReply struct {
	room   Room
	joined bool
}

// Client is one device's view of a room: it mirrors every snapshot
// wholesale, performs the writes its role permits, and runs the shared
// conventions (timer ticking, reveal detection, round advance). A single
// actor goroutine owns all state; UI-facing methods talk to it over
// channels.
type Client struct {
	session *Session
	opener  StoreOpener
	words   RandomWordsGenerator
	tickers PeriodicTickerChannelCreator

	conn     store.Conn
	roomCode string

	mirror      *Room
	wordChoices []string
	revealTicks int

	commands       chan command
	snapshotReq    chan chan snapshotReply
	wordChoicesReq chan chan []string
	leaveChan      chan chan struct{}
	updates        chan Room
}

func newClient(session *Session, opener StoreOpener, words RandomWordsGenerator, tickers PeriodicTickerChannelCreator) *Client {
	return &Client{
		session:        session,
		opener:         opener,
		words:          words,
		tickers:        tickers,
		commands:       make(chan command),
		snapshotReq:    make(chan chan snapshotReply),
		wordChoicesReq: make(chan chan []string),
		leaveChan:      make(chan chan struct{}),
		updates:        make(chan Room, 1),
	}
}

// CreateRoom generates a room code, initializes the document and joins
// it. The display name is cached locally for the next launch.
func CreateRoom(ctx context.Context, session *Session, opener StoreOpener, words RandomWordsGenerator, tickers PeriodicTickerChannelCreator, displayName string) (*Client, string, error) {
	code := NewRoomCode()
	conn, err := opener.Connect(ctx, code)
	if err != nil {
		return nil, "", err
	}

	// The subscription's first delivery is the pre-creation document;
	// consume it before writing so the join step sees the created room.
	select {
	case <-conn.Snapshots():
	case <-ctx.Done():
		conn.Close()
		return nil, "", ctx.Err()
	}

	initial := map[string]any{
		"gameState":   StateLobby,
		"currentWord": "",
		"timeLeft":    RoundDuration,
		"round":       1,
	}
	if err := conn.Set(ctx, "", initial); err != nil {
		conn.Close()
		return nil, "", err
	}

	client, err := finishJoin(ctx, session, opener, words, tickers, conn, code, displayName)
	if err != nil {
		return nil, "", err
	}
	return client, code, nil
}

// JoinRoom connects to an existing room. If the first snapshot shows no
// document, the room does not exist and the caller must surface
// ErrRoomNotFound and return to the pre-join screen.
func JoinRoom(ctx context.Context, session *Session, opener StoreOpener, words RandomWordsGenerator, tickers PeriodicTickerChannelCreator, code, displayName string) (*Client, error) {
	conn, err := opener.Connect(ctx, code)
	if err != nil {
		return nil, err
	}
	return finishJoin(ctx, session, opener, words, tickers, conn, code, displayName)
}

func finishJoin(ctx context.Context, session *Session, opener StoreOpener, words RandomWordsGenerator, tickers PeriodicTickerChannelCreator, conn store.Conn, code, displayName string) (*Client, error) {
	var room *Room
	select {
	case snap, ok := <-conn.Snapshots():
		if !ok {
			conn.Close()
			return nil, ErrRoomNotFound
		}
		decoded, err := decodeRoom(snap.Doc)
		if err != nil {
			conn.Close()
			return nil, err
		}
		room = decoded
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}

	if room == nil {
		conn.Close()
		return nil, ErrRoomNotFound
	}

	session.SetDisplayName(displayName)

	playerPath := "players/" + session.PlayerID
	entry := Player{ID: session.PlayerID, Name: session.DisplayName()}
	if err := conn.Set(ctx, playerPath, entry); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.OnDisconnect(ctx, playerPath); err != nil {
		conn.Close()
		return nil, err
	}

	client := newClient(session, opener, words, tickers)
	client.conn = conn
	client.roomCode = code
	client.mirror = room

	go client.run()
	logger.Infof("[room %s] %s joined as %s", code, session.DisplayName(), session.PlayerID)
	return client, nil
}

// RoomCode returns the code of the joined room.
func (c *Client) RoomCode() string {
	return c.roomCode
}

// PlayerID returns this client's player id.
func (c *Client) PlayerID() string {
	return c.session.PlayerID
}

// Updates delivers the local mirror after each applied snapshot,
// conflated to the latest.
func (c *Client) Updates() <-chan Room {
	return c.updates
}

// Snapshot returns the current mirror. joined is false once the room
// document has vanished from under the client.
func (c *Client) Snapshot() (room Room, joined bool) {
	respChan := make(chan snapshotReply, 1)
	c.snapshotReq <- respChan
	reply := <-respChan
	return reply.room, reply.joined
}

// WordChoices returns the three candidate words while this client is the
// drawer choosing. The choices never touch the shared document.
func (c *Client) WordChoices() []string {
	respChan := make(chan []string, 1)
	c.wordChoicesReq <- respChan
	return <-respChan
}

// StartGame triggers lobby -> guessing for round 1. Rejected locally,
// with no document write, when fewer than two players are present.
func (c *Client) StartGame(ctx context.Context) error {
	return c.send(ctx, command{kind: cmdStartGame})
}

// ChooseWord is the drawer's pick from its local choices; it writes the
// word once and flips the room into drawing.
func (c *Client) ChooseWord(ctx context.Context, word string) error {
	return c.send(ctx, command{kind: cmdChooseWord, word: word})
}

// Guess submits one guess attempt. Each player gets one per round.
func (c *Client) Guess(ctx context.Context, guess string) error {
	return c.send(ctx, command{kind: cmdGuess, guess: guess})
}

// AppendStroke appends one completed gesture to the shared drawing.
func (c *Client) AppendStroke(ctx context.Context, stroke Stroke) error {
	return c.send(ctx, command{kind: cmdStroke, stroke: stroke})
}

// ClearCanvas wipes the shared drawing. Drawer only.
func (c *Client) ClearCanvas(ctx context.Context) error {
	return c.send(ctx, command{kind: cmdClearCanvas})
}

// PlayAgain resets a finished game back to the lobby, keeping players and
// scores.
func (c *Client) PlayAgain(ctx context.Context) error {
	return c.send(ctx, command{kind: cmdPlayAgain})
}

// Leave removes this player's entry eagerly and severs the connection.
// The disconnect hook remains the backstop for non-voluntary exits.
func (c *Client) Leave() {
	doneChan := make(chan struct{})
	c.leaveChan <- doneChan
	<-doneChan
}

func (c *Client) send(ctx context.Context, cmd command) error {
	cmd.ctx = ctx
	cmd.errChan = make(chan error, 1)
	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) run() {
	tick, stopTick := c.tickers.Create(time.Second)
	defer stopTick()
	for {
		select {
		case snap, ok := <-c.conn.Snapshots():
			if !ok {
				return
			}
			c.handleSnapshot(snap)

		case <-tick:
			c.handleTick()

		case cmd := <-c.commands:
			cmd.errChan <- c.handleCommand(cmd)

		case respChan := <-c.snapshotReq:
			reply := snapshotReply{joined: c.mirror != nil}
			if c.mirror != nil {
				reply.room = *c.mirror
			}
			respChan <- reply

		case respChan := <-c.wordChoicesReq:
			respChan <- c.wordChoices

		case doneChan := <-c.leaveChan:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			c.conn.Remove(ctx, "players/"+c.session.PlayerID)
			cancel()
			c.conn.Close()
			close(doneChan)
			return
		}
	}
}

// handleSnapshot replaces the local mirror wholesale and runs the
// replicated conventions on the fresh state.
func (c *Client) handleSnapshot(snap store.Snapshot) {
	room, err := decodeRoom(snap.Doc)
	if err != nil {
		logger.Criticalf("[room %s] undecodable snapshot: %v", c.roomCode, err)
		return
	}

	prev := c.mirror
	c.mirror = room

	if room == nil {
		// Room vanished (last player entry removed). The UI observes the
		// empty mirror and closes; the store enforces nothing here.
		c.wordChoices = nil
		c.pushUpdate(Room{})
		return
	}

	c.refreshWordChoices(room)

	if room.GameState == StateReveal && (prev == nil || prev.GameState != StateReveal) {
		c.revealTicks = RevealDelaySeconds
	}

	// Reveal on all-guessed: evaluated against this snapshot's player
	// set, never a stale capture. Whoever observes it first writes it;
	// duplicates converge on the same state.
	if roundActive(room.GameState) && allNonDrawersGuessed(room) {
		c.write(func(ctx context.Context) error {
			return c.conn.Update(ctx, "", revealUpdate(false))
		})
	}

	c.pushUpdate(*room)
}

// refreshWordChoices samples the drawer's three candidates locally when a
// round lands on this client, and drops them once a word is on the board.
func (c *Client) refreshWordChoices(room *Room) {
	choosing := room.GameState == StateGuessing &&
		room.CurrentDrawer == c.session.PlayerID &&
		room.CurrentWord == ""
	if choosing && c.wordChoices == nil {
		c.wordChoices = c.words.Generate(3)
	}
	if !choosing {
		c.wordChoices = nil
	}
}

// handleTick drives the two time-based conventions: the elected client's
// countdown and the reveal-screen delay.
func (c *Client) handleTick() {
	if c.mirror == nil {
		return
	}

	switch c.mirror.GameState {
	case StateDrawing, StateGuessing:
		owner, ok := TimerOwnerID(c.mirror)
		if !ok || owner != c.session.PlayerID {
			return
		}
		if c.mirror.TimeLeft <= 1 {
			c.write(func(ctx context.Context) error {
				return c.conn.Update(ctx, "", revealUpdate(true))
			})
			return
		}
		next := c.mirror.TimeLeft - 1
		c.write(func(ctx context.Context) error {
			return c.conn.Update(ctx, "", map[string]any{"timeLeft": next})
		})

	case StateReveal:
		if c.revealTicks <= 0 {
			return
		}
		c.revealTicks--
		if c.revealTicks == 0 {
			c.advanceAfterReveal()
		}
	}
}

// advanceAfterReveal moves on from the reveal screen: next round, or
// gameover once every player has drawn. All clients compute the same
// absolute update from the same snapshot, so racing writers converge.
func (c *Client) advanceAfterReveal() {
	if shouldEndGame(c.mirror) {
		c.write(func(ctx context.Context) error {
			return c.conn.Update(ctx, "", gameoverUpdate())
		})
		return
	}
	fields, err := roundStartUpdate(c.mirror, c.mirror.Round+1)
	if err != nil {
		logger.Warningf("[room %s] cannot start next round: %v", c.roomCode, err)
		return
	}
	c.write(func(ctx context.Context) error {
		return c.conn.Update(ctx, "", fields)
	})
}

func (c *Client) handleCommand(cmd command) error {
	if c.mirror == nil {
		return ErrNotJoined
	}
	switch cmd.kind {
	case cmdStartGame:
		return c.handleStartGame(cmd.ctx)
	case cmdChooseWord:
		return c.handleChooseWord(cmd.ctx, cmd.word)
	case cmdGuess:
		return c.handleGuess(cmd.ctx, cmd.guess)
	case cmdStroke:
		return c.handleStroke(cmd.ctx, cmd.stroke)
	case cmdClearCanvas:
		return c.handleClearCanvas(cmd.ctx)
	case cmdPlayAgain:
		return c.handlePlayAgain(cmd.ctx)
	}
	return nil
}

func (c *Client) handleStartGame(ctx context.Context) error {
	if c.mirror.GameState != StateLobby {
		return ErrWrongState
	}
	fields, err := roundStartUpdate(c.mirror, c.mirror.Round)
	if err != nil {
		return err
	}
	return c.conn.Update(ctx, "", fields)
}

func (c *Client) handleChooseWord(ctx context.Context, word string) error {
	if c.mirror.GameState != StateGuessing || c.mirror.CurrentDrawer != c.session.PlayerID {
		return ErrNotDrawer
	}
	valid := false
	for _, choice := range c.wordChoices {
		if choice == word {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidWordChoice
	}
	c.wordChoices = nil
	return c.conn.Update(ctx, "", wordChosenUpdate(word))
}

func (c *Client) handleGuess(ctx context.Context, guess string) error {
	if !roundActive(c.mirror.GameState) {
		return ErrWrongState
	}
	self, ok := c.mirror.Players[c.session.PlayerID]
	if !ok {
		return ErrNotJoined
	}
	if c.mirror.CurrentDrawer == c.session.PlayerID {
		return ErrDrawerCannotGuess
	}
	if self.HasGuessed {
		return ErrAlreadyGuessed
	}

	isCorrect := IsCorrectGuess(guess, c.mirror.CurrentWord)
	message := GuessMessage{Player: self.Name, Message: guess, IsCorrect: isCorrect}
	if _, err := c.conn.Push(ctx, "chatMessages", message); err != nil {
		return err
	}

	// Only this player's client ever writes its score and hasGuessed.
	fields := map[string]any{"hasGuessed": true}
	if isCorrect {
		fields["score"] = self.Score + Points(c.mirror.TimeLeft)
	}
	return c.conn.Update(ctx, "players/"+self.ID, fields)
}

func (c *Client) handleStroke(ctx context.Context, stroke Stroke) error {
	if c.mirror.CurrentDrawer != c.session.PlayerID {
		return ErrNotDrawer
	}
	if c.mirror.GameState != StateDrawing {
		return ErrWrongState
	}
	_, err := c.conn.Push(ctx, "paths", stroke)
	return err
}

func (c *Client) handleClearCanvas(ctx context.Context) error {
	if c.mirror.CurrentDrawer != c.session.PlayerID {
		return ErrNotDrawer
	}
	return c.conn.Remove(ctx, "paths")
}

func (c *Client) handlePlayAgain(ctx context.Context) error {
	if c.mirror.GameState != StateGameover {
		return ErrWrongState
	}
	return c.conn.Update(ctx, "", playAgainUpdate())
}

func roundActive(state GameState) bool {
	return state == StateDrawing || state == StateGuessing
}

func (c *Client) write(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		// Fire-and-forget per the protocol: a dropped write is not
		// retried, the next snapshot re-evaluates from scratch.
		logger.Warningf("[room %s] write dropped: %v", c.roomCode, err)
	}
}

func (c *Client) pushUpdate(room Room) {
	for {
		select {
		case c.updates <- room:
			return
		default:
		}
		select {
		case <-c.updates:
		default:
		}
	}
}
