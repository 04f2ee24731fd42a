package game

import (
	"strconv"

	"github.com/beka-birhanu/vinom-zkmaze/maze"
)

// State is the state of a replay.
type State uint8

const (
	Traveling   State = iota // Initial state, moves are still consumed.
	ReachedGoal              // Terminal, the walker stands on the goal.
	Rejected                 // Terminal, a move or the start cell was refused.
)

func (s State) String() string {
	switch s {
	case Traveling:
		return "traveling"
	case ReachedGoal:
		return "reached-goal"
	case Rejected:
		return "rejected"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether no further move can change the state.
func (s State) Terminal() bool {
	return s != Traveling
}

// RejectReason tells why a walker was rejected.
type RejectReason uint8

const (
	NotRejected RejectReason = iota
	InvalidDirection
	OutOfBounds
	WallCollision
	BlockedStart
)

func (r RejectReason) String() string {
	switch r {
	case NotRejected:
		return "none"
	case InvalidDirection:
		return "invalid direction"
	case OutOfBounds:
		return "out of bounds"
	case WallCollision:
		return "wall collision"
	case BlockedStart:
		return "blocked start"
	default:
		return "RejectReason(" + strconv.Itoa(int(r)) + ")"
	}
}

// Walker walks a board from the canonical start towards the canonical goal.
// A Walker is not safe for concurrent use; independent replays use independent walkers.
type Walker struct {
	board  Board
	goal   maze.CellPosition
	pos    maze.CellPosition
	state  State
	reason RejectReason
	steps  int
}

// NewWalker places a walker on the start cell of b. A start cell that is not a path
// rejects the walker straight away.
func NewWalker(b Board) *Walker {
	w := &Walker{
		board: b,
		goal:  Goal(b),
		pos:   Start(b),
		state: Traveling,
	}
	if !b.IsPath(w.pos.Row, w.pos.Col) {
		w.reject(BlockedStart)
	}
	return w
}

func (w *Walker) reject(r RejectReason) State {
	w.state = Rejected
	w.reason = r
	return w.state
}

// Step applies one move and returns the resulting state.
// Once the walker reached a terminal state further moves are ignored.
func (w *Walker) Step(d maze.Direction) State {
	if w.state.Terminal() {
		return w.state
	}
	if !d.Valid() {
		return w.reject(InvalidDirection)
	}

	next := w.pos.Step(d)
	if !inBound(w.board, next) {
		return w.reject(OutOfBounds)
	}
	if !w.board.IsPath(next.Row, next.Col) {
		return w.reject(WallCollision)
	}

	w.pos = next
	w.steps++
	if w.pos == w.goal {
		w.state = ReachedGoal
	}
	return w.state
}

// State returns the current state.
func (w *Walker) State() State { return w.state }

// Position returns the current position on the board.
func (w *Walker) Position() maze.CellPosition { return w.pos }

// Steps returns the number of accepted moves.
func (w *Walker) Steps() int { return w.steps }

// Reason returns why the walker was rejected, NotRejected otherwise.
func (w *Walker) Reason() RejectReason { return w.reason }

// Verdict is the outcome of replaying a move sequence.
type Verdict struct {
	Valid    bool              // Valid is true iff the goal was reached.
	State    State             // Final state of the walker.
	Reason   RejectReason      // Set when State is Rejected.
	Consumed int               // Moves read before the replay stopped, the rejected one included.
	Position maze.CellPosition // Final position.
}

// Replay runs moves through a fresh walker on b. Moves after the goal are not read.
// An empty sequence never reaches the goal.
func Replay(b Board, moves []maze.Direction) Verdict {
	w := NewWalker(b)
	consumed := 0
	for _, d := range moves {
		if w.State().Terminal() {
			break
		}
		w.Step(d)
		consumed++
	}

	return Verdict{
		Valid:    w.State() == ReachedGoal,
		State:    w.State(),
		Reason:   w.Reason(),
		Consumed: consumed,
		Position: w.Position(),
	}
}
