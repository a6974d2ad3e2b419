package rollgame

import (
	"sort"
	"time"

	"dicebot/internal/model"
)

// Status is the lifecycle state of a session.
type Status string

// Session states. Complete and TimedOut are terminal.
const (
	StatusOpen     Status = "open"
	StatusComplete Status = "complete"
	StatusTimedOut Status = "timed_out"
)

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusTimedOut
}

// Player identifies someone joining a session.
type Player struct {
	UserID int64
	Name   string
}

// Participant is a player who joined along with their roll.
type Participant struct {
	Player
	Result int
}

// Session is a live game. All fields are guarded by the manager's lock for ID.
type Session struct {
	ID        string
	DieSize   int
	Target    int
	CreatedAt time.Time
	ExpiresAt time.Time

	status       Status
	participants []Participant
	announcer    Announcer
	timer        *time.Timer
}

func (s *Session) hasPlayer(userID int64) bool {
	for _, p := range s.participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Session) full() bool {
	return len(s.participants) >= s.Target
}

// view returns a snapshot that is safe to use after the lock is released.
func (s *Session) view() *View {
	participants := make([]Participant, len(s.participants))
	copy(participants, s.participants)

	return &View{
		SessionID:    s.ID,
		DieSize:      s.DieSize,
		Target:       s.Target,
		Status:       s.status,
		Participants: participants,
		CreatedAt:    s.CreatedAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

// View is a read-only snapshot of a session.
type View struct {
	SessionID    string
	DieSize      int
	Target       int
	Status       Status
	Participants []Participant
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Remaining returns how many more players are needed.
func (v *View) Remaining() int {
	if n := v.Target - len(v.Participants); n > 0 {
		return n
	}
	return 0
}

// Outcome is the result of a completed session.
type Outcome struct {
	View
	// Ranking orders participants by result, highest first. Equal results keep join order.
	Ranking []Participant
	Winner  Participant
	Loser   Participant
	Rolls   []*model.Roll
}

// Rank orders participants by result descending. Ties keep their input order.
func Rank(participants []Participant) []Participant {
	ranking := make([]Participant, len(participants))
	copy(ranking, participants)
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Result > ranking[j].Result
	})
	return ranking
}
