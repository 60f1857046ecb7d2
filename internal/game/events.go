package game

import "trivia-game-service/internal/domain"

// EventKind names an inbound event a session can react to.
type EventKind string

const (
	EventJoin    EventKind = "join"
	EventLeave   EventKind = "leave"
	EventReady   EventKind = "ready"
	EventBuzz    EventKind = "buzz"
	EventAnswer  EventKind = "answer"
	EventControl EventKind = "control"
)

// Command is an out-of-band control command serviced during any wait state.
type Command string

const (
	CommandEnd             Command = "endtrivia"
	CommandTeamStandings   Command = "teamlb"
	CommandPlayerStandings Command = "playerlb"
)

// Event is one inbound signal from a player. Events arrive in channel order;
// the session ignores whatever does not apply to its current state, so
// upstream deduplication is not required.
type Event struct {
	Kind       EventKind
	PlayerID   string
	PlayerName string
	TeamSlot   int     // join only
	Text       string  // answer only
	Command    Command // control only
}

// AnnouncementType names an outbound game notification.
type AnnouncementType string

const (
	AnnounceJoined          AnnouncementType = "joined"
	AnnounceLeft            AnnouncementType = "left"
	AnnounceStarted         AnnouncementType = "started"
	AnnounceQuestion        AnnouncementType = "question"
	AnnounceBuzz            AnnouncementType = "buzz"
	AnnounceResult          AnnouncementType = "result"
	AnnounceTeamStandings   AnnouncementType = "team_standings"
	AnnouncePlayerStandings AnnouncementType = "player_standings"
	AnnounceEnding          AnnouncementType = "ending"
	AnnounceGameOver        AnnouncementType = "game_over"
	AnnounceAborted         AnnouncementType = "aborted"
	AnnounceNotice          AnnouncementType = "notice"
)

// Announcement is one outbound notification. Delivery is best effort; the
// engine logs failures and plays on.
type Announcement struct {
	Type     AnnouncementType  `json:"type"`
	Message  string            `json:"message,omitempty"`
	Number   int               `json:"number,omitempty"`
	Question string            `json:"question,omitempty"`
	Parts    int               `json:"parts,omitempty"`
	ImageURL string            `json:"imageUrl,omitempty"`
	Player   string            `json:"player,omitempty"`
	Team     string            `json:"team,omitempty"`
	Outcome  Outcome           `json:"outcome,omitempty"`
	Answers  []string          `json:"answers,omitempty"`
	Teams    []domain.Standing `json:"teams,omitempty"`
	Players  []domain.Standing `json:"players,omitempty"`
}

// Notifier delivers announcements to the hosting channel.
type Notifier interface {
	Announce(a Announcement) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(a Announcement) error

func (f NotifierFunc) Announce(a Announcement) error { return f(a) }
