package entity

import (
	"time"

	"github.com/raffleclub/backend/pkg/enum"
)

type RaffleStatus string

var (
	RaffleOpen      = enum.New(RaffleStatus("open"))
	RaffleDrawn     = enum.New(RaffleStatus("drawn"))
	RaffleCancelled = enum.New(RaffleStatus("cancelled"))
)

// Raffle is a time-boxed drawing inside a group. Status only moves forward:
// open to drawn or open to cancelled, both terminal. Rows are never deleted.
type Raffle struct {
	Base

	GroupID string
	Group   Group `gorm:"foreignKey:GroupID"`

	NumWinners int
	Prize      string
	Status     RaffleStatus

	// ParticipantCount caches the number of RaffleParticipant rows. It is
	// only ever changed through an atomic increment.
	ParticipantCount int

	// PerformedAt is set when the draw happens; cancelled raffles keep it
	// empty.
	PerformedAt *time.Time

	// AnnouncementID is the platform message id of the group announcement,
	// kept so the announcement can be edited after the draw.
	AnnouncementID string
}

// RaffleParticipant records one user joining one raffle. The composite
// unique index is the idempotency guarantee for concurrent joins.
type RaffleParticipant struct {
	Base

	RaffleID string `gorm:"uniqueIndex:idx_raffle_user"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`

	UserID string `gorm:"uniqueIndex:idx_raffle_user"`
	User   User   `gorm:"foreignKey:UserID"`

	Name        string
	IsWinner    bool
	WinPosition int
}
