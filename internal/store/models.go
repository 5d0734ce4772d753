package store

import (
	"time"

	"chip-ledger/internal/money"
)

type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

type Table struct {
	ID        string
	JoinCode  string
	Name      string
	HostID    string
	CreatedAt time.Time
	EndedAt   *time.Time
}

type Denominations struct {
	TableID string
	money.Denominations
	UpdatedAt time.Time
}

type EndChipCounts struct {
	TableID string
	money.ChipCounts
	UpdatedAt time.Time
}

type Player struct {
	ID        string
	TableID   string
	Name      string
	UserID    string
	CreatedAt time.Time
}

type BuyIn struct {
	ID          string
	TableID     string
	PlayerID    string
	AmountCents int64
	CreatedAt   time.Time
}

type ChipCount struct {
	ID       string
	PlayerID string
	TableID  string
	money.ChipCounts
	UpdatedAt time.Time
}

// TableSnapshot is a table with every child row, as read in one pass.
type TableSnapshot struct {
	Table         Table
	Denominations *Denominations
	EndChipCounts *EndChipCounts
	Players       []Player
	BuyIns        []BuyIn
	ChipCounts    []ChipCount
}

type GameHistory struct {
	ID         string
	TableID    string
	TableName  string
	JoinCode   string
	HostID     string
	CreatedAt  time.Time
	EndedAt    time.Time
	ArchivedAt time.Time
	Results    []PlayerResult
}

type PlayerResult struct {
	ID              string
	GameHistoryID   string
	UserID          string
	PlayerName      string
	BuyInTotalCents int64
	Chips           money.ChipCounts
	CashOutCents    int64
	ProfitLossCents int64
}

// UserResult is one archived game from a single user's point of view.
type UserResult struct {
	Result  PlayerResult
	History GameHistory
}
