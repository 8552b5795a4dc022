package storage

import "time"

type Slot string

const (
	SlotDaily   Slot = "daily"
	SlotExtra   Slot = "extra"
	SlotExplore Slot = "explore"
)

type TipRow struct {
	ID                 string
	Headline           string
	Body               string
	Topics             []string
	BackgroundImageURL string
	Saved              bool
	CreatedAt          time.Time
}

type DayRow struct {
	Day           time.Time
	BeforeProgram bool
}

type DayTipRow struct {
	Day         time.Time
	TipID       string
	Slot        Slot
	Position    int
	Locked      bool
	CompletedAt *time.Time
}

type TipListFilter struct {
	Saved  *bool
	Limit  int
	Offset int
}
