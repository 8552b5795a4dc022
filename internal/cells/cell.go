package cells

import "github.com/sandeepkv93/coachd/internal/model"

type Kind string

const (
	KindHeadline      Kind = "headline"
	KindTipCard       Kind = "tip"
	KindExploreTip    Kind = "explore_tip"
	KindDifferentTip  Kind = "different_tip"
	KindLockedTip     Kind = "locked_tip"
	KindExploreNote   Kind = "explore_note"
	KindUnlockTip     Kind = "unlock_tip"
	KindSectionHeader Kind = "section_header"
	KindSeparator     Kind = "separator"
)

type Style string

const (
	StyleExpanded Style = "expanded"
	StyleCompact  Style = "compact"
)

type LockColor string

const (
	LockBrown  LockColor = "brown"
	LockBlue   LockColor = "blue"
	LockGreen  LockColor = "green"
	LockYellow LockColor = "yellow"
)

type UnlockVariant string

const (
	UnlockAfterTwoTips  UnlockVariant = "after_two_tips"
	UnlockAfterFiveTips UnlockVariant = "after_five_tips"
)

type Headline struct {
	SmallTitle string
	MainTitle  string
	Emoji      string
}

// Cell is one renderable unit of the tips list. Kind selects which of the
// payload fields are meaningful.
type Cell struct {
	Kind      Kind
	Headline  Headline
	Tip       model.Tip
	Style     Style
	LockColor LockColor
	Unlock    UnlockVariant
	Title     string
}

func Separator() Cell { return Cell{Kind: KindSeparator} }

func HeadlineCell(h Headline) Cell { return Cell{Kind: KindHeadline, Headline: h} }

func TipCard(tip model.Tip, style Style) Cell {
	return Cell{Kind: KindTipCard, Tip: tip, Style: style}
}

func ExploreTipCard(tip model.Tip) Cell {
	return Cell{Kind: KindExploreTip, Tip: tip, Style: StyleCompact}
}

func DifferentTipPrompt(current model.Tip) Cell {
	return Cell{Kind: KindDifferentTip, Tip: current}
}

func LockedTip(color LockColor) Cell { return Cell{Kind: KindLockedTip, LockColor: color} }

func ExploreNote() Cell { return Cell{Kind: KindExploreNote} }

func UnlockTipPrompt(variant UnlockVariant, locked model.Tip) Cell {
	return Cell{Kind: KindUnlockTip, Unlock: variant, Tip: locked}
}

func SectionHeader(title string) Cell { return Cell{Kind: KindSectionHeader, Title: title} }

// IndexOfTip returns the position of the tip card carrying id, or -1.
func IndexOfTip(cells []Cell, id string) int {
	for i, c := range cells {
		if c.Kind == KindTipCard && c.Tip.ID == id {
			return i
		}
	}
	return -1
}

// CurrentTip returns the expanded tip card, if the list has one.
func CurrentTip(cells []Cell) (model.Tip, bool) {
	for _, c := range cells {
		if c.Kind == KindTipCard && c.Style == StyleExpanded {
			return c.Tip, true
		}
	}
	return model.Tip{}, false
}

func CountKind(cells []Cell, kind Kind) int {
	n := 0
	for _, c := range cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Without returns a copy of cells with every cell of kind removed.
func Without(cells []Cell, kind Kind) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if c.Kind != kind {
			out = append(out, c)
		}
	}
	return out
}

// PendingCompletion returns a copy of cells where the card at index still
// shows as expanded and not completed, the frame a completion animation
// starts from. Out of range indexes return the copy unchanged.
func PendingCompletion(cells []Cell, index int) []Cell {
	out := append([]Cell(nil), cells...)
	if index < 0 || index >= len(out) || out[index].Kind != KindTipCard {
		return out
	}
	out[index].Style = StyleExpanded
	out[index].Tip.Completed = false
	return out
}
