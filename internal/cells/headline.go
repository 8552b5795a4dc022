package cells

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/sandeepkv93/coachd/internal/model"
)

var Emojis = []string{"🌞", "💫", "📚", "✨", "💪", "🌟", "🚀", "❤️", "🙌", "💡"}

const (
	TitleBeyondProgram    = "You were learning beyond the program this day"
	TitleDiveIntoLearned  = "Dive into tips you learned already"
	TitleTomorrow         = "New tips unlock tomorrow. Rest up!"
	TitleSavedForTomorrow = "Saved for tomorrow"
	TitleFoundInExplore   = "Tips you found in explore"
)

var (
	namedGreetings = [3]string{"Good morning, %s %s", "Howdy, %s %s", "Hey %s %s"}
	anonGreetings  = [3]string{"Good morning %s", "Howdy %s", "Hi there %s"}
)

// TimeBucket maps an hour to 0 morning, 1 afternoon, 2 evening. Hours
// before 03:00 still count as the previous evening.
func TimeBucket(t time.Time) int {
	h := t.Hour()
	switch {
	case h < 3:
		return 2
	case h < 12:
		return 0
	case h < 18:
		return 1
	default:
		return 2
	}
}

// EmojiFor picks a stable emoji for the calendar day of t.
func EmojiFor(t time.Time) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(model.ShortDate(t)))
	return Emojis[h.Sum32()%uint32(len(Emojis))]
}

func TodayHeadline(now time.Time, displayName string, sessionOpen bool) Headline {
	name := strings.TrimSpace(displayName)
	emoji := EmojiFor(now)
	var main string
	switch {
	case !sessionOpen && name != "":
		main = fmt.Sprintf("Awesome work today, %s %s", name, emoji)
	case name != "":
		main = fmt.Sprintf(namedGreetings[TimeBucket(now)], name, emoji)
	default:
		main = fmt.Sprintf(anonGreetings[TimeBucket(now)], emoji)
	}
	return Headline{SmallTitle: model.LongDate(now), MainTitle: main, Emoji: emoji}
}

func PastDayHeadline(day time.Time, completedCount int) Headline {
	main := TitleDiveIntoLearned
	if completedCount == 0 {
		main = TitleBeyondProgram
	}
	return Headline{SmallTitle: model.LongDate(day), MainTitle: main}
}
