// Package activity maps raw activity labels reported by clients to display titles.
package activity

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/critiquest/critiquest/internal/logger"
)

// GenericTitle is shown for labels the service does not recognize
const GenericTitle = "Learning Activity"

// Known activity labels
const (
	Lesson          = "lesson"
	Quiz            = "quiz"
	DailyLogin      = "daily_login"
	PhilosopherChat = "philosopher_chat"
	Debate          = "debate"
	Reflection      = "reflection"
	GachaPull       = "gacha_pull"
)

// titles overrides the generated title where title-casing the label reads badly
var titles = map[string]string{
	GachaPull: "Philosopher Summon",
}

var known = map[string]struct{}{
	Lesson:          {},
	Quiz:            {},
	DailyLogin:      {},
	PhilosopherChat: {},
	Debate:          {},
	Reflection:      {},
	GachaPull:       {},
}

var (
	folder = cases.Fold()
	titler = cases.Title(language.English)
)

// Normalize case-folds a label and converts separators to underscores
func Normalize(label string) string {
	label = strings.TrimSpace(folder.String(label))
	return strings.NewReplacer("-", "_", " ", "_").Replace(label)
}

// IsKnown reports whether label names a recognized activity
func IsKnown(label string) bool {
	_, ok := known[Normalize(label)]
	return ok
}

// DisplayName returns the title for an activity label.
// Unrecognized labels fall back to GenericTitle with a warning; an empty label yields "".
func DisplayName(ctx context.Context, label string) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}

	if !IsKnown(label) {
		logger.FromContext(ctx).Warn("unrecognized activity label", "label", label)
		return GenericTitle
	}
	key := Normalize(label)
	if title, ok := titles[key]; ok {
		return title
	}
	return titler.String(strings.ReplaceAll(key, "_", " "))
}
