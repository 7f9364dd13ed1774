package drafts

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// WelcomeChannelURL is the channel first-time users are nudged to introduce themselves in
const WelcomeChannelURL = "https://warpcast.com/~/channel/welcome"

// Template is a scripted composition added through AddTemplateDraft
type Template struct {
	// Name tags the template in logs and events
	Name           string
	Text           string
	ParentURL      string
	ParentCastID   *entities.CastID
	Embeds         []entities.Embed
	MentionsToFids map[string]uint64
}

// FeedbackTemplate addresses the bot's maintainers. The mention FID is
// pre-seeded so the draft publishes without a registry lookup.
func FeedbackTemplate(handle string, fid uint64) *Template {
	handle = strings.ToLower(strings.TrimPrefix(handle, "@"))
	tpl := &Template{
		Name: "feedback",
		Text: fmt.Sprintf("hey @%s, feedback on the discord cast bot: ", handle),
	}
	if fid != 0 {
		tpl.MentionsToFids = map[string]uint64{handle: fid}
	}
	return tpl
}

// WelcomeTemplate is the first cast suggested to a new user
func WelcomeTemplate() *Template {
	return &Template{
		Name:      "welcome",
		Text:      "gm! just connected my farcaster account to discord 👋",
		ParentURL: WelcomeChannelURL,
	}
}
