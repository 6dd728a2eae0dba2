package markup

import "strings"

// BreakTag is the tag NL2BR writes for each newline.
const BreakTag = "<br />"

// breakTags are the spellings BR2NL recognises.
var breakTags = []string{BreakTag, "<br>", "<br/>"}

var (
	toBreak = strings.NewReplacer("\n", BreakTag)
	toPlain = strings.NewReplacer(
		breakTags[0], "\n",
		breakTags[1], "\n",
		breakTags[2], "\n",
	)
)

// NL2BR replaces every line feed in text with BreakTag.
func NL2BR(text string) string {
	if text == "" {
		return ""
	}
	return toBreak.Replace(text)
}

// BR2NL replaces every "<br />", "<br>" and "<br/>" in markup with a line feed.
// Other spellings, including upper case, are left alone.
func BR2NL(markup string) string {
	if markup == "" {
		return ""
	}
	return toPlain.Replace(markup)
}
