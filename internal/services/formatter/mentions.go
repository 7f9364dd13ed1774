package formatter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fnames are lowercase alphanumerics and hyphens, at most 16 long; ENS names end in .eth
var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9][a-zA-Z0-9-]{0,15}(?:\.eth)?)`)

// mention is one @handle token in the original text
type mention struct {
	handle     string
	start, end int
}

// findMentions returns the mention tokens in text order. A token must not be
// glued to a word on either side, so emails and paths are left alone.
func findMentions(text string) []mention {
	var found []mention
	for _, loc := range mentionPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]

		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:start])
			if isHandleRune(prev) || prev == '/' || prev == '@' {
				continue
			}
		}
		if end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if isHandleRune(next) || next == '@' {
				continue
			}
		}

		found = append(found, mention{
			handle: strings.ToLower(text[loc[2]:loc[3]]),
			start:  start,
			end:    end,
		})
	}
	return found
}

func isHandleRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// distinctHandles returns each handle once, in order of first appearance
func distinctHandles(mentions []mention) []string {
	seen := make(map[string]struct{}, len(mentions))
	handles := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if _, ok := seen[m.handle]; ok {
			continue
		}
		seen[m.handle] = struct{}{}
		handles = append(handles, m.handle)
	}
	return handles
}

// stripMentions removes every token from text and returns the remaining text
// with the byte offset each mention now sits at
func stripMentions(text string, mentions []mention) (string, []uint32) {
	var b strings.Builder
	b.Grow(len(text))

	positions := make([]uint32, 0, len(mentions))
	prev := 0
	for _, m := range mentions {
		b.WriteString(text[prev:m.start])
		positions = append(positions, uint32(b.Len()))
		prev = m.end
	}
	b.WriteString(text[prev:])

	return b.String(), positions
}

// MentionedHandles returns the distinct lowercased handles mentioned in text
func MentionedHandles(text string) []string {
	return distinctHandles(findMentions(text))
}
