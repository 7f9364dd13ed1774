package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func handlesOf(ms []mention) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.handle
	}
	return out
}

func TestFindMentions(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "single", text: "hello @alice", want: []string{"alice"}},
		{name: "start of text", text: "@alice gm", want: []string{"alice"}},
		{name: "trailing punctuation", text: "thanks @alice, @bob!", want: []string{"alice", "bob"}},
		{name: "ens name", text: "cc @vitalik.eth", want: []string{"vitalik.eth"}},
		{name: "uppercase is normalized", text: "hey @Alice", want: []string{"alice"}},
		{name: "email is ignored", text: "mail me@alice.com", want: nil},
		{name: "path is ignored", text: "see warpcast.com/@alice", want: nil},
		{name: "underscore suffix is ignored", text: "@alice_bob", want: nil},
		{name: "too long is ignored", text: "@abcdefghijklmnopq", want: nil},
		{name: "repeat", text: "@alice @alice", want: []string{"alice", "alice"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := findMentions(tc.text)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, handlesOf(got))
		})
	}
}

func TestStripMentions(t *testing.T) {
	text := "@alice and @bob gm @alice"
	ms := findMentions(text)

	stripped, positions := stripMentions(text, ms)
	assert.Equal(t, " and  gm ", stripped)
	assert.Equal(t, []uint32{0, 5, 9}, positions)
	assert.Equal(t, []string{"alice", "bob"}, distinctHandles(ms))
}

func TestStripMentions_MultiByte(t *testing.T) {
	text := "héllo @alice 👋"
	stripped, positions := stripMentions(text, findMentions(text))

	assert.Equal(t, "héllo  👋", stripped)
	assert.Equal(t, []uint32{7}, positions)
}

func TestClosestHandle(t *testing.T) {
	assert.Equal(t, "alice", closestHandle("alce", []string{"bob", "alice", "alicia"}))
	assert.Equal(t, "", closestHandle("zzzzzz", []string{"alice"}))
	assert.Equal(t, "", closestHandle("alice", []string{"alice"}))
}

func TestMentionedHandles(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob.eth"}, MentionedHandles("@Alice and @bob.eth, again @alice"))
	assert.Empty(t, MentionedHandles("mail me at a@b.com"))
}
