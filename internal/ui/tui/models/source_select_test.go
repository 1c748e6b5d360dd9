package models

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(m *SourceSelectModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func selected(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(SourceSelectedMsg)
	require.True(t, ok, "expected a SourceSelectedMsg")
	return msg.Source
}

func TestNewSourceSelectModelDropsDuplicates(t *testing.T) {
	m := NewSourceSelectModel([]string{"a.mkv", "", "b.mkv", "a.mkv"}, "b.mkv")
	assert.Equal(t, []string{"b.mkv", "a.mkv"}, m.Sources())
}

func TestRememberMovesSourceToTop(t *testing.T) {
	m := NewSourceSelectModel([]string{"a.mkv", "b.mkv", "c.mkv"}, "")
	m.Remember("c.mkv")
	m.Remember("")
	assert.Equal(t, []string{"c.mkv", "a.mkv", "b.mkv"}, m.Sources())
}

func TestFuzzyFilterMatchesBaseName(t *testing.T) {
	m := NewSourceSelectModel([]string{"/media/films/big_buck_bunny.mp4", "/media/music/song.flac"}, "")
	m.Resize(80, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.Searching())
	typeInto(m, "bbb")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.Searching())
	assert.Equal(t, "/media/films/big_buck_bunny.mp4", m.GetSelectedSource())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "/media/films/big_buck_bunny.mp4", selected(t, cmd))
}

func TestTypedTextPlaysWhenNothingMatches(t *testing.T) {
	m := NewSourceSelectModel([]string{"a.mkv"}, "")
	m.Resize(80, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	typeInto(m, "http://x/live.m3u8")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "http://x/live.m3u8", selected(t, cmd))
}

func TestEscClearsFilter(t *testing.T) {
	m := NewSourceSelectModel([]string{"a.mkv", "b.mkv"}, "")
	m.Resize(80, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	typeInto(m, "b")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.Searching())
	assert.Equal(t, "a.mkv", m.GetSelectedSource())
}

func TestCursorStaysInRange(t *testing.T) {
	m := NewSourceSelectModel([]string{"a", "b", "c"}, "")
	m.Resize(80, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, "c", m.GetSelectedSource())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "c", m.GetSelectedSource())
	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, "a", m.GetSelectedSource())
}
