package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/typegraph/types"
)

func testRepo(t *testing.T) *types.Repository {
	t.Helper()
	repo := types.NewRepository()
	node, err := repo.DeclareUserDefined("node", 8)
	require.NoError(t, err)
	next, err := repo.AddPointer("node*", 4, types.FlagNone, node)
	require.NoError(t, err)
	value, err := repo.AddBasic("int", 4)
	require.NoError(t, err)
	require.NoError(t, repo.CompleteUserDefined(node, []types.Field{
		{Name: "value", Type: value},
		{Name: "next", Offset: 4, Type: next},
	}))
	require.NoError(t, repo.Freeze())
	return repo
}

func send(m *interactiveModel, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestInteractive_FilterAndNavigate(t *testing.T) {
	m := newInteractiveModel(testRepo(t), "test.json")
	assert.Len(t, m.visible, 3)

	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("node")})
	require.Len(t, m.visible, 2)
	assert.Equal(t, "node", m.visible[0].Name())

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInspect, m.state)
	require.Len(t, m.children, 2)
	assert.Equal(t, "int", m.children[0].typ.Name())

	// node -> next -> <pointee> is node again
	send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "node*", m.stack[len(m.stack)-1].Name())
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.stack, 3)
	assert.Equal(t, m.stack[0], m.stack[2])
	assert.Contains(t, m.View(), "node › node* › node")

	send(m, tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateBrowse, m.state)
	assert.Empty(t, m.stack)

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.filter.Value())
	assert.Len(t, m.visible, 3)
}

func TestInteractive_Leaf(t *testing.T) {
	m := newInteractiveModel(testRepo(t), "test.json")
	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("int")})
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.children)
	assert.Contains(t, m.View(), "(leaf)")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
