package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"wander/internal/model"
)

type undoAction struct {
	label string
	undo  func(ctx context.Context) error
	redo  func(ctx context.Context) error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo(context.Background())
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo(context.Background())
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

func (m *Model) buildFavoriteToggleAction(msg model.FavoriteToggledMsg) *undoAction {
	favs := m.favorites
	place := msg.Place
	if msg.Added {
		return &undoAction{
			label: fmt.Sprintf("saved %s", place.Name),
			undo: func(ctx context.Context) error {
				return favs.Remove(ctx, place.ID)
			},
			redo: func(ctx context.Context) error {
				_, _, err := favs.Toggle(ctx, place)
				return err
			},
		}
	}
	if msg.Removed == nil {
		return nil
	}
	removed := *msg.Removed
	return &undoAction{
		label: fmt.Sprintf("removed %s", place.Name),
		undo: func(ctx context.Context) error {
			return favs.Restore(ctx, removed)
		},
		redo: func(ctx context.Context) error {
			return favs.Remove(ctx, removed.Place.ID)
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		return nil
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return loadFavoritesCmd(m.favorites)
}
