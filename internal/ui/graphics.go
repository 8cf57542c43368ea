package ui

import (
	"context"
	"image"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/qeesung/image2ascii/convert"

	"wander/internal/model"
	"wander/internal/search"
)

const photoTimeout = 10 * time.Second

// TerminalCapabilities represents which graphics protocols the terminal supports.
type TerminalCapabilities struct {
	SupportsKitty  bool
	SupportsITerm2 bool
	Colored        bool
}

// DetectTerminalCapabilities inspects the environment for image support.
func DetectTerminalCapabilities() TerminalCapabilities {
	term := os.Getenv("TERM")
	return TerminalCapabilities{
		SupportsKitty:  strings.Contains(term, "kitty") || os.Getenv("KITTY_WINDOW_ID") != "",
		SupportsITerm2: os.Getenv("TERM_PROGRAM") == "iTerm.app",
		Colored:        os.Getenv("NO_COLOR") == "" && term != "dumb",
	}
}

// RenderPhoto draws a place photo as ASCII art sized to the detail pane.
func RenderPhoto(img image.Image, caps TerminalCapabilities, width, height int) string {
	if img == nil || width <= 0 || height <= 0 {
		return ""
	}
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = width
	opts.FixedHeight = height
	opts.Colored = caps.Colored
	opts.Ratio = 0.5

	return converter.Image2ASCIIString(img, &opts)
}

// loadPhotoCmd fetches and renders a place's photo. Providers without photo
// support and places without a reference produce no message.
func loadPhotoCmd(photos search.PhotoProvider, caps TerminalCapabilities, place model.Place, width, height int) tea.Cmd {
	if photos == nil || place.PhotoRef == "" {
		return nil
	}
	ref := place.PhotoRef
	id := place.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), photoTimeout)
		defer cancel()

		img, err := photos.Photo(ctx, ref, uint(width*8), uint(height*16))
		if err != nil {
			return model.PhotoLoadedMsg{PlaceID: id}
		}
		return model.PhotoLoadedMsg{PlaceID: id, Art: RenderPhoto(img, caps, width, height)}
	}
}
