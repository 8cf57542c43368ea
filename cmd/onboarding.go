package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OnboardingSettings is the first-run wizard's outcome.
type OnboardingSettings struct {
	Completed bool   `json:"completed"`
	Provider  string `json:"provider"` // empty: no provider, search disabled
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func apiKeyPath(configDir, provider string) string {
	return filepath.Join(configDir, provider+"_api_key")
}

func saveSecureAPIKey(configDir, provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(apiKeyPath(configDir, provider), []byte(key+"\n"), 0600)
}

func loadSecureAPIKey(configDir, provider string) (string, error) {
	data, err := os.ReadFile(apiKeyPath(configDir, provider))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepProvider onboardingStep = iota
	stepKey
	stepDone
)

type providerChoice struct {
	name  string
	label string
	help  []string
}

var providerChoices = []providerChoice{
	{
		name:  ProviderGoogle,
		label: "Google Places",
		help: []string{
			"1) https://console.cloud.google.com/apis/library/places-backend.googleapis.com",
			"2) Enable the Places API",
			"3) Create an API key under Credentials",
		},
	},
	{
		name:  ProviderYelp,
		label: "Yelp Fusion",
		help: []string{
			"1) https://www.yelp.com/developers/v3/manage_app",
			"2) Create an app",
			"3) Copy API key",
		},
	},
	{
		name:  ProviderElastic,
		label: "Elasticsearch index (no key, see -elastic-url)",
	},
	{
		name:  "",
		label: "None, browse the map and favorites only",
	},
}

type onboardingModel struct {
	step     onboardingStep
	cursor   int
	keys     map[string]string // keys already known from env/flags
	keyInput textinput.Model

	settings    OnboardingSettings
	capturedKey string
	status      string
	width       int
	height      int
}

var (
	obColorMuted  = lipgloss.Color("#7E8C80")
	obColorText   = lipgloss.Color("#D6E0D3")
	obColorAccent = lipgloss.Color("#8FA082")
	obColorDanger = lipgloss.Color("#f38ba8")

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle  = lipgloss.NewStyle().Foreground(obColorAccent).Bold(true)
	obMutedStyle  = lipgloss.NewStyle().Foreground(obColorMuted)
	obOptionStyle = lipgloss.NewStyle().Foreground(obColorText)
	obWarnStyle   = lipgloss.NewStyle().Foreground(obColorDanger)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Bold(true)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel(googleKey, yelpKey string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "Paste API key here"
	in.CharLimit = 300
	in.Prompt = "api> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.Focus()

	return onboardingModel{
		step: stepProvider,
		keys: map[string]string{
			ProviderGoogle: strings.TrimSpace(googleKey),
			ProviderYelp:   strings.TrimSpace(yelpKey),
		},
		keyInput: in,
		settings: OnboardingSettings{Completed: true},
	}
}

func (m onboardingModel) Init() tea.Cmd { return nil }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case stepProvider:
			return m.updateProvider(msg)
		case stepKey:
			return m.updateKey(msg)
		}
	}
	return m, nil
}

func (m onboardingModel) updateProvider(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(providerChoices)-1 {
			m.cursor++
		}
	case "enter":
		return m.choose(providerChoices[m.cursor])
	case "ctrl+c", "q":
		m.settings.Provider = ""
		m.status = "Setup canceled. Search disabled."
		m.step = stepDone
		return m, tea.Quit
	}
	return m, nil
}

func (m onboardingModel) choose(choice providerChoice) (tea.Model, tea.Cmd) {
	m.settings.Provider = choice.name
	switch {
	case choice.name == "":
		m.status = "No provider selected. Search disabled."
	case choice.help == nil:
		m.status = choice.label + " selected."
	case m.keys[choice.name] != "":
		m.status = "Using existing " + choice.label + " key from environment/flags."
	default:
		m.step = stepKey
		return m, nil
	}
	m.step = stepDone
	return m, tea.Quit
}

func (m onboardingModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		key := strings.TrimSpace(m.keyInput.Value())
		if key == "" {
			m.settings.Provider = ""
			m.status = "No key entered. Search disabled."
		} else {
			m.capturedKey = key
			m.status = "API key saved."
		}
		m.step = stepDone
		return m, tea.Quit
	case "esc":
		m.step = stepProvider
		m.keyInput.Reset()
		return m, nil
	case "ctrl+c":
		m.settings.Provider = ""
		m.status = "Setup canceled. Search disabled."
		m.step = stepDone
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := obHeaderStyle.Width(width).Render("  wander " + obMutedStyle.Render("› Setup"))
	footer := obFooterStyle.Width(width).Render(m.footerText())

	contentHeight := max(8, height-4)
	content := m.renderContent(width, contentHeight)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (m onboardingModel) footerText() string {
	switch m.step {
	case stepProvider:
		return "↑↓/jk to navigate  enter to confirm  q cancel"
	case stepKey:
		return "enter save  esc back  ctrl+c cancel"
	default:
		return "Setup complete"
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepProvider:
		lines := []string{obLabelStyle.Render("Where should wander look for places?"), ""}
		for i, choice := range providerChoices {
			if i == m.cursor {
				lines = append(lines, "  "+obOptionSelected.Render("→ "+choice.label))
			} else {
				lines = append(lines, "    "+obOptionStyle.Render(choice.label))
			}
		}
		lines = append(lines, "",
			obMutedStyle.Render("You can change this later in ~/.wander/onboarding.json or with -provider"))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)

	case stepKey:
		choice := providerChoices[m.cursor]
		lines := []string{obLabelStyle.Render("Get a " + choice.label + " API key:"), ""}
		for _, h := range choice.help {
			lines = append(lines, obMutedStyle.Render(h))
		}
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.keyInput.View())
		lines = append(lines, "", obLabelStyle.Render("API Key"), input, "",
			obMutedStyle.Render("Press Enter to save, Esc to pick another provider."))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)

	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "disabled") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir, googleKey, yelpKey string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(googleKey, yelpKey), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if m.capturedKey != "" {
		if err := saveSecureAPIKey(configDir, m.settings.Provider, m.capturedKey); err != nil {
			return OnboardingSettings{}, err
		}
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
