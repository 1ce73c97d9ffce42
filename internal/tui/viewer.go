package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/page"
)

type pane int

const (
	panePage pane = iota
	paneChat
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("99"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	navStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("245"))

	navScrolledStyle = navStyle.
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236"))

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("141"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))
)

// chatReplyMsg is sent when an in-flight chat exchange finishes.
type chatReplyMsg struct {
	reply string
	err   error
}

type viewerModel struct {
	resume    model.Resume
	accordion *page.Accordion
	cursor    int
	layout    pageLayout

	pageViewport viewport.Model
	chatViewport viewport.Model
	input        textinput.Model
	spinner      spinner.Model

	widget  *chat.Widget
	timeout time.Duration

	active pane
	notice string
	width  int
	height int
	ready  bool
}

func newViewerModel(r model.Resume, widget *chat.Widget, timeout time.Duration, notice string) viewerModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me anything..."
	ti.CharLimit = 500
	ti.Prompt = "› "

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = assistantLabelStyle

	return viewerModel{
		resume:    r,
		accordion: page.NewAccordion(len(r.Experience)),
		widget:    widget,
		timeout:   timeout,
		input:     ti,
		spinner:   s,
		notice:    notice,
	}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case chatReplyMsg:
		m.widget.Complete(msg.reply, msg.err)
		m.refreshChat()
		return m, nil

	case spinner.TickMsg:
		if !m.widget.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChat()
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.active == paneChat {
			return m.updateChatPane(msg)
		}
		return m.updatePagePane(msg)
	}

	return m, nil
}

func (m viewerModel) updatePagePane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "tab", "c":
		m.active = paneChat
		return m, m.input.Focus()
	case "n":
		m.moveCursor(1)
		return m, nil
	case "N", "p":
		m.moveCursor(-1)
		return m, nil
	case "enter", " ":
		m.activateItem()
		return m, nil
	case "1", "2", "3", "4", "5", "6":
		m.jumpTo(page.NavLinks[int(key[0]-'1')].ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.pageViewport, cmd = m.pageViewport.Update(msg)
	return m, cmd
}

func (m viewerModel) updateChatPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.active = panePage
		m.input.Blur()
		return m, nil
	case "enter":
		return m.send()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatViewport, cmd = m.chatViewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send starts an exchange for the input text. Empty input is ignored and a
// send while another is in flight is dropped.
func (m viewerModel) send() (tea.Model, tea.Cmd) {
	p, err := m.widget.Begin(m.input.Value())
	if err != nil {
		if errors.Is(err, chat.ErrBusy) {
			m.notice = "still waiting for the previous answer"
		}
		return m, nil
	}
	m.notice = ""
	m.input.Reset()
	m.refreshChat()
	return m, tea.Batch(m.exchangeCmd(p), m.spinner.Tick)
}

func (m viewerModel) exchangeCmd(p chat.Pending) tea.Cmd {
	widget, timeout := m.widget, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := widget.Exchange(ctx, p)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (m *viewerModel) moveCursor(delta int) {
	if len(m.layout.items) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.layout.items)-1)
	m.recalcPage()
	m.ensureCursorVisible()
}

// activateItem toggles the selected accordion entry or opens the selected
// project link.
func (m *viewerModel) activateItem() {
	items := selectableItems(page.Build(m.resume, m.accordion))
	if m.cursor < 0 || m.cursor >= len(items) {
		return
	}
	switch it := items[m.cursor]; it.kind {
	case itemExperience:
		m.accordion.Toggle(it.index)
		m.recalcPage()
		m.ensureCursorVisible()
	case itemProject:
		openURL(page.AbsoluteURL(m.resume.Projects[it.index].Link))
	}
}

func (m *viewerModel) jumpTo(section string) {
	line, ok := m.layout.offsets[section]
	if !ok {
		return
	}
	m.pageViewport.SetYOffset(line)
}

func (m *viewerModel) ensureCursorVisible() {
	if m.cursor >= len(m.layout.items) {
		return
	}
	line := m.layout.items[m.cursor]
	if line < m.pageViewport.YOffset {
		m.pageViewport.SetYOffset(line)
	} else if line >= m.pageViewport.YOffset+m.pageViewport.Height {
		m.pageViewport.SetYOffset(line - m.pageViewport.Height + 1)
	}
}

// activeSection is the nav link highlighted for the current scroll position.
func (m viewerModel) activeSection() string {
	return page.ActiveSection(spyOffsets(m.layout.offsets), m.pageViewport.YOffset*lineHeight)
}

func (m *viewerModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	avail := max(m.width-5, 40)
	pageWidth := avail * 3 / 5
	chatWidth := avail - pageWidth

	// Nav bar (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)
	// The chat pane keeps one line for the input.
	chatHeight := max(paneHeight-1, 3)

	if !m.ready {
		m.pageViewport = viewport.New(pageWidth, paneHeight)
		m.chatViewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.pageViewport.Width = pageWidth
		m.pageViewport.Height = paneHeight
		m.chatViewport.Width = chatWidth
		m.chatViewport.Height = chatHeight
	}

	m.recalcPage()
	m.refreshChat()
}

func (m *viewerModel) recalcPage() {
	m.layout = renderPage(page.Build(m.resume, m.accordion), m.pageViewport.Width-1, m.cursor)
	m.pageViewport.SetContent(m.layout.content)
}

func (m *viewerModel) refreshChat() {
	width := max(m.chatViewport.Width-1, 10)
	var b strings.Builder
	for i, msg := range m.widget.Transcript() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == model.RoleUser {
			b.WriteString(userLabelStyle.Render("You"))
		} else {
			b.WriteString(assistantLabelStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(wordWrap(msg.Content, width))
	}
	if m.widget.Busy() {
		b.WriteString("\n\n" + m.spinner.View() + " thinking...")
	}
	m.chatViewport.SetContent(b.String())
	m.chatViewport.GotoBottom()
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	pageBorder, chatBorder := activeBorderStyle, inactiveBorderStyle
	if m.active == paneChat {
		pageBorder, chatBorder = inactiveBorderStyle, activeBorderStyle
	}
	pagePane := pageBorder.Width(m.pageViewport.Width).Render(m.pageViewport.View())
	chatPane := chatBorder.Width(m.chatViewport.Width).Render(m.chatViewport.View() + "\n" + m.input.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, pagePane, " ", chatPane)

	return m.navBar() + "\n" + panes + "\n" + m.statusBar()
}

func (m viewerModel) navBar() string {
	active := m.activeSection()
	var links []string
	for i, l := range page.NavLinks {
		label := fmt.Sprintf("%d %s", i+1, l.Label)
		if l.ID == active {
			label = navActiveStyle.Render(label)
		}
		links = append(links, label)
	}

	style := navStyle
	text := strings.Join(links, "  ")
	if page.Scrolled(m.pageViewport.YOffset * lineHeight) {
		style = navScrolledStyle
		text = nameStyle.Render(m.resume.Name) + "  " + text
	}
	return style.Width(m.width).Render(text)
}

func (m viewerModel) statusBar() string {
	text := " 1-6 jump  ↑/↓ scroll  n/p select  enter toggle/open  tab chat  q quit"
	if m.active == paneChat {
		text = " enter send  pgup/pgdn scroll  tab/esc back to page  ctrl+c quit"
	}
	if m.notice != "" {
		text = " " + m.notice + "  |" + text
	}
	return statusBarStyle.Width(m.width).Render(text)
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if cmd := openCommand(runtime.GOOS, url); cmd != nil {
		_ = cmd.Start()
	}
}

// openCommand returns the browser launcher for goos, or nil when there is
// none. The url is always passed as a single argument, never through a shell.
func openCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "linux":
		return exec.Command("xdg-open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return nil
	}
}

// RunViewer launches the full-screen portfolio viewer with the chat pane.
// notice, when set, is shown in the status bar until the first send.
func RunViewer(r model.Resume, widget *chat.Widget, timeout time.Duration, notice string) error {
	p := tea.NewProgram(newViewerModel(r, widget, timeout, notice), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
