package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/folio/internal/chat"
	"github.com/amishk599/folio/internal/model"
	"github.com/amishk599/folio/internal/page"
)

type fakeBackend struct {
	reply string
	err   error
	got   []model.ChatRequest
}

func (b *fakeBackend) Chat(_ context.Context, req model.ChatRequest) (string, error) {
	b.got = append(b.got, req)
	return b.reply, b.err
}

func testResume() model.Resume {
	return model.Resume{
		Name:    "Ada Lovelace",
		Title:   "Programmer",
		Summary: "Wrote the first published algorithm for a machine.",
		Email:   "ada@example.com",
		Skills:  model.Skills{{Name: "Math", Items: []string{"Analysis", "Algebra"}}},
		Experience: []model.Experience{
			{Role: "Translator", Company: "Babbage & Co", Period: "1842", Description: "Annotated the memoir."},
			{Role: "Author", Company: "Taylor's Scientific Memoirs", Period: "1843", Description: "Published Note G."},
		},
		Projects: []model.Project{
			{Name: "Note G", Description: "Bernoulli numbers", Link: "example.com/note-g"},
			{Name: "Poetical Science", Description: "Essays"},
		},
	}
}

func sized(t *testing.T, m viewerModel) viewerModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(viewerModel)
}

func press(t *testing.T, m viewerModel, key string) (viewerModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(viewerModel), cmd
}

// runCmd executes cmd, flattening batches, and returns every message produced.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestRenderPage_SectionOrderAndSkips(t *testing.T) {
	r := testResume()
	r.Projects = nil
	layout := renderPage(page.Build(r, nil), 60, -1)

	if _, ok := layout.offsets[page.Projects]; ok {
		t.Error("projects section rendered without projects")
	}
	if _, ok := layout.offsets[page.Education]; ok {
		t.Error("education section rendered without education")
	}
	order := []string{page.Home, page.About, page.Skills, page.Experience, page.Contact}
	for i := 1; i < len(order); i++ {
		if layout.offsets[order[i]] <= layout.offsets[order[i-1]] {
			t.Errorf("%s at line %d, not after %s at line %d",
				order[i], layout.offsets[order[i]], order[i-1], layout.offsets[order[i-1]])
		}
	}
	if len(layout.items) != 2 {
		t.Errorf("items = %d, want 2 experience entries", len(layout.items))
	}
}

func TestRenderPage_ExpandedEntryShowsDescription(t *testing.T) {
	r := testResume()
	acc := page.NewAccordion(len(r.Experience))

	collapsed := renderPage(page.Build(r, acc), 80, 0)
	if strings.Contains(collapsed.content, "Annotated the memoir.") {
		t.Error("collapsed entry shows its description")
	}

	acc.Toggle(1)
	expanded := renderPage(page.Build(r, acc), 80, 0)
	if !strings.Contains(expanded.content, "Published Note G.") {
		t.Error("expanded entry hides its description")
	}
	if strings.Contains(expanded.content, "Annotated the memoir.") {
		t.Error("more than one entry expanded")
	}
}

func TestSelectableItems(t *testing.T) {
	items := selectableItems(page.Build(testResume(), nil))
	want := []item{
		{kind: itemExperience, index: 0},
		{kind: itemExperience, index: 1},
		{kind: itemProject, index: 0},
	}
	if len(items) != len(want) {
		t.Fatalf("items = %+v, want %+v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestViewer_AccordionKeepsOneExpanded(t *testing.T) {
	widget := chat.NewWidget(&fakeBackend{reply: "ok"})
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	m, _ = press(t, m, "enter")
	if i, ok := m.accordion.Expanded(); !ok || i != 0 {
		t.Fatalf("after enter: expanded = %d, %v; want 0, true", i, ok)
	}

	m, _ = press(t, m, "n")
	m, _ = press(t, m, "enter")
	if i, ok := m.accordion.Expanded(); !ok || i != 1 {
		t.Fatalf("after n+enter: expanded = %d, %v; want 1, true", i, ok)
	}
	if m.accordion.IsExpanded(0) {
		t.Error("entry 0 still expanded")
	}

	m, _ = press(t, m, "enter")
	if _, ok := m.accordion.Expanded(); ok {
		t.Error("toggling the expanded entry should collapse it")
	}
}

func TestViewer_CursorClamps(t *testing.T) {
	widget := chat.NewWidget(&fakeBackend{})
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	m, _ = press(t, m, "p")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m, _ = press(t, m, "n")
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
}

func TestViewer_StartsAtHome(t *testing.T) {
	widget := chat.NewWidget(&fakeBackend{})
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	if got := m.activeSection(); got != page.Home {
		t.Errorf("activeSection = %q, want %q", got, page.Home)
	}
	if !strings.Contains(m.View(), "Home") {
		t.Error("nav bar missing")
	}
}

func TestViewer_ChatRoundTrip(t *testing.T) {
	backend := &fakeBackend{reply: "Ada knows Algebra."}
	widget := chat.NewWidget(backend)
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	m, _ = press(t, m, "tab")
	if m.active != paneChat {
		t.Fatal("tab should focus the chat pane")
	}
	m.input.SetValue("What skills?")
	m, cmd := press(t, m, "enter")
	if !widget.Busy() {
		t.Fatal("widget should be busy after send")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, want cleared", m.input.Value())
	}

	var reply tea.Msg
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(chatReplyMsg); ok {
			reply = msg
		}
	}
	if reply == nil {
		t.Fatal("send produced no chat reply")
	}
	next, _ := m.Update(reply)
	m = next.(viewerModel)

	transcript := widget.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("transcript len = %d, want 3", len(transcript))
	}
	if transcript[1].Content != "What skills?" || transcript[2].Content != "Ada knows Algebra." {
		t.Errorf("transcript = %+v", transcript)
	}
	if widget.Busy() {
		t.Error("widget still busy after reply")
	}
	if len(backend.got) != 1 || len(backend.got[0].History) != 1 {
		t.Errorf("backend requests = %+v, want one with the greeting as history", backend.got)
	}
}

func TestViewer_ChatFailureShowsApology(t *testing.T) {
	widget := chat.NewWidget(&fakeBackend{err: errors.New("connection refused")})
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	m, _ = press(t, m, "tab")
	m.input.SetValue("hello")
	m, cmd := press(t, m, "enter")
	for _, msg := range runCmd(cmd) {
		if r, ok := msg.(chatReplyMsg); ok {
			next, _ := m.Update(r)
			m = next.(viewerModel)
		}
	}

	transcript := widget.Transcript()
	if last := transcript[len(transcript)-1]; last.Content != chat.Apology {
		t.Errorf("last message = %q, want apology", last.Content)
	}
}

func TestViewer_EmptyInputIgnored(t *testing.T) {
	widget := chat.NewWidget(&fakeBackend{reply: "x"})
	m := sized(t, newViewerModel(testResume(), widget, time.Second, ""))

	m, _ = press(t, m, "tab")
	m.input.SetValue("   ")
	_, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("empty input should not start an exchange")
	}
	if len(widget.Transcript()) != 1 {
		t.Error("empty input should not change the transcript")
	}
}

func TestOpenCommand_PassesURLAsOneArgument(t *testing.T) {
	url := "https://example.com/?a=1&calc.exe"
	for _, goos := range []string{"darwin", "linux", "windows"} {
		cmd := openCommand(goos, url)
		if cmd == nil {
			t.Fatalf("%s: no launcher", goos)
		}
		if last := cmd.Args[len(cmd.Args)-1]; last != url {
			t.Errorf("%s: last arg = %q, want the url", goos, last)
		}
		for _, a := range cmd.Args {
			if a == "cmd" || a == "/c" {
				t.Errorf("%s: url routed through a shell: %v", goos, cmd.Args)
			}
		}
	}
	if openCommand("plan9", url) != nil {
		t.Error("unknown OS should have no launcher")
	}
}
