package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
)

// FileItem represents a file or directory in the upload browser.
type FileItem struct {
	name      string // Name of file/directory
	path      string // Full path
	isDir     bool   // True if directory
	supported bool   // File has an accepted extension
}

// Render returns the item's display line, truncated to width.
func (f *FileItem) Render(width int) string {
	icon := "📄"
	if f.isDir {
		icon = "📁"
	}
	return ansi.Truncate(icon+" "+f.name, max(width-2, 8), "...")
}

// UploadStep is the first wizard stage: a directory browser plus a typed
// path input. Every file is listed; supported ones are highlighted.
type UploadStep struct {
	dir         string      // Current directory path
	items       []*FileItem // Items in current directory
	selectedIdx int         // Index of highlighted item
	offset      int         // First visible item
	loadErr     error       // Last directory read failure

	pathInput textinput.Model
	typing    bool // Path input has focus

	watcher *dirWatcher // nil unless StartWatching succeeded

	width  int
	height int
}

// NewUploadStep creates an upload step browsing dir (the working directory
// when empty).
func NewUploadStep(dir string) *UploadStep {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = cwd
	}

	t := theme.Current()
	st := t.S()
	input := textinput.New()
	input.Prompt = "path: "
	input.Placeholder = "~/data/customers.csv"
	input.CharLimit = 1024
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        st.Base,
			Placeholder: st.Muted,
			Prompt:      st.Highlight,
		},
		Blurred: textinput.StyleState{
			Text:        st.Subtle,
			Placeholder: st.Muted,
			Prompt:      st.Subtle,
		},
		Cursor: textinput.CursorStyle{
			Color: theme.HexToColor(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})

	u := &UploadStep{
		pathInput: input,
		width:     60,
		height:    12,
	}
	u.loadDirectory(dir)
	return u
}

// loadDirectory lists path: ".." first (unless at root), then directories,
// then files, each group sorted case-insensitively.
func (u *UploadStep) loadDirectory(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		logger.Warn("Failed to read directory %s: %v", abs, err)
		u.loadErr = err
		return
	}
	u.loadErr = nil

	var dirs, files []*FileItem
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		item := &FileItem{
			name:  entry.Name(),
			path:  filepath.Join(abs, entry.Name()),
			isDir: entry.IsDir(),
		}
		if item.isDir {
			dirs = append(dirs, item)
		} else {
			item.supported = controller.Supported(item.name)
			files = append(files, item)
		}
	}

	byName := func(list []*FileItem) {
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i].name) < strings.ToLower(list[j].name)
		})
	}
	byName(dirs)
	byName(files)

	u.items = u.items[:0]
	if parent := filepath.Dir(abs); parent != abs {
		u.items = append(u.items, &FileItem{name: "..", path: parent, isDir: true})
	}
	u.items = append(u.items, dirs...)
	u.items = append(u.items, files...)

	u.dir = abs
	u.selectedIdx = 0
	u.offset = 0
	if u.watcher != nil {
		u.watcher.Watch(abs)
	}
}

// StartWatching makes the listing follow changes to the browsed directory.
// The returned command delivers the first change.
func (u *UploadStep) StartWatching() tea.Cmd {
	w, err := newDirWatcher()
	if err != nil {
		logger.Warn("Directory watching unavailable: %v", err)
		return nil
	}
	u.watcher = w
	w.Watch(u.dir)
	return w.Wait()
}

// StopWatching releases the directory watcher.
func (u *UploadStep) StopWatching() {
	if u.watcher == nil {
		return
	}
	if err := u.watcher.Close(); err != nil {
		logger.Warn("Failed to close directory watcher: %v", err)
	}
	u.watcher = nil
}

// refresh re-reads dir if it is still the one being browsed, keeping the
// highlighted entry when it still exists. The returned command waits for
// the next change.
func (u *UploadStep) refresh(dir string) tea.Cmd {
	if dir == u.dir {
		var selected string
		if u.selectedIdx < len(u.items) {
			selected = u.items[u.selectedIdx].name
		}
		u.loadDirectory(u.dir)
		for i, item := range u.items {
			if item.name == selected {
				u.selectedIdx = i
				break
			}
		}
		u.clampOffset()
	}
	if u.watcher == nil {
		return nil
	}
	return u.watcher.Wait()
}

// SetSize updates the dimensions for the upload step.
func (u *UploadStep) SetSize(width, height int) {
	u.width = width
	u.height = height
	u.pathInput.SetWidth(max(width-10, 10))
	u.clampOffset()
}

// Dir returns the directory being browsed.
func (u *UploadStep) Dir() string {
	return u.dir
}

// Typing reports whether the path input holds focus.
func (u *UploadStep) Typing() bool {
	return u.typing
}

// visibleRows is how many list items fit next to the path, hints and input.
func (u *UploadStep) visibleRows() int {
	return max(u.height-6, 3)
}

func (u *UploadStep) clampOffset() {
	rows := u.visibleRows()
	if u.selectedIdx < u.offset {
		u.offset = u.selectedIdx
	}
	if u.selectedIdx >= u.offset+rows {
		u.offset = u.selectedIdx - rows + 1
	}
}

// Update handles keys for the upload step. Input is ignored while busy.
func (u *UploadStep) Update(msg tea.Msg, busy bool) tea.Cmd {
	if busy {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if u.typing {
			var cmd tea.Cmd
			u.pathInput, cmd = u.pathInput.Update(msg)
			return cmd
		}
		return nil
	}

	if u.typing {
		return u.updateTyping(keyMsg)
	}

	switch keyMsg.String() {
	case "up", "k":
		if u.selectedIdx > 0 {
			u.selectedIdx--
		}
	case "down", "j":
		if u.selectedIdx < len(u.items)-1 {
			u.selectedIdx++
		}
	case "backspace", "h":
		u.loadDirectory(filepath.Dir(u.dir))
	case "/":
		u.typing = true
		return u.pathInput.Focus()
	case "enter", "l":
		if u.selectedIdx < 0 || u.selectedIdx >= len(u.items) {
			return nil
		}
		item := u.items[u.selectedIdx]
		if item.isDir {
			u.loadDirectory(item.path)
			return nil
		}
		return selectFile(item.path)
	}
	u.clampOffset()
	return nil
}

func (u *UploadStep) updateTyping(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		u.typing = false
		u.pathInput.Blur()
		return nil
	case "enter":
		path := u.expandPath(u.pathInput.Value())
		if path == "" {
			return nil
		}
		u.typing = false
		u.pathInput.Blur()
		u.pathInput.SetValue("")
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			u.loadDirectory(path)
			return nil
		}
		return selectFile(path)
	}

	var cmd tea.Cmd
	u.pathInput, cmd = u.pathInput.Update(msg)
	return cmd
}

// expandPath resolves "~/" and paths relative to the browsed directory.
func (u *UploadStep) expandPath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(u.dir, path)
	}
	return path
}

func selectFile(path string) tea.Cmd {
	return func() tea.Msg {
		return FileSelectedMsg{Path: path}
	}
}

// View renders the upload step. While busy the list and hints give way to
// the spinner line.
func (u *UploadStep) View(snap session.Snapshot, spinner string) string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Subtle.Render(u.dir))
	b.WriteString("\n\n")

	if snap.Busy {
		status := "Uploading " + snap.SelectedFile.Name + "..."
		if snap.FileID != "" {
			status = "Loading preview..."
		}
		b.WriteString(spinner + " " + s.Highlight.Render(status))
		return b.String()
	}

	switch {
	case u.loadErr != nil:
		b.WriteString(s.Error.Render(fmt.Sprintf("Cannot read directory: %v", u.loadErr)))
		b.WriteString("\n")
	case len(u.items) == 0 || (len(u.items) == 1 && u.items[0].name == ".."):
		b.WriteString(s.Muted.Italic(true).Render("Directory is empty"))
		b.WriteString("\n")
		fallthrough
	default:
		end := min(u.offset+u.visibleRows(), len(u.items))
		for i := u.offset; i < end; i++ {
			b.WriteString(u.renderItem(i))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if u.typing {
		b.WriteString(u.pathInput.View())
		b.WriteString("\n")
		b.WriteString(renderHintBar("enter", "upload", "esc", "cancel"))
		return b.String()
	}

	b.WriteString(s.Muted.Render("Choose a CSV or Excel file (.csv, .xlsx, .xls)"))
	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"↑↓/j/k", "navigate",
		"enter", "open/upload",
		"backspace", "up",
		"/", "type path",
		"esc", "quit",
	))
	return b.String()
}

func (u *UploadStep) renderItem(i int) string {
	s := theme.Current().S()
	item := u.items[i]
	line := item.Render(u.width)

	if i == u.selectedIdx {
		return s.FileSelected.Render("▸ " + line)
	}
	switch {
	case item.isDir:
		return "  " + s.FileDir.Render(line)
	case item.supported:
		return "  " + s.FileSupported.Render(line)
	default:
		return "  " + s.FileUnsupported.Render(line)
	}
}

// FileSelectedMsg is sent when the user picks a file to upload.
type FileSelectedMsg struct {
	Path string
}
