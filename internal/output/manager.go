package output

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TaskOutput tracks the display state of one registered download task.
type TaskOutput struct {
	ID          int
	Name        string
	Status      string
	Message     string
	StreamLines []string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	TaskName string
	Error    error
	Time     time.Time
}

// Manager renders the live status of all tasks to the terminal and
// collects the final per-task error report.
type Manager struct {
	mu          sync.RWMutex
	tasks       map[int]*TaskOutput
	taskCount   int
	errors      []ErrorReport
	numLines    int
	maxStreams  int
	doneCh      chan struct{}
	pauseCh     chan bool
	isPaused    bool
	displayTick time.Duration
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		tasks:       make(map[int]*TaskOutput),
		maxStreams:  10,
		doneCh:      make(chan struct{}),
		pauseCh:     make(chan bool),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) Pause() {
	if !m.isPaused {
		m.pauseCh <- true
		m.isPaused = true
	}
}

func (m *Manager) Resume() {
	if m.isPaused {
		m.pauseCh <- false
		m.isPaused = false
	}
}

func (m *Manager) Register(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskCount++
	m.tasks[m.taskCount] = &TaskOutput{
		ID:          m.taskCount,
		Name:        name,
		Status:      "pending",
		StreamLines: []string{},
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	return m.taskCount
}

func (m *Manager) SetMessage(id int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Message = message
		t.LastUpdated = time.Now()
	}
}

func (m *Manager) SetStatus(id int, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Status = status
		t.LastUpdated = time.Now()
	}
}

func (m *Manager) Complete(id int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.StreamLines = []string{}
		if message == "" {
			t.Message = fmt.Sprintf("Completed %s", t.Name)
		} else {
			t.Message = message
		}
		t.Complete = true
		t.Status = "success"
		t.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Complete = true
		t.Status = "error"
		t.Error = err
		t.Message = fmt.Sprintf("Failed %s", t.Name)
		t.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{
			TaskName: t.Name,
			Error:    err,
			Time:     time.Now(),
		})
	}
}

func (m *Manager) AddStreamLine(id int, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.StreamLines = append(t.StreamLines, wrapText(line, 6)...)
		if len(t.StreamLines) > m.maxStreams {
			t.StreamLines = t.StreamLines[len(t.StreamLines)-m.maxStreams:]
		}
		t.LastUpdated = time.Now()
	}
}

func (m *Manager) AddProgressBarToStream(id int, outof, final int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		progressBar := PrintProgressBar(max(0, outof), final, 30)
		elapsed := time.Since(t.StartTime).Round(time.Second).Seconds()
		display := fmt.Sprintf("%s%s %s %s", progressBar, debugStyle.Render(text), StyleSymbols["bullet"], debugStyle.Render(FormatSpeed(outof, elapsed)))
		t.StreamLines = []string{display} // Single stream line so nothing else scrolls
		t.LastUpdated = time.Now()
	}
}

func statusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleByStatus(status, message string) string {
	switch status {
	case "success":
		return successStyle.Render(message)
	case "error":
		return errorStyle.Render(message)
	case "warning":
		return warningStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

// ordered returns tasks in registration order.
func (m *Manager) ordered() []*TaskOutput {
	all := make([]*TaskOutput, 0, len(m.tasks))
	for _, t := range m.tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (m *Manager) updateDisplay() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	availableLines := getTerminalHeight() - 3
	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
	}

	lineCount := 0
	for _, t := range m.ordered() {
		if lineCount >= availableLines {
			break
		}
		indicator := statusIndicator(t.Status)
		elapsed := time.Since(t.StartTime).Round(time.Second)
		if t.Complete {
			elapsed = t.LastUpdated.Sub(t.StartTime).Round(time.Second)
		}
		message := t.Message
		if message == "" {
			message = "Waiting..."
		}
		fmt.Printf("  %s %s %s\n", indicator, debugStyle.Render(elapsed.String()), styleByStatus(t.Status, message))
		lineCount++
		for _, line := range t.StreamLines {
			if lineCount >= availableLines {
				break
			}
			fmt.Printf("      %s\n", streamStyle.Render(line))
			lineCount++
		}
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !m.isPaused {
					m.updateDisplay()
				}
			case pauseState := <-m.pauseCh:
				m.isPaused = pauseState
			case <-m.doneCh:
				m.updateDisplay()
				m.ShowSummary()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  " + errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Printf("    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Task: %s", report.TaskName)))
		fmt.Printf("      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", report.Error)))
	}
}

func (m *Manager) ShowSummary() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fmt.Println()
	var success, failures int
	for _, t := range m.tasks {
		switch t.Status {
		case "success":
			success++
		case "error":
			failures++
		}
	}
	fmt.Println("  " + success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.tasks))))
	if failures > 0 {
		fmt.Println("  " + errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.tasks))))
	}
	m.displayErrors()
	fmt.Println()
}
