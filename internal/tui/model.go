// Package tui provides the Bubble Tea prediction form.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/churnform/internal/form"
	"github.com/verte-zerg/churnform/internal/logging"
	"github.com/verte-zerg/churnform/internal/model"
	"github.com/verte-zerg/churnform/internal/predict"
)

// Predictor sends one prediction request.
type Predictor interface {
	Predict(ctx context.Context, req model.PredictionRequest) (*model.PredictionResult, error)
}

// Recorder stores successful predictions.
type Recorder interface {
	InsertPrediction(ctx context.Context, entry model.HistoryEntry) (int64, error)
}

// Options carries optional collaborators for the form.
type Options struct {
	Endpoint string
	Recorder Recorder
	Logger   *logging.Logger
}

type predictionMsg struct {
	seq       uint64
	requestID string
	result    *model.PredictionResult
	err       error
}

// Model implements the Bubble Tea prediction form.
type Model struct {
	ctx       context.Context
	predictor Predictor
	recorder  Recorder
	endpoint  string
	log       *logging.Logger

	form   form.State
	fields []form.Field
	inputs []textinput.Model
	focus  int

	loading bool
	errMsg  string
	result  *model.PredictionResult
	seq     uint64
	spinner spinner.Model

	width  int
	height int
}

// NewModel constructs the form with default values.
func NewModel(ctx context.Context, predictor Predictor, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	m := &Model{
		ctx:       ctx,
		predictor: predictor,
		recorder:  opts.Recorder,
		endpoint:  opts.Endpoint,
		log:       log,
		form:      form.Default(),
		fields:    form.Fields(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(accentColor))),
		),
	}
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		if f.IsChoice() {
			continue
		}
		m.inputs[i] = newFieldInput(m.form.Value(f))
	}
	m.setFocus(0)
	return m
}

func newFieldInput(value string) textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 32
	input.Width = 14
	input.SetValue(value)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case predictionMsg:
		m.settle(msg)
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		return m, m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		return m, m.setFocus(m.focus - 1)
	case "ctrl+s":
		return m, m.submit()
	case "enter":
		if m.onButton() {
			return m, m.submit()
		}
		return m, m.setFocus(m.focus + 1)
	}
	if m.onButton() {
		return m, nil
	}
	field := m.fields[m.focus]
	if field.IsChoice() {
		switch msg.String() {
		case "right", "l", " ":
			m.cycleChoice(field, 1)
		case "left", "h":
			m.cycleChoice(field, -1)
		}
		return m, nil
	}
	return m, m.updateFocusedInput(msg)
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if m.onButton() || m.fields[m.focus].IsChoice() {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.edit(m.fields[m.focus], m.inputs[m.focus].Value())
	return cmd
}

func (m *Model) cycleChoice(field form.Field, delta int) {
	opts := field.Options()
	current := m.form.Value(field)
	idx := 0
	for i, opt := range opts {
		if opt == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(opts)) % len(opts)
	m.edit(field, opts[idx])
}

func (m *Model) edit(field form.Field, value string) {
	if m.form.Value(field) == value {
		return
	}
	next, err := m.form.With(field, value)
	if err != nil {
		m.log.Warn("rejected form edit", "field", string(field), "error", err)
		return
	}
	m.form = next
}

func (m *Model) onButton() bool {
	return m.focus >= len(m.fields)
}

func (m *Model) setFocus(idx int) tea.Cmd {
	count := len(m.fields) + 1
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	var cmd tea.Cmd
	for i, f := range m.fields {
		if f.IsChoice() {
			continue
		}
		if i == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

// submit starts one request/response cycle. It is a no-op while a request
// is outstanding.
func (m *Model) submit() tea.Cmd {
	if m.loading || m.predictor == nil {
		return nil
	}
	m.loading = true
	m.errMsg = ""
	m.result = nil
	m.seq++
	requestID := uuid.NewString()
	m.log.Info("prediction submitted", "request_id", requestID, "seq", m.seq)
	return tea.Batch(m.spinner.Tick, m.requestCmd(m.seq, requestID, m.form.Request()))
}

func (m *Model) requestCmd(seq uint64, requestID string, req model.PredictionRequest) tea.Cmd {
	ctx := m.ctx
	predictor := m.predictor
	recorder := m.recorder
	endpoint := m.endpoint
	log := m.log.With("request_id", requestID, "seq", seq)
	return func() tea.Msg {
		res, err := predictor.Predict(ctx, req)
		if err == nil && res != nil && recorder != nil {
			entry := model.HistoryEntry{
				RequestID: requestID,
				CreatedAt: time.Now(),
				Endpoint:  endpoint,
				Request:   req,
				Result:    *res,
			}
			if _, rerr := recorder.InsertPrediction(ctx, entry); rerr != nil {
				log.Warn("failed to save prediction", "error", rerr)
			}
		}
		return predictionMsg{seq: seq, requestID: requestID, result: res, err: err}
	}
}

func (m *Model) settle(msg predictionMsg) {
	log := m.log.With("request_id", msg.requestID, "seq", msg.seq)
	if msg.seq != m.seq {
		log.Debug("discarding stale prediction", "latest_seq", m.seq)
		return
	}
	m.loading = false
	if msg.err != nil {
		m.result = nil
		m.errMsg = predict.UserMessageFor(msg.err)
		log.Warn("prediction failed",
			"kind", predict.KindOf(msg.err).String(),
			"status", predict.StatusOf(msg.err),
			"error", msg.err,
		)
		return
	}
	m.errMsg = ""
	m.result = msg.result
	if msg.result == nil {
		log.Info("prediction returned no result")
		return
	}
	log.Info("prediction settled",
		"prediction", msg.result.Prediction,
		"probability", msg.result.Probability,
	)
}
