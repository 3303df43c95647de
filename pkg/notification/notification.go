// Package notification surfaces user-visible messages: save confirmations,
// failed fetches and upload progress.
package notification

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Variant string

const (
	Success Variant = "success"
	Error   Variant = "error"
	Warning Variant = "warning"
	Info    Variant = "info"
	Loading Variant = "loading"
)

// Notifier is implemented by anything able to show a message to the user.
type Notifier interface {
	OpenNotification(message string, variant Variant)
}

type NotifierFunc func(message string, variant Variant)

func (f NotifierFunc) OpenNotification(message string, variant Variant) {
	f(message, variant)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string, Variant) {})

type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier prints notifications to w, colored when w is a terminal.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

var variantColors = map[Variant]*color.Color{
	Success: color.New(color.FgGreen),
	Error:   color.New(color.FgRed, color.Bold),
	Warning: color.New(color.FgYellow),
	Info:    color.New(color.FgCyan),
	Loading: color.New(color.Faint),
}

func (n *WriterNotifier) OpenNotification(message string, variant Variant) {
	c, ok := variantColors[variant]
	if !ok {
		c = variantColors[Info]
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = c.Fprintf(n.w, "[%s]", variant)
	_, _ = fmt.Fprintf(n.w, " %s\n", message)
}

type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notification")}
}

func (n *LogNotifier) OpenNotification(message string, variant Variant) {
	entry := n.log.WithField("variant", string(variant))
	switch variant {
	case Error:
		entry.Error(message)
	case Warning:
		entry.Warn(message)
	case Loading:
		entry.Debug(message)
	default:
		entry.Info(message)
	}
}

// Multi fans a notification out to every notifier.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(message string, variant Variant) {
		for _, n := range notifiers {
			n.OpenNotification(message, variant)
		}
	})
}

type Message struct {
	Text    string
	Variant Variant
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) OpenNotification(message string, variant Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Variant: variant})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}
