package notification

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestWriterNotifier(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	buf := &bytes.Buffer{}
	NewWriterNotifier(buf).OpenNotification("saved successfully", Success)
	require.Equal(t, "[success] saved successfully\n", buf.String())
}

func TestLogNotifier(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.InfoLevel)

	NewLogNotifier(log).OpenNotification("server unavailable", Error)
	require.Contains(t, buf.String(), "server unavailable")
	require.Contains(t, buf.String(), "variant=error")
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi(a, b).OpenNotification("data not found", Error)

	last, ok := b.Last()
	require.True(t, ok)
	require.Equal(t, Message{Text: "data not found", Variant: Error}, last)
	require.Len(t, a.Messages(), 1)

	a.Reset()
	_, ok = a.Last()
	require.False(t, ok)
}
