// Package audio emits answer feedback sounds and spoken prompts.
//
// Notifiers are fire-and-forget: failures are logged and never reach the
// caller.
package audio

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/decodeur/internal/logging"
	"github.com/verte-zerg/decodeur/internal/model"
)

// Notifier receives answer outcomes and text to speak.
type Notifier interface {
	NotifyCorrect()
	NotifyIncorrect()
	Speak(text string)
}

// Config holds audio settings from the config file.
type Config struct {
	SpeechCommand string
	Bell          bool
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) NotifyCorrect()   {}
func (Nop) NotifyIncorrect() {}
func (Nop) Speak(string)     {}

// Bell rings the terminal bell on wrong answers, and twice on correct ones.
type Bell struct {
	out    io.Writer
	logger logrus.FieldLogger
}

// NewBell returns a Bell writing to out.
func NewBell(out io.Writer, logger logrus.FieldLogger) *Bell {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bell{out: out, logger: logger}
}

func (b *Bell) NotifyCorrect()   { b.ring("\a\a") }
func (b *Bell) NotifyIncorrect() { b.ring("\a") }
func (b *Bell) Speak(string)     {}

func (b *Bell) ring(seq string) {
	if _, err := io.WriteString(b.out, seq); err != nil {
		b.logger.WithError(err).Debug("bell write failed")
	}
}

// StartFunc launches a command without waiting for it.
type StartFunc func(name string, args ...string) error

// Speech hands text to an external text-to-speech command.
type Speech struct {
	command []string
	start   StartFunc
	logger  logrus.FieldLogger
}

// NewSpeech parses command ("espeak -s 150") and returns a Speech using start.
// A nil start runs the command with os/exec. A nil logger discards output.
func NewSpeech(command string, start StartFunc, logger logrus.FieldLogger) *Speech {
	if start == nil {
		start = startCommand
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Speech{command: strings.Fields(command), start: start, logger: logger}
}

func (s *Speech) NotifyCorrect()   {}
func (s *Speech) NotifyIncorrect() {}

func (s *Speech) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(s.command) == 0 {
		return
	}
	args := append(append([]string{}, s.command[1:]...), text)
	if err := s.start(s.command[0], args...); err != nil {
		s.logger.WithError(err).WithField("command", s.command[0]).Warn("speech command failed")
	}
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Multi fans notifications out to several notifiers.
type Multi []Notifier

func (m Multi) NotifyCorrect() {
	for _, n := range m {
		n.NotifyCorrect()
	}
}

func (m Multi) NotifyIncorrect() {
	for _, n := range m {
		n.NotifyIncorrect()
	}
}

func (m Multi) Speak(text string) {
	for _, n := range m {
		n.Speak(text)
	}
}

// New builds the notifier matching the user preferences.
func New(prefs model.Preferences, cfg Config, logger logrus.FieldLogger) Notifier {
	if logger == nil {
		logger = logging.Discard()
	}
	if !prefs.AudioEnabled || prefs.AudioVolume <= 0 {
		return Nop{}
	}
	var out Multi
	if prefs.SoundEffectsEnabled && cfg.Bell {
		out = append(out, NewBell(os.Stderr, logger))
	}
	if prefs.SpeechEnabled {
		command := cfg.SpeechCommand
		if command == "" {
			command = DefaultSpeechCommand()
		}
		if command != "" {
			out = append(out, NewSpeech(command, nil, logger))
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

// DefaultSpeechCommand returns the first known TTS program found on PATH.
func DefaultSpeechCommand() string {
	for _, name := range []string{"say", "espeak-ng", "espeak", "spd-say"} {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}
