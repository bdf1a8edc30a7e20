package vim

import "github.com/zjrosen/modal/internal/pubsub"

// Listener receives engine notifications synchronously from HandleKey.
type Listener interface {
	OnModeChange(mode Mode)
	OnCommandLineStart(text string)
	OnCommandLineUpdate(text string)
}

// ListenerFuncs adapts optional callbacks to Listener.
type ListenerFuncs struct {
	ModeChange        func(Mode)
	CommandLineStart  func(string)
	CommandLineUpdate func(string)
}

func (l ListenerFuncs) OnModeChange(mode Mode) {
	if l.ModeChange != nil {
		l.ModeChange(mode)
	}
}

func (l ListenerFuncs) OnCommandLineStart(text string) {
	if l.CommandLineStart != nil {
		l.CommandLineStart(text)
	}
}

func (l ListenerFuncs) OnCommandLineUpdate(text string) {
	if l.CommandLineUpdate != nil {
		l.CommandLineUpdate(text)
	}
}

// NotificationKind tags a Notification.
type NotificationKind int

const (
	NotifyModeChange NotificationKind = iota
	NotifyCommandLineStart
	NotifyCommandLineUpdate
)

// Notification is the broker payload published by BrokerListener.
type Notification struct {
	Kind NotificationKind
	Mode Mode
	Text string
}

// BrokerListener republishes engine notifications on a pubsub broker so
// hosts can consume them asynchronously.
type BrokerListener struct {
	pub pubsub.Publisher[Notification]
}

// NewBrokerListener wraps a publisher.
func NewBrokerListener(pub pubsub.Publisher[Notification]) *BrokerListener {
	return &BrokerListener{pub: pub}
}

func (l *BrokerListener) OnModeChange(mode Mode) {
	l.pub.Publish(pubsub.ChangedEvent, Notification{Kind: NotifyModeChange, Mode: mode})
}

func (l *BrokerListener) OnCommandLineStart(text string) {
	l.pub.Publish(pubsub.StartedEvent, Notification{Kind: NotifyCommandLineStart, Mode: ModeCommandLine, Text: text})
}

func (l *BrokerListener) OnCommandLineUpdate(text string) {
	l.pub.Publish(pubsub.ChangedEvent, Notification{Kind: NotifyCommandLineUpdate, Mode: ModeCommandLine, Text: text})
}

// multiListener fans out to several listeners in order.
type multiListener []Listener

func (m multiListener) OnModeChange(mode Mode) {
	for _, l := range m {
		l.OnModeChange(mode)
	}
}

func (m multiListener) OnCommandLineStart(text string) {
	for _, l := range m {
		l.OnCommandLineStart(text)
	}
}

func (m multiListener) OnCommandLineUpdate(text string) {
	for _, l := range m {
		l.OnCommandLineUpdate(text)
	}
}
