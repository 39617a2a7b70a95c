package panel

// ChannelSink forwards every command as an Event. Sends block when the
// buffer is full, so the consumer must keep draining Events.
type ChannelSink struct {
	ch chan Event
}

var _ Sink = (*ChannelSink)(nil)

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Events is the receive side.
func (c *ChannelSink) Events() <-chan Event { return c.ch }

func (c *ChannelSink) SetLoading(id ID) {
	c.ch <- Event{Panel: id, State: State{Status: StatusLoading}}
}

func (c *ChannelSink) SetEmpty(id ID) {
	c.ch <- Event{Panel: id, State: State{Status: StatusEmpty, Message: EmptyMessage(id)}}
}

func (c *ChannelSink) SetError(id ID, message string) {
	if message == "" {
		message = DefaultErrorMessage
	}
	c.ch <- Event{Panel: id, State: State{Status: StatusError, Message: message}}
}

func (c *ChannelSink) SetContent(id ID, content any) {
	c.ch <- Event{Panel: id, State: State{Status: StatusContent, Content: content}}
}

// Multi fans every command out to each sink in order.
type Multi []Sink

var _ Sink = Multi(nil)

func (m Multi) SetLoading(id ID) {
	for _, s := range m {
		s.SetLoading(id)
	}
}

func (m Multi) SetEmpty(id ID) {
	for _, s := range m {
		s.SetEmpty(id)
	}
}

func (m Multi) SetError(id ID, message string) {
	for _, s := range m {
		s.SetError(id, message)
	}
}

func (m Multi) SetContent(id ID, content any) {
	for _, s := range m {
		s.SetContent(id, content)
	}
}
