package event

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// session identifies this process run in every event it emits.
var session = uuid.NewString()

type Event interface {
	ID() string
	Session() string
	Message() string
	Image() image.Image
	OccurredAt() time.Time
	Supervisor() string
}

type BaseEvent struct {
	id         string
	message    string
	image      image.Image
	occurredAt time.Time
	supervisor string
}

func (b BaseEvent) ID() string {
	return b.id
}

func (b BaseEvent) Session() string {
	return session
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) Image() image.Image {
	return b.image
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) Supervisor() string {
	return b.supervisor
}

func WithScreenshot(supervisor string, message string, img image.Image) BaseEvent {
	return BaseEvent{
		id:         uuid.NewString(),
		message:    message,
		image:      img,
		occurredAt: time.Now(),
		supervisor: supervisor,
	}
}

func Text(supervisor string, message string) BaseEvent {
	return BaseEvent{
		id:         uuid.NewString(),
		message:    message,
		occurredAt: time.Now(),
		supervisor: supervisor,
	}
}

type BotStartedEvent struct {
	BaseEvent
}

func BotStarted(be BaseEvent) BotStartedEvent {
	return BotStartedEvent{BaseEvent: be}
}

type DecisionMadeEvent struct {
	BaseEvent
	Action string
	State  string
	Reason string
}

func DecisionMade(be BaseEvent, action, state, reason string) DecisionMadeEvent {
	return DecisionMadeEvent{BaseEvent: be, Action: action, State: state, Reason: reason}
}

type ActionFailedEvent struct {
	BaseEvent
	Action      string
	Consecutive int
}

func ActionFailed(be BaseEvent, action string, consecutive int) ActionFailedEvent {
	return ActionFailedEvent{BaseEvent: be, Action: action, Consecutive: consecutive}
}

type GameRestartedEvent struct {
	BaseEvent
	Reason   string
	Restarts int
}

func GameRestarted(be BaseEvent, reason string, restarts int) GameRestartedEvent {
	return GameRestartedEvent{BaseEvent: be, Reason: reason, Restarts: restarts}
}

type FatalStopEvent struct {
	BaseEvent
	Err error
}

func FatalStop(be BaseEvent, err error) FatalStopEvent {
	return FatalStopEvent{BaseEvent: be, Err: err}
}

type NgrokTunnelEvent struct {
	BaseEvent
	URL string
}

func NgrokTunnel(url string) NgrokTunnelEvent {
	return NgrokTunnelEvent{
		BaseEvent: Text("", "Remote access available at "+url),
		URL:       url,
	}
}
