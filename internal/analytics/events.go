package analytics

import "strconv"

// EventType is an analytics event as understood by the beacon backend. The numeric value is sent as eventType.
type EventType int

const (
	EventImpression     EventType = 1
	EventPlayRequest    EventType = 2
	EventPlay           EventType = 3
	EventResume         EventType = 4
	EventPlayReached25  EventType = 11
	EventPlayReached50  EventType = 12
	EventPlayReached75  EventType = 13
	EventPlayReached100 EventType = 14
	EventPause          EventType = 33
	EventReplay         EventType = 34
	EventSeek           EventType = 35
	EventCaptions       EventType = 38
	EventSourceSelected EventType = 39 // video track changed manually
	EventAudioSelected  EventType = 42 // audio track changed manually
	EventFlavorSwitched EventType = 43 // abr bitrate switch
	EventError          EventType = 98
	EventView           EventType = 99
)

var eventNames = map[EventType]string{
	EventImpression:     "IMPRESSION",
	EventPlayRequest:    "PLAY_REQUEST",
	EventPlay:           "PLAY",
	EventResume:         "RESUME",
	EventPlayReached25:  "PLAY_REACHED_25_PERCENT",
	EventPlayReached50:  "PLAY_REACHED_50_PERCENT",
	EventPlayReached75:  "PLAY_REACHED_75_PERCENT",
	EventPlayReached100: "PLAY_REACHED_100_PERCENT",
	EventPause:          "PAUSE",
	EventReplay:         "REPLAY",
	EventSeek:           "SEEK",
	EventCaptions:       "CAPTIONS",
	EventSourceSelected: "SOURCE_SELECTED",
	EventAudioSelected:  "AUDIO_SELECTED",
	EventFlavorSwitched: "FLAVOR_SWITCHED",
	EventError:          "ERROR",
	EventView:           "VIEW",
}

// String returns the symbolic name of the event, which is also what observers are notified with.
func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "UNKNOWN_" + strconv.Itoa(int(e))
}

// Code returns the numeric event code as sent on the wire
func (e EventType) Code() string {
	return strconv.Itoa(int(e))
}
