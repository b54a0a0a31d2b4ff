package engine

import "gitlab.com/gomidi/midi/v2"

// MIDI controllers that silence the instrument.
const (
	ccAllSoundOff = 120
	ccAllNotesOff = 123
)

// VelocityFromMIDI maps a 7-bit MIDI velocity to [0, 1].
func VelocityFromMIDI(v uint8) float64 {
	if v > 127 {
		v = 127
	}
	return float64(v) / 127
}

// EventFromMessage converts a MIDI channel message into an Event at frame.
// Note-on with velocity 0 is a note-off. Only notes and the all-sound-off
// and all-notes-off controllers are recognised; ok is false otherwise.
func EventFromMessage(msg midi.Message, frame int64) (ev Event, ok bool) {
	var ch, key, vel, ctl, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return Event{Frame: frame, Kind: EventNoteOn, Note: int(key), Velocity: VelocityFromMIDI(vel)}, true
	case msg.GetNoteEnd(&ch, &key):
		return Event{Frame: frame, Kind: EventNoteOff, Note: int(key)}, true
	case msg.GetControlChange(&ch, &ctl, &val):
		if ctl == ccAllSoundOff || ctl == ccAllNotesOff {
			return Event{Frame: frame, Kind: EventAllNotesOff}, true
		}
	}
	return Event{}, false
}

// HandleMessage applies msg at the next rendered sample. It reports whether
// the message was recognised; unrecognised messages are ignored.
func (e *Engine) HandleMessage(msg midi.Message) (bool, error) {
	ev, ok := EventFromMessage(msg, 0)
	if !ok {
		return false, nil
	}
	return true, e.Schedule(ev)
}
