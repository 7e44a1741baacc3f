package stream

import (
	"strings"

	"github.com/strnglp/ProfanityFE/internal/session"
	"github.com/strnglp/ProfanityFE/internal/span"
)

// roomField caches a room sub-field and redraws the room window from the
// cache. Empty text leaves the cached value alone but still redraws.
func (r *Router) roomField(field string, line span.Line) {
	if line.Text != "" {
		r.sess.CacheRoom(field, line)
	}
	room := r.win.Stream("room")
	if room == nil {
		return
	}
	room.Clear()

	if name, ok := r.sess.RoomLine(session.RoomName); ok {
		room.Add(roomNameLine(span.Line{Text: name.Text}, name, room.TextWidth()))
	}
	if desc, ok := r.sess.RoomLine(session.RoomDesc); ok {
		desc = desc.Clone()
		if i := strings.Index(desc.Text, " You also see"); i >= 0 {
			desc.Text = desc.Text[:i]
			desc.Spans = span.Clamp(desc.Spans, i)
		}
		room.Add(desc)
	}
	for _, f := range []string{session.RoomObjs, session.RoomPlayers} {
		if l, ok := r.sess.RoomLine(f); ok && l.Text != "" {
			room.Add(l)
		}
	}
	if exits, ok := r.sess.RoomLine(session.RoomExits); ok {
		room.Add(exits)
	}
}
