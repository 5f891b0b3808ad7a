package library

// View hints passed along with refresh signals. An empty hint means "whatever
// view is current".
const (
	ViewPlaylists       = "playlists"
	ViewRecommendations = "recommendations"
	ViewDevices         = "devices"
)

// Notifier is the one-way signal emitted after any cache mutation so the
// presentation layer re-reads the cache. Fire-and-forget: no acknowledgement
// is awaited and implementations must not block.
type Notifier interface {
	Refresh(view string)
}

// NotifierFunc adapts a function to the [Notifier] interface.
type NotifierFunc func(view string)

func (f NotifierFunc) Refresh(view string) { f(view) }

// NopNotifier discards refresh signals.
var NopNotifier = NotifierFunc(func(string) {})
