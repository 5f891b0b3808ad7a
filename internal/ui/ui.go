package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/quietriver/cadence/internal/library"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistView ViewState = iota
	TrackView
	RecommendationView
	DeviceView
)

// Model represents the TUI application state. All remote data flows through
// the cache layer; the model itself only renders what the store holds.
type Model struct {
	ctx     context.Context
	manager *library.Manager
	poller  *library.Poller
	recs    *library.Recommender

	view   ViewState
	width  int
	height int

	playlistList list.Model
	trackList    list.Model
	recList      list.Model
	deviceList   list.Model
	trackTitle   string

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a TUI model with the provided dependencies.
func NewModel(ctx context.Context, manager *library.Manager, poller *library.Poller, recs *library.Recommender) *Model {
	return &Model{
		ctx:     ctx,
		manager: manager,
		poller:  poller,
		recs:    recs,
		view:    PlaylistView,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the playlist collection and primes the device cache.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchPlaylists(), m.fetchDevices())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.playlistList, &m.trackList, &m.recList, &m.deviceList} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case playlistsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.playlistList = m.newList("Playlists", playlistItems(msg.playlists))
		return m, nil

	case tracksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistView
			return m, nil
		}
		m.err = nil
		m.trackTitle = msg.title
		m.trackList = m.newList(msg.title, trackItems(msg.tracks))
		m.view = TrackView
		return m, nil

	case devicesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.devices))
		for i, d := range msg.devices {
			items[i] = deviceEntry{device: d}
		}
		m.deviceList = m.newList("Devices", items)
		return m, nil

	case recommendationLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.rec != nil {
			m.recList = m.newList(msg.rec.Label, trackItems(msg.rec.Tracks))
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case RefreshMsg:
		return m, m.reload(msg.View)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PlaylistView:
		body = m.playlistList.View()
	case TrackView:
		body = m.trackList.View()
	case RecommendationView:
		body = m.recList.View()
	case DeviceView:
		body = m.deviceList.View()
	}

	if m.err != nil {
		body = fmt.Sprintf("%s\n\n%s", body, styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	helpView := m.help.ShortHelpView(m.helpKeys())
	return fmt.Sprintf("%s\n\n%s", body, helpView)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.tab):
		return m, m.nextView()

	case key.Matches(msg, m.keys.back):
		if m.view == TrackView {
			m.view = PlaylistView
		}
		return m, nil
	}

	switch m.view {
	case PlaylistView:
		return m.handlePlaylistKeys(msg)
	case TrackView:
		return m.handleTrackKeys(msg)
	case RecommendationView:
		return m.handleRecommendationKeys(msg)
	case DeviceView:
		return m.handleDeviceKeys(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if entry, ok := m.playlistList.SelectedItem().(playlistEntry); ok {
			return m, m.openPlaylist(entry.item)
		}
	case key.Matches(msg, m.keys.liked):
		return m, m.openPlaylist(library.LikedSongsPlaylist())
	case key.Matches(msg, m.keys.sort):
		mode := !m.manager.Store().SortAlphabetically()
		m.manager.SetSort(mode)
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.drop):
		if entry, ok := m.trackList.SelectedItem().(trackEntry); ok {
			return m, m.removeTrack(entry.item)
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleRecommendationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.regen):
		return m, m.regenerate()
	case key.Matches(msg, m.keys.drop):
		if entry, ok := m.recList.SelectedItem().(trackEntry); ok {
			return m, m.removeRecommended(entry.item.ID)
		}
	case key.Matches(msg, m.keys.album):
		if entry, ok := m.recList.SelectedItem().(trackEntry); ok {
			return m, m.showAlbum(entry.item)
		}
	}

	var cmd tea.Cmd
	m.recList, cmd = m.recList.Update(msg)
	return m, cmd
}

func (m *Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if entry, ok := m.deviceList.SelectedItem().(deviceEntry); ok {
			m.manager.Store().SelectPlayer(entry.device.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.deviceList, cmd = m.deviceList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackView:
		m.trackList, cmd = m.trackList.Update(msg)
	case RecommendationView:
		m.recList, cmd = m.recList.Update(msg)
	case DeviceView:
		m.deviceList, cmd = m.deviceList.Update(msg)
	}
	return m, cmd
}

// nextView cycles playlists, recommendations, devices. The track drill-down
// is reached through enter, not the cycle.
func (m *Model) nextView() tea.Cmd {
	switch m.view {
	case PlaylistView, TrackView:
		m.view = RecommendationView
		m.manager.Store().SelectTab(library.ViewRecommendations)
		if m.manager.Store().Recommendation() == nil {
			return m.regenerate()
		}
		return m.reload(library.ViewRecommendations)
	case RecommendationView:
		m.view = DeviceView
		m.manager.Store().SelectTab(library.ViewDevices)
		return m.fetchDevices()
	default:
		m.view = PlaylistView
		m.manager.Store().SelectTab(library.ViewPlaylists)
		return m.reload(library.ViewPlaylists)
	}
}

// reload rebuilds list contents from the store after external changes.
func (m *Model) reload(view string) tea.Cmd {
	switch view {
	case library.ViewDevices:
		return func() tea.Msg {
			return devicesLoadedMsg{devices: m.manager.Store().Devices()}
		}
	case library.ViewRecommendations:
		return func() tea.Msg {
			return recommendationLoadedMsg{rec: m.manager.Store().Recommendation()}
		}
	default:
		return m.fetchPlaylists()
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.manager.Playlists(m.ctx, false)
		if err != nil {
			return playlistsLoadedMsg{err: err}
		}
		entries := append([]library.PlaylistItem{library.LikedSongsPlaylist()}, playlists...)
		return playlistsLoadedMsg{playlists: entries}
	}
}

func (m *Model) openPlaylist(item library.PlaylistItem) tea.Cmd {
	return func() tea.Msg {
		if item.ID == library.LikedSongsPlaylistID {
			if err := m.manager.SelectLikedSongs(m.ctx); err != nil {
				return tracksLoadedMsg{err: err}
			}
			tracks, _ := m.manager.Store().LikedTracks()
			return tracksLoadedMsg{title: library.LikedSongsPlaylistName, tracks: tracks}
		}

		if err := m.manager.SelectPlaylistTracks(m.ctx, item.ID); err != nil {
			return tracksLoadedMsg{err: err}
		}
		tracks, _ := m.manager.Store().PlaylistTracks(item.ID)
		return tracksLoadedMsg{title: item.Name, tracks: tracks}
	}
}

func (m *Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		if err := m.poller.Populate(m.ctx, true); err != nil {
			return devicesLoadedMsg{err: err}
		}
		return devicesLoadedMsg{devices: m.manager.Store().Devices()}
	}
}

func (m *Model) regenerate() tea.Cmd {
	return func() tea.Msg {
		if m.manager.Store().Recommendation() == nil {
			preset, _ := m.recs.Preset("Familiar")
			rec, err := m.recs.Recommend(m.ctx, preset)
			return recommendationLoadedMsg{rec: rec, err: err}
		}
		rec, err := m.recs.Regenerate(m.ctx)
		return recommendationLoadedMsg{rec: rec, err: err}
	}
}

func (m *Model) removeTrack(item library.PlaylistItem) tea.Cmd {
	return func() tea.Msg {
		if err := m.manager.RemoveTrackFromPlaylist(m.ctx, item); err != nil {
			return actionDoneMsg{err: err}
		}

		// Reload the current track list from the refreshed cache.
		if m.manager.IsLikedPlaylistSelected() {
			tracks, err := m.manager.LikedSongs(m.ctx)
			return tracksLoadedMsg{title: library.LikedSongsPlaylistName, tracks: tracks, err: err}
		}
		tracks, err := m.manager.PlaylistTracks(m.ctx, item.PlaylistID)
		return tracksLoadedMsg{title: m.trackTitle, tracks: tracks, err: err}
	}
}

func (m *Model) showAlbum(item library.PlaylistItem) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.recs.ShowAlbum(m.ctx, item)
		return recommendationLoadedMsg{rec: rec, err: err}
	}
}

func (m *Model) removeRecommended(trackID string) tea.Cmd {
	return func() tea.Msg {
		m.recs.Remove(trackID)
		rec := m.manager.Store().Recommendation()
		if rec == nil || len(rec.Tracks) >= 2 {
			return recommendationLoadedMsg{rec: rec}
		}
		// The set is nearly exhausted, replace it with a fresh batch.
		fresh, err := m.recs.Regenerate(m.ctx)
		return recommendationLoadedMsg{rec: fresh, err: err}
	}
}

func (m *Model) newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	l.Title = title
	return l
}

func (m *Model) helpKeys() []key.Binding {
	switch m.view {
	case PlaylistView:
		return []key.Binding{m.keys.enter, m.keys.liked, m.keys.sort, m.keys.tab, m.keys.quit}
	case TrackView:
		return []key.Binding{m.keys.drop, m.keys.back, m.keys.quit}
	case RecommendationView:
		return []key.Binding{m.keys.regen, m.keys.drop, m.keys.album, m.keys.tab, m.keys.quit}
	default:
		return []key.Binding{m.keys.enter, m.keys.tab, m.keys.quit}
	}
}

func playlistItems(playlists []library.PlaylistItem) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistEntry{item: p}
	}
	return items
}

func trackItems(tracks []library.PlaylistItem) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackEntry{item: t}
	}
	return items
}
