// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The TUI is a thin consumer of [tasks.Engine]. It renders snapshots and forwards intents; it holds
// no player state of its own beyond what the engine last reported.
//  1. [PlayerView] : status line, playback progress, and the playlist
//  2. [UploadView] : enter local file paths and upload them in order
//  3. [DownloadView] : enter a URL for server-side ingestion, with a platform hint
//  4. [ConfirmClearView] : confirm clearing the whole playlist
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine hooks push snapshots onto a buffered channel that a waiting command turns into messages, so
// polling never blocks rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
