// Package models defines the snapshots the client mirrors from the remote player.
//
// The types are plain values owned by whoever holds the snapshot pointer:
//   - [Track] : one entry of the server-side playlist
//   - [Playlist] : the ordered track list plus the server's current index
//   - [PlayerStatus] : transport state, position, and volume
//   - [PlaybackState] : the single tagged state replacing separate playing/paused flags
//
// Snapshots are replaced wholesale and never edited in place, so readers may hold on to a pointer
// without locking.
package models
