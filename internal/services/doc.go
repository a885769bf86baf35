// Package services defines the [RemoteAPI] contract for the remote music player and implements it over HTTP.
//
// # Remote API
//
// [RemoteAPI] mirrors the player's REST surface one method per endpoint:
//
//	GET    /status          Status
//	GET    /playlist        Playlist
//	POST   /play?index=N    Play (index omitted resumes)
//	POST   /pause           Pause
//	POST   /stop            Stop
//	POST   /next            Next
//	POST   /previous        Previous
//	POST   /volume          SetVolume, body {"volume": n}
//	POST   /upload          Upload, multipart field "file"
//	POST   /download        Download, body {"url": "..."}
//	DELETE /playlist        ClearPlaylist
//	DELETE /track/{id}      RemoveTrack
//
// # HTTP Implementation
//
// [APIService] takes an injected [http.Client] and applies a per-call deadline with
// [context.WithTimeout]: status, playlist, and control calls share the request timeout while
// uploads and downloads get their own, longer ones. Every request carries a fresh X-Request-ID.
// When a request rate is configured, calls wait on a [rate.Limiter] first.
//
// # Boundary Mapping
//
// The server reports two booleans for transport state. They are folded into
// [models.PlaybackState] here, with paused winning when both are set. Volume is clamped to
// 0-100, negative times become 0, and position is clamped to a known duration. A playlist with
// duplicate track IDs is refused.
//
// # Error Handling
//
// Every failure wraps [shared.ErrAPIRequest]; the FastAPI "detail" message is included when the
// server sends one. Snapshot mapping failures wrap [shared.ErrInvalidSnapshot].
package services
