// Package tasks keeps a local mirror of a remote music player and forwards user intents to it.
//
// # Components
//
// [Engine] composes five parts over one [services.RemoteAPI]:
//
//  1. [StatusPoller] : fetches status on a fixed interval (2s by default)
//     - the first fetch happens in Start and is fatal on failure
//     - later failures keep the previous snapshot and are only logged
//     - Stop cancels any in-flight fetch and waits for the loop
//
//  2. [PlaylistStore] : mirrors the playlist, refreshed on demand only
//     - at startup, and after remove, clear, upload, and download
//
//  3. [Dispatcher] : sends commands and schedules one status refresh per success after the settle delay
//     - no optimistic updates, no queueing
//     - volume is range-checked before any request
//
//  4. [UploadPipeline] : validates local files and uploads them one at a time, stopping at the first failure
//
//  5. [DownloadIngestor] : validates a URL and submits it for server-side ingestion
//
// # Snapshots
//
// Status and playlist snapshots are swapped as whole pointers with [sync/atomic], so readers never
// see a partial update and need no lock.
//
// # Time
//
// Polling and follow-up refreshes go through a clockwork.Clock. Tests drive them with a fake clock.
//
// # Progress Reporting
//
// Uploads and downloads send [ProgressUpdate] values on an optional channel. Sends use select with
// default so a slow reader never stalls a transfer.
package tasks
