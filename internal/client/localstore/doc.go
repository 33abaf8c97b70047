// Package localstore keeps all device-local data in one JSON document.
//
// # Layout
//
//	{
//	  "auth":        {"user_id": "...", "email": "...", "token": "...", "login_timestamp": "..."},
//	  "preferences": {"<key>": <any JSON value>, ...}
//	}
//
// Pool and analysis collections live under the preference keys
// "pools_<user_id>" and "analysis_<user_id>".
//
// # Consistency
//
// Every operation reads the whole document, changes it and writes it back.
// Operations on one Store are serialised, but there is no file locking:
// two processes, or a caller doing its own Get then Set, can still lose an
// update to the last writer. Writes replace the file atomically (temp file
// + rename).
//
// # Errors
//
// A missing file is an empty document. An unreadable or corrupt file is
// also treated as empty, but reads report it with an error wrapping
// common.ErrStorageUnreadable, and the next write replaces it.
package localstore
