// Package store provides persistence for ripple using SQLite.
//
// # Overview
//
// The Store interface covers three entity families:
//
//   - Users: accounts owned by the identity layer. The chat core only reads
//     UserProfile projections (id, name, email, avatar).
//   - Conversations: direct or group, with a participant join table. Direct
//     conversations carry a canonical direct_key ("loID|hiID") guarded by a
//     partial UNIQUE index, so at most one direct conversation exists per
//     unordered participant pair. A racing second insert gets
//     ErrDuplicateConversation and the caller retries the lookup.
//   - Messages: append-only. A message is immutable once created; the
//     conversation's last_message_id pointer is updated separately and may
//     lag behind briefly (eventual consistency by design).
//
// # Errors
//
// Lookups return ErrNotFound for missing rows. Creation returns
// ErrDuplicateUser or ErrDuplicateConversation on uniqueness violations.
// All other failures are wrapped with context.
//
// # Timestamps
//
// Timestamps are stored as UTC RFC3339 strings, matching lexicographic and
// chronological ordering for the created_at/updated_at sort indexes.
package store
