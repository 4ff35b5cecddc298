// Package conversation implements the chat core: conversation creation with
// direct-pair deduplication, message send with broadcast, and the listing
// projections clients render from.
//
// Direct conversations are unique per unordered participant pair. The
// service checks for an existing conversation first and treats the store's
// duplicate error as a lost race, retrying the lookup, so concurrent
// creates converge on one conversation without either caller seeing an
// error.
//
// Message send persists before broadcasting and updates the conversation's
// lastMessage pointer last. The pointer update is allowed to fail without
// failing the send; the next message overwrites it.
package conversation
