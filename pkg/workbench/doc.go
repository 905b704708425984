// Package workbench is a typed HTTP client SDK for the Semantic Workbench
// collaboration service.
//
// The package provides one resource client per REST resource family
// ([ConversationClient], [ConversationsClient], [AssistantClient],
// [AssistantsClient], [AssistantServiceClient]), each exposing one method
// per endpoint. Resource clients are assembled through two builders:
//
//   - [ServiceClientBuilder] for assistant services authenticating with a
//     service ID and API key, optionally acting as a specific assistant.
//   - [UserClientBuilder] for end users authenticating with a bearer token.
//
// Identity headers are bound at construction time and are read-only
// afterwards, so a single resource client is safe for concurrent use.
// Every method performs exactly one HTTP request (SendMessages performs one
// request per message, sequentially, preserving input order). Non-2xx
// responses surface as [*StatusError] carrying the status code and body,
// except for the handful of delete/lookup methods that treat 404 as an
// empty result. Live event notifications are consumed through
// [ConversationClient.Events], which returns an [*EventStream] backed by
// the pkg/sse parser; closing the stream (or cancelling its context)
// releases the underlying connection.
package workbench
