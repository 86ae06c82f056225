// Package services holds the application core: the token cache, the remote
// fetcher, the normalizer, the sync orchestrator, the analytics engine and
// the insight/chat layer built on top of them.
//
// Services are plain values wired together by the CLI. None of them keep
// global state, so tests construct them freely with fakes.
package services
