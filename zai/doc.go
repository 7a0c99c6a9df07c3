// Package zai adapts Z.ai's GLM chat-completion API to a host LLM tool's
// plugin contract.
//
// The package exposes three surfaces: a message builder that turns a host
// prompt plus optional conversation history into the provider's role-tagged
// message sequence, a request executor (Client) that performs a single
// chat-completion round trip, and a Register function that returns the
// model catalog for the host's startup sequence. Registration is an
// explicit call, not an import side effect.
//
// A Client holds no mutable state across calls; concurrent completions need
// no external synchronization. Nothing is retried and nothing is cached:
// every failure is classified once and propagated to the caller.
package zai
