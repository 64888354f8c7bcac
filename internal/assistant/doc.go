// Package assistant drives one assistant run from creation to its final
// message.
//
// The Orchestrator creates a run on a thread, polls it with a bounded
// exponential backoff, executes the tool calls the run asks for through a
// dispatch.Dispatcher and submits their outputs back until the run
// completes, fails or the wait budget runs out.
//
// Provider access goes through the RunsAPI interface, which *openai.Client
// satisfies, so the loop can be tested against a fake.
package assistant
