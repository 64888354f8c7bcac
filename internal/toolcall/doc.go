// Package toolcall normalizes the function calls an assistant run asks the
// client to execute.
//
// A ToolCall carries the provider's correlation ID, the function name, the
// decoded arguments and, once dispatched, the textual result. Arguments must
// decode to a JSON object; anything else is rejected when the ToolCall is
// built, so handlers only ever see a map.
package toolcall
