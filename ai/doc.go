// Package ai defines the AI service interfaces the engine consumes:
// text embedding for the dense index, and the optional answer
// polisher. Implementations live in subpackages (openai for any
// OpenAI-compatible endpoint, mock for deterministic test doubles);
// the retrieval core itself never talks to a network service directly
// and keeps working when every AI service is down.
package ai
