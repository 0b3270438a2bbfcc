// Package openai implements the ai interfaces against any
// OpenAI-compatible API, including local servers such as Ollama or
// llama.cpp. The package name refers to the wire protocol, not a
// dependency on OpenAI itself.
package openai
