// Package openai implements the ai interfaces using OpenAI-compatible
// HTTP APIs via the langchaingo client. It works against the hosted
// OpenAI API as well as local services such as Ollama, LocalAI and vLLM.
package openai
