// Package openai extracts dominant colors with a multimodal model behind
// an OpenAI-compatible chat API (OpenAI, Ollama, llama.cpp server, vLLM).
package openai
