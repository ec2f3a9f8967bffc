package rates

// Platform default catalog, seeded once at global scope. Prices are
// credits per minute and track the upstream provider cost structure.

type defaultModelRate struct {
	Provider string
	Model    string
	Rate     float64
}

type defaultTranscriberRate struct {
	Provider string
	Rate     float64
}

var defaultModelRates = []defaultModelRate{
	// OpenAI
	{"openai", "gpt-5.2", 0.15},
	{"openai", "gpt-5.1", 0.15},
	{"openai", "gpt-5", 0.15},
	{"openai", "gpt-5-mini", 0.08},
	{"openai", "gpt-5-nano", 0.05},
	{"openai", "gpt-4.1", 0.10},
	{"openai", "gpt-4.1-mini", 0.06},
	{"openai", "gpt-4.1-nano", 0.04},
	{"openai", "gpt-4o", 0.10},
	{"openai", "gpt-4o-mini", 0.06},
	{"openai", "o4-mini", 0.10},
	{"openai", "o3", 0.20},
	{"openai", "o3-mini", 0.10},
	{"openai", "gpt-3.5-turbo", 0.04},
	// Anthropic
	{"anthropic", "claude-3-5-sonnet-20241022", 0.12},
	{"anthropic", "claude-3-5-haiku-20241022", 0.06},
	{"anthropic", "claude-3-opus-20240229", 0.25},
	// Google
	{"google", "gemini-1.5-pro", 0.10},
	{"google", "gemini-1.5-flash", 0.04},
	// Groq
	{"groq", "llama-3.3-70b-versatile", 0.04},
	{"groq", "llama-3.1-405b-reasoning", 0.06},
	{"groq", "llama-3.1-8b-instant", 0.02},
	{"groq", "llama3-70b-8192", 0.04},
	{"groq", "llama3-8b-8192", 0.02},
	{"groq", "meta-llama/llama-4-maverick-17b-128e-instruct", 0.03},
	{"groq", "meta-llama/llama-4-scout-17b-16e-instruct", 0.03},
	{"groq", "deepseek-r1-distill-llama-70b", 0.04},
	{"groq", "gemma2-9b-it", 0.02},
	{"groq", "mistral-saba-24b", 0.03},
	{"groq", "moonshotai/kimi-k2-instruct-0905", 0.03},
	{"groq", "compound-beta", 0.04},
	{"groq", "compound-beta-mini", 0.03},
	// DeepSeek
	{"deepseek", "deepseek-chat", 0.06},
	{"deepseek", "deepseek-coder", 0.06},
	// Mistral
	{"mistral", "mistral-large-latest", 0.10},
	{"mistral", "mistral-medium-latest", 0.06},
	{"mistral", "mistral-small-latest", 0.04},
}

var defaultTranscriberRates = []defaultTranscriberRate{
	{"deepgram", 0.02},
	{"assembly-ai", 0.03},
	{"azure", 0.02},
	{"11labs", 0.03},
	{"gladia", 0.03},
	{"google", 0.02},
	{"openai", 0.02},
	{"speechmatics", 0.03},
	{"talkscriber", 0.02},
	{"cartesia", 0.02},
}
