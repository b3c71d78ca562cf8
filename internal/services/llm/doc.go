// Package llm provides an OpenRouter chat client used to draft film content.
//
// Each content kind (summary, audience profile, discussion guide, social
// posts) is produced by a single user-role prompt sent through Complete. The
// reply text is returned verbatim apart from surrounding whitespace.
//
// # Configuration
//
// Requires api_key and model, and optionally base_url, max_tokens, referer,
// title and timeout. The Referer and Title values are forwarded as the
// OpenRouter attribution headers.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send one prompt, receive the model's text reply.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts, and
// empty completions with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Retry-After headers are honoured up to the max
// delay. Context cancellation aborts retries immediately.
package llm
