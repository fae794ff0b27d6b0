package memory

// summarizationInstruction is the fixed instruction handed to the
// summarization backend. The response is expected to be a single JSON
// object; anything else degrades to raw-text-as-summary.
const summarizationInstruction = `Analyze this conversation and provide:
1. A brief summary (2-3 sentences)
2. Key facts about the user (interests, preferences, plans, events)
3. Important topics discussed

Format your response as JSON:
{
    "summary": "...",
    "facts": [
        {"category": "preference|interest|event|goal|fact", "content": "...", "importance": 1-10}
    ],
    "topics": ["topic1", "topic2"]
}`

// compressionSource marks facts produced by conversation compression.
const compressionSource = "conversation_compression"
