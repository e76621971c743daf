package teamextract

import "mailsplit-backend/internal/llm"

const purpose = "team_extract"

const fieldsBlock = `{
  "team_name": "string",
  "description": "string - MUST include email-to-responsibility mapping. Format: 'email1@example.com handles X responsibilities, email2@example.com handles Y responsibilities'. Include all other team details as well.",
  "products": ["array", "of", "strings"],
  "issues_handled": ["array", "of", "strings"],
  "contact_email": ["array", "of", "email", "addresses"]
}`

const mappingRule = `IMPORTANT: The description field MUST contain information about which email address handles which responsibilities. Format each email followed by their specific responsibilities.`

const chatSystemPrompt = `You are a helpful assistant that extracts team information from documents.
Extract the following fields and return ONLY a valid JSON object:
` + fieldsBlock + `

` + mappingRule + `
If any field cannot be found, make a reasonable inference based on the context. If you absolutely cannot determine a field, use an empty array.`

const singleMessageInstructions = `Extract team information from this document and return ONLY a valid JSON object with these fields:
` + fieldsBlock + `

` + mappingRule

const singleMessageMaxTokens = 1024

// buildRequest shapes the prompt for a provider. Anthropic gets one user message with
// the instructions ahead of the document; chat providers get a system + user pair.
func buildRequest(provider, text string) llm.Request {
	if provider == "anthropic" {
		return llm.Request{
			Purpose:   purpose,
			System:    singleMessageInstructions,
			Prompt:    "Document:\n" + text,
			MaxTokens: singleMessageMaxTokens,
		}
	}
	return llm.Request{
		Purpose: purpose,
		System:  chatSystemPrompt,
		Prompt:  "Extract team information from this document:\n\n" + text,
	}
}
