// Package enrich wraps the Gemini API to turn receipt images and voice
// transcripts into structured expense candidates. Its only contract with
// the rest of the system is the draft shape handed to the itemized split
// path once claimant names are resolved to member ids.
package enrich

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const receiptPrompt = `You are a receipt parser. The user sends you a receipt image.
Extract ONLY these fields and return a JSON object:
{
  "description": string,   // merchant name or most prominent item (max 40 chars)
  "subtotal": number | null,
  "tax": number | null,
  "tip": number | null,
  "total": number          // the final total charged; required
}
Rules:
- All amounts must be positive numbers with at most 2 decimal places.
- If a field is not present on the receipt, set it to null.
- Return ONLY valid JSON, no markdown, no extra text.`

const transcriptPrompt = `You are an expense parser. The user describes an expense in natural language.
Extract all information and return a JSON object with this exact shape:
{
  "description": string,    // concise name for the overall expense, e.g. "Dinner" (max 40 chars)
  "payer_name": string,     // name of the person who paid for everything upfront
  "total_amount": number,   // total amount paid (sum of all item prices unless stated otherwise)
  "items": [
    {
      "name": string,       // what the item is, e.g. "Ramen", "Beer"
      "price": number,      // total price for this item (positive, max 2 decimal places)
      "claimants": string[] // names of the people who consumed this item (they split it equally)
    }
  ]
}
Rules:
- Each distinct thing a person mentions getting, ordering, or consuming becomes its own item.
- Normalise spoken numbers: "ten" means 10, "ten fifty" means 10.50.
- If the speaker refers to themselves in the first person, use the name "me" (lowercase).
- If no items are distinguishable, return a single item with the total price and all participants as claimants.
- Return ONLY valid JSON, no markdown, no extra text.`

// ReceiptCandidate is the structured result of scanning a receipt image.
type ReceiptCandidate struct {
	Description string   `json:"description"`
	Subtotal    *float64 `json:"subtotal"`
	Tax         *float64 `json:"tax"`
	Tip         *float64 `json:"tip"`
	Total       float64  `json:"total"`
}

// DraftItem is one line of a parsed transcript, with the claimant names
// exactly as spoken.
type DraftItem struct {
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Claimants []string `json:"claimants"`
}

// ExpenseDraft is the structured result of parsing a voice transcript.
type ExpenseDraft struct {
	Description string      `json:"description"`
	PayerName   string      `json:"payer_name"`
	TotalAmount float64     `json:"total_amount"`
	Items       []DraftItem `json:"items"`
}

// Service calls the Gemini generative language API.
type Service struct {
	api   *generativelanguage.Service
	model string
}

// NewService builds an enrichment service for the given API key and model.
func NewService(ctx context.Context, apiKey, model string) (*Service, error) {
	api, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generativelanguage client: %w", err)
	}
	return &Service{api: api, model: model}, nil
}

// ScanReceipt extracts candidate amounts from a receipt image.
func (s *Service) ScanReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptCandidate, error) {
	parts := []*generativelanguage.Part{
		{Text: "Parse this receipt."},
		{InlineData: &generativelanguage.Blob{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}

	raw, err := s.generate(ctx, receiptPrompt, parts)
	if err != nil {
		return nil, err
	}

	candidate := &ReceiptCandidate{}
	if err := json.Unmarshal([]byte(raw), candidate); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return candidate, nil
}

// ParseExpense extracts a structured expense draft from a spoken
// description.
func (s *Service) ParseExpense(ctx context.Context, transcript string) (*ExpenseDraft, error) {
	parts := []*generativelanguage.Part{{Text: transcript}}

	raw, err := s.generate(ctx, transcriptPrompt, parts)
	if err != nil {
		return nil, err
	}

	draft := &ExpenseDraft{}
	if err := json.Unmarshal([]byte(raw), draft); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return draft, nil
}

func (s *Service) generate(ctx context.Context, systemPrompt string, parts []*generativelanguage.Part) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: systemPrompt}},
		},
		Contents: []*generativelanguage.Content{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := s.api.Models.GenerateContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	return stripFences(resp.Candidates[0].Content.Parts[0].Text), nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite the instructions.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	return strings.TrimSpace(raw)
}
