// Package prompts holds the LLM prompt templates as replaceable assets.
// A deployment can point the config at a file override without touching
// the pipeline.
package prompts

import (
	"fmt"
	"os"
	"strings"
)

// AnswerSystem primes the model's role for every completion call.
const AnswerSystem = "You are an RFP assistant that provides clear, accurate answers based on the retrieved information."

// defaultAnswer is the embedded answer template. It takes two %s verbs:
// the user question and the grounding context built from search results.
const defaultAnswer = `You are an RFP (Request for Proposal) answering assistant.
Use the provided context from a semantic search to answer the user's question accurately.
Only use information from the provided context. If the context doesn't contain enough
information to answer the question fully, acknowledge the limitations in your response.

User Question: %s

Context from search results:
%s

Instructions:
1. Answer the question directly and precisely
2. If multiple sources provide relevant information, synthesize them
3. If information is incomplete, acknowledge it in your response
4. Include any relevant dates, certifications, or specific details mentioned in the context
5. Do not make up information that isn't explicitly stated in the context

Your answer:`

// Store resolves prompt templates, preferring a file override when one is
// configured and readable.
type Store struct {
	answerPath string
}

// NewStore creates a Store. answerPath may be empty to use the embedded
// template.
func NewStore(answerPath string) *Store {
	return &Store{answerPath: answerPath}
}

// Answer returns the answer template. A configured override file must
// contain both %s verbs (question, context) or it is rejected.
func (s *Store) Answer() (string, error) {
	if s.answerPath == "" {
		return defaultAnswer, nil
	}
	data, err := os.ReadFile(s.answerPath)
	if err != nil {
		return "", fmt.Errorf("load answer prompt %s: %w", s.answerPath, err)
	}
	tmpl := string(data)
	if strings.Count(tmpl, "%s") != 2 {
		return "", fmt.Errorf("answer prompt %s must contain exactly two %%s placeholders", s.answerPath)
	}
	return tmpl, nil
}
