// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reason

// analyzePrompt instructs the model to extract a structured finding
// from one abstract. The response must be a bare JSON object so the
// adapter can validate its shape.
const analyzePrompt = `You are an expert at analyzing quantum physics paper abstracts. Read the title and abstract below and extract:
- contribution: the main research contribution in 1-2 sentences
- methodology: the key technique or approach used
- significance: why the result matters to the field

Be precise and technical. Use proper quantum physics terminology.

Respond with a JSON object with exactly the keys "contribution", "methodology", and "significance", each a non-empty string. Do not include any text outside the JSON object.

Title: %s

Abstract: %s`

// synthesizePrompt instructs the model to produce the final digest from
// the accumulated pipeline output. The four sections mirror the Digest
// structure the orchestrator validates.
const synthesizePrompt = `You are a research summary expert for quantum physics. Below is the structured output of a paper triage run for the query %q: the retrieved papers, per-paper findings, extracted mathematical notation, and relevance scores (0-100, rank 1 = most relevant).

Synthesize a digest with:
- executive_summary: a 2-3 sentence overview of the run
- highlights: the top papers in rank order, each with paper_id, title, score, and key_finding
- trends: 2-4 research themes observed across the papers
- recommendations: suggested follow-up reading or directions

Respond with a JSON object with exactly the keys "executive_summary" (string), "highlights" (array of objects with "paper_id", "title", "score", "key_finding"), "trends" (array of strings), and "recommendations" (array of strings). All four must be non-empty. Do not include any text outside the JSON object.

Triage output:
%s`
