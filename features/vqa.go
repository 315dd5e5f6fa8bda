package features

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/tidwall/gjson"
)

// Prompts is the natural-language question sent to a visual question answering model for each attribute.
var Prompts = map[Question]string{
	Hue:        "What is the main color of the clothing?",
	Brightness: "Is the color of the clothing light, medium or dark?",
	Chroma:     "Is the color of the clothing vivid, muted or neutral?",
	Pattern:    "What pattern does the clothing have?",
	Style:      "What is the style of the clothing?",
	Material:   "What material is the clothing made of?",
	AgeRange:   "What age group is the clothing designed for?",
	Gender:     "Is the clothing for male, female or unisex?",
	Occasion:   "What occasion is the clothing suitable for?",
}

/*
VQAExtractor answers every Question by asking a hosted visual question answering model.

Each question is one POST of {"inputs":{"image":..., "question":...}} to Endpoint.
The model may answer with a list of candidates ([{"answer":..., "score":...}]) or a
single object; the first answer is used.
*/
type VQAExtractor struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

func NewVQAExtractor(endpoint, token string) *VQAExtractor {
	return &VQAExtractor{Endpoint: endpoint, Token: token, Client: &http.Client{}}
}

// Extract asks every question about imageRef. Any failed question fails the whole extraction.
func (v *VQAExtractor) Extract(ctx context.Context, imageRef string) (Answers, error) {
	if v.Endpoint == "" {
		return nil, platformerrors.New(platformerrors.CodeInvalidConfig, "vision endpoint is not configured")
	}

	answers := make(Answers, len(Questions))
	for _, q := range Questions {
		a, err := v.ask(ctx, imageRef, Prompts[q])
		if err != nil {
			return nil, platformerrors.WithContext(err, "question", string(q))
		}
		answers[q] = a
	}
	return answers, nil
}

type vqaRequest struct {
	Inputs vqaInputs `json:"inputs"`
}

type vqaInputs struct {
	Image    string `json:"image"`
	Question string `json:"question"`
}

func (v *VQAExtractor) ask(ctx context.Context, imageRef, question string) (string, error) {
	payload, err := json.Marshal(vqaRequest{Inputs: vqaInputs{Image: imageRef, Question: question}})
	if err != nil {
		return "", platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "failed to encode vision request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "failed to create vision request")
	}
	req.Header.Set("Content-Type", "application/json")
	if v.Token != "" {
		req.Header.Set("Authorization", "Bearer "+v.Token)
	}

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", platformerrors.Wrap(err, platformerrors.CodeTimeout, "vision request timed out")
		}
		return "", platformerrors.Wrap(err, platformerrors.CodeNetwork, "vision request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", platformerrors.Wrap(err, platformerrors.CodeNetwork, "failed to read vision response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", platformerrors.New(platformerrors.CodeRateLimit, "vision provider rate limit exceeded")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", platformerrors.Newf(platformerrors.CodeUnavailable, "vision provider returned status %d", resp.StatusCode)
	}

	return parseAnswer(body)
}

func parseAnswer(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", platformerrors.New(platformerrors.CodeInvalidInput, "vision response is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	path := "answer"
	if doc.IsArray() {
		path = "0.answer"
	}

	answer := doc.Get(path)
	if !answer.Exists() {
		return "", platformerrors.New(platformerrors.CodeInvalidInput, "vision response has no answer")
	}
	return answer.String(), nil
}
