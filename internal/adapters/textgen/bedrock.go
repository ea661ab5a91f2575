package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const defaultModelID = "amazon.titan-text-express-v1"

// titanRequest is the Titan text invocation body.
type titanRequest struct {
	InputText string `json:"inputText"`
}

// titanResponse is the Titan text completion body.
type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// InvokeAPI is the subset of the Bedrock runtime client used here. Narrowed
// for testability.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGenerator implements Generator against a hosted Bedrock text model.
type BedrockGenerator struct {
	client  InvokeAPI
	modelID string
}

// Option applies a configuration option to the BedrockGenerator.
type Option func(*BedrockGenerator)

// WithModelID overrides the default Titan model id.
func WithModelID(id string) Option {
	return func(g *BedrockGenerator) {
		if id != "" {
			g.modelID = id
		}
	}
}

// NewBedrockGenerator creates a generator backed by the given runtime client.
func NewBedrockGenerator(client InvokeAPI, opts ...Option) *BedrockGenerator {
	g := &BedrockGenerator{
		client:  client,
		modelID: defaultModelID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate invokes the model with the prompt and returns the raw output text.
func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(titanRequest{InputText: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal invoke body: %w", err)
	}

	resp, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvokeFailed, err)
	}

	var parsed titanResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal invoke response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(parsed.Results[0].OutputText), nil
}
