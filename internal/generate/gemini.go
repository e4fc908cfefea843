package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
	"google.golang.org/genai"

	"shufflerd/internal/frame"
	"shufflerd/internal/shuffler"
)

// DefaultGeminiModel is an image-capable Gemini model.
const DefaultGeminiModel = "gemini-2.5-flash-image"

// ContentGenerator is the part of the genai Models service Gemini uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures Gemini.
type GeminiConfig struct {
	Model  string
	APIKey string
	Copier shuffler.Copier
	Logger zerolog.Logger
}

// Gemini restyles the source frame with a Gemini image model. The prompt and
// strength shape the instruction, the seed is passed through, and the
// returned image is scaled into the destination buffer.
type Gemini struct {
	models ContentGenerator
	model  string
	copier shuffler.Copier
	log    zerolog.Logger
	enc    png.Encoder
}

// NewGemini creates a genai client for the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini generator: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return NewGeminiWith(client.Models, cfg)
}

// NewGeminiWith builds a Gemini generator over an existing content service.
func NewGeminiWith(models ContentGenerator, cfg GeminiConfig) (*Gemini, error) {
	if models == nil {
		return nil, errors.New("gemini generator: content service is required")
	}
	if cfg.Copier == nil {
		return nil, errors.New("gemini generator: copier is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	return &Gemini{
		models: models,
		model:  cfg.Model,
		copier: cfg.Copier,
		log:    cfg.Logger.With().Str("generator", "gemini").Str("model", cfg.Model).Logger(),
		enc:    png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// Generate implements shuffler.Generator.
func (g *Gemini) Generate(ctx context.Context, src image.Image, p shuffler.Params, dst *frame.Buffer) error {
	var buf bytes.Buffer
	if err := g.enc.Encode(&buf, src); err != nil {
		return fmt.Errorf("encode source: %w", err)
	}
	parts := []*genai.Part{
		genai.NewPartFromText(instruction(p)),
		genai.NewPartFromBytes(buf.Bytes(), "image/png"),
	}
	seed := int32(p.Seed % math.MaxInt32)
	temp := float32(p.Strength)
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		Seed:               &seed,
		Temperature:        &temp,
		ImageConfig:        &genai.ImageConfig{AspectRatio: AspectRatio(dst.Bounds().Dx(), dst.Bounds().Dy())},
	}
	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("gemini generate: %w", err)
	}
	blob, err := firstImage(resp)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return decodeError{mime: blob.MIMEType, err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.copier.Copy(img, dst)
	g.log.Debug().Int("bytes", len(blob.Data)).Int32("seed", seed).Msg("generation received")
	return nil
}

func instruction(p shuffler.Params) string {
	return fmt.Sprintf("Repaint this camera frame as: %s. Keep the composition and subject placement. "+
		"Stylization strength %.2f of 1, detail steps %d, prompt adherence %.2f. Return only the image.",
		p.Prompt, p.Strength, p.StepCount, p.Guidance)
}

func firstImage(resp *genai.GenerateContentResponse) (*genai.Blob, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, emptyResponseError{}
	}
	c := resp.Candidates[0]
	if c.Content != nil {
		for _, part := range c.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData, nil
			}
		}
	}
	return nil, emptyResponseError{reason: string(c.FinishReason)}
}

var aspectRatios = []struct {
	name string
	r    float64
}{
	{"1:1", 1}, {"3:2", 1.5}, {"2:3", 2.0 / 3}, {"4:3", 4.0 / 3}, {"3:4", 0.75},
	{"16:9", 16.0 / 9}, {"9:16", 9.0 / 16}, {"21:9", 21.0 / 9},
}

// AspectRatio returns the supported ratio name closest to w:h.
func AspectRatio(w, h int) string {
	if w <= 0 || h <= 0 {
		return "1:1"
	}
	want := float64(w) / float64(h)
	best, diff := aspectRatios[0].name, math.Inf(1)
	for _, a := range aspectRatios {
		if d := math.Abs(math.Log(want / a.r)); d < diff {
			best, diff = a.name, d
		}
	}
	return best
}
